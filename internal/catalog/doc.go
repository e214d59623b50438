// Package catalog provides the asset catalogue consumed by the library filtering engine.
//
// A catalogue is a flat list of sound banks and media files, each tagged with a
// language and, for media, the sound bank that owns it, plus the events that
// reference them. The package defines:
//
//   - Source: the narrow query interface the engine consumes
//   - Database: an in-memory Source loaded from a JSON metadata document
//   - AssetRecord: a tagged union over a sound bank or a media record
//   - Snapshot: the per-run working set (Sources plus the Remaining index set)
//
// # Loading
//
// Load parses a metadata document and validates each record independently. A
// record with contradictory storage information (for instance a loose media file
// without a path) is rejected with an error log while the rest of the catalogue
// keeps loading. Unknown enum strings map to an Unknown sentinel.
//
// # Snapshots
//
// NewSnapshot builds the Sources list once per run: sound banks first, then
// packageable media (loose files or streamed in-memory media), deduplicated by
// media id. Remaining starts as every index of Sources and only shrinks.
package catalog
