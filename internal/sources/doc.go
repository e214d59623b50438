// Package sources fetches catalog metadata documents from the configured
// catalog source.
//
// Three source types are supported:
//
//   - git: the metadata file is read from a repository cloned into memory,
//     optionally pinned to a branch, tag or commit
//   - api: the metadata document is fetched from an HTTP endpoint with retries
//   - file: the metadata file is read from the local filesystem
//
// Every handler validates the document against the catalog JSON schema before
// it is loaded, and returns a SHA-256 hash of the raw bytes so callers can skip
// re-partitioning when the catalog is unchanged.
package sources
