// Package storage persists partition outputs on the local filesystem.
//
// Each run name owns a directory holding a JSON document with every packaged
// library and the remaining pool, plus one binary file per packaged library
// containing its refs in the host record format. Writers and readers
// coordinate through a file lock next to the directory.
package storage

import (
	"time"

	"github.com/google/uuid"

	"github.com/stacklok/asset-librarian/internal/library"
	"github.com/stacklok/asset-librarian/internal/partition"
	"github.com/stacklok/asset-librarian/internal/versions"
)

// Output is the persisted result of one partition run
type Output struct {
	FormatVersion string    `json:"formatVersion"`
	RunID         string    `json:"runId"`
	Name          string    `json:"name"`
	RunAt         time.Time `json:"runAt"`

	// CatalogHash identifies the catalog document the run was computed from
	CatalogHash string `json:"catalogHash"`

	// Revision is the source revision, such as a Git commit, when known
	Revision string `json:"revision,omitempty"`

	// Libraries holds the packaged libraries in priority order
	Libraries []LibraryOutput `json:"libraries"`

	// Remaining holds the assets no consuming library claimed
	Remaining []library.Ref `json:"remaining"`
}

// LibraryOutput is one packaged library
type LibraryOutput struct {
	Name        string        `json:"name"`
	Fallthrough bool          `json:"fallthrough,omitempty"`
	Assets      []library.Ref `json:"assets"`

	// BinaryFile is the name of the library's binary ref file, relative to the output directory
	BinaryFile string `json:"binaryFile"`
}

// NewOutput builds the output of a run. Libraries that do not package their
// assets are left out.
func NewOutput(name, catalogHash string, libs []*library.Info, result *partition.Result) *Output {
	out := &Output{
		FormatVersion: versions.OutputFormat,
		RunID:         uuid.NewString(),
		Name:          name,
		RunAt:         time.Now().UTC(),
		CatalogHash:   catalogHash,
		Libraries:     []LibraryOutput{},
		Remaining:     []library.Ref{},
	}
	if result == nil {
		return out
	}

	for _, lr := range result.Libraries {
		if lib := library.Find(libs, lr.Name); lib != nil && !lib.PackageAssets {
			continue
		}
		assets := lr.Refs
		if assets == nil {
			assets = []library.Ref{}
		}
		out.Libraries = append(out.Libraries, LibraryOutput{
			Name:        lr.Name,
			Fallthrough: lr.Fallthrough,
			Assets:      assets,
			BinaryFile:  binaryFileName(lr.Name),
		})
	}
	if result.Remaining != nil {
		out.Remaining = result.Remaining
	}
	return out
}

// Library returns the named library, or nil
func (o *Output) Library(name string) *LibraryOutput {
	for i := range o.Libraries {
		if o.Libraries[i].Name == name {
			return &o.Libraries[i]
		}
	}
	return nil
}

// AssetCount returns the number of packaged assets across libraries
func (o *Output) AssetCount() int {
	n := 0
	for i := range o.Libraries {
		n += len(o.Libraries[i].Assets)
	}
	return n
}
