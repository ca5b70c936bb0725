// Package extract defines the external collaborators the dumper core
// consumes to turn a package file into XML chunks: the metadata Extractor
// and the XML Renderer. Default implementations are provided so the
// module is runnable end to end, but the package file format and the XML
// schema they use are explicitly not part of the core's contract.
package extract

import (
	"context"

	"github.com/mdgen/dumper/record"
)

// Extractor produces a fresh record.PackageRecord from a package file.
// Errors are per-Task and non-fatal to the run.
type Extractor interface {
	Extract(
		ctx context.Context,
		path string,
		checksumType record.ChecksumType,
		changelogLimit int,
		locationHref, locationBase string,
	) (*record.PackageRecord, error)
}

// Renderer turns a record.PackageRecord into the three XML chunks the
// ordered writer appends to the primary, filelists, and other sinks.
// Errors are per-Task and non-fatal to the run.
type Renderer interface {
	Render(ctx context.Context, rec *record.PackageRecord) (primary, filelists, other []byte, err error)
}
