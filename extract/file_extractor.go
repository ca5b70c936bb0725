package extract

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/OneOfOne/xxhash"

	"github.com/mdgen/dumper/record"
)

// headerProbeSize bounds how many leading bytes FileExtractor treats as the
// package's "header" for HeaderStart/HeaderEnd. The real package format
// (and therefore the real header framing) is out of the core's scope; this
// is a deliberately simple placeholder so the module is exercisable end to
// end without depending on a specific archive format.
const headerProbeSize = 4096

// FileExtractor is the default Extractor: it stats the file, computes a
// content checksum, and reports a header byte range, mirroring load_rpm()'s
// responsibilities (stat, checksum, header range) without any dependency on
// a concrete package format.
type FileExtractor struct {
	// ChangelogReader optionally supplies changelog entries for a package.
	// A nil reader yields no changelog entries, which is a valid and common case.
	ChangelogReader func(path string, limit int) ([]record.ChangelogEntry, error)

	// Fast, when true, uses xxhash instead of the requested cryptographic
	// checksum. It is intended for throughput-sensitive bench/test runs that
	// do not need one of the three spec-mandated checksum types.
	Fast bool
}

func (e *FileExtractor) Extract(
	ctx context.Context,
	path string,
	checksumType record.ChecksumType,
	changelogLimit int,
	locationHref, locationBase string,
) (*record.PackageRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("extract: open %s: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("extract: stat %s: %w", path, err)
	}

	checksum, err := e.checksum(f, checksumType)
	if err != nil {
		return nil, fmt.Errorf("extract: checksum %s: %w", path, err)
	}

	headerEnd := fi.Size()
	if headerEnd > headerProbeSize {
		headerEnd = headerProbeSize
	}

	var changelog []record.ChangelogEntry
	if e.ChangelogReader != nil {
		changelog, err = e.ChangelogReader(path, changelogLimit)
		if err != nil {
			return nil, fmt.Errorf("extract: changelog %s: %w", path, err)
		}
	}

	checksumTypeName := checksumType.String()
	if e.Fast {
		checksumTypeName = "xxhash"
	}

	return &record.PackageRecord{
		Name:             fi.Name(),
		PkgID:            checksum,
		ChecksumTypeName: checksumTypeName,
		SizePackage:      fi.Size(),
		TimeFile:         fi.ModTime(),
		HeaderStart:      0,
		HeaderEnd:        headerEnd,
		Changelog:        changelog,
		LocationHref:     locationHref,
		LocationBase:     locationBase,
	}, nil
}

func (e *FileExtractor) checksum(f *os.File, checksumType record.ChecksumType) (string, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	if e.Fast {
		h := xxhash.New64()
		if _, err := io.Copy(h, f); err != nil {
			return "", err
		}
		return fmt.Sprintf("%016x", h.Sum64()), nil
	}

	var h hash.Hash
	switch checksumType {
	case record.MD5:
		h = md5.New()
	case record.SHA1:
		h = sha1.New()
	case record.SHA256:
		h = sha256.New()
	default:
		return "", fmt.Errorf("extract: unsupported checksum type %v", checksumType)
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
