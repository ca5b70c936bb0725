package store

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/buntdb"

	"github.com/mdgen/dumper/record"
)

// BuntIndex is a buntdb-backed Indexer. One instance is typically created
// per sink so primary/filelists/other each get an independent on-disk
// index, matching spec.md's "optional per sink" indexed store.
type BuntIndex struct {
	db *buntdb.DB
}

// OpenBuntIndex opens (creating if necessary) a buntdb database at path.
// Passing ":memory:" creates an in-memory index, useful for tests and for
// runs that only need the index for the duration of the process.
func OpenBuntIndex(path string) (*BuntIndex, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("store: open buntdb at %s: %w", path, err)
	}
	return &BuntIndex{db: db}, nil
}

func (b *BuntIndex) Close() error {
	return b.db.Close()
}

// indexedRecord is the subset of record.PackageRecord persisted to the
// index. The indexed store's schema is explicitly out of the core's
// scope; this is a minimal, private encoding sufficient for lookups by
// PkgID.
type indexedRecord struct {
	Name             string `json:"name"`
	PkgID            string `json:"pkg_id"`
	ChecksumTypeName string `json:"checksum_type"`
	SizePackage      int64  `json:"size"`
	LocationHref     string `json:"location_href"`
	LocationBase     string `json:"location_base"`
}

func (b *BuntIndex) Insert(rec *record.PackageRecord) error {
	if rec == nil {
		return fmt.Errorf("store: nil record")
	}
	payload, err := json.Marshal(indexedRecord{
		Name:             rec.Name,
		PkgID:            rec.PkgID,
		ChecksumTypeName: rec.ChecksumTypeName,
		SizePackage:      rec.SizePackage,
		LocationHref:     rec.LocationHref,
		LocationBase:     rec.LocationBase,
	})
	if err != nil {
		return fmt.Errorf("store: marshal record %s: %w", rec.PkgID, err)
	}

	return b.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(rec.PkgID, string(payload), nil)
		return err
	})
}

// Lookup fetches a previously inserted record by PkgID. It is not part of
// the writer.Indexer interface — it exists so a caller building an
// incremental-cache snapshot for the next run can read this run's index
// back out.
func (b *BuntIndex) Lookup(pkgID string) (*record.PackageRecord, error) {
	var payload string
	err := b.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(pkgID)
		if err != nil {
			return err
		}
		payload = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	var ir indexedRecord
	if err := json.Unmarshal([]byte(payload), &ir); err != nil {
		return nil, fmt.Errorf("store: unmarshal record %s: %w", pkgID, err)
	}
	return &record.PackageRecord{
		Name:             ir.Name,
		PkgID:            ir.PkgID,
		ChecksumTypeName: ir.ChecksumTypeName,
		SizePackage:      ir.SizePackage,
		LocationHref:     ir.LocationHref,
		LocationBase:     ir.LocationBase,
	}, nil
}
