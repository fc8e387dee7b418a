package store

import (
	"encoding/json"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/thebraudalf/fnb-docbot/internal/domain"
)

var bucketSources = []byte("sources")

// Registry is the upload ledger: one record per ingested source file,
// kept in a bbolt database next to the vector index. It exists for
// observability; the vector store stays the system of record.
type Registry struct {
	db *bbolt.DB
}

// OpenRegistry opens (or creates) the registry database at path.
func OpenRegistry(path string) (*Registry, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSources)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create sources bucket: %w", err)
	}

	return &Registry{db: db}, nil
}

// PutSource records (or overwrites) the ledger entry for one source.
func (r *Registry) PutSource(rec domain.SourceRecord) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketSources).Put([]byte(rec.Source), data)
	})
}

// ListSources returns all ledger entries sorted by source name.
func (r *Registry) ListSources() ([]domain.SourceRecord, error) {
	var records []domain.SourceRecord
	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSources).ForEach(func(k, v []byte) error {
			var rec domain.SourceRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Source < records[j].Source
	})
	return records, nil
}

// Clear removes every ledger entry. Called alongside a store reset.
func (r *Registry) Clear() error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketSources); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketSources)
		return err
	})
}

// Close closes the underlying database.
func (r *Registry) Close() error {
	return r.db.Close()
}
