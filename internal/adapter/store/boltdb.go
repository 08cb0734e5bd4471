package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"
	"monu/internal/domain"
	"monu/internal/port"
)

var (
	bucketCorrections = []byte("corrections")
	bucketMeta        = []byte("meta")
)

// BoltStore persists corrections across restarts. It serves both as a
// correction cache and as the history behind `monu history`.
type BoltStore struct {
	db  *bbolt.DB
	ttl time.Duration
}

// NewBoltStore opens (or creates) the database at path. A ttl of zero keeps
// entries forever.
func NewBoltStore(path string, ttl time.Duration) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	s := &BoltStore{db: db, ttl: ttl}
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) expired(rec domain.CorrectionRecord) bool {
	return s.ttl > 0 && time.Since(rec.CreatedAt) > s.ttl
}

func (s *BoltStore) Get(key string) (domain.Correction, bool) {
	var rec domain.CorrectionRecord
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketCorrections).Get([]byte(key))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil || !found || s.expired(rec) {
		return domain.Correction{}, false
	}
	return rec.Result, true
}

func (s *BoltStore) Put(key string, rec domain.CorrectionRecord) error {
	rec.Key = key
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCorrections).Put([]byte(key), data)
	})
}

// List returns up to limit live records, newest first. A limit of zero
// returns everything.
func (s *BoltStore) List(limit int) ([]domain.CorrectionRecord, error) {
	var recs []domain.CorrectionRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCorrections).ForEach(func(k, v []byte) error {
			var rec domain.CorrectionRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("corrupt record %s: %w", k, err)
			}
			if !s.expired(rec) {
				recs = append(recs, rec)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].Key < recs[j].Key
		}
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

func (s *BoltStore) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketCorrections).Stats().KeyN
		return nil
	})
	return n, err
}

// Prune deletes expired records and returns how many were removed.
func (s *BoltStore) Prune() (int, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	removed := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketCorrections)
		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var rec domain.CorrectionRecord
			if err := json.Unmarshal(v, &rec); err != nil || s.expired(rec) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}

// Clear removes every stored correction. Schema metadata is kept.
func (s *BoltStore) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketCorrections); err != nil && err != bbolt.ErrBucketNotFound {
			return err
		}
		_, err := tx.CreateBucket(bucketCorrections)
		return err
	})
}

var (
	_ port.CorrectionCache   = (*BoltStore)(nil)
	_ port.CorrectionHistory = (*BoltStore)(nil)
)
