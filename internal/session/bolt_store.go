package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

var sessionsBucket = []byte("sessions")

type boltRecord struct {
	Identity  Identity  `json:"identity"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// BoltStore keeps sessions in a single bbolt bucket. Expired records are
// removed when they are next read or when a new session is saved.
type BoltStore struct {
	db  *bbolt.DB
	now func() time.Time
}

// OpenBoltStore opens (creating if needed) the database file at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, err
		}
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltStore{db: db, now: time.Now}, nil
}

func (s *BoltStore) Save(_ context.Context, id string, identity Identity, ttl time.Duration) error {
	now := s.now()
	data, err := json.Marshal(boltRecord{Identity: identity, ExpiresAt: now.Add(ttl)})
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(sessionsBucket)
		if b == nil {
			return fmt.Errorf("sessions bucket not found")
		}
		if err := sweep(b, now); err != nil {
			return err
		}
		return b.Put([]byte(id), data)
	})
}

func (s *BoltStore) Load(_ context.Context, id string) (*Identity, error) {
	var record boltRecord
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(sessionsBucket)
		if b == nil {
			return fmt.Errorf("sessions bucket not found")
		}
		v := b.Get([]byte(id))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &record)
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	if !record.ExpiresAt.After(s.now()) {
		_ = s.Delete(context.Background(), id)
		return nil, ErrNotFound
	}
	return &record.Identity, nil
}

func (s *BoltStore) Delete(_ context.Context, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(sessionsBucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(id))
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func sweep(b *bbolt.Bucket, now time.Time) error {
	var expired [][]byte
	err := b.ForEach(func(k, v []byte) error {
		var record boltRecord
		if err := json.Unmarshal(v, &record); err != nil || !record.ExpiresAt.After(now) {
			expired = append(expired, append([]byte(nil), k...))
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, k := range expired {
		if err := b.Delete(k); err != nil {
			return err
		}
	}
	return nil
}
