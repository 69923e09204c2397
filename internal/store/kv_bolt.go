package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
)

var boltBucket = []byte("formsync")

type boltKV struct {
	db *bolt.DB
}

// NewBoltKV opens (creating if needed) a bolt database at path and ensures
// the formsync bucket exists. Bolt holds an exclusive file lock, so a second
// process opening the same path blocks until the timeout elapses.
func NewBoltKV(path string) (KV, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create kv dir: %w", err)
		}
	}

	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt kv: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bolt bucket: %w", err)
	}

	return &boltKV{db: db}, nil
}

// Get implements [KV].
func (s *boltKV) Get(key string) (string, bool, error) {
	var value string
	var found bool

	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(boltBucket).Get([]byte(key))
		if v != nil {
			value = string(v)
			found = true
		}
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("bolt get %q: %w", key, err)
	}

	return value, found, nil
}

// Set implements [KV].
func (s *boltKV) Set(key, value string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("bolt set %q: %w", key, err)
	}

	return nil
}

// Close implements [KV].
func (s *boltKV) Close() error {
	return s.db.Close()
}
