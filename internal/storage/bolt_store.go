package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

const preferenceBucket = "preferences"

// boltStore implements a Store backed by BoltDB. Values are stored as decimal text.
type boltStore struct {
	db *bolt.DB
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(preferenceBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	return &boltStore{db: db}, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// GetFloat reads key. Values that do not parse as a number count as absent.
func (b *boltStore) GetFloat(key string) (float64, bool, error) {
	if b == nil || b.db == nil {
		return 0, false, nil
	}

	var (
		value float64
		found bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(preferenceBucket))
		if bucket == nil {
			return fmt.Errorf("preference bucket missing")
		}
		raw := bucket.Get([]byte(key))
		if raw == nil {
			return nil
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
		if err != nil {
			return nil
		}
		value, found = v, true
		return nil
	})
	return value, found, err
}

// SetFloat writes key.
func (b *boltStore) SetFloat(key string, value float64) error {
	if b == nil || b.db == nil {
		return nil
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(preferenceBucket))
		if bucket == nil {
			return fmt.Errorf("preference bucket missing")
		}
		return bucket.Put([]byte(key), []byte(strconv.FormatFloat(value, 'g', -1, 64)))
	})
}

