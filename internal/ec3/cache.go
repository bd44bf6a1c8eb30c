package ec3

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const bucketName = "ec3_responses"

// Cache stores API responses in a local bbolt file so repeated imports do
// not spend rate-limited requests.
type Cache struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time
}

type cacheEntry struct {
	FetchedAt time.Time       `json:"fetched_at"`
	Body      json.RawMessage `json:"body"`
}

// OpenCache opens or creates the cache file at path. A zero ttl never expires entries.
func OpenCache(path string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache %s: %w", path, err)
	}
	return &Cache{db: db, ttl: ttl, now: time.Now}, nil
}

// Get decodes the cached value for key into v. It reports false when the
// key is missing or expired.
func (c *Cache) Get(key string, v any) (bool, error) {
	var entry cacheEntry
	found := false
	err := c.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket == nil {
			return nil
		}
		data := bucket.Get([]byte(key))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &entry)
	})
	if err != nil || !found {
		return false, err
	}
	if c.ttl > 0 && c.now().Sub(entry.FetchedAt) > c.ttl {
		return false, nil
	}
	if err := json.Unmarshal(entry.Body, v); err != nil {
		return false, err
	}
	return true, nil
}

// Put stores v under key
func (c *Cache) Put(key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data, err := json.Marshal(cacheEntry{FetchedAt: c.now(), Body: body})
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		if err != nil {
			return err
		}
		return bucket.Put([]byte(key), data)
	})
}

// Close closes the underlying file
func (c *Cache) Close() error {
	return c.db.Close()
}
