package buffer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	bolt "go.etcd.io/bbolt"
)

// ErrFull is returned by Enqueue once the store holds MaxSize items.
var ErrFull = errors.New("buffer: store is full")

type Options struct {
	Bucket  string
	MaxSize int
}

// Store persists buffered writes in a BoltDB bucket while Postgres is unreachable.
// Keys sort by priority, then enqueue time.
type Store struct {
	db      *bolt.DB
	bucket  []byte
	maxSize int
}

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string, opts Options) (*Store, error) {
	if opts.Bucket == "" {
		opts.Bucket = "buffer"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(opts.Bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:      db,
		bucket:  []byte(opts.Bucket),
		maxSize: opts.MaxSize,
	}, nil
}

// Enqueue stores an item under its priority-aware key.
func (s *Store) Enqueue(item Item) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	item.normalize()
	item.bucketKey = buildKey(item)

	payload, err := sonic.Marshal(item)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if s.maxSize > 0 && b.Stats().KeyN >= s.maxSize {
			return ErrFull
		}
		return b.Put(item.bucketKey, payload)
	})
}

// Peek returns up to limit items in key order without removing them.
func (s *Store) Peek(limit int) ([]Item, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 50
	}

	var items []Item
	err := s.db.View(func(tx *bolt.Tx) error {
		return s.each(tx, func(k []byte, item Item) (bool, error) {
			items = append(items, item)
			return len(items) < limit, nil
		})
	})
	return items, err
}

// Remove deletes the item, by key when it came from Peek and by id otherwise.
func (s *Store) Remove(item Item) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if len(item.bucketKey) > 0 {
			return b.Delete(item.bucketKey)
		}
		if item.ID == "" {
			return nil
		}
		var key []byte
		if err := s.each(tx, func(k []byte, stored Item) (bool, error) {
			if stored.ID == item.ID {
				key = k
				return false, nil
			}
			return true, nil
		}); err != nil {
			return err
		}
		if key == nil {
			return nil
		}
		return b.Delete(key)
	})
}

// Requeue moves an item to the back of its priority lane.
func (s *Store) Requeue(item Item) error {
	if err := s.Remove(item); err != nil {
		return err
	}
	item.bucketKey = nil
	item.Timestamp = time.Now()
	return s.Enqueue(item)
}

func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Cleanup removes items enqueued before olderThan and reports how many were dropped.
func (s *Store) Cleanup(olderThan time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		var stale [][]byte
		if err := s.each(tx, func(k []byte, item Item) (bool, error) {
			if item.Timestamp.Before(olderThan) {
				stale = append(stale, k)
			}
			return true, nil
		}); err != nil {
			return err
		}
		b := tx.Bucket(s.bucket)
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// each walks the bucket in key order. Undecodable entries are skipped.
func (s *Store) each(tx *bolt.Tx, fn func(k []byte, item Item) (bool, error)) error {
	c := tx.Bucket(s.bucket).Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var item Item
		if err := sonic.Unmarshal(v, &item); err != nil {
			continue
		}
		key := append([]byte(nil), k...)
		item.bucketKey = key
		more, err := fn(key, item)
		if err != nil || !more {
			return err
		}
	}
	return nil
}

func buildKey(item Item) []byte {
	return []byte(fmt.Sprintf("%d_%020d_%s", item.Priority, item.Timestamp.UnixNano(), item.ID))
}
