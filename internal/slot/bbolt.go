package slot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketSlots = []byte("slots")

const bboltLockTimeout = 2 * time.Second

// BboltSlot opens the database for each operation so the file lock is only
// held while a transaction runs. Other processes can use the same path
// between operations; the last write wins.
type BboltSlot struct {
	path string
	mu   sync.Mutex
}

func NewBboltSlot(path string) (*BboltSlot, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("slot db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	s := &BboltSlot{path: path}
	err := s.update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSlots)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *BboltSlot) open() (*bolt.DB, error) {
	return bolt.Open(s.path, 0o600, &bolt.Options{Timeout: bboltLockTimeout})
}

func (s *BboltSlot) view(fn func(*bolt.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	db, err := s.open()
	if err != nil {
		return err
	}
	err = db.View(fn)
	return errors.Join(err, db.Close())
}

func (s *BboltSlot) update(fn func(*bolt.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	db, err := s.open()
	if err != nil {
		return err
	}
	err = db.Update(fn)
	return errors.Join(err, db.Close())
}

func (s *BboltSlot) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := validateKey(key); err != nil {
		return nil, false, err
	}
	var out []byte
	err := s.view(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSlots)
		if b == nil {
			return nil
		}
		raw := b.Get([]byte(key))
		if raw == nil {
			return nil
		}
		// bbolt values are only valid for the life of the transaction.
		out = append([]byte{}, raw...)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, out != nil, nil
}

func (s *BboltSlot) Set(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return s.update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketSlots)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), value)
	})
}

func (s *BboltSlot) Clear(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return s.update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSlots)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

func (s *BboltSlot) Backend() string {
	return BackendBbolt
}

// Close is a no-op; no database handle outlives an operation.
func (s *BboltSlot) Close() error {
	return nil
}
