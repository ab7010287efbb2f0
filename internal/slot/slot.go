// Package slot provides the durable key-value slots that hold serialized
// progress documents.
package slot

import (
	"context"
	"errors"
	"strings"
)

const (
	BackendBbolt  = "bbolt"
	BackendFile   = "file"
	BackendMemory = "memory"
)

var ErrInvalidKey = errors.New("slot key is required")

// Slot stores opaque values under string keys. Get reports ok=false for a
// key that was never written or has been cleared.
type Slot interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context, key string) error
	Backend() string
	Close() error
}

type Paths struct {
	DBPath string
	Dir    string
}

func Open(paths Paths, backend string) (Slot, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendBbolt:
		if strings.TrimSpace(paths.DBPath) == "" {
			return nil, errors.New("db path is required for bbolt slot")
		}
		return NewBboltSlot(paths.DBPath)
	case BackendFile:
		if strings.TrimSpace(paths.Dir) == "" {
			return nil, errors.New("dir is required for file slot")
		}
		return NewFileSlot(paths.Dir), nil
	case BackendMemory:
		return NewMemorySlot(), nil
	default:
		return nil, errors.New("unsupported slot backend: " + backend)
	}
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	return nil
}
