package slot

import (
	"context"
	"errors"
	"sync"
)

// ErrWriteRejected is returned by a MemorySlot whose writes have been
// disabled with FailWrites.
var ErrWriteRejected = errors.New("slot write rejected")

type MemorySlot struct {
	mu         sync.Mutex
	values     map[string][]byte
	writeErr   error
	writeCount int
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{values: map[string][]byte{}}
}

// FailWrites makes every later Set return err. A nil err restores writes.
func (s *MemorySlot) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// Writes reports how many Set calls have been attempted.
func (s *MemorySlot) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeCount
}

func (s *MemorySlot) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := validateKey(key); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte{}, value...), true, nil
}

func (s *MemorySlot) Set(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeCount++
	if s.writeErr != nil {
		return s.writeErr
	}
	s.values[key] = append([]byte{}, value...)
	return nil
}

func (s *MemorySlot) Clear(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *MemorySlot) Backend() string {
	return BackendMemory
}

func (s *MemorySlot) Close() error {
	return nil
}
