// Package progress tracks which checklist items a reader has ticked on each
// guide page.
//
// A Store holds the whole progress document in memory and writes it to a
// single durable slot after every change. Slot failures never interrupt the
// session: the store keeps working from memory and reports the failure as a
// degraded SaveResult. Observers can subscribe to a page's "has any progress"
// signal.
package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"guideprogress/internal/logging"
	"guideprogress/internal/slot"
)

type Store struct {
	// saveMu orders slot writes so a stale snapshot never lands after a
	// newer one. It is never held while subscribers run.
	saveMu sync.Mutex
	mu     sync.Mutex

	slot   slot.Slot
	key    string
	logger logging.Logger

	doc        Document
	loadStatus LoadStatus
	lastSave   SaveResult

	subs    map[uint64]*subscription
	nextSub uint64
}

type Option func(*Store)

func WithSlotKey(key string) Option {
	return func(s *Store) {
		if key = strings.TrimSpace(key); key != "" {
			s.key = key
		}
	}
}

func WithLogger(logger logging.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open loads the progress document from the slot and returns a ready store.
// A missing or invalid document is replaced by an empty one.
func Open(ctx context.Context, s slot.Slot, opts ...Option) (*Store, error) {
	if s == nil {
		return nil, errors.New("progress slot is required")
	}
	store := &Store{
		slot:   s,
		key:    DefaultSlotKey,
		logger: logging.Nop(),
		subs:   map[uint64]*subscription{},
	}
	for _, opt := range opts {
		opt(store)
	}
	store.logger = store.logger.With(logging.F("component", "progress"))
	store.doc, store.loadStatus = loadDocument(ctx, s, store.key, store.logger)
	store.logger.Debug("progress_loaded",
		logging.F("slot", store.key),
		logging.F("backend", s.Backend()),
		logging.F("status", store.loadStatus),
		logging.F("pages", len(store.doc)),
	)
	return store, nil
}

// InitializeList makes sure list exists on page with length unchecked items.
// An existing list is left exactly as it is, whatever its length.
func (s *Store) InitializeList(ctx context.Context, page PageKey, list string, length int) (SaveResult, error) {
	if err := page.Validate(); err != nil {
		return SaveResult{}, err
	}
	if length < 0 {
		return SaveResult{}, fmt.Errorf("initialize %s list %q with length %d: %w", page, list, length, ErrInvalidLength)
	}
	s.mu.Lock()
	state := s.pageLocked(page)
	if _, ok := state.Lists[list]; !ok {
		state.Lists[list] = make(ListState, length)
	}
	s.mu.Unlock()
	return s.commit(ctx), nil
}

func (s *Store) GetListItem(page PageKey, list string, index int) (bool, error) {
	if err := page.Validate(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.listLocked(page, list, index)
	if err != nil {
		return false, err
	}
	return items[index], nil
}

func (s *Store) SetListItem(ctx context.Context, page PageKey, list string, index int, value bool) (SaveResult, error) {
	if err := page.Validate(); err != nil {
		return SaveResult{}, err
	}
	s.mu.Lock()
	items, err := s.listLocked(page, list, index)
	if err != nil {
		s.mu.Unlock()
		return SaveResult{}, err
	}
	items[index] = value
	s.mu.Unlock()
	return s.commit(ctx), nil
}

// ResetProgress unchecks every item on page. Lists keep their names and
// lengths.
func (s *Store) ResetProgress(ctx context.Context, page PageKey) (SaveResult, error) {
	if err := page.Validate(); err != nil {
		return SaveResult{}, err
	}
	s.mu.Lock()
	state := s.pageLocked(page)
	for name, items := range state.Lists {
		state.Lists[name] = make(ListState, len(items))
	}
	s.mu.Unlock()
	return s.commit(ctx), nil
}

// HasAnyProgress reports whether any item in any list on page is checked.
// Pages without recorded state have no progress.
func (s *Store) HasAnyProgress(page PageKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc[page].AnyProgress()
}

func (s *Store) Counts(page PageKey) (done, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc[page].Counts()
}

// ListLength returns the initialized length of list on page.
func (s *Store) ListLength(page PageKey, list string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.doc[page]
	if state == nil {
		return 0, false
	}
	items, ok := state.Lists[list]
	return len(items), ok
}

// Snapshot returns a deep copy of the progress document.
func (s *Store) Snapshot() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

func (s *Store) Pages() []PageKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PageKey, 0, len(s.doc))
	for key := range s.doc {
		out = append(out, key)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *Store) LoadStatus() LoadStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadStatus
}

func (s *Store) LastSave() SaveResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSave
}

// commit writes the document to the slot and then notifies subscribers.
// Neither lock is held while subscribers run.
func (s *Store) commit(ctx context.Context) SaveResult {
	s.saveMu.Lock()
	s.mu.Lock()
	raw, err := json.Marshal(s.doc)
	wasDegraded := s.lastSave.Degraded()
	s.mu.Unlock()

	var result SaveResult
	if err != nil {
		result = SaveResult{Status: SaveDegraded, Err: err}
	} else {
		result = saveDocument(ctx, s.slot, s.key, raw)
	}

	s.mu.Lock()
	s.lastSave = result
	s.mu.Unlock()
	s.saveMu.Unlock()

	switch {
	case result.Degraded() && !wasDegraded:
		s.logger.Warn("progress_save_degraded", logging.F("slot", s.key), logging.Err(result.Err))
	case result.Degraded():
		s.logger.Debug("progress_save_still_failing", logging.F("slot", s.key), logging.Err(result.Err))
	case wasDegraded:
		s.logger.Info("progress_save_recovered", logging.F("slot", s.key))
	}

	s.notifySubscribers()
	return result
}

func (s *Store) pageLocked(page PageKey) *PageState {
	state := s.doc[page]
	if state == nil {
		state = newPageState()
		s.doc[page] = state
	}
	return state
}

func (s *Store) listLocked(page PageKey, list string, index int) (ListState, error) {
	state := s.doc[page]
	if state == nil {
		return nil, fmt.Errorf("%s list %q: %w", page, list, ErrListNotFound)
	}
	items, ok := state.Lists[list]
	if !ok {
		return nil, fmt.Errorf("%s list %q: %w", page, list, ErrListNotFound)
	}
	if index < 0 || index >= len(items) {
		return nil, fmt.Errorf("%s list %q index %d of %d: %w", page, list, index, len(items), ErrIndexOutOfRange)
	}
	return items, nil
}
