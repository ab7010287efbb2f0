package progress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"guideprogress/internal/logging"
	"guideprogress/internal/slot"
)

const DefaultSlotKey = "ethereum-node-progress"

type SaveStatus int

const (
	// SavePersisted means the slot now holds the in-memory document.
	SavePersisted SaveStatus = iota
	// SaveDegraded means the slot write failed and progress lives only in
	// memory until a later save succeeds.
	SaveDegraded
)

func (s SaveStatus) String() string {
	switch s {
	case SavePersisted:
		return "persisted"
	case SaveDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

type SaveResult struct {
	Status SaveStatus
	Err    error
}

func (r SaveResult) Degraded() bool {
	return r.Status == SaveDegraded
}

type LoadStatus int

const (
	LoadEmpty LoadStatus = iota
	LoadRestored
	LoadDiscarded
)

func (s LoadStatus) String() string {
	switch s {
	case LoadEmpty:
		return "empty"
	case LoadRestored:
		return "restored"
	case LoadDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// loadDocument never fails: an unreadable or invalid slot yields an empty
// document and LoadDiscarded.
func loadDocument(ctx context.Context, s slot.Slot, key string, logger logging.Logger) (Document, LoadStatus) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		logger.Warn("progress_slot_unreadable", logging.F("slot", key), logging.Err(err))
		return Document{}, LoadDiscarded
	}
	if !ok || len(bytes.TrimSpace(raw)) == 0 {
		return Document{}, LoadEmpty
	}
	doc, err := DecodeDocument(raw)
	if err != nil {
		logger.Warn("progress_document_discarded", logging.F("slot", key), logging.Err(err))
		return Document{}, LoadDiscarded
	}
	return doc, LoadRestored
}

func saveDocument(ctx context.Context, s slot.Slot, key string, raw []byte) SaveResult {
	if err := s.Set(ctx, key, raw); err != nil {
		return SaveResult{Status: SaveDegraded, Err: err}
	}
	return SaveResult{Status: SavePersisted}
}

// DecodeDocument parses a serialized progress document and applies the
// structural check. Nothing from an invalid document is kept.
func DecodeDocument(raw []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode progress document: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("validate progress document: %w", err)
	}
	return doc, nil
}
