package progress

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrInvalidPageKey  = errors.New("invalid page key")
	ErrInvalidLength   = errors.New("list length must not be negative")
	ErrListNotFound    = errors.New("list not initialized")
	ErrIndexOutOfRange = errors.New("list index out of range")
)

// ListState holds one checkbox per item. Its length is fixed once the list
// has been initialized.
type ListState []bool

func (l ListState) Any() bool {
	for _, checked := range l {
		if checked {
			return true
		}
	}
	return false
}

func (l ListState) Done() int {
	done := 0
	for _, checked := range l {
		if checked {
			done++
		}
	}
	return done
}

type PageState struct {
	Lists map[string]ListState `json:"lists"`
}

// UnmarshalJSON requires the exact "lists" key. encoding/json would otherwise
// accept any casing of the field name.
func (p *PageState) UnmarshalJSON(raw []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return err
	}
	lists, ok := fields["lists"]
	if !ok {
		return errors.New("page has no lists field")
	}
	var decoded map[string]ListState
	if err := json.Unmarshal(lists, &decoded); err != nil {
		return err
	}
	p.Lists = decoded
	return nil
}

func newPageState() *PageState {
	return &PageState{Lists: map[string]ListState{}}
}

func (p *PageState) AnyProgress() bool {
	if p == nil {
		return false
	}
	for _, list := range p.Lists {
		if list.Any() {
			return true
		}
	}
	return false
}

// Counts returns checked and total items across all lists on the page.
func (p *PageState) Counts() (done, total int) {
	if p == nil {
		return 0, 0
	}
	for _, list := range p.Lists {
		done += list.Done()
		total += len(list)
	}
	return done, total
}

func (p *PageState) clone() *PageState {
	out := newPageState()
	if p == nil {
		return out
	}
	for name, list := range p.Lists {
		out.Lists[name] = append(ListState{}, list...)
	}
	return out
}

// Document is the whole persisted progress state, keyed by page.
type Document map[PageKey]*PageState

func (d Document) Clone() Document {
	out := make(Document, len(d))
	for key, page := range d {
		out[key] = page.clone()
	}
	return out
}

// Validate reports whether every page carries a lists mapping. A document
// that fails is discarded whole on load.
func (d Document) Validate() error {
	if d == nil {
		return errors.New("document is null")
	}
	for key, page := range d {
		if page == nil || page.Lists == nil {
			return fmt.Errorf("page %q has no lists", key)
		}
		for name, list := range page.Lists {
			if list == nil {
				return fmt.Errorf("page %q list %q is null", key, name)
			}
		}
	}
	return nil
}
