package progress

import (
	"errors"
	"sort"
	"sync"
)

type subscription struct {
	id       uint64
	page     PageKey
	callback func(hasAnyProgress bool)
}

// SubscribeAnyProgress registers callback for page and calls it right away
// with the page's current value. The page is fixed for the life of the
// subscription. The returned function removes the subscription and is safe
// to call any number of times.
//
// Every change to the store re-evaluates every subscription, including
// those pinned to pages other than the one that changed.
func (s *Store) SubscribeAnyProgress(page PageKey, callback func(hasAnyProgress bool)) (func(), error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	if callback == nil {
		return nil, errors.New("progress callback is required")
	}
	s.mu.Lock()
	s.nextSub++
	sub := &subscription{id: s.nextSub, page: page, callback: callback}
	s.subs[sub.id] = sub
	s.mu.Unlock()

	callback(s.HasAnyProgress(page))

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, sub.id)
			s.mu.Unlock()
		})
	}, nil
}

// Subscribers reports the number of live subscriptions.
func (s *Store) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// notifySubscribers calls each subscription with a freshly computed value.
// Callbacks may mutate the store; the nested change finishes its own
// notification pass before this one continues, so every subscriber ends up
// having seen the settled state.
func (s *Store) notifySubscribers() {
	s.mu.Lock()
	subs := make([]*subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()
	sort.Slice(subs, func(i, j int) bool { return subs[i].id < subs[j].id })

	for _, sub := range subs {
		value, live := s.valueFor(sub)
		if !live {
			continue
		}
		sub.callback(value)
	}
}

func (s *Store) valueFor(sub *subscription) (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subs[sub.id]; !ok {
		return false, false
	}
	return s.doc[sub.page].AnyProgress(), true
}
