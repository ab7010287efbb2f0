package progress

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"guideprogress/internal/slot"
)

const (
	pageOne PageKey = "/guides/one"
	pageTwo PageKey = "/guides/two"
)

func openStore(t *testing.T, s slot.Slot) *Store {
	t.Helper()
	store, err := Open(context.Background(), s)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return store
}

func mustSave(t *testing.T) func(SaveResult, error) SaveResult {
	return func(result SaveResult, err error) SaveResult {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return result
	}
}

func mustGet(t *testing.T, store *Store, page PageKey, list string, index int) bool {
	t.Helper()
	value, err := store.GetListItem(page, list, index)
	if err != nil {
		t.Fatalf("GetListItem(%s, %q, %d): %v", page, list, index, err)
	}
	return value
}

func TestInitializeListCreatesUncheckedItems(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, slot.NewMemorySlot())

	result := mustSave(t)(store.InitializeList(ctx, pageOne, "prereqs", 3))
	if result.Status != SavePersisted {
		t.Fatalf("expected persisted save, got %v", result.Status)
	}
	for i := 0; i < 3; i++ {
		if mustGet(t, store, pageOne, "prereqs", i) {
			t.Fatalf("item %d should start unchecked", i)
		}
	}
	if n, ok := store.ListLength(pageOne, "prereqs"); !ok || n != 3 {
		t.Fatalf("unexpected length %d ok=%v", n, ok)
	}
}

func TestInitializeListIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, slot.NewMemorySlot())

	mustSave(t)(store.InitializeList(ctx, pageOne, "A", 3))
	mustSave(t)(store.SetListItem(ctx, pageOne, "A", 1, true))

	for _, length := range []int{3, 5, 0} {
		mustSave(t)(store.InitializeList(ctx, pageOne, "A", length))
		if !mustGet(t, store, pageOne, "A", 1) {
			t.Fatalf("re-initialize with length %d reset item", length)
		}
		if n, _ := store.ListLength(pageOne, "A"); n != 3 {
			t.Fatalf("re-initialize with length %d changed length to %d", length, n)
		}
	}
}

func TestInitializeListZeroLengthIsKept(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, slot.NewMemorySlot())

	mustSave(t)(store.InitializeList(ctx, pageOne, "empty", 0))
	mustSave(t)(store.InitializeList(ctx, pageOne, "empty", 4))
	if n, ok := store.ListLength(pageOne, "empty"); !ok || n != 0 {
		t.Fatalf("expected zero-length list to survive, got %d ok=%v", n, ok)
	}
}

func TestInitializeListRejectsNegativeLength(t *testing.T) {
	store := openStore(t, slot.NewMemorySlot())
	_, err := store.InitializeList(context.Background(), pageOne, "A", -1)
	if !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("expected ErrInvalidLength, got %v", err)
	}
	if len(store.Pages()) != 0 {
		t.Fatalf("rejected call must not create page state")
	}
}

func TestItemAccessPreconditions(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, slot.NewMemorySlot())
	mustSave(t)(store.InitializeList(ctx, pageOne, "A", 2))

	cases := []struct {
		name  string
		page  PageKey
		list  string
		index int
		want  error
	}{
		{"unknown page", pageTwo, "A", 0, ErrListNotFound},
		{"unknown list", pageOne, "B", 0, ErrListNotFound},
		{"index past end", pageOne, "A", 2, ErrIndexOutOfRange},
		{"negative index", pageOne, "A", -1, ErrIndexOutOfRange},
		{"bad page key", "guides/one", "A", 0, ErrInvalidPageKey},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := store.GetListItem(tc.page, tc.list, tc.index); !errors.Is(err, tc.want) {
				t.Fatalf("get: expected %v, got %v", tc.want, err)
			}
			if _, err := store.SetListItem(ctx, tc.page, tc.list, tc.index, true); !errors.Is(err, tc.want) {
				t.Fatalf("set: expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestResetPreservesShape(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, slot.NewMemorySlot())

	mustSave(t)(store.InitializeList(ctx, pageOne, "A", 3))
	mustSave(t)(store.SetListItem(ctx, pageOne, "A", 0, true))
	mustSave(t)(store.SetListItem(ctx, pageOne, "A", 2, true))
	mustSave(t)(store.ResetProgress(ctx, pageOne))

	if mustGet(t, store, pageOne, "A", 0) || mustGet(t, store, pageOne, "A", 2) {
		t.Fatalf("reset left checked items")
	}
	if n, _ := store.ListLength(pageOne, "A"); n != 3 {
		t.Fatalf("reset changed length to %d", n)
	}
}

func TestResetOnlyTouchesOnePage(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, slot.NewMemorySlot())

	mustSave(t)(store.InitializeList(ctx, pageOne, "A", 1))
	mustSave(t)(store.InitializeList(ctx, pageTwo, "A", 1))
	mustSave(t)(store.SetListItem(ctx, pageOne, "A", 0, true))
	mustSave(t)(store.SetListItem(ctx, pageTwo, "A", 0, true))
	mustSave(t)(store.ResetProgress(ctx, pageOne))

	if mustGet(t, store, pageOne, "A", 0) {
		t.Fatalf("page one not reset")
	}
	if !mustGet(t, store, pageTwo, "A", 0) {
		t.Fatalf("page two should keep its progress")
	}
}

func TestPageIsolation(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, slot.NewMemorySlot())

	mustSave(t)(store.InitializeList(ctx, pageOne, "A", 2))
	mustSave(t)(store.SetListItem(ctx, pageOne, "A", 0, true))

	if _, err := store.GetListItem(pageTwo, "A", 0); !errors.Is(err, ErrListNotFound) {
		t.Fatalf("page two must not see page one's list, got %v", err)
	}

	mustSave(t)(store.InitializeList(ctx, pageTwo, "A", 2))
	if mustGet(t, store, pageTwo, "A", 0) {
		t.Fatalf("page two list must start unchecked")
	}
	mustSave(t)(store.SetListItem(ctx, pageTwo, "A", 1, true))
	if mustGet(t, store, pageOne, "A", 1) {
		t.Fatalf("page two write leaked into page one")
	}
}

func TestRoundTripThroughSlot(t *testing.T) {
	ctx := context.Background()
	backing := slot.NewMemorySlot()
	store := openStore(t, backing)

	mustSave(t)(store.InitializeList(ctx, pageOne, "A", 3))
	mustSave(t)(store.InitializeList(ctx, pageOne, "B", 2))
	mustSave(t)(store.InitializeList(ctx, pageTwo, "A", 1))
	mustSave(t)(store.SetListItem(ctx, pageOne, "A", 2, true))
	mustSave(t)(store.SetListItem(ctx, pageOne, "B", 0, true))
	mustSave(t)(store.SetListItem(ctx, pageOne, "B", 0, false))
	mustSave(t)(store.SetListItem(ctx, pageOne, "B", 1, true))
	mustSave(t)(store.SetListItem(ctx, pageTwo, "A", 0, true))

	reloaded := openStore(t, backing)
	if reloaded.LoadStatus() != LoadRestored {
		t.Fatalf("expected restored load, got %v", reloaded.LoadStatus())
	}
	if !reflect.DeepEqual(reloaded.Snapshot(), store.Snapshot()) {
		t.Fatalf("reloaded document differs:\n got=%#v\nwant=%#v", reloaded.Snapshot(), store.Snapshot())
	}
	if !mustGet(t, reloaded, pageOne, "A", 2) || mustGet(t, reloaded, pageOne, "B", 0) {
		t.Fatalf("unexpected reloaded item states")
	}
}

func TestRoundTripThroughBbolt(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "progress.db")
	first, err := slot.NewBboltSlot(path)
	if err != nil {
		t.Fatalf("NewBboltSlot: %v", err)
	}
	store := openStore(t, first)
	mustSave(t)(store.InitializeList(ctx, pageOne, "A", 2))
	mustSave(t)(store.SetListItem(ctx, pageOne, "A", 1, true))
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := slot.NewBboltSlot(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	reloaded := openStore(t, second)
	if !mustGet(t, reloaded, pageOne, "A", 1) {
		t.Fatalf("expected checked item after reopen")
	}
}

func TestInvalidDocumentFallsBackToEmpty(t *testing.T) {
	cases := map[string]string{
		"not json":          `not json at all`,
		"truncated":         `{"/guides/one": {"lists": {"A": [true`,
		"missing lists":     `{"/guides/one": {"items": {}}}`,
		"null lists":        `{"/guides/one": {"lists": null}}`,
		"null page":         `{"/guides/one": null}`,
		"one bad page":      `{"/guides/one": {"lists": {"A": [true]}}, "/guides/two": {}}`,
		"lists wrong type":  `{"/guides/one": {"lists": "yes"}}`,
		"array document":    `[1, 2, 3]`,
		"null document":     `null`,
		"null list":         `{"/guides/one": {"lists": {"A": null}}}`,
		"items wrong type":  `{"/guides/one": {"lists": {"A": ["x"]}}}`,
		"page value scalar": `{"/guides/one": 7}`,
		"upper case lists":  `{"/guides/one": {"LISTS": {"A": [true]}}}`,
		"title case lists":  `{"/guides/one": {"Lists": {"A": [true]}}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			backing := slot.NewMemorySlot()
			if err := backing.Set(ctx, DefaultSlotKey, []byte(raw)); err != nil {
				t.Fatalf("seed: %v", err)
			}
			store, err := Open(ctx, backing)
			if err != nil {
				t.Fatalf("Open must not fail on bad data: %v", err)
			}
			if store.LoadStatus() != LoadDiscarded {
				t.Fatalf("expected discarded load, got %v", store.LoadStatus())
			}
			if len(store.Snapshot()) != 0 {
				t.Fatalf("expected empty document, got %#v", store.Snapshot())
			}
			if store.HasAnyProgress(pageOne) {
				t.Fatalf("no partial state may be adopted")
			}
		})
	}
}

func TestEmptySlotValueLoadsEmpty(t *testing.T) {
	ctx := context.Background()
	backing := slot.NewMemorySlot()
	if err := backing.Set(ctx, DefaultSlotKey, []byte("  ")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store := openStore(t, backing)
	if store.LoadStatus() != LoadEmpty {
		t.Fatalf("expected empty load, got %v", store.LoadStatus())
	}
}

func TestValidDocumentIsAdoptedVerbatim(t *testing.T) {
	ctx := context.Background()
	backing := slot.NewMemorySlot()
	raw := `{"/guides/one":{"lists":{"A":[false,true],"B":[]}},"/reference/x/":{"lists":{}}}`
	if err := backing.Set(ctx, DefaultSlotKey, []byte(raw)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store := openStore(t, backing)

	want := Document{
		"/guides/one":   {Lists: map[string]ListState{"A": {false, true}, "B": {}}},
		"/reference/x/": {Lists: map[string]ListState{}},
	}
	if !reflect.DeepEqual(store.Snapshot(), want) {
		t.Fatalf("unexpected document %#v", store.Snapshot())
	}
}

func TestSlotKeyOption(t *testing.T) {
	ctx := context.Background()
	backing := slot.NewMemorySlot()
	store, err := Open(ctx, backing, WithSlotKey("other-site-progress"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	mustSave(t)(store.InitializeList(ctx, pageOne, "A", 1))
	if _, ok, _ := backing.Get(ctx, "other-site-progress"); !ok {
		t.Fatalf("expected document under custom slot key")
	}
	if _, ok, _ := backing.Get(ctx, DefaultSlotKey); ok {
		t.Fatalf("default slot key must stay untouched")
	}
}

func TestSilentPersistenceFailure(t *testing.T) {
	ctx := context.Background()
	backing := slot.NewMemorySlot()
	backing.FailWrites(slot.ErrWriteRejected)
	store := openStore(t, backing)

	var seen []bool
	unsubscribe, err := store.SubscribeAnyProgress(pageOne, func(v bool) { seen = append(seen, v) })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer unsubscribe()

	result, err := store.InitializeList(ctx, pageOne, "A", 3)
	if err != nil {
		t.Fatalf("failed slot write must not surface as an error: %v", err)
	}
	if !result.Degraded() || !errors.Is(result.Err, slot.ErrWriteRejected) {
		t.Fatalf("expected degraded result carrying the write error, got %+v", result)
	}
	mustSave(t)(store.SetListItem(ctx, pageOne, "A", 1, true))
	if !mustGet(t, store, pageOne, "A", 1) || mustGet(t, store, pageOne, "A", 0) {
		t.Fatalf("in-memory state must stay consistent")
	}
	mustSave(t)(store.ResetProgress(ctx, pageOne))
	if mustGet(t, store, pageOne, "A", 1) {
		t.Fatalf("reset must still apply in memory")
	}
	if !store.LastSave().Degraded() {
		t.Fatalf("expected LastSave to report degraded")
	}
	if want := []bool{false, false, true, false}; !reflect.DeepEqual(seen, want) {
		t.Fatalf("subscribers must still be notified: got %v want %v", seen, want)
	}
	if _, ok, _ := backing.Get(ctx, DefaultSlotKey); ok {
		t.Fatalf("nothing should have been written")
	}

	backing.FailWrites(nil)
	result = mustSave(t)(store.SetListItem(ctx, pageOne, "A", 2, true))
	if result.Degraded() {
		t.Fatalf("expected recovery once the slot accepts writes")
	}
	reloaded := openStore(t, backing)
	if !mustGet(t, reloaded, pageOne, "A", 2) {
		t.Fatalf("recovered save should carry the full document")
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, slot.NewMemorySlot())
	mustSave(t)(store.InitializeList(ctx, pageOne, "A", 1))

	snap := store.Snapshot()
	snap[pageOne].Lists["A"][0] = true
	if mustGet(t, store, pageOne, "A", 0) {
		t.Fatalf("mutating a snapshot must not change the store")
	}
}

func TestCountsAndPages(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, slot.NewMemorySlot())
	mustSave(t)(store.InitializeList(ctx, pageTwo, "A", 2))
	mustSave(t)(store.InitializeList(ctx, pageOne, "A", 3))
	mustSave(t)(store.InitializeList(ctx, pageOne, "B", 1))
	mustSave(t)(store.SetListItem(ctx, pageOne, "A", 0, true))
	mustSave(t)(store.SetListItem(ctx, pageOne, "B", 0, true))

	if done, total := store.Counts(pageOne); done != 2 || total != 4 {
		t.Fatalf("unexpected counts %d/%d", done, total)
	}
	if done, total := store.Counts("/missing"); done != 0 || total != 0 {
		t.Fatalf("unexpected counts for missing page %d/%d", done, total)
	}
	if got := store.Pages(); !reflect.DeepEqual(got, []PageKey{pageOne, pageTwo}) {
		t.Fatalf("unexpected pages %v", got)
	}
}

func TestOpenRequiresSlot(t *testing.T) {
	if _, err := Open(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil slot")
	}
}
