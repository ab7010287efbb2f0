package progress

import "context"

// Page binds a Store to one page key. Host UI elements receive a Page so
// they never have to know where their page key came from.
type Page struct {
	store *Store
	key   PageKey
}

func (s *Store) Page(key PageKey) (*Page, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	return &Page{store: s, key: key}, nil
}

func (p *Page) Key() PageKey {
	return p.key
}

func (p *Page) InitializeList(ctx context.Context, list string, length int) (SaveResult, error) {
	return p.store.InitializeList(ctx, p.key, list, length)
}

func (p *Page) GetListItem(list string, index int) (bool, error) {
	return p.store.GetListItem(p.key, list, index)
}

func (p *Page) SetListItem(ctx context.Context, list string, index int, value bool) (SaveResult, error) {
	return p.store.SetListItem(ctx, p.key, list, index, value)
}

func (p *Page) ResetProgress(ctx context.Context) (SaveResult, error) {
	return p.store.ResetProgress(ctx, p.key)
}

func (p *Page) SubscribeAnyProgress(callback func(hasAnyProgress bool)) (func(), error) {
	return p.store.SubscribeAnyProgress(p.key, callback)
}

func (p *Page) HasAnyProgress() bool {
	return p.store.HasAnyProgress(p.key)
}

func (p *Page) Counts() (done, total int) {
	return p.store.Counts(p.key)
}
