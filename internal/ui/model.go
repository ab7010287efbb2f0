// Package ui is the terminal host for guide checklists. It shows one page at a
// time, toggles items through a page-scoped progress handle and keeps an
// indicator in sync with the page's any-progress signal.
package ui

import (
	"context"
	"encoding/json"
	"errors"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"

	"guideprogress/internal/guide"
	"guideprogress/internal/logging"
	"guideprogress/internal/progress"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	readerChrome  = 4
)

// Store is the part of the progress store the host needs.
type Store interface {
	Page(key progress.PageKey) (*progress.Page, error)
	Snapshot() progress.Document
}

type viewMode int

const (
	modeChecklist viewMode = iota
	modeReader
	modeConfirmReset
)

type row struct {
	list  string
	index int
	label string
}

type Model struct {
	ctx     context.Context
	store   Store
	catalog *guide.Catalog
	logger  logging.Logger

	pageIndex   int
	page        *progress.Page
	rows        []row
	cursor      int
	hasProgress bool
	unsubscribe func()

	mode   viewMode
	reader viewport.Model
	width  int
	height int

	status      string
	statusError bool
	degraded    bool

	changes <-chan struct{}
	reload  func() (*guide.Catalog, error)
}

type Option func(*Model)

// WithCatalogReload reloads the catalog each time changes fires. The active
// page stays selected when it still exists.
func WithCatalogReload(changes <-chan struct{}, reload func() (*guide.Catalog, error)) Option {
	return func(m *Model) {
		if changes != nil && reload != nil {
			m.changes = changes
			m.reload = reload
		}
	}
}

type catalogReloadedMsg struct {
	catalog *guide.Catalog
	err     error
}

func NewModel(ctx context.Context, store Store, catalog *guide.Catalog, logger logging.Logger, opts ...Option) (*Model, error) {
	if store == nil {
		return nil, errors.New("progress store is required")
	}
	if catalog == nil || len(catalog.Pages) == 0 {
		return nil, guide.ErrNoPages
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	m := &Model{
		ctx:     ctx,
		store:   store,
		catalog: catalog,
		logger:  logger.With(logging.F("component", "ui")),
		width:   defaultWidth,
		height:  defaultHeight,
		reader:  viewport.New(viewport.WithWidth(defaultWidth), viewport.WithHeight(defaultHeight-readerChrome)),
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.activatePage(0); err != nil {
		return nil, err
	}
	return m, nil
}

// Run drives the host until the user quits or ctx is done.
func Run(ctx context.Context, store Store, catalog *guide.Catalog, logger logging.Logger, opts ...Option) error {
	model, err := NewModel(ctx, store, catalog, logger, opts...)
	if err != nil {
		return err
	}
	defer model.Close()
	p := tea.NewProgram(model, tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

// Close drops the active page subscription.
func (m *Model) Close() {
	if m == nil {
		return
	}
	m.detach()
}

func (m *Model) Init() tea.Cmd {
	return m.waitForCatalogChange()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyPressMsg:
		return m.handleKey(msg)
	case catalogReloadedMsg:
		m.applyCatalog(msg.catalog, msg.err)
		return m, m.waitForCatalogChange()
	}
	if m.mode == modeReader {
		var cmd tea.Cmd
		m.reader, cmd = m.reader.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m *Model) activePage() *guide.Page {
	return m.catalog.Pages[m.pageIndex]
}

func (m *Model) activatePage(index int) error {
	count := len(m.catalog.Pages)
	index = ((index % count) + count) % count
	target := m.catalog.Pages[index]
	page, err := m.store.Page(target.Key)
	if err != nil {
		return err
	}
	for _, list := range target.Checklists {
		result, err := page.InitializeList(m.ctx, list.Name, len(list.Items))
		if err != nil {
			return err
		}
		m.noteSave(result)
	}
	// The current subscription is dropped only once the new one is live.
	unsubscribe, err := page.SubscribeAnyProgress(func(hasAnyProgress bool) {
		m.hasProgress = hasAnyProgress
	})
	if err != nil {
		return err
	}
	m.detach()
	m.unsubscribe = unsubscribe
	m.pageIndex = index
	m.page = page
	m.rows = rowsFor(target)
	m.cursor = 0
	m.reader.SetContent(renderMarkdown(target.Body, m.reader.Width()))
	m.reader.GotoTop()
	m.logger.Debug("page_activated",
		logging.F("page", target.Key),
		logging.F("lists", len(target.Checklists)),
	)
	return nil
}

func (m *Model) waitForCatalogChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	changes := m.changes
	reload := m.reload
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		catalog, err := reload()
		return catalogReloadedMsg{catalog: catalog, err: err}
	}
}

// applyCatalog swaps in a reloaded catalog. A failed reload keeps the current
// one.
func (m *Model) applyCatalog(catalog *guide.Catalog, err error) {
	if err == nil && (catalog == nil || len(catalog.Pages) == 0) {
		err = guide.ErrNoPages
	}
	if err != nil {
		m.setError(err)
		return
	}
	current := m.activePage().Key
	cursor := m.cursor
	index := 0
	for i, page := range catalog.Pages {
		if page.Key == current {
			index = i
			break
		}
	}
	previous := m.catalog
	m.catalog = catalog
	if err := m.activatePage(index); err != nil {
		m.catalog = previous
		m.setError(err)
		return
	}
	if m.activePage().Key == current && cursor < len(m.rows) {
		m.cursor = cursor
	}
	if !m.degraded {
		m.setInfo("guides reloaded")
	}
}

func (m *Model) detach() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

func rowsFor(page *guide.Page) []row {
	var rows []row
	for _, list := range page.Checklists {
		for i, item := range list.Items {
			rows = append(rows, row{list: list.Name, index: i, label: item})
		}
	}
	return rows
}

func (m *Model) resize(width, height int) {
	if width > 0 {
		m.width = width
	}
	if height > 0 {
		m.height = height
	}
	m.reader.SetWidth(m.width)
	m.reader.SetHeight(max(1, m.height-readerChrome))
	m.reader.SetContent(renderMarkdown(m.activePage().Body, m.width))
}

func (m *Model) toggle() {
	if len(m.rows) == 0 {
		return
	}
	current := m.rows[m.cursor]
	value, err := m.page.GetListItem(current.list, current.index)
	if err != nil {
		m.setError(err)
		return
	}
	result, err := m.page.SetListItem(m.ctx, current.list, current.index, !value)
	if err != nil {
		m.setError(err)
		return
	}
	m.noteSave(result)
}

func (m *Model) reset() {
	result, err := m.page.ResetProgress(m.ctx)
	if err != nil {
		m.setError(err)
		return
	}
	m.noteSave(result)
	if !result.Degraded() {
		m.setInfo("page reset")
	}
}

func (m *Model) copyProgress() {
	raw, err := json.MarshalIndent(m.store.Snapshot(), "", "  ")
	if err != nil {
		m.setError(err)
		return
	}
	method, err := copyTextToClipboard(string(raw))
	if err != nil {
		m.setStatus("copy failed: "+err.Error(), true)
		return
	}
	if method == clipboardMethodOSC52 {
		m.setInfo("progress copied (OSC52)")
		return
	}
	m.setInfo("progress copied")
}

// noteSave tracks the persistence state across saves. A degraded save keeps
// progress in memory; the status clears on the next successful write.
func (m *Model) noteSave(result progress.SaveResult) {
	if result.Degraded() {
		m.degraded = true
		m.setStatus("progress kept in memory only: "+result.Err.Error(), true)
		return
	}
	if m.degraded {
		m.degraded = false
		m.setInfo("progress saved")
	}
}

func (m *Model) setInfo(text string) {
	m.setStatus(text, false)
}

func (m *Model) setError(err error) {
	m.logger.Warn("ui_error", logging.Err(err))
	m.setStatus(err.Error(), true)
}

func (m *Model) setStatus(text string, isError bool) {
	m.status = text
	m.statusError = isError
}
