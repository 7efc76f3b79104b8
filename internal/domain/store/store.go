// Package store owns the employee collection and the view state derived
// from it. Every mutation updates memory, persists, then notifies
// subscribers before returning.
package store

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"emprec/internal/domain/employee"
	"emprec/internal/platform/i18n"
	"emprec/internal/platform/metrics"
	"emprec/internal/platform/storage"
)

// MaxNotifyDepth bounds listener-triggered mutations nested inside a
// notification pass. Passes deeper than this are skipped.
const MaxNotifyDepth = 16

// Snapshot is a copy of the store state. It shares nothing with the store.
type Snapshot struct {
	Records    []employee.Employee
	SearchTerm string
	Page       int
	PageSize   int
	ViewMode   ViewMode
	Language   i18n.Language
	SelectedID string
	// Selected is the record SelectedID refers to, nil when unset or gone.
	Selected *employee.Employee
}

type Listener func(Snapshot)

type subscription struct {
	id uint64
	fn Listener
}

type Store struct {
	mu              sync.Mutex
	records         []employee.Employee
	search          string
	page            int
	pageSize        int
	defaultPageSize int
	viewMode        ViewMode
	language        i18n.Language
	selectedID      string
	lastStamp       time.Time

	backend storage.Storage
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
	metrics *metrics.Collector

	subMu   sync.Mutex
	subs    []subscription
	nextSub uint64
	depth   int
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithDefaultLanguage sets the language used when none is persisted.
func WithDefaultLanguage(lang i18n.Language) Option {
	return func(s *Store) {
		if lang.Valid() {
			s.language = lang
		}
	}
}

// WithPageSize sets the initial page size and the value ResetAll restores.
// Sizes outside PageSizes are ignored.
func WithPageSize(n int) Option {
	return func(s *Store) {
		if ValidPageSize(n) {
			s.defaultPageSize = n
			s.pageSize = n
		}
	}
}

func WithMetrics(c *metrics.Collector) Option {
	return func(s *Store) {
		if c != nil {
			s.metrics = c
		}
	}
}

// New builds a store and loads any collection and language persisted in
// backend. A nil backend keeps everything in memory.
func New(backend storage.Storage, opts ...Option) *Store {
	if backend == nil {
		backend = storage.NewMemory()
	}
	s := &Store{
		page:            1,
		pageSize:        DefaultPageSize,
		defaultPageSize: DefaultPageSize,
		viewMode:        ViewList,
		language:        i18n.English,
		backend:         backend,
		logger:          slog.Default(),
		now:             time.Now,
		newID:           newRecordID,
		metrics:         metrics.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load()
	return s
}

// newRecordID returns a UUIDv7: a millisecond timestamp followed by random
// bits, so ids sort by creation time.
func newRecordID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// stamp returns the current time at millisecond precision, strictly after
// every stamp handed out before. Callers hold s.mu.
func (s *Store) stamp() time.Time {
	now := s.now().UTC().Truncate(time.Millisecond)
	if !now.After(s.lastStamp) {
		now = s.lastStamp.Add(time.Millisecond)
	}
	s.lastStamp = now
	return now
}

func (s *Store) indexLocked(id string) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) AddRecord(fields employee.Fields) employee.Employee {
	rec := employee.Employee{ID: s.newID()}
	fields.Patch().Apply(&rec)

	s.mu.Lock()
	now := s.stamp()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	s.records = append(s.records, rec)
	s.persistRecordsLocked()
	s.mu.Unlock()

	s.changed()
	return rec
}

// UpdateRecord merges patch into the record with id. It reports false and
// leaves the collection untouched when id is unknown.
func (s *Store) UpdateRecord(id string, patch employee.Patch) (employee.Employee, bool) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return employee.Employee{}, false
	}
	rec := s.records[i]
	patch.Apply(&rec)
	rec.UpdatedAt = s.stamp()
	s.records[i] = rec
	s.persistRecordsLocked()
	s.mu.Unlock()

	s.changed()
	return rec, true
}

func (s *Store) DeleteRecord(id string) (employee.Employee, bool) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return employee.Employee{}, false
	}
	removed := s.records[i]
	s.records = append(s.records[:i:i], s.records[i+1:]...)
	if s.selectedID == id {
		s.selectedID = ""
	}
	s.persistRecordsLocked()
	s.mu.Unlock()

	s.changed()
	return removed, true
}

func (s *Store) GetRecord(id string) (employee.Employee, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return employee.Employee{}, false
	}
	return s.records[i], true
}

// ListRecords returns a copy of the collection in insertion order.
func (s *Store) ListRecords() []employee.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]employee.Employee{}, s.records...)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// SetSearchTerm replaces the filter and moves back to page 1.
func (s *Store) SetSearchTerm(term string) {
	s.mu.Lock()
	s.search = term
	s.page = 1
	s.mu.Unlock()
	s.changed()
}

// SetPage moves to page n. Pages past the last one are accepted and render
// empty; see ClampPage.
func (s *Store) SetPage(n int) error {
	if n < 1 {
		return ErrInvalidPage
	}
	s.mu.Lock()
	s.page = n
	s.mu.Unlock()
	s.changed()
	return nil
}

func (s *Store) SetPageSize(n int) error {
	if !ValidPageSize(n) {
		return ErrInvalidPageSize
	}
	s.mu.Lock()
	s.pageSize = n
	s.page = 1
	s.mu.Unlock()
	s.changed()
	return nil
}

func (s *Store) SetViewMode(mode ViewMode) error {
	if !mode.Valid() {
		return ErrInvalidViewMode
	}
	s.mu.Lock()
	s.viewMode = mode
	s.mu.Unlock()
	s.changed()
	return nil
}

// SetLanguage switches and persists the active language.
func (s *Store) SetLanguage(lang i18n.Language) error {
	if !lang.Valid() {
		return ErrInvalidLanguage
	}
	s.mu.Lock()
	s.language = lang
	s.persistLanguageLocked()
	s.mu.Unlock()
	s.changed()
	return nil
}

// SetSelectedRecord marks the record with id as the one being edited.
func (s *Store) SetSelectedRecord(id string) error {
	s.mu.Lock()
	if s.indexLocked(id) < 0 {
		s.mu.Unlock()
		return ErrRecordNotFound
	}
	s.selectedID = id
	s.mu.Unlock()
	s.changed()
	return nil
}

func (s *Store) ClearSelectedRecord() {
	s.mu.Lock()
	s.selectedID = ""
	s.mu.Unlock()
	s.changed()
}

// SelectedRecord resolves the selection against the current collection.
func (s *Store) SelectedRecord() (employee.Employee, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedID == "" {
		return employee.Employee{}, false
	}
	i := s.indexLocked(s.selectedID)
	if i < 0 {
		return employee.Employee{}, false
	}
	return s.records[i], true
}

func (s *Store) Language() i18n.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// FilteredView returns the records matching the current search term.
func (s *Store) FilteredView() []employee.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FilterRecords(s.records, s.search)
}

// PagedView returns the current page of the filtered view.
func (s *Store) PagedView() Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Paginate(FilterRecords(s.records, s.search), s.page, s.pageSize)
}

// ResetAll empties the collection and restores the view state defaults.
// The language is kept.
func (s *Store) ResetAll() {
	s.mu.Lock()
	s.records = nil
	s.search = ""
	s.page = 1
	s.pageSize = s.defaultPageSize
	s.viewMode = ViewList
	s.selectedID = ""
	s.persistRecordsLocked()
	s.mu.Unlock()
	s.changed()
}

func (s *Store) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Records:    append([]employee.Employee{}, s.records...),
		SearchTerm: s.search,
		Page:       s.page,
		PageSize:   s.pageSize,
		ViewMode:   s.viewMode,
		Language:   s.language,
		SelectedID: s.selectedID,
	}
	if s.selectedID != "" {
		if i := s.indexLocked(s.selectedID); i >= 0 {
			rec := s.records[i]
			snap.Selected = &rec
		}
	}
	return snap
}

func (s *Store) Stats() metrics.Stats {
	return s.metrics.Snapshot()
}

// Subscribe registers fn for every later change. Listeners run in
// registration order on the goroutine that made the change, outside the
// store lock, so they may call back into the store.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.subMu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) changed() {
	s.metrics.Mutation()
	s.notify()
}

// notify runs one pass over the listeners registered when it starts. Each
// listener gets a fresh snapshot, so one that runs after a nested mutation
// sees its result.
func (s *Store) notify() {
	s.subMu.Lock()
	if s.depth >= MaxNotifyDepth {
		s.subMu.Unlock()
		s.metrics.SkippedPass()
		s.logger.Warn("store notification skipped", "depth", MaxNotifyDepth)
		return
	}
	s.depth++
	subs := append([]subscription(nil), s.subs...)
	s.subMu.Unlock()

	defer func() {
		s.subMu.Lock()
		s.depth--
		s.subMu.Unlock()
	}()

	for _, sub := range subs {
		sub.fn(s.State())
		s.metrics.Notified()
	}
}
