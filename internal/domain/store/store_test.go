package store

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"emprec/internal/domain/employee"
	"emprec/internal/platform/i18n"
	"emprec/internal/platform/storage"
)

var baseTime = time.Date(2025, time.June, 15, 14, 30, 0, 0, time.UTC)

func testClock() func() time.Time {
	tick := 0
	return func() time.Time {
		tick++
		return baseTime.Add(time.Duration(tick) * time.Second)
	}
}

func testIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
}

func newTestStore(t *testing.T, backend storage.Storage, opts ...Option) *Store {
	t.Helper()
	base := []Option{WithClock(testClock()), WithIDGenerator(testIDs())}
	return New(backend, append(base, opts...)...)
}

func sampleFields(i int) employee.Fields {
	return employee.Fields{
		FirstName:        fmt.Sprintf("First%02d", i),
		LastName:         fmt.Sprintf("Last%02d", i),
		Email:            fmt.Sprintf("person%02d@example.com", i),
		Phone:            "05321234567",
		DateOfBirth:      "1990-04-12",
		DateOfEmployment: "2020-01-06",
		Department:       "Tech",
		Position:         "Medior",
	}
}

func TestAddThenGet(t *testing.T) {
	s := newTestStore(t, nil)
	in := sampleFields(1)
	created := s.AddRecord(in)

	if s.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", s.Len())
	}
	got, ok := s.GetRecord(created.ID)
	if !ok {
		t.Fatal("expected record to be found")
	}
	if !reflect.DeepEqual(got, created) {
		t.Fatalf("expected %+v, got %+v", created, got)
	}
	if got.ID == "" || got.CreatedAt.IsZero() || !got.CreatedAt.Equal(got.UpdatedAt) {
		t.Fatalf("expected id and equal timestamps, got %+v", got)
	}
	if !reflect.DeepEqual(got.Fields(), in) {
		t.Fatalf("expected fields %+v, got %+v", in, got.Fields())
	}
}

func TestAddAssignsUniqueTimeOrderedIDs(t *testing.T) {
	s := New(nil)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		rec := s.AddRecord(sampleFields(i))
		if seen[rec.ID] {
			t.Fatalf("duplicate id %s", rec.ID)
		}
		seen[rec.ID] = true
		parsed, err := uuid.Parse(rec.ID)
		if err != nil {
			t.Fatalf("expected uuid, got %q: %v", rec.ID, err)
		}
		if parsed.Version() != 7 {
			t.Fatalf("expected version 7, got %d", parsed.Version())
		}
	}
}

func TestUpdatePreservesIdentity(t *testing.T) {
	s := newTestStore(t, nil)
	s.AddRecord(sampleFields(1))
	target := s.AddRecord(sampleFields(2))
	s.AddRecord(sampleFields(3))

	name := "Zeynep"
	updated, ok := s.UpdateRecord(target.ID, employee.Patch{FirstName: &name})
	if !ok {
		t.Fatal("expected update to succeed")
	}
	if updated.ID != target.ID || !updated.CreatedAt.Equal(target.CreatedAt) {
		t.Fatalf("identity changed: %+v", updated)
	}
	if !updated.UpdatedAt.After(target.UpdatedAt) {
		t.Fatalf("expected updatedAt to advance, got %v then %v", target.UpdatedAt, updated.UpdatedAt)
	}
	if updated.FirstName != "Zeynep" || updated.LastName != target.LastName {
		t.Fatalf("unexpected merge result %+v", updated)
	}
	list := s.ListRecords()
	if len(list) != 3 || list[1].ID != target.ID {
		t.Fatalf("expected position kept, got %v", ids(list))
	}
}

func TestUpdateStampStrictlyIncreasesWithFrozenClock(t *testing.T) {
	s := New(nil, WithClock(func() time.Time { return baseTime }))
	rec := s.AddRecord(sampleFields(1))
	first, _ := s.UpdateRecord(rec.ID, employee.Patch{})
	second, _ := s.UpdateRecord(rec.ID, employee.Patch{})
	if !first.UpdatedAt.After(rec.UpdatedAt) || !second.UpdatedAt.After(first.UpdatedAt) {
		t.Fatalf("expected strictly increasing stamps, got %v %v %v", rec.UpdatedAt, first.UpdatedAt, second.UpdatedAt)
	}
}

func TestUpdateMissing(t *testing.T) {
	s := newTestStore(t, nil)
	s.AddRecord(sampleFields(1))
	before := s.ListRecords()
	name := "x"
	if _, ok := s.UpdateRecord("missing", employee.Patch{FirstName: &name}); ok {
		t.Fatal("expected not found")
	}
	if !reflect.DeepEqual(before, s.ListRecords()) {
		t.Fatal("collection changed on failed update")
	}
}

func TestDeleteIsIdempotentSafe(t *testing.T) {
	s := newTestStore(t, nil)
	a := s.AddRecord(sampleFields(1))
	b := s.AddRecord(sampleFields(2))
	c := s.AddRecord(sampleFields(3))

	removed, ok := s.DeleteRecord(b.ID)
	if !ok || removed.ID != b.ID {
		t.Fatalf("expected %s removed, got %+v", b.ID, removed)
	}
	if got := ids(s.ListRecords()); !reflect.DeepEqual(got, []string{a.ID, c.ID}) {
		t.Fatalf("unexpected order %v", got)
	}
	if _, ok := s.DeleteRecord(b.ID); ok {
		t.Fatal("expected second delete to report not found")
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", s.Len())
	}
}

func TestReadsAreCopies(t *testing.T) {
	s := newTestStore(t, nil)
	rec := s.AddRecord(sampleFields(1))
	list := s.ListRecords()
	list[0].FirstName = "Mutated"
	snap := s.State()
	snap.Records[0].LastName = "Mutated"
	got, _ := s.GetRecord(rec.ID)
	if got.FirstName != rec.FirstName || got.LastName != rec.LastName {
		t.Fatalf("store state leaked: %+v", got)
	}
}

func TestSearchResetsPage(t *testing.T) {
	s := newTestStore(t, nil)
	for i := 1; i <= 25; i++ {
		s.AddRecord(sampleFields(i))
	}
	if err := s.SetPage(3); err != nil {
		t.Fatalf("set page: %v", err)
	}
	s.SetSearchTerm("first1")
	if s.State().Page != 1 {
		t.Fatalf("expected page 1, got %d", s.State().Page)
	}
	if got := len(s.FilteredView()); got != 10 {
		t.Fatalf("expected 10 matches for first1, got %d", got)
	}
	s.SetSearchTerm("")
	if got := len(s.FilteredView()); got != 25 {
		t.Fatalf("expected full collection, got %d", got)
	}
	s.SetSearchTerm("nobody-matches-this")
	if got := len(s.FilteredView()); got != 0 {
		t.Fatalf("expected no matches, got %d", got)
	}
}

func TestFilterMatchesAnyField(t *testing.T) {
	records := []employee.Employee{
		{ID: "1", FirstName: "Ayşe", LastName: "Kaya", Email: "ayse@example.com", Department: employee.DepartmentAnalytics, Position: employee.PositionSenior},
		{ID: "2", FirstName: "Mehmet", LastName: "Demir", Email: "mehmet@example.com", Department: employee.DepartmentTech, Position: employee.PositionJunior},
	}
	tests := []struct {
		term string
		want []string
	}{
		{"AYŞE", []string{"1"}},
		{"demir", []string{"2"}},
		{"EXAMPLE.COM", []string{"1", "2"}},
		{"analytics", []string{"1"}},
		{"junior", []string{"2"}},
		{"", []string{"1", "2"}},
		{"05", nil},
	}
	for _, tt := range tests {
		got := ids(FilterRecords(records, tt.term))
		if len(got) != len(tt.want) || (len(got) > 0 && !reflect.DeepEqual(got, tt.want)) {
			t.Fatalf("term %q: expected %v, got %v", tt.term, tt.want, got)
		}
	}
}

func TestPagedView(t *testing.T) {
	s := newTestStore(t, nil)
	var all []employee.Employee
	for i := 1; i <= 25; i++ {
		all = append(all, s.AddRecord(sampleFields(i)))
	}

	view := s.PagedView()
	if view.TotalPages != 3 || view.Total != 25 || len(view.Records) != 10 {
		t.Fatalf("unexpected first page %+v", summary(view))
	}

	if err := s.SetPage(2); err != nil {
		t.Fatalf("set page: %v", err)
	}
	view = s.PagedView()
	if !reflect.DeepEqual(ids(view.Records), ids(all[10:20])) {
		t.Fatalf("expected records 11-20, got %v", ids(view.Records))
	}

	if err := s.SetPageSize(5); err != nil {
		t.Fatalf("set page size: %v", err)
	}
	view = s.PagedView()
	if view.TotalPages != 5 || view.Page != 1 || s.State().Page != 1 {
		t.Fatalf("expected 5 pages on page 1, got %+v", summary(view))
	}
}

func TestPagedViewPastEndIsEmpty(t *testing.T) {
	s := newTestStore(t, nil)
	for i := 1; i <= 12; i++ {
		s.AddRecord(sampleFields(i))
	}
	if err := s.SetPage(7); err != nil {
		t.Fatalf("set page: %v", err)
	}
	view := s.PagedView()
	if !view.Empty() || view.Page != 7 || view.TotalPages != 2 {
		t.Fatalf("expected empty page 7 of 2, got %+v", summary(view))
	}
	if ClampPage(view.Page, view.TotalPages) != 2 {
		t.Fatalf("expected clamp to 2, got %d", ClampPage(view.Page, view.TotalPages))
	}
}

func TestPagedViewHugePage(t *testing.T) {
	s := newTestStore(t, nil)
	for i := 1; i <= 3; i++ {
		s.AddRecord(sampleFields(i))
	}
	huge := math.MaxInt/2 + 2
	if err := s.SetPage(huge); err != nil {
		t.Fatalf("set page: %v", err)
	}
	view := s.PagedView()
	if !view.Empty() || view.Page != huge || view.TotalPages != 1 {
		t.Fatalf("expected empty page past the end, got %+v", summary(view))
	}
	if p := Paginate(s.ListRecords(), math.MaxInt, 50); !p.Empty() {
		t.Fatalf("expected empty page for MaxInt, got %d records", len(p.Records))
	}
}

func TestPaginateHelpers(t *testing.T) {
	if p := Paginate(nil, 1, 10); p.TotalPages != 0 || len(p.Records) != 0 || p.Records == nil {
		t.Fatalf("unexpected empty pagination %+v", p)
	}
	if got := ClampPage(5, 0); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := PageWindow(1, 10, 2); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Fatalf("unexpected window %v", got)
	}
	if got := PageWindow(5, 10, 2); !reflect.DeepEqual(got, []int{3, 4, 5, 6, 7}) {
		t.Fatalf("unexpected window %v", got)
	}
	if got := PageWindow(10, 10, 2); !reflect.DeepEqual(got, []int{8, 9, 10}) {
		t.Fatalf("unexpected window %v", got)
	}
	if got := PageWindow(1, 0, 2); got != nil {
		t.Fatalf("expected no pages, got %v", got)
	}
}

func TestViewStateSettersRejectInvalid(t *testing.T) {
	s := newTestStore(t, nil)
	calls := 0
	s.Subscribe(func(Snapshot) { calls++ })

	if err := s.SetPage(0); !errors.Is(err, ErrInvalidPage) {
		t.Fatalf("expected ErrInvalidPage, got %v", err)
	}
	if err := s.SetPageSize(15); !errors.Is(err, ErrInvalidPageSize) {
		t.Fatalf("expected ErrInvalidPageSize, got %v", err)
	}
	if err := s.SetViewMode("table"); !errors.Is(err, ErrInvalidViewMode) {
		t.Fatalf("expected ErrInvalidViewMode, got %v", err)
	}
	if err := s.SetLanguage("de"); !errors.Is(err, ErrInvalidLanguage) {
		t.Fatalf("expected ErrInvalidLanguage, got %v", err)
	}
	if err := s.SetSelectedRecord("missing"); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no notifications, got %d", calls)
	}
	state := s.State()
	if state.Page != 1 || state.PageSize != DefaultPageSize || state.ViewMode != ViewList || state.Language != i18n.English {
		t.Fatalf("state changed: %+v", state)
	}
}

func TestSelectedRecordIsWeak(t *testing.T) {
	s := newTestStore(t, nil)
	rec := s.AddRecord(sampleFields(1))
	if err := s.SetSelectedRecord(rec.ID); err != nil {
		t.Fatalf("select: %v", err)
	}
	name := "Updated"
	s.UpdateRecord(rec.ID, employee.Patch{FirstName: &name})
	snap := s.State()
	if snap.Selected == nil || snap.Selected.FirstName != "Updated" {
		t.Fatalf("expected selection to resolve to current record, got %+v", snap.Selected)
	}
	s.DeleteRecord(rec.ID)
	if _, ok := s.SelectedRecord(); ok {
		t.Fatal("expected selection cleared by delete")
	}
}

func TestResetAllKeepsLanguage(t *testing.T) {
	backend := storage.NewMemory()
	s := newTestStore(t, backend, WithPageSize(20))
	rec := s.AddRecord(sampleFields(1))
	_ = s.SetLanguage(i18n.Turkish)
	_ = s.SetPageSize(50)
	_ = s.SetViewMode(ViewGrid)
	_ = s.SetSelectedRecord(rec.ID)
	s.SetSearchTerm("first")
	_ = s.SetPage(2)

	s.ResetAll()
	state := s.State()
	want := Snapshot{Records: []employee.Employee{}, Page: 1, PageSize: 20, ViewMode: ViewList, Language: i18n.Turkish}
	if !reflect.DeepEqual(state, want) {
		t.Fatalf("expected %+v, got %+v", want, state)
	}
	if raw, _, _ := backend.GetItem(KeyRecords); raw != "[]" {
		t.Fatalf("expected empty collection persisted, got %q", raw)
	}
}

func TestSubscribeOrderAndUnsubscribe(t *testing.T) {
	s := newTestStore(t, nil)
	var order []string
	var unsubB func()
	s.Subscribe(func(Snapshot) {
		order = append(order, "a")
		unsubB()
	})
	unsubB = s.Subscribe(func(Snapshot) { order = append(order, "b") })
	s.Subscribe(func(Snapshot) { order = append(order, "c") })

	s.SetSearchTerm("x")
	if got := strings.Join(order, ""); got != "abc" {
		t.Fatalf("expected abc in first pass, got %s", got)
	}
	order = nil
	s.SetSearchTerm("y")
	if got := strings.Join(order, ""); got != "ac" {
		t.Fatalf("expected ac after unsubscribe, got %s", got)
	}
	unsubB()
}

func TestListenerSeesMutation(t *testing.T) {
	s := newTestStore(t, nil)
	var seen Snapshot
	s.Subscribe(func(snap Snapshot) { seen = snap })
	rec := s.AddRecord(sampleFields(1))
	if len(seen.Records) != 1 || seen.Records[0].ID != rec.ID {
		t.Fatalf("expected snapshot with new record, got %+v", seen.Records)
	}
}

func TestNestedMutationFromListener(t *testing.T) {
	s := newTestStore(t, nil)
	var lastSeen []int
	s.Subscribe(func(snap Snapshot) {
		if snap.PageSize == 5 && snap.ViewMode == ViewList {
			_ = s.SetViewMode(ViewGrid)
		}
	})
	s.Subscribe(func(snap Snapshot) {
		lastSeen = append(lastSeen, snap.PageSize)
		if snap.ViewMode != ViewGrid && snap.PageSize == 5 {
			t.Errorf("second listener saw stale view mode")
		}
	})
	_ = s.SetPageSize(5)
	if s.State().ViewMode != ViewGrid {
		t.Fatal("expected nested mutation applied")
	}
	if len(lastSeen) != 2 {
		t.Fatalf("expected two passes to reach the second listener, got %v", lastSeen)
	}
}

func TestRunawayListenerIsBounded(t *testing.T) {
	s := newTestStore(t, nil)
	calls := 0
	s.Subscribe(func(snap Snapshot) {
		calls++
		s.SetSearchTerm(snap.SearchTerm + "x")
	})
	s.SetSearchTerm("")
	if calls != MaxNotifyDepth {
		t.Fatalf("expected %d calls, got %d", MaxNotifyDepth, calls)
	}
	if s.Stats().SkippedPasses != 1 {
		t.Fatalf("expected 1 skipped pass, got %d", s.Stats().SkippedPasses)
	}
	calls = 0
	s.ClearSelectedRecord()
	if calls == 0 {
		t.Fatal("expected notifications to resume after a bounded loop")
	}
}

func ids(records []employee.Employee) []string {
	var out []string
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func summary(p Page) string {
	return fmt.Sprintf("page=%d size=%d total=%d pages=%d len=%d", p.Page, p.PageSize, p.Total, p.TotalPages, len(p.Records))
}
