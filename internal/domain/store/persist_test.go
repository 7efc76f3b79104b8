package store

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"emprec/internal/domain/employee"
	"emprec/internal/platform/i18n"
	"emprec/internal/platform/storage"
)

func TestPersistRoundTrip(t *testing.T) {
	backend := storage.NewMemory()
	s := newTestStore(t, backend)
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d", s.Len())
	}
	created := s.AddRecord(sampleFields(1))

	raw, ok, err := backend.GetItem(KeyRecords)
	if err != nil || !ok {
		t.Fatalf("expected persisted payload, ok=%v err=%v", ok, err)
	}
	decoded, err := DecodeRecords(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != 1 || !reflect.DeepEqual(decoded[0], created) {
		t.Fatalf("expected %+v, got %+v", created, decoded)
	}

	reloaded := New(backend)
	got, ok := reloaded.GetRecord(created.ID)
	if !ok || !reflect.DeepEqual(got, created) {
		t.Fatalf("expected reloaded record %+v, got %+v", created, got)
	}
}

func TestPersistedDateFormats(t *testing.T) {
	backend := storage.NewMemory()
	s := newTestStore(t, backend)
	s.AddRecord(sampleFields(1))
	raw, _, _ := backend.GetItem(KeyRecords)
	for _, want := range []string{`"dateOfBirth":"1990-04-12"`, `"createdAt":"2025-06-15T14:30:01Z"`} {
		if !strings.Contains(raw, want) {
			t.Fatalf("expected %s in %s", want, raw)
		}
	}
}

func TestLoadCorruptPayloadStartsEmpty(t *testing.T) {
	backend := storage.NewMemory()
	_ = backend.SetItem(KeyRecords, "{not json")
	_ = backend.SetItem(KeyLanguage, "klingon")

	s := New(backend)
	if s.Len() != 0 {
		t.Fatalf("expected empty collection, got %d", s.Len())
	}
	if s.Language() != i18n.English {
		t.Fatalf("expected default language, got %s", s.Language())
	}
}

func TestLoadDropsRecordsWithoutID(t *testing.T) {
	backend := storage.NewMemory()
	_ = backend.SetItem(KeyRecords, `[{"id":"a","firstName":"Ali"},{"firstName":"Ghost"}]`)
	s := New(backend)
	if s.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", s.Len())
	}
}

func TestLanguagePersisted(t *testing.T) {
	backend := storage.NewMemory()
	s := New(backend, WithDefaultLanguage(i18n.Turkish))
	if s.Language() != i18n.Turkish {
		t.Fatalf("expected default tr, got %s", s.Language())
	}
	if err := s.SetLanguage(i18n.English); err != nil {
		t.Fatalf("set language: %v", err)
	}
	if raw, _, _ := backend.GetItem(KeyLanguage); raw != "en" {
		t.Fatalf("expected en persisted, got %q", raw)
	}
	if reloaded := New(backend, WithDefaultLanguage(i18n.Turkish)); reloaded.Language() != i18n.English {
		t.Fatalf("expected stored language to win, got %s", reloaded.Language())
	}
}

func TestViewStateIsNotPersisted(t *testing.T) {
	backend := storage.NewMemory()
	s := New(backend)
	s.SetSearchTerm("ali")
	_ = s.SetViewMode(ViewGrid)
	if backend.Len() != 0 {
		t.Fatalf("expected nothing persisted, got %d keys", backend.Len())
	}
}

type failingStorage struct {
	*storage.Memory
}

func (failingStorage) SetItem(string, string) error {
	return errors.New("quota exceeded")
}

func TestPersistFailureIsSwallowed(t *testing.T) {
	s := newTestStore(t, failingStorage{storage.NewMemory()})
	notified := 0
	s.Subscribe(func(Snapshot) { notified++ })

	rec := s.AddRecord(sampleFields(1))
	if _, ok := s.GetRecord(rec.ID); !ok {
		t.Fatal("expected in-memory mutation to stand")
	}
	if notified != 1 {
		t.Fatalf("expected 1 notification, got %d", notified)
	}
	stats := s.Stats()
	if stats.PersistFailures != 1 || stats.Mutations != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestLoadThroughAsyncWriter(t *testing.T) {
	backend := storage.NewMemory()
	async := storage.NewAsync(backend, 8, nil)
	s := newTestStore(t, async)
	rec := s.AddRecord(sampleFields(1))

	reloaded := New(async)
	if _, ok := reloaded.GetRecord(rec.ID); !ok {
		t.Fatal("expected queued write to be readable")
	}
	var got []employee.Employee
	if raw, ok, _ := backend.GetItem(KeyRecords); ok {
		got, _ = DecodeRecords(raw)
	}
	if len(got) != 0 {
		t.Fatal("expected backend untouched before the worker runs")
	}
}
