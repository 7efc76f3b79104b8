package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"emprec/internal/platform/db"
)

func exerciseBackend(t *testing.T, s Storage) {
	t.Helper()
	if _, ok, err := s.GetItem("employee-management-data"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	payload := `[{"id":"1","firstName":"Ayşe"}]`
	if err := s.SetItem("employee-management-data", payload); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, ok, err := s.GetItem("employee-management-data")
	if err != nil || !ok || got != payload {
		t.Fatalf("expected %q, got %q ok=%v err=%v", payload, got, ok, err)
	}
	if err := s.SetItem("employee-management-data", "[]"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	if got, _, _ := s.GetItem("employee-management-data"); got != "[]" {
		t.Fatalf("expected overwrite, got %q", got)
	}
	if err := s.RemoveItem("employee-management-data"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, ok, _ := s.GetItem("employee-management-data"); ok {
		t.Fatal("expected key removed")
	}
	if err := s.RemoveItem("never-set"); err != nil {
		t.Fatalf("expected removing a missing key to succeed, got %v", err)
	}
	if err := s.SetItem("", "x"); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestMemory(t *testing.T) {
	exerciseBackend(t, NewMemory())
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(filepath.Join(dir, "nested", "data"))
	if err != nil {
		t.Fatalf("new file storage: %v", err)
	}
	exerciseBackend(t, f)
}

func TestFilePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	first, err := NewFile(dir)
	if err != nil {
		t.Fatalf("new file storage: %v", err)
	}
	if err := first.SetItem("employee-management-language", "tr"); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	second, err := NewFile(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, ok, err := second.GetItem("employee-management-language")
	if err != nil || !ok || got != "tr" {
		t.Fatalf("expected tr, got %q ok=%v err=%v", got, ok, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestFileEscapesKeys(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(dir)
	if err != nil {
		t.Fatalf("new file storage: %v", err)
	}
	if err := f.SetItem("../outside", "x"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "outside.json")); err == nil {
		t.Fatal("key escaped the data directory")
	}
	if got, ok, _ := f.GetItem("../outside"); !ok || got != "x" {
		t.Fatalf("expected x, got %q", got)
	}
}

type recordingStorage struct {
	mu    sync.Mutex
	ops   []string
	fail  bool
	block chan struct{}
	*Memory
}

func (r *recordingStorage) SetItem(key, value string) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	r.ops = append(r.ops, "set "+key+"="+value)
	r.mu.Unlock()
	if r.fail {
		return errors.New("disk full")
	}
	return r.Memory.SetItem(key, value)
}

func (r *recordingStorage) RemoveItem(key string) error {
	r.mu.Lock()
	r.ops = append(r.ops, "remove "+key)
	r.mu.Unlock()
	return r.Memory.RemoveItem(key)
}

func (r *recordingStorage) Ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ops...)
}

func TestAsyncAppliesInOrder(t *testing.T) {
	backend := &recordingStorage{Memory: NewMemory()}
	a := NewAsync(backend, 16, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.Start(ctx)

	_ = a.SetItem("k", "1")
	_ = a.SetItem("k", "2")
	_ = a.RemoveItem("k")
	_ = a.SetItem("k", "3")

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer flushCancel()
	if err := a.Flush(flushCtx); err != nil {
		t.Fatalf("flush: %v", err)
	}

	want := []string{"set k=1", "set k=2", "remove k", "set k=3"}
	got := backend.Ops()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if v, ok, _ := backend.Memory.GetItem("k"); !ok || v != "3" {
		t.Fatalf("expected backend value 3, got %q", v)
	}
}

func TestAsyncReadsQueuedWrites(t *testing.T) {
	backend := &recordingStorage{Memory: NewMemory()}
	a := NewAsync(backend, 4, nil)

	_ = a.SetItem("k", "queued")
	if v, ok, _ := a.GetItem("k"); !ok || v != "queued" {
		t.Fatalf("expected queued value, got %q ok=%v", v, ok)
	}
	_ = a.RemoveItem("k")
	if _, ok, _ := a.GetItem("k"); ok {
		t.Fatal("expected queued remove to hide the key")
	}
	if len(backend.Ops()) != 0 {
		t.Fatal("expected nothing applied before the worker starts")
	}
}

func TestAsyncDropsWhenFull(t *testing.T) {
	a := NewAsync(NewMemory(), 1, nil)
	if err := a.SetItem("a", "1"); err != nil {
		t.Fatalf("first write should queue, got %v", err)
	}
	if err := a.SetItem("b", "2"); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if a.Dropped() != 1 {
		t.Fatalf("expected 1 dropped, got %d", a.Dropped())
	}
	if _, ok, _ := a.GetItem("b"); ok {
		t.Fatal("dropped write must not be visible")
	}
}

func TestAsyncCountsFailures(t *testing.T) {
	backend := &recordingStorage{Memory: NewMemory(), fail: true}
	a := NewAsync(backend, 4, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.Start(ctx)

	_ = a.SetItem("k", "v")
	flushCtx, flushCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer flushCancel()
	if err := a.Flush(flushCtx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if a.Failed() != 1 {
		t.Fatalf("expected 1 failure, got %d", a.Failed())
	}
	if _, ok, _ := a.GetItem("k"); ok {
		t.Fatal("failed write must not stay visible")
	}
}

func TestAsyncDrainsOnCancel(t *testing.T) {
	backend := &recordingStorage{Memory: NewMemory(), block: make(chan struct{})}
	a := NewAsync(backend, 4, nil)
	ctx, cancel := context.WithCancel(context.Background())
	a.Start(ctx)

	_ = a.SetItem("a", "1")
	_ = a.SetItem("b", "2")
	cancel()
	close(backend.block)

	deadline := time.Now().Add(2 * time.Second)
	for len(backend.Ops()) < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("expected both writes applied, got %v", backend.Ops())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPostgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := db.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	table := "local_storage_test"
	p, err := NewPostgres(ctx, pool, table, time.Second)
	if err != nil {
		t.Fatalf("new postgres storage: %v", err)
	}
	_, _ = pool.Exec(ctx, "DELETE FROM "+table)
	exerciseBackend(t, p)
}
