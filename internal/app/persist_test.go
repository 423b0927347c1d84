package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/evanschultz/checklist/internal/domain"
)

type recordingLogger struct {
	mu     sync.Mutex
	errors []string
}

func (l *recordingLogger) Debug(string, ...any) {}
func (l *recordingLogger) Info(string, ...any)  {}
func (l *recordingLogger) Warn(string, ...any)  {}
func (l *recordingLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func (l *recordingLogger) errorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.errors)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	kv := newFakeKV()
	w := NewWriter(kv, nil)
	t.Cleanup(func() { _ = w.Close() })

	want := []domain.Todo{
		{ID: "b", Text: "second", Checked: true, Sort: 2, CategoryID: "c1"},
		{ID: "a", Text: "first", Sort: 1},
	}
	SaveList(w, "todos", want)
	w.Flush()

	got := LoadList[domain.Todo](context.Background(), kv, "todos", TodoListSchema(), nil)
	if !slices.Equal(got, want) {
		t.Fatalf("LoadList() = %#v, want %#v", got, want)
	}
}

func TestSaveEmptyListStoresArray(t *testing.T) {
	kv := newFakeKV()
	w := NewWriter(kv, nil)
	t.Cleanup(func() { _ = w.Close() })

	SaveList[domain.Category](w, "categories", nil)
	w.Flush()
	if raw, _ := kv.value("categories"); raw != "[]" {
		t.Fatalf("expected empty json array, got %q", raw)
	}
}

func TestLoadListFallsBackToEmpty(t *testing.T) {
	cases := []struct {
		name  string
		value string
		set   bool
	}{
		{name: "absent"},
		{name: "invalid json", value: "{not json", set: true},
		{name: "object", value: `{"id":"1"}`, set: true},
		{name: "wrong element type", value: `[1,2,3]`, set: true},
		{name: "missing field", value: `[{"id":"1","name":"Work"}]`, set: true},
		{name: "empty id", value: `[{"id":"","name":"Work","color":"#FFA7A7"}]`, set: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kv := newFakeKV()
			if tc.set {
				kv.values["categories"] = tc.value
			}
			got := LoadList[domain.Category](context.Background(), kv, "categories", CategoryListSchema(), nil)
			if got == nil || len(got) != 0 {
				t.Fatalf("expected empty non-nil list, got %#v", got)
			}
		})
	}
}

func TestLoadListReadError(t *testing.T) {
	kv := newFakeKV()
	kv.getErr = errors.New("io")
	got := LoadList[domain.Todo](context.Background(), kv, "todos", TodoListSchema(), nil)
	if len(got) != 0 {
		t.Fatalf("expected empty list on read error, got %#v", got)
	}
}

func TestWriterCoalescesToLatestValue(t *testing.T) {
	kv := newFakeKV()
	w := NewWriter(kv, nil)
	t.Cleanup(func() { _ = w.Close() })

	for i := range 50 {
		w.Enqueue("k", fmt.Sprintf("v%d", i))
	}
	w.Flush()
	if got, _ := kv.value("k"); got != "v49" {
		t.Fatalf("expected latest value to win, got %q", got)
	}
}

func TestWriterLogsFailuresWithoutRetry(t *testing.T) {
	kv := newFakeKV()
	kv.setErr = errors.New("denied")
	logger := &recordingLogger{}
	w := NewWriter(kv, logger, WithWriteTimeout(time.Second))
	t.Cleanup(func() { _ = w.Close() })

	w.Enqueue("k", "v")
	w.Flush()
	if logger.errorCount() != 1 {
		t.Fatalf("expected one logged failure, got %d", logger.errorCount())
	}
	kv.mu.Lock()
	attempts := len(kv.sets)
	kv.mu.Unlock()
	if attempts != 1 {
		t.Fatalf("expected a single attempt, got %d", attempts)
	}
}

func TestWriterCloseDrainsAndRejects(t *testing.T) {
	kv := newFakeKV()
	w := NewWriter(kv, nil)
	w.Enqueue("a", "1")
	w.Enqueue("b", "2")
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got, _ := kv.value("a"); got != "1" {
		t.Fatalf("expected a drained before close, got %q", got)
	}
	if got, _ := kv.value("b"); got != "2" {
		t.Fatalf("expected b drained before close, got %q", got)
	}
	w.Enqueue("c", "3")
	if _, ok := kv.value("c"); ok {
		t.Fatal("expected enqueue after close to be dropped")
	}
	if err := w.Close(); !errors.Is(err, ErrWriterClosed) {
		t.Fatalf("expected ErrWriterClosed, got %v", err)
	}
}
