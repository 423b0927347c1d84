package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/evanschultz/checklist/internal/domain"
)

type fakeKV struct {
	mu     sync.Mutex
	values map[string]string
	sets   []string
	setErr error
	getErr error
}

func newFakeKV() *fakeKV {
	return &fakeKV{values: map[string]string{}}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", false, f.getErr
	}
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakeKV) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets = append(f.sets, key)
	if f.setErr != nil {
		return f.setErr
	}
	f.values[key] = value
	return nil
}

func (f *fakeKV) value(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok
}

func sequentialIDs() IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestService(t *testing.T) (*Service, *Writer, *fakeKV) {
	t.Helper()
	kv := newFakeKV()
	w := NewWriter(kv, nil)
	t.Cleanup(func() { _ = w.Close() })
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := NewService(w, sequentialIDs(), func() time.Time { return now }, ServiceConfig{})
	return svc, w, kv
}

func storedList[T any](t *testing.T, kv *fakeKV, key string) []T {
	t.Helper()
	raw, ok := kv.value(key)
	if !ok {
		t.Fatalf("expected key %q to be stored", key)
	}
	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("json.Unmarshal(%q) error = %v", key, err)
	}
	return out
}

func TestAddCategoryAndValidation(t *testing.T) {
	svc, w, kv := newTestService(t)

	category, err := svc.AddCategory("  Work ", "#ffa7a7")
	if err != nil {
		t.Fatalf("AddCategory() error = %v", err)
	}
	if category.ID != "id-1" || category.Name != "Work" || category.Color != "#FFA7A7" {
		t.Fatalf("unexpected category %#v", category)
	}

	for _, tc := range []struct {
		name  string
		color domain.Color
	}{
		{name: "   ", color: domain.Palette[0]},
		{name: "Home", color: ""},
		{name: "Home", color: "#123456"},
	} {
		_, err := svc.AddCategory(tc.name, tc.color)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("AddCategory(%q, %q) expected ValidationError, got %v", tc.name, tc.color, err)
		}
		if verr.Title != "Input error" || verr.Message == "" {
			t.Fatalf("unexpected validation alert %#v", verr)
		}
	}
	if got := svc.Categories(); len(got) != 1 {
		t.Fatalf("expected rejected adds to leave one category, got %d", len(got))
	}

	w.Flush()
	stored := storedList[domain.Category](t, kv, DefaultCategoriesKey)
	if len(stored) != 1 || stored[0].ID != "id-1" {
		t.Fatalf("unexpected stored categories %#v", stored)
	}
}

func TestEditCategoryKeepsIDAndPosition(t *testing.T) {
	svc, w, kv := newTestService(t)
	first, _ := svc.AddCategory("Work", domain.Palette[0])
	second, _ := svc.AddCategory("Home", domain.Palette[1])

	edited, ok, err := svc.EditCategory(first.ID, "Office", domain.Palette[4])
	if err != nil || !ok {
		t.Fatalf("EditCategory() = %v, %v", ok, err)
	}
	if edited.ID != first.ID || edited.Name != "Office" || edited.Color != domain.Palette[4] {
		t.Fatalf("unexpected edited category %#v", edited)
	}
	got := svc.Categories()
	if got[0].ID != first.ID || got[1].ID != second.ID {
		t.Fatalf("expected order preserved, got %#v", got)
	}

	if _, ok, err := svc.EditCategory("missing", "x", domain.Palette[0]); ok || err != nil {
		t.Fatalf("EditCategory(missing) = %v, %v", ok, err)
	}
	_, ok, err = svc.EditCategory(first.ID, "", domain.Palette[0])
	var verr *ValidationError
	if !ok || !errors.As(err, &verr) {
		t.Fatalf("EditCategory(blank) = %v, %v", ok, err)
	}
	if svc.Categories()[0].Name != "Office" {
		t.Fatal("failed edit must not mutate state")
	}

	w.Flush()
	stored := storedList[domain.Category](t, kv, DefaultCategoriesKey)
	if stored[0].Name != "Office" {
		t.Fatalf("expected stored edit, got %#v", stored)
	}
}

func TestDeleteCategoryCascades(t *testing.T) {
	svc, w, kv := newTestService(t)
	work, _ := svc.AddCategory("Work", domain.Palette[0])
	home, _ := svc.AddCategory("Home", domain.Palette[1])

	svc.SelectCategory(work.ID)
	svc.AddTodo("report")
	svc.AddTodo("email")
	svc.SelectCategory(home.ID)
	svc.AddTodo("dishes")
	svc.SelectAll()
	svc.AddTodo("loose")
	svc.SelectCategory(work.ID)

	c, ok := svc.RequestDeleteCategory(work.ID)
	if !ok {
		t.Fatal("RequestDeleteCategory() expected staged confirmation")
	}
	if c.Kind != ConfirmDeleteCategory || c.Count() != 2 || c.CancelLabel == "" || c.ConfirmLabel == "" {
		t.Fatalf("unexpected confirmation %#v", c)
	}
	if len(svc.Categories()) != 2 || len(svc.Todos()) != 4 {
		t.Fatal("staging must not delete anything")
	}

	if err := svc.Confirm(c); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if got := svc.Categories(); len(got) != 1 || got[0].ID != home.ID {
		t.Fatalf("unexpected categories after delete %#v", got)
	}
	for _, todo := range svc.Todos() {
		if todo.CategoryID == work.ID {
			t.Fatalf("todo %q still references deleted category", todo.ID)
		}
	}
	if len(svc.Todos()) != 2 {
		t.Fatalf("expected 2 todos left, got %d", len(svc.Todos()))
	}
	if !svc.Selection().IsNone() {
		t.Fatal("expected selection reset after deleting selected category")
	}
	if err := svc.Confirm(c); !errors.Is(err, ErrStaleConfirmation) {
		t.Fatalf("expected ErrStaleConfirmation, got %v", err)
	}

	w.Flush()
	if got := storedList[domain.Category](t, kv, DefaultCategoriesKey); len(got) != 1 {
		t.Fatalf("unexpected stored categories %#v", got)
	}
	if got := storedList[domain.Todo](t, kv, DefaultTodosKey); len(got) != 2 {
		t.Fatalf("unexpected stored todos %#v", got)
	}
}

func TestAddTodoAssignsSortAndCategory(t *testing.T) {
	svc, _, _ := newTestService(t)
	work, _ := svc.AddCategory("Work", domain.Palette[0])

	first, ok := svc.AddTodo("one")
	if !ok || first.Sort != 1 || first.Checked || first.CategoryID != "" {
		t.Fatalf("unexpected first todo %#v", first)
	}
	svc.SelectCategory(work.ID)
	second, ok := svc.AddTodo("two")
	if !ok || second.Sort != 2 || second.CategoryID != work.ID {
		t.Fatalf("unexpected second todo %#v", second)
	}
	if _, ok := svc.AddTodo(""); ok {
		t.Fatal("expected empty text to be ignored")
	}
	if _, ok := svc.AddTodo("  "); !ok {
		t.Fatal("expected whitespace text to be accepted")
	}
	if got := len(svc.Todos()); got != 3 {
		t.Fatalf("expected 3 todos, got %d", got)
	}
}

func TestToggleTodo(t *testing.T) {
	svc, _, _ := newTestService(t)
	a, _ := svc.AddTodo("a")
	b, _ := svc.AddTodo("b")

	toggled, ok := svc.ToggleTodo(a.ID)
	if !ok || !toggled.Checked {
		t.Fatalf("ToggleTodo() = %#v, %v", toggled, ok)
	}
	for _, todo := range svc.Todos() {
		if todo.ID == b.ID && todo.Checked {
			t.Fatal("toggle must flip exactly one todo")
		}
	}
	if _, ok := svc.ToggleTodo("missing"); ok {
		t.Fatal("expected unknown id to be a no-op")
	}
}

func TestCheckAllScopes(t *testing.T) {
	svc, _, _ := newTestService(t)
	work, _ := svc.AddCategory("Work", domain.Palette[0])
	svc.SelectCategory(work.ID)
	w1, _ := svc.AddTodo("w1")
	w2, _ := svc.AddTodo("w2")
	svc.SelectAll()
	loose, _ := svc.AddTodo("loose")

	scope := domain.CategoryScope(work.ID)
	if got := svc.CheckAll(scope); !got {
		t.Fatal("expected CheckAll to check a partially unchecked scope")
	}
	checked := map[string]bool{}
	for _, todo := range svc.Todos() {
		checked[todo.ID] = todo.Checked
	}
	if !checked[w1.ID] || !checked[w2.ID] || checked[loose.ID] {
		t.Fatalf("unexpected checked state %#v", checked)
	}

	if got := svc.CheckAll(scope); got {
		t.Fatal("expected CheckAll to uncheck a fully checked scope")
	}
	for _, todo := range svc.Todos() {
		if todo.Checked {
			t.Fatalf("expected %q unchecked", todo.ID)
		}
	}

	svc.CheckAll(domain.AllScope())
	for _, todo := range svc.Todos() {
		if !todo.Checked {
			t.Fatalf("expected %q checked by all scope", todo.ID)
		}
	}
}

func TestCheckAllTwiceRestoresUniformScope(t *testing.T) {
	svc, _, _ := newTestService(t)
	svc.AddTodo("a")
	svc.AddTodo("b")
	before := svc.Todos()
	svc.CheckAll(domain.AllScope())
	svc.CheckAll(domain.AllScope())
	if !slices.Equal(before, svc.Todos()) {
		t.Fatalf("expected state restored, got %#v", svc.Todos())
	}
}

func TestDeleteTodo(t *testing.T) {
	svc, w, kv := newTestService(t)
	a, _ := svc.AddTodo("a")
	b, _ := svc.AddTodo("b")

	c, ok := svc.RequestDeleteTodo(a.ID)
	if !ok || c.Kind != ConfirmDeleteTodo || c.TargetID() != a.ID {
		t.Fatalf("unexpected confirmation %#v, %v", c, ok)
	}
	if _, ok := svc.RequestDeleteTodo("missing"); ok {
		t.Fatal("expected missing todo to stage nothing")
	}
	if err := svc.Confirm(c); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if got := svc.Todos(); len(got) != 1 || got[0].ID != b.ID {
		t.Fatalf("unexpected todos %#v", got)
	}
	w.Flush()
	if got := storedList[domain.Todo](t, kv, DefaultTodosKey); len(got) != 1 {
		t.Fatalf("unexpected stored todos %#v", got)
	}
}

func TestDeleteCompletedRespectsScope(t *testing.T) {
	svc, _, _ := newTestService(t)
	work, _ := svc.AddCategory("Work", domain.Palette[0])
	svc.SelectCategory(work.ID)
	done, _ := svc.AddTodo("done")
	open, _ := svc.AddTodo("open")
	svc.SelectAll()
	outside, _ := svc.AddTodo("outside")
	svc.ToggleTodo(done.ID)
	svc.ToggleTodo(outside.ID)

	scope := domain.CategoryScope(work.ID)
	c, ok := svc.RequestDeleteCompleted(scope)
	if !ok || c.Count() != 1 {
		t.Fatalf("unexpected confirmation %#v, %v", c, ok)
	}
	if err := svc.Confirm(c); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	ids := []string{}
	for _, todo := range svc.Todos() {
		ids = append(ids, todo.ID)
	}
	if !slices.Equal(ids, []string{open.ID, outside.ID}) {
		t.Fatalf("unexpected remaining todos %v", ids)
	}
	if _, ok := svc.RequestDeleteCompleted(scope); ok {
		t.Fatal("expected nothing to stage once the scope has no checked items")
	}
}

func TestConfirmUnknownKind(t *testing.T) {
	svc, _, _ := newTestService(t)
	if err := svc.Confirm(Confirmation{Kind: "bogus"}); !errors.Is(err, ErrUnknownConfirmKind) {
		t.Fatalf("expected ErrUnknownConfirmKind, got %v", err)
	}
}

func TestSelectCategoryStateMachine(t *testing.T) {
	svc, _, _ := newTestService(t)
	work, _ := svc.AddCategory("Work", domain.Palette[0])
	home, _ := svc.AddCategory("Home", domain.Palette[1])

	if sel := svc.SelectCategory(work.ID); sel.CategoryID() != work.ID {
		t.Fatalf("expected work selected, got %q", sel.CategoryID())
	}
	if sel := svc.SelectCategory(home.ID); sel.CategoryID() != home.ID {
		t.Fatalf("expected home selected, got %q", sel.CategoryID())
	}
	if sel := svc.SelectCategory("missing"); sel.CategoryID() != home.ID {
		t.Fatalf("expected unknown id to be ignored, got %q", sel.CategoryID())
	}
	if sel := svc.SelectCategory(home.ID); !sel.IsNone() {
		t.Fatal("expected reselect to clear selection")
	}
	svc.SelectCategory(work.ID)
	if sel := svc.SelectAll(); !sel.IsNone() {
		t.Fatal("expected SelectAll to clear selection")
	}
}

func TestReorderFilteredSubsetKeepsOthers(t *testing.T) {
	svc, _, _ := newTestService(t)
	work, _ := svc.AddCategory("Work", domain.Palette[0])
	loose1, _ := svc.AddTodo("loose1") // sort 1
	svc.SelectCategory(work.ID)
	w1, _ := svc.AddTodo("w1") // sort 2
	svc.SelectAll()
	loose2, _ := svc.AddTodo("loose2") // sort 3
	svc.SelectCategory(work.ID)
	w2, _ := svc.AddTodo("w2") // sort 4
	w3, _ := svc.AddTodo("w3") // sort 5

	board := svc.Board()
	if got := todoIDs(board.Todos); !slices.Equal(got, []string{w3.ID, w2.ID, w1.ID}) {
		t.Fatalf("unexpected display order %v", got)
	}

	if !svc.Reorder([]string{w1.ID, w3.ID, w2.ID, loose1.ID, "missing", w1.ID}) {
		t.Fatal("expected Reorder to report a change")
	}
	board = svc.Board()
	if got := todoIDs(board.Todos); !slices.Equal(got, []string{w1.ID, w3.ID, w2.ID}) {
		t.Fatalf("unexpected display order after reorder %v", got)
	}
	sorts := map[string]int{}
	for _, todo := range svc.Todos() {
		sorts[todo.ID] = todo.Sort
	}
	if sorts[loose1.ID] != 1 || sorts[loose2.ID] != 3 {
		t.Fatalf("expected out-of-filter sorts untouched, got %#v", sorts)
	}
	if sorts[w1.ID] != 5 || sorts[w3.ID] != 4 || sorts[w2.ID] != 2 {
		t.Fatalf("expected subset to reuse its slots, got %#v", sorts)
	}

	if svc.Reorder([]string{w1.ID, w3.ID, w2.ID}) {
		t.Fatal("expected identical order to report no change")
	}
}

func TestReorderRepairsDuplicateSorts(t *testing.T) {
	svc, _, _ := newTestService(t)
	a, _ := svc.AddTodo("a") // sort 1
	b, _ := svc.AddTodo("b") // sort 2
	c, ok := svc.RequestDeleteTodo(a.ID)
	if !ok {
		t.Fatal("RequestDeleteTodo() expected confirmation")
	}
	if err := svc.Confirm(c); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	d, _ := svc.AddTodo("d") // sort 2, ties with b

	if !svc.Reorder([]string{d.ID, b.ID}) {
		t.Fatal("expected reorder to change sorts")
	}
	if got := todoIDs(svc.Board().Todos); !slices.Equal(got, []string{d.ID, b.ID}) {
		t.Fatalf("unexpected display order %v", got)
	}
}

func TestWorkScenario(t *testing.T) {
	kv := newFakeKV()
	kv.values[DefaultCategoriesKey] = `[{"id":"1","name":"Work","color":"#FFA7A7"}]`
	kv.values[DefaultTodosKey] = `[{"id":"a","text":"x","checked":false,"sort":1,"categoryId":"1"}]`
	svc := NewService(nil, nil, nil, ServiceConfig{})
	svc.Load(context.Background(), kv)

	svc.SelectCategory("1")
	board := svc.Board()
	if got := todoIDs(board.Todos); !slices.Equal(got, []string{"a"}) {
		t.Fatalf("unexpected filtered list %v", got)
	}
	if board.Progress["1"] != (Progress{Total: 1, Checked: 0}) {
		t.Fatalf("unexpected progress %#v", board.Progress["1"])
	}
	svc.ToggleTodo("a")
	board = svc.Board()
	if board.Progress["1"] != (Progress{Total: 1, Checked: 1}) {
		t.Fatalf("unexpected progress after toggle %#v", board.Progress["1"])
	}
	if c := board.Progress["1"].Completion(); c.Percent != 100 || !c.HasItems {
		t.Fatalf("unexpected completion %#v", c)
	}
	if !board.AllChecked {
		t.Fatal("expected all displayed items checked")
	}
}

func TestLoadResetsSelectionAndToleratesCorruption(t *testing.T) {
	kv := newFakeKV()
	kv.values[DefaultCategoriesKey] = `{"not":"a list"}`
	kv.values[DefaultTodosKey] = `[{"id":"a","text":"x","checked":"yes","sort":1}]`
	svc := NewService(nil, nil, nil, ServiceConfig{})
	svc.Load(context.Background(), kv)
	if len(svc.Categories()) != 0 || len(svc.Todos()) != 0 {
		t.Fatalf("expected corrupt lists to load empty, got %d/%d", len(svc.Categories()), len(svc.Todos()))
	}
	if !svc.Selection().IsNone() {
		t.Fatal("expected selection none after load")
	}
}

func TestSaveFailureKeepsMemoryState(t *testing.T) {
	kv := newFakeKV()
	kv.setErr = errors.New("disk full")
	w := NewWriter(kv, nil)
	t.Cleanup(func() { _ = w.Close() })
	svc := NewService(w, sequentialIDs(), nil, ServiceConfig{})

	if _, ok := svc.AddTodo("a"); !ok {
		t.Fatal("AddTodo() expected success")
	}
	w.Flush()
	if len(svc.Todos()) != 1 {
		t.Fatal("expected in-memory mutation to survive a failed save")
	}
	if _, ok := kv.value(DefaultTodosKey); ok {
		t.Fatal("expected failed write to store nothing")
	}
}

func todoIDs(todos []domain.Todo) []string {
	out := make([]string, 0, len(todos))
	for _, todo := range todos {
		out = append(out, todo.ID)
	}
	return out
}
