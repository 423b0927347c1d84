package app

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/evanschultz/checklist/internal/domain"
	"github.com/google/uuid"
)

// Storage keys used when ServiceConfig leaves them empty.
const (
	DefaultCategoriesKey = "checklist.categories"
	DefaultTodosKey      = "checklist.todos"
)

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	CategoriesKey string
	TodosKey      string
	Logger        Logger
}

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// NewTimeID returns a time-ordered UUIDv7 string.
func NewTimeID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Service owns the category list, the todo list and the selection. Every
// mutation updates memory first and then queues a full-list save.
type Service struct {
	writer        *Writer
	idGen         IDGenerator
	clock         Clock
	categoriesKey string
	todosKey      string
	logger        Logger

	mu         sync.Mutex
	categories []domain.Category
	todos      []domain.Todo
	selection  domain.Selection
}

// NewService constructs a service that saves through writer. A nil writer keeps
// state in memory only.
func NewService(writer *Writer, idGen IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = NewTimeID
	}
	if clock == nil {
		clock = time.Now
	}
	if cfg.CategoriesKey == "" {
		cfg.CategoriesKey = DefaultCategoriesKey
	}
	if cfg.TodosKey == "" {
		cfg.TodosKey = DefaultTodosKey
	}
	if cfg.Logger == nil {
		cfg.Logger = nopLogger{}
	}
	return &Service{
		writer:        writer,
		idGen:         idGen,
		clock:         clock,
		categoriesKey: cfg.CategoriesKey,
		todosKey:      cfg.TodosKey,
		logger:        cfg.Logger,
		categories:    []domain.Category{},
		todos:         []domain.Todo{},
	}
}

// Load replaces in-memory state with the persisted lists and clears the
// selection. Unreadable lists load as empty.
func (s *Service) Load(ctx context.Context, store KVStore) {
	categories := LoadList[domain.Category](ctx, store, s.categoriesKey, CategoryListSchema(), s.logger)
	todos := LoadList[domain.Todo](ctx, store, s.todosKey, TodoListSchema(), s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = categories
	s.todos = todos
	s.selection = domain.NoneSelected()
	s.logger.Info("checklist loaded", "categories", len(categories), "todos", len(todos))
}

// Categories returns a copy of the category list in insertion order.
func (s *Service) Categories() []domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.categories)
}

// Todos returns a copy of the full todo list in storage order.
func (s *Service) Todos() []domain.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.todos)
}

// Selection returns the active category filter.
func (s *Service) Selection() domain.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

// CurrentScope returns the scope bulk operations use for the active selection.
func (s *Service) CurrentScope() domain.Scope {
	return s.Selection().Scope()
}

// Board derives the current view.
func (s *Service) Board() Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return buildBoard(s.categories, s.todos, s.selection)
}

// SelectCategory toggles the filter on id. Unknown ids leave it unchanged.
func (s *Service) SelectCategory(id string) domain.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.categoryIndex(id) < 0 {
		return s.selection
	}
	s.selection = s.selection.Toggle(id)
	return s.selection
}

// SelectAll clears the filter.
func (s *Service) SelectAll() domain.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = domain.NoneSelected()
	return s.selection
}

// AddCategory appends a category. Blank names and unset or unknown colors are
// rejected with a *ValidationError.
func (s *Service) AddCategory(name string, color domain.Color) (domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	category, err := domain.NewCategory(s.newID(), name, color)
	if err != nil {
		return domain.Category{}, categoryValidationError(err)
	}
	s.categories = append(s.categories, category)
	s.saveCategories()
	return category, nil
}

// EditCategory replaces name and color of the category with id, keeping its
// id and position. The bool is false when id is unknown.
func (s *Service) EditCategory(id, name string, color domain.Color) (domain.Category, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.categoryIndex(id)
	if idx < 0 {
		return domain.Category{}, false, nil
	}
	category := s.categories[idx]
	if err := category.Update(name, color); err != nil {
		return domain.Category{}, true, categoryValidationError(err)
	}
	s.categories[idx] = category
	s.saveCategories()
	return category, true, nil
}

// RequestDeleteCategory stages the cascade delete of a category.
func (s *Service) RequestDeleteCategory(id string) (Confirmation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.categoryIndex(id)
	if idx < 0 {
		return Confirmation{}, false
	}
	count := 0
	for _, todo := range s.todos {
		if todo.InCategory(id) {
			count++
		}
	}
	return deleteCategoryConfirmation(s.categories[idx], count), true
}

// AddTodo appends an unchecked todo to the selected category. Empty text is
// ignored.
func (s *Service) AddTodo(text string) (domain.Todo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	todo, err := domain.NewTodo(s.newID(), text, len(s.todos)+1, s.selection.CategoryID())
	if err != nil {
		return domain.Todo{}, false
	}
	s.todos = append(s.todos, todo)
	s.saveTodos()
	return todo, true
}

// ToggleTodo flips the checked flag of one todo.
func (s *Service) ToggleTodo(id string) (domain.Todo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.todoIndex(id)
	if idx < 0 {
		return domain.Todo{}, false
	}
	s.todos[idx].Toggle()
	s.saveTodos()
	return s.todos[idx], true
}

// CheckAll unchecks every todo in scope when all of them are checked, and
// checks them all otherwise. It returns the checked value applied.
func (s *Service) CheckAll(scope domain.Scope) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	target := false
	for _, todo := range s.todos {
		if scope.Contains(todo) && !todo.Checked {
			target = true
			break
		}
	}
	changed := false
	for i := range s.todos {
		if !scope.Contains(s.todos[i]) || s.todos[i].Checked == target {
			continue
		}
		s.todos[i].Checked = target
		changed = true
	}
	if changed {
		s.saveTodos()
	}
	return target
}

// RequestDeleteTodo stages the delete of one todo.
func (s *Service) RequestDeleteTodo(id string) (Confirmation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.todoIndex(id)
	if idx < 0 {
		return Confirmation{}, false
	}
	return deleteTodoConfirmation(s.todos[idx]), true
}

// RequestDeleteCompleted stages the delete of every checked todo in scope. The
// bool is false when nothing in scope is checked.
func (s *Service) RequestDeleteCompleted(scope domain.Scope) (Confirmation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, todo := range s.todos {
		if scope.Contains(todo) && todo.Checked {
			count++
		}
	}
	if count == 0 {
		return Confirmation{}, false
	}
	return deleteCompletedConfirmation(scope, count), true
}

// Confirm applies a staged destructive action. Targets removed since staging
// return ErrStaleConfirmation without changes.
func (s *Service) Confirm(c Confirmation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch c.Kind {
	case ConfirmDeleteCategory:
		return s.deleteCategory(c.targetID)
	case ConfirmDeleteTodo:
		idx := s.todoIndex(c.targetID)
		if idx < 0 {
			return ErrStaleConfirmation
		}
		s.todos = slices.Delete(s.todos, idx, idx+1)
		s.saveTodos()
		return nil
	case ConfirmDeleteCompleted:
		before := len(s.todos)
		s.todos = slices.DeleteFunc(s.todos, func(todo domain.Todo) bool {
			return todo.Checked && c.scope.Contains(todo)
		})
		if len(s.todos) != before {
			s.saveTodos()
		}
		return nil
	default:
		return ErrUnknownConfirmKind
	}
}

// deleteCategory removes a category and every todo that references it.
func (s *Service) deleteCategory(id string) error {
	idx := s.categoryIndex(id)
	if idx < 0 {
		return ErrStaleConfirmation
	}
	s.categories = slices.Delete(s.categories, idx, idx+1)
	s.todos = slices.DeleteFunc(s.todos, func(todo domain.Todo) bool {
		return todo.InCategory(id)
	})
	if s.selection.CategoryID() == id {
		s.selection = domain.NoneSelected()
	}
	s.saveCategories()
	s.saveTodos()
	return nil
}

// Reorder applies a new top-to-bottom order of displayed todos. The sort
// values already held by those todos are handed out again in the new order,
// so todos outside the current filter keep theirs. Unknown, duplicate and
// filtered-out ids are ignored. It reports whether any sort value changed.
func (s *Service) Reorder(ids []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(ids))
	indexes := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		idx := s.todoIndex(id)
		if idx < 0 || !s.selection.Scope().Contains(s.todos[idx]) {
			continue
		}
		seen[id] = struct{}{}
		indexes = append(indexes, idx)
	}
	if len(indexes) < 2 {
		return false
	}

	slots := make([]int, len(indexes))
	for i, idx := range indexes {
		slots[i] = s.todos[idx].Sort
	}
	slices.SortFunc(slots, func(a, b int) int { return b - a })
	for i := 1; i < len(slots); i++ {
		if slots[i] >= slots[i-1] {
			slots[i] = slots[i-1] - 1
		}
	}

	changed := false
	for i, idx := range indexes {
		if s.todos[idx].Sort != slots[i] {
			s.todos[idx].Sort = slots[i]
			changed = true
		}
	}
	if changed {
		s.saveTodos()
	}
	return changed
}

// newID returns an id not used by any category or todo.
func (s *Service) newID() string {
	for range 8 {
		id := s.idGen()
		if id != "" && s.categoryIndex(id) < 0 && s.todoIndex(id) < 0 {
			return id
		}
	}
	return NewTimeID()
}

func (s *Service) categoryIndex(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.categories, func(c domain.Category) bool { return c.ID == id })
}

func (s *Service) todoIndex(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.todos, func(t domain.Todo) bool { return t.ID == id })
}

func (s *Service) saveCategories() {
	if s.writer == nil {
		return
	}
	SaveList(s.writer, s.categoriesKey, s.categories)
}

func (s *Service) saveTodos() {
	if s.writer == nil {
		return
	}
	SaveList(s.writer, s.todosKey, s.todos)
}
