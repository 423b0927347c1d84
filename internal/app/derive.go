package app

import (
	"fmt"
	"math"
	"slices"

	"github.com/evanschultz/checklist/internal/domain"
)

// Progress counts todos and completed todos for one category.
type Progress struct {
	Total   int
	Checked int
}

// Completion returns the rounded completion percentage for p.
func (p Progress) Completion() Completion {
	return Percent(p.Total, p.Checked)
}

// Completion is a rounded percentage. HasItems is false when there is nothing
// to complete, which is distinct from 0%.
type Completion struct {
	Percent  int
	HasItems bool
}

// String renders the completion for status lines.
func (c Completion) String() string {
	if !c.HasItems {
		return "no items yet"
	}
	return fmt.Sprintf("%d%%", c.Percent)
}

// Percent returns round(checked/total*100), or the no-items completion when
// total is zero.
func Percent(total, checked int) Completion {
	if total <= 0 {
		return Completion{}
	}
	return Completion{
		Percent:  int(math.Round(float64(checked) / float64(total) * 100)),
		HasItems: true,
	}
}

// FilterTodos returns todos unchanged when nothing is selected, otherwise only
// the todos of the selected category.
func FilterTodos(todos []domain.Todo, sel domain.Selection) []domain.Todo {
	if sel.IsNone() {
		return todos
	}
	out := make([]domain.Todo, 0, len(todos))
	for _, todo := range todos {
		if todo.CategoryID == sel.CategoryID() {
			out = append(out, todo)
		}
	}
	return out
}

// DisplayOrder returns a copy of todos sorted by descending Sort; ties keep
// their relative order.
func DisplayOrder(todos []domain.Todo) []domain.Todo {
	out := slices.Clone(todos)
	slices.SortStableFunc(out, func(a, b domain.Todo) int {
		return b.Sort - a.Sort
	})
	return out
}

// ProgressFor counts the todos of one category.
func ProgressFor(categoryID string, todos []domain.Todo) Progress {
	var p Progress
	for _, todo := range todos {
		if todo.CategoryID != categoryID {
			continue
		}
		p.Total++
		if todo.Checked {
			p.Checked++
		}
	}
	return p
}

// ProgressAll counts every todo, categorized or not.
func ProgressAll(todos []domain.Todo) Progress {
	p := Progress{Total: len(todos)}
	for _, todo := range todos {
		if todo.Checked {
			p.Checked++
		}
	}
	return p
}

// ProgressByCategory computes progress for every category in one pass.
func ProgressByCategory(categories []domain.Category, todos []domain.Todo) map[string]Progress {
	out := make(map[string]Progress, len(categories))
	for _, category := range categories {
		out[category.ID] = Progress{}
	}
	for _, todo := range todos {
		p, ok := out[todo.CategoryID]
		if !ok {
			continue
		}
		p.Total++
		if todo.Checked {
			p.Checked++
		}
		out[todo.CategoryID] = p
	}
	return out
}

// allChecked reports whether every todo is checked. An empty list counts as
// all checked.
func allChecked(todos []domain.Todo) bool {
	for _, todo := range todos {
		if !todo.Checked {
			return false
		}
	}
	return true
}

// Board is the derived view of the state container at one point in time.
type Board struct {
	Categories []domain.Category
	Selection  domain.Selection
	// Todos holds the filtered todos in display order.
	Todos      []domain.Todo
	Progress   map[string]Progress
	All        Progress
	AllChecked bool
}

// Category returns the category with id.
func (b Board) Category(id string) (domain.Category, bool) {
	for _, category := range b.Categories {
		if category.ID == id {
			return category, true
		}
	}
	return domain.Category{}, false
}

// SelectedCategory returns the selected category, if any.
func (b Board) SelectedCategory() (domain.Category, bool) {
	if b.Selection.IsNone() {
		return domain.Category{}, false
	}
	return b.Category(b.Selection.CategoryID())
}

// buildBoard derives the board from the source lists and selection.
func buildBoard(categories []domain.Category, todos []domain.Todo, sel domain.Selection) Board {
	filtered := FilterTodos(todos, sel)
	return Board{
		Categories: slices.Clone(categories),
		Selection:  sel,
		Todos:      DisplayOrder(filtered),
		Progress:   ProgressByCategory(categories, todos),
		All:        ProgressAll(todos),
		AllChecked: allChecked(filtered),
	}
}
