package domain

import "strings"

// Todo is a single checklist entry. Higher Sort renders higher in the list.
type Todo struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Checked    bool   `json:"checked"`
	Sort       int    `json:"sort"`
	CategoryID string `json:"categoryId,omitempty"`
}

// NewTodo constructs an unchecked todo.
func NewTodo(id, text string, sort int, categoryID string) (Todo, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Todo{}, ErrInvalidID
	}
	if text == "" {
		return Todo{}, ErrInvalidText
	}
	return Todo{
		ID:         id,
		Text:       text,
		Checked:    false,
		Sort:       sort,
		CategoryID: strings.TrimSpace(categoryID),
	}, nil
}

// Toggle flips the completion flag.
func (t *Todo) Toggle() {
	t.Checked = !t.Checked
}

// InCategory reports whether the todo belongs to categoryID.
func (t Todo) InCategory(categoryID string) bool {
	return t.CategoryID == categoryID
}

// Uncategorized reports whether the todo has no category.
func (t Todo) Uncategorized() bool {
	return t.CategoryID == ""
}
