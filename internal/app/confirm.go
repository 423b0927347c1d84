package app

import (
	"fmt"

	"github.com/evanschultz/checklist/internal/domain"
)

// ConfirmKind identifies which destructive action a confirmation applies.
type ConfirmKind string

// ConfirmDeleteCategory and related constants name staged destructive actions.
const (
	ConfirmDeleteCategory  ConfirmKind = "delete_category"
	ConfirmDeleteTodo      ConfirmKind = "delete_todo"
	ConfirmDeleteCompleted ConfirmKind = "delete_completed"
)

// Confirmation is a staged destructive action. Nothing is removed until the
// caller passes it back to Service.Confirm.
type Confirmation struct {
	Kind         ConfirmKind
	Title        string
	Message      string
	CancelLabel  string
	ConfirmLabel string

	targetID string
	scope    domain.Scope
	count    int
}

// TargetID returns the category or todo id the confirmation applies to.
func (c Confirmation) TargetID() string {
	return c.targetID
}

// Scope returns the scope a delete-completed confirmation was staged for.
func (c Confirmation) Scope() domain.Scope {
	return c.scope
}

// Count returns how many todos the action removes at staging time.
func (c Confirmation) Count() int {
	return c.count
}

// newConfirmation fills the shared labels.
func newConfirmation(kind ConfirmKind, title, message string) Confirmation {
	return Confirmation{
		Kind:         kind,
		Title:        title,
		Message:      message,
		CancelLabel:  "Cancel",
		ConfirmLabel: "Delete",
	}
}

func deleteCategoryConfirmation(category domain.Category, todoCount int) Confirmation {
	msg := fmt.Sprintf("Delete %q?", category.Name)
	if todoCount > 0 {
		msg = fmt.Sprintf("Delete %q and its %d %s?", category.Name, todoCount, plural(todoCount, "todo", "todos"))
	}
	c := newConfirmation(ConfirmDeleteCategory, "Delete category", msg)
	c.targetID = category.ID
	c.count = todoCount
	return c
}

func deleteTodoConfirmation(todo domain.Todo) Confirmation {
	c := newConfirmation(ConfirmDeleteTodo, "Delete item", fmt.Sprintf("Delete %q?", todo.Text))
	c.targetID = todo.ID
	c.count = 1
	return c
}

func deleteCompletedConfirmation(scope domain.Scope, count int) Confirmation {
	c := newConfirmation(
		ConfirmDeleteCompleted,
		"Delete completed",
		fmt.Sprintf("Delete %d completed %s?", count, plural(count, "item", "items")),
	)
	c.scope = scope
	c.count = count
	return c
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
