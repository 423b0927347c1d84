package domain

// Selection is the active category filter. The zero value selects nothing,
// which shows every todo.
type Selection struct {
	categoryID string
}

// NoneSelected returns the "show all" selection.
func NoneSelected() Selection {
	return Selection{}
}

// CategorySelected returns a selection of one category.
func CategorySelected(categoryID string) Selection {
	return Selection{categoryID: categoryID}
}

// IsNone reports whether no category is selected.
func (s Selection) IsNone() bool {
	return s.categoryID == ""
}

// CategoryID returns the selected category id, or "" when none is selected.
func (s Selection) CategoryID() string {
	return s.categoryID
}

// Toggle applies a tap on categoryID: selecting the active category deselects it.
func (s Selection) Toggle(categoryID string) Selection {
	if categoryID == "" || s.categoryID == categoryID {
		return NoneSelected()
	}
	return CategorySelected(categoryID)
}

// Scope returns the todo subset bulk operations apply to.
func (s Selection) Scope() Scope {
	if s.IsNone() {
		return AllScope()
	}
	return CategoryScope(s.categoryID)
}

// Scope is the subset of todos an operation applies to.
type Scope struct {
	all        bool
	categoryID string
}

// AllScope covers every todo.
func AllScope() Scope {
	return Scope{all: true}
}

// CategoryScope covers the todos of one category.
func CategoryScope(categoryID string) Scope {
	return Scope{categoryID: categoryID}
}

// IsAll reports whether the scope covers every todo.
func (s Scope) IsAll() bool {
	return s.all
}

// CategoryID returns the scoped category id, or "" for the all scope.
func (s Scope) CategoryID() string {
	if s.all {
		return ""
	}
	return s.categoryID
}

// Contains reports whether t falls inside the scope.
func (s Scope) Contains(t Todo) bool {
	if s.all {
		return true
	}
	return t.CategoryID == s.categoryID
}
