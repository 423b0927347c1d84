package tui

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"charm.land/bubbles/v2/key"
)

// keyMap represents key map data used by this package.
type keyMap struct {
	quit            key.Binding
	reload          key.Binding
	toggleHelp      key.Binding
	categoryLeft    key.Binding
	categoryRight   key.Binding
	selectCategory  key.Binding
	moveUp          key.Binding
	moveDown        key.Binding
	moveTodoUp      key.Binding
	moveTodoDown    key.Binding
	toggleTodo      key.Binding
	addTodo         key.Binding
	newCategory     key.Binding
	editCategory    key.Binding
	deleteCategory  key.Binding
	deleteTodo      key.Binding
	checkAll        key.Binding
	deleteCompleted key.Binding
	copyTodo        key.Binding
}

// KeyConfig overrides the configurable single-key bindings.
type KeyConfig struct {
	AddTodo         string
	NewCategory     string
	CheckAll        string
	DeleteCompleted string
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:            key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:          key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		categoryLeft:    key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "category left")),
		categoryRight:   key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "category right")),
		selectCategory:  key.NewBinding(key.WithKeys("s", "enter"), key.WithHelp("s/enter", "filter by category")),
		moveUp:          key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "item up")),
		moveDown:        key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "item down")),
		moveTodoUp:      key.NewBinding(key.WithKeys("K", "shift+k", "shift+up"), key.WithHelp("K", "move item up")),
		moveTodoDown:    key.NewBinding(key.WithKeys("J", "shift+j", "shift+down"), key.WithHelp("J", "move item down")),
		toggleTodo:      key.NewBinding(key.WithKeys("space", " ", "x"), key.WithHelp("space", "check item")),
		addTodo:         key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new item")),
		newCategory:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "new category")),
		editCategory:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit category")),
		deleteCategory:  key.NewBinding(key.WithKeys("X", "shift+x"), key.WithHelp("X", "delete category")),
		deleteTodo:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete checked item")),
		checkAll:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "check all")),
		deleteCompleted: key.NewBinding(key.WithKeys("D", "shift+d"), key.WithHelp("D", "delete completed")),
		copyTodo:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy item")),
	}
}

// applyConfig applies configured key overrides.
func (k *keyMap) applyConfig(cfg KeyConfig) {
	configureBinding(&k.addTodo, cfg.AddTodo, "n", "new item")
	configureBinding(&k.newCategory, cfg.NewCategory, "c", "new category")
	configureBinding(&k.checkAll, cfg.CheckAll, "a", "check all")
	configureBinding(&k.deleteCompleted, cfg.DeleteCompleted, "D", "delete completed")
}

// configureBinding replaces the keys of b with the parsed override.
func configureBinding(b *key.Binding, raw, fallback, desc string) {
	keys, helpKey := parseBindingKeys(raw, fallback)
	b.SetKeys(keys...)
	b.SetHelp(helpKey, desc)
}

// parseBindingKeys turns a configured key into matcher strings and a help label.
func parseBindingKeys(raw, fallback string) ([]string, string) {
	value := strings.TrimSpace(raw)
	if raw == " " {
		value = "space"
	}
	if value == "" {
		value = fallback
	}
	if strings.EqualFold(value, "space") {
		return []string{" ", "space"}, "space"
	}
	if utf8.RuneCountInString(value) == 1 {
		r, _ := utf8.DecodeRuneInString(value)
		if unicode.IsUpper(r) {
			return []string{value, "shift+" + string(unicode.ToLower(r))}, value
		}
		return []string{value}, value
	}
	return []string{strings.ToLower(value)}, value
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.addTodo, k.toggleTodo, k.checkAll, k.newCategory, k.selectCategory, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.addTodo, k.toggleTodo, k.checkAll, k.copyTodo, k.deleteTodo, k.deleteCompleted},
		{k.moveUp, k.moveDown, k.moveTodoUp, k.moveTodoDown},
		{k.categoryLeft, k.categoryRight, k.selectCategory, k.newCategory, k.editCategory, k.deleteCategory},
		{k.toggleHelp, k.reload, k.quit},
	}
}
