package tui

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"
	"github.com/evanschultz/checklist/internal/app"
	"github.com/evanschultz/checklist/internal/domain"
)

// Service represents service data used by this package.
type Service interface {
	Board() app.Board
	CurrentScope() domain.Scope
	SelectCategory(string) domain.Selection
	SelectAll() domain.Selection
	AddCategory(string, domain.Color) (domain.Category, error)
	EditCategory(string, string, domain.Color) (domain.Category, bool, error)
	RequestDeleteCategory(string) (app.Confirmation, bool)
	AddTodo(string) (domain.Todo, bool)
	ToggleTodo(string) (domain.Todo, bool)
	CheckAll(domain.Scope) bool
	RequestDeleteTodo(string) (app.Confirmation, bool)
	RequestDeleteCompleted(domain.Scope) (app.Confirmation, bool)
	Confirm(app.Confirmation) error
	Reorder([]string) bool
}

// inputMode describes input mode.
type inputMode int

// modeNone and related constants define package defaults.
const (
	modeNone inputMode = iota
	modeAddTodo
	modeAddCategory
	modeEditCategory
	modeConfirmAction
	modeAlert
)

// category form fields.
const (
	categoryFieldName = iota
	categoryFieldColor
)

const (
	cardWidth      = 24
	todoInputLimit = 200
	nameInputLimit = 40
)

// Model represents model data used by this package.
type Model struct {
	svc Service

	board  app.Board
	loaded bool
	ready  bool
	width  int
	height int
	status string

	mode        inputMode
	help        help.Model
	keys        keyMap
	showHelpBar bool
	copyText    ClipboardFunc

	// categoryCursor 0 is the All card; i>0 is board.Categories[i-1].
	categoryCursor     int
	todoCursor         int
	pendingFocusTodoID string

	todoInput      textinput.Model
	categoryInput  textinput.Model
	categoryField  int
	categoryColor  int
	editCategoryID string

	pendingConfirm app.Confirmation
	confirmChoice  int

	alert     app.ValidationError
	alertBack inputMode
}

// loadedMsg carries a freshly derived board.
type loadedMsg struct {
	board app.Board
}

// actionMsg reports the outcome of a service call.
type actionMsg struct {
	err         error
	alert       *app.ValidationError
	status      string
	reload      bool
	closeForm   bool
	focusTodoID string
}

// NewModel constructs a new value for this package.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		svc:           svc,
		status:        "loading...",
		help:          h,
		keys:          newKeyMap(),
		showHelpBar:   true,
		copyText:      clipboard.WriteAll,
		todoInput:     newModalInput("", "what needs doing?", "", todoInputLimit),
		categoryInput: newModalInput("", "category name", "", nameInputLimit),
		categoryColor: -1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadData
}

// loadData derives the board from the service.
func (m Model) loadData() tea.Msg {
	return loadedMsg{board: m.svc.Board()}
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		m.help.SetWidth(max(0, msg.Width-2))
		return m, nil

	case loadedMsg:
		m.board = msg.board
		m.categoryCursor = clamp(m.categoryCursor, 0, len(m.board.Categories))
		if m.pendingFocusTodoID != "" {
			m.focusTodoByID(m.pendingFocusTodoID)
			m.pendingFocusTodoID = ""
		}
		m.todoCursor = clamp(m.todoCursor, 0, len(m.board.Todos)-1)
		if !m.loaded {
			m.loaded = true
			if len(m.board.Categories) == 0 && len(m.board.Todos) == 0 {
				m.status = "no items yet"
			} else {
				m.status = "ready"
			}
		}
		return m, nil

	case actionMsg:
		if msg.alert != nil {
			m.alertBack = m.mode
			m.alert = *msg.alert
			m.mode = modeAlert
			m.status = "input error"
			return m, nil
		}
		if msg.closeForm {
			m.closeForm()
		}
		if msg.err != nil {
			m.status = "error: " + msg.err.Error()
		} else if msg.status != "" {
			m.status = msg.status
		}
		if msg.focusTodoID != "" {
			m.pendingFocusTodoID = msg.focusTodoID
		}
		if msg.reload {
			return m, m.loadData
		}
		return m, nil

	case tea.KeyPressMsg:
		if m.mode != modeNone {
			return m.handleInputModeKey(msg)
		}
		return m.handleNormalModeKey(msg)

	default:
		return m, nil
	}
}

// handleNormalModeKey handles keys while the board has focus.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll && msg.String() == "esc" {
		m.help.ShowAll = false
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.loadData
	case key.Matches(msg, m.keys.categoryLeft):
		m.categoryCursor = wrapIndex(m.categoryCursor, -1, len(m.board.Categories)+1)
		return m, nil
	case key.Matches(msg, m.keys.categoryRight):
		m.categoryCursor = wrapIndex(m.categoryCursor, 1, len(m.board.Categories)+1)
		return m, nil
	case key.Matches(msg, m.keys.selectCategory):
		return m.selectCategoryAtCursor()
	case key.Matches(msg, m.keys.moveTodoUp):
		return m.moveTodo(-1)
	case key.Matches(msg, m.keys.moveTodoDown):
		return m.moveTodo(1)
	case key.Matches(msg, m.keys.moveUp):
		m.todoCursor = clamp(m.todoCursor-1, 0, len(m.board.Todos)-1)
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		m.todoCursor = clamp(m.todoCursor+1, 0, len(m.board.Todos)-1)
		return m, nil
	case key.Matches(msg, m.keys.toggleTodo):
		return m.toggleSelectedTodo()
	case key.Matches(msg, m.keys.addTodo):
		m.help.ShowAll = false
		return m, m.startAddTodo()
	case key.Matches(msg, m.keys.newCategory):
		m.help.ShowAll = false
		return m, m.startCategoryForm(nil)
	case key.Matches(msg, m.keys.editCategory):
		category, ok := m.categoryAtCursor()
		if !ok {
			m.status = "move to a category card to edit it"
			return m, nil
		}
		m.help.ShowAll = false
		return m, m.startCategoryForm(&category)
	case key.Matches(msg, m.keys.deleteCategory):
		category, ok := m.categoryAtCursor()
		if !ok {
			m.status = "move to a category card to delete it"
			return m, nil
		}
		c, ok := m.svc.RequestDeleteCategory(category.ID)
		if !ok {
			m.status = "category not found"
			return m, m.loadData
		}
		m.openConfirm(c)
		return m, nil
	case key.Matches(msg, m.keys.deleteTodo):
		todo, ok := m.selectedTodo()
		if !ok {
			m.status = "no item selected"
			return m, nil
		}
		if !todo.Checked {
			m.status = "check the item before deleting it"
			return m, nil
		}
		c, ok := m.svc.RequestDeleteTodo(todo.ID)
		if !ok {
			m.status = "item not found"
			return m, m.loadData
		}
		m.openConfirm(c)
		return m, nil
	case key.Matches(msg, m.keys.checkAll):
		if len(m.board.Todos) == 0 {
			m.status = "no items to check"
			return m, nil
		}
		return m, func() tea.Msg {
			if m.svc.CheckAll(m.svc.CurrentScope()) {
				return actionMsg{status: "all items checked", reload: true}
			}
			return actionMsg{status: "all items unchecked", reload: true}
		}
	case key.Matches(msg, m.keys.deleteCompleted):
		c, ok := m.svc.RequestDeleteCompleted(m.svc.CurrentScope())
		if !ok {
			m.status = "no completed items"
			return m, nil
		}
		m.openConfirm(c)
		return m, nil
	case key.Matches(msg, m.keys.copyTodo):
		todo, ok := m.selectedTodo()
		if !ok {
			m.status = "no item selected"
			return m, nil
		}
		copyText := m.copyText
		return m, func() tea.Msg {
			if err := copyText(todo.Text); err != nil {
				return actionMsg{status: "copy failed: " + err.Error()}
			}
			return actionMsg{status: fmt.Sprintf("copied %q", truncate(todo.Text, 28))}
		}
	default:
		return m, nil
	}
}

// handleInputModeKey handles keys while a form or modal is open.
func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeAlert:
		switch msg.String() {
		case "enter", "esc", "space", " ":
			m.mode = m.alertBack
			m.alertBack = modeNone
			m.alert = app.ValidationError{}
			m.status = "edit the category and try again"
			if m.mode == modeNone {
				m.status = "ready"
			}
		}
		return m, nil

	case modeConfirmAction:
		switch msg.String() {
		case "esc", "n":
			m.mode = modeNone
			m.pendingConfirm = app.Confirmation{}
			m.status = "cancelled"
			return m, nil
		case "h", "left", "l", "right":
			if m.confirmChoice == 0 {
				m.confirmChoice = 1
			} else {
				m.confirmChoice = 0
			}
			return m, nil
		case "y":
			m.confirmChoice = 0
			return m.applyConfirmed()
		case "enter":
			if m.confirmChoice == 1 {
				m.mode = modeNone
				m.pendingConfirm = app.Confirmation{}
				m.status = "cancelled"
				return m, nil
			}
			return m.applyConfirmed()
		default:
			return m, nil
		}

	case modeAddTodo:
		switch msg.String() {
		case "esc":
			m.closeForm()
			m.status = "cancelled"
			return m, nil
		case "enter":
			text := m.todoInput.Value()
			return m, func() tea.Msg {
				todo, ok := m.svc.AddTodo(text)
				if !ok {
					return actionMsg{status: "nothing added", closeForm: true}
				}
				return actionMsg{status: "item added", reload: true, closeForm: true, focusTodoID: todo.ID}
			}
		default:
			var cmd tea.Cmd
			m.todoInput, cmd = m.todoInput.Update(msg)
			return m, cmd
		}

	case modeAddCategory, modeEditCategory:
		return m.handleCategoryFormKey(msg)

	default:
		m.mode = modeNone
		return m, nil
	}
}

// handleCategoryFormKey handles the name field and color picker.
func (m Model) handleCategoryFormKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeForm()
		m.status = "cancelled"
		return m, nil
	case "tab", "shift+tab":
		return m, m.setCategoryField(1 - m.categoryField)
	case "enter":
		return m, m.submitCategoryForm()
	}
	if m.categoryField == categoryFieldColor {
		switch msg.String() {
		case "h", "left":
			m.categoryColor = m.stepColor(-1)
		case "l", "right":
			m.categoryColor = m.stepColor(1)
		default:
			if r := []rune(msg.String()); len(r) == 1 && r[0] >= '1' && int(r[0]-'1') < len(domain.Palette) {
				m.categoryColor = int(r[0] - '1')
			}
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.categoryInput, cmd = m.categoryInput.Update(msg)
	return m, cmd
}

// stepColor moves the palette cursor, starting from the first color when unset.
func (m Model) stepColor(delta int) int {
	if m.categoryColor < 0 {
		if delta < 0 {
			return len(domain.Palette) - 1
		}
		return 0
	}
	return wrapIndex(m.categoryColor, delta, len(domain.Palette))
}

// setCategoryField moves focus between the name input and the color picker.
func (m *Model) setCategoryField(field int) tea.Cmd {
	m.categoryField = field
	if field == categoryFieldName {
		return m.categoryInput.Focus()
	}
	m.categoryInput.Blur()
	return nil
}

// submitCategoryForm returns the command that saves the category form.
func (m Model) submitCategoryForm() tea.Cmd {
	name := m.categoryInput.Value()
	var c domain.Color
	if m.categoryColor >= 0 && m.categoryColor < len(domain.Palette) {
		c = domain.Palette[m.categoryColor]
	}
	editID := m.editCategoryID
	editing := m.mode == modeEditCategory
	return func() tea.Msg {
		if editing {
			category, ok, err := m.svc.EditCategory(editID, name, c)
			if alert, isAlert := validationAlert(err); isAlert {
				return actionMsg{alert: alert}
			}
			if err != nil {
				return actionMsg{err: err}
			}
			if !ok {
				return actionMsg{status: "category no longer exists", reload: true, closeForm: true}
			}
			return actionMsg{status: fmt.Sprintf("updated %q", category.Name), reload: true, closeForm: true}
		}
		category, err := m.svc.AddCategory(name, c)
		if alert, isAlert := validationAlert(err); isAlert {
			return actionMsg{alert: alert}
		}
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: fmt.Sprintf("created %q", category.Name), reload: true, closeForm: true}
	}
}

// validationAlert unwraps a user-facing validation error.
func validationAlert(err error) (*app.ValidationError, bool) {
	var v *app.ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// startAddTodo opens the new item input.
func (m *Model) startAddTodo() tea.Cmd {
	m.mode = modeAddTodo
	m.todoInput = newModalInput("", "what needs doing?", "", todoInputLimit)
	m.status = "new item"
	if category, ok := m.board.SelectedCategory(); ok {
		m.status = "new item in " + category.Name
	}
	return m.todoInput.Focus()
}

// startCategoryForm opens the category form, prefilled when editing.
func (m *Model) startCategoryForm(category *domain.Category) tea.Cmd {
	m.mode = modeAddCategory
	m.editCategoryID = ""
	m.categoryColor = -1
	value := ""
	m.status = "new category"
	if category != nil {
		m.mode = modeEditCategory
		m.editCategoryID = category.ID
		m.categoryColor = domain.PaletteIndex(category.Color)
		value = category.Name
		m.status = "edit category"
	}
	m.categoryInput = newModalInput("", "category name", value, nameInputLimit)
	m.categoryInput.CursorEnd()
	return m.setCategoryField(categoryFieldName)
}

// closeForm resets every form back to the board.
func (m *Model) closeForm() {
	m.mode = modeNone
	m.todoInput.Blur()
	m.categoryInput.Blur()
	m.editCategoryID = ""
	m.categoryColor = -1
	m.categoryField = categoryFieldName
}

// openConfirm shows the confirmation modal with cancel preselected.
func (m *Model) openConfirm(c app.Confirmation) {
	m.help.ShowAll = false
	m.pendingConfirm = c
	m.confirmChoice = 1
	m.mode = modeConfirmAction
	m.status = "confirm " + strings.ToLower(c.Title)
}

// applyConfirmed runs the pending confirmation.
func (m Model) applyConfirmed() (tea.Model, tea.Cmd) {
	c := m.pendingConfirm
	m.mode = modeNone
	m.pendingConfirm = app.Confirmation{}
	m.status = "applying action..."
	return m, func() tea.Msg {
		err := m.svc.Confirm(c)
		switch {
		case errors.Is(err, app.ErrStaleConfirmation):
			return actionMsg{status: "nothing to delete", reload: true}
		case err != nil:
			return actionMsg{err: err, reload: true}
		}
		switch c.Kind {
		case app.ConfirmDeleteCategory:
			return actionMsg{status: "category deleted", reload: true}
		case app.ConfirmDeleteTodo:
			return actionMsg{status: "item deleted", reload: true}
		default:
			return actionMsg{status: fmt.Sprintf("deleted %d completed", c.Count()), reload: true}
		}
	}
}

// selectCategoryAtCursor applies a tap on the card under the cursor.
func (m Model) selectCategoryAtCursor() (tea.Model, tea.Cmd) {
	category, ok := m.categoryAtCursor()
	m.todoCursor = 0
	if !ok {
		return m, func() tea.Msg {
			m.svc.SelectAll()
			return actionMsg{status: "showing all items", reload: true}
		}
	}
	return m, func() tea.Msg {
		sel := m.svc.SelectCategory(category.ID)
		if sel.IsNone() {
			return actionMsg{status: "showing all items", reload: true}
		}
		return actionMsg{status: "showing " + category.Name, reload: true}
	}
}

// toggleSelectedTodo flips the item under the cursor.
func (m Model) toggleSelectedTodo() (tea.Model, tea.Cmd) {
	todo, ok := m.selectedTodo()
	if !ok {
		m.status = "no item selected"
		return m, nil
	}
	return m, func() tea.Msg {
		updated, ok := m.svc.ToggleTodo(todo.ID)
		if !ok {
			return actionMsg{status: "item not found", reload: true}
		}
		status := "unchecked"
		if updated.Checked {
			status = "checked"
		}
		return actionMsg{status: status, reload: true, focusTodoID: updated.ID}
	}
}

// moveTodo swaps the item under the cursor with its neighbor in display order.
func (m Model) moveTodo(delta int) (tea.Model, tea.Cmd) {
	todos := m.board.Todos
	idx := m.todoCursor
	target := idx + delta
	if idx < 0 || idx >= len(todos) || target < 0 || target >= len(todos) {
		m.status = "can't move further"
		return m, nil
	}
	ids := make([]string, 0, len(todos))
	for _, todo := range todos {
		ids = append(ids, todo.ID)
	}
	ids[idx], ids[target] = ids[target], ids[idx]
	movedID := todos[idx].ID
	return m, func() tea.Msg {
		if !m.svc.Reorder(ids) {
			return actionMsg{status: "order unchanged"}
		}
		return actionMsg{status: "item moved", reload: true, focusTodoID: movedID}
	}
}

// categoryAtCursor returns the category card under the cursor.
func (m Model) categoryAtCursor() (domain.Category, bool) {
	idx := m.categoryCursor - 1
	if idx < 0 || idx >= len(m.board.Categories) {
		return domain.Category{}, false
	}
	return m.board.Categories[idx], true
}

// selectedTodo returns the item under the cursor.
func (m Model) selectedTodo() (domain.Todo, bool) {
	if m.todoCursor < 0 || m.todoCursor >= len(m.board.Todos) {
		return domain.Todo{}, false
	}
	return m.board.Todos[m.todoCursor], true
}

// focusTodoByID moves the cursor to the item with id when it is displayed.
func (m *Model) focusTodoByID(id string) {
	for idx, todo := range m.board.Todos {
		if todo.ID == id {
			m.todoCursor = idx
			return
		}
	}
}

// View handles view.
func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render builds the full screen.
func (m Model) render() string {
	if !m.ready || !m.loaded {
		return "loading..."
	}

	accent := hexColor(domain.AccentColor)
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	statusStyle := lipgloss.NewStyle().Foreground(dim)

	scope := "All"
	if category, ok := m.board.SelectedCategory(); ok {
		scope = category.Name
	}
	header := titleStyle.Render("checklist") + "  " + lipgloss.NewStyle().Foreground(muted).Render(scope)

	sections := []string{
		header,
		m.renderCategoryStrip(muted, dim),
		"",
		m.renderTodoList(accent, muted, dim),
		"",
		lipgloss.NewStyle().Foreground(muted).Render(m.checkAllHint()),
	}
	if strings.TrimSpace(m.status) != "" {
		sections = append(sections, statusStyle.Render(m.status))
	}
	content := strings.Join(sections, "\n")

	fullContent := content
	if m.showHelpBar {
		helpBubble := m.help
		helpBubble.ShowAll = false
		helpBubble.SetWidth(max(0, m.width-2))
		helpLine := lipgloss.NewStyle().
			Foreground(muted).
			BorderTop(true).
			BorderForeground(dim).
			Padding(0, 1).
			Width(max(0, m.width)).
			Render(helpBubble.View(m.keys))
		if m.height > 0 {
			content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
		}
		fullContent = content + "\n" + helpLine
	} else if m.height > 0 {
		fullContent = fitLines(content, m.height)
	}

	if overlay := m.renderModeOverlay(accent, muted, dim, m.width-8); overlay != "" {
		overlayHeight := lipgloss.Height(fullContent)
		if m.height > 0 {
			overlayHeight = m.height
		}
		fullContent = overlayOnContent(fullContent, overlay, max(1, m.width), max(1, overlayHeight))
	}
	return fullContent
}

// checkAllHint labels the bulk toggle for the displayed items.
func (m Model) checkAllHint() string {
	label := "check all"
	if len(m.board.Todos) > 0 && m.board.AllChecked {
		label = "uncheck all"
	}
	return fmt.Sprintf("%s %s • %s delete completed",
		m.keys.checkAll.Help().Key, label, m.keys.deleteCompleted.Help().Key)
}

// renderCategoryStrip lays the All card and category cards out in rows.
func (m Model) renderCategoryStrip(muted, dim color.Color) string {
	cards := make([]string, 0, len(m.board.Categories)+1)
	cards = append(cards, m.renderCategoryCard(
		"All",
		hexColor(domain.AllCategoryColor),
		m.board.All,
		m.categoryCursor == 0,
		m.board.Selection.IsNone(),
		muted,
		dim,
	))
	for idx, category := range m.board.Categories {
		cards = append(cards, m.renderCategoryCard(
			category.Name,
			hexColor(category.Color),
			m.board.Progress[category.ID],
			m.categoryCursor == idx+1,
			m.board.Selection.CategoryID() == category.ID,
			muted,
			dim,
		))
	}

	perRow := len(cards)
	if m.width > 0 {
		perRow = clamp(m.width/(cardWidth+1), 1, len(cards))
	}
	rows := make([]string, 0, len(cards)/perRow+1)
	for start := 0; start < len(cards); start += perRow {
		end := min(len(cards), start+perRow)
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[start:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderCategoryCard renders one category card with its progress bar.
func (m Model) renderCategoryCard(name string, c color.Color, p app.Progress, cursor, selected bool, muted, dim color.Color) string {
	inner := cardWidth - 4
	title := lipgloss.NewStyle().Bold(true).Foreground(c).Render(truncate(name, inner-2))
	if selected {
		title += " " + lipgloss.NewStyle().Foreground(c).Render("●")
	}
	counts := lipgloss.NewStyle().Foreground(muted).Render(
		fmt.Sprintf("%d/%d • %s", p.Checked, p.Total, p.Completion()),
	)
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(0, 1).
		Width(cardWidth)
	if cursor {
		style = style.Border(lipgloss.ThickBorder()).BorderForeground(c)
	}
	return style.Render(strings.Join([]string{title, progressBar(p, inner, c, dim), counts}, "\n"))
}

// progressBar renders a fixed-width completion bar.
func progressBar(p app.Progress, width int, fill, empty color.Color) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if c := p.Completion(); c.HasItems {
		filled = int(math.Round(float64(width) * float64(c.Percent) / 100))
	}
	filled = clamp(filled, 0, width)
	return lipgloss.NewStyle().Foreground(fill).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(empty).Render(strings.Repeat("░", width-filled))
}

// renderTodoList renders the displayed items around the cursor.
func (m Model) renderTodoList(accent, muted, dim color.Color) string {
	if len(m.board.Todos) == 0 {
		hint := lipgloss.NewStyle().Foreground(muted)
		if category, ok := m.board.SelectedCategory(); ok {
			return hint.Render(fmt.Sprintf("No items in %s yet. Press %s to add one.", category.Name, m.keys.addTodo.Help().Key))
		}
		return hint.Render(fmt.Sprintf(
			"No items yet. Press %s to add one, %s to create a category.",
			m.keys.addTodo.Help().Key,
			m.keys.newCategory.Help().Key,
		))
	}

	windowSize := len(m.board.Todos)
	if m.height > 0 {
		windowSize = max(3, m.height-16)
	}
	start, end := windowBounds(len(m.board.Todos), m.todoCursor, windowSize)
	textWidth := 60
	if m.width > 0 {
		textWidth = max(12, m.width-24)
	}
	showCategory := m.board.Selection.IsNone()

	lines := make([]string, 0, end-start+2)
	if start > 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(dim).Render(fmt.Sprintf("  ↑ %d more", start)))
	}
	for idx := start; idx < end; idx++ {
		todo := m.board.Todos[idx]
		prefix := "  "
		if idx == m.todoCursor {
			prefix = lipgloss.NewStyle().Foreground(accent).Render("│ ")
		}
		box := "[ ]"
		textStyle := lipgloss.NewStyle()
		if todo.Checked {
			box = "[x]"
			textStyle = textStyle.Foreground(muted).Strikethrough(true)
		}
		if idx == m.todoCursor {
			textStyle = textStyle.Bold(true)
		}
		row := prefix + box + " " + textStyle.Render(truncate(todo.Text, textWidth))
		if showCategory && !todo.Uncategorized() {
			if category, ok := m.board.Category(todo.CategoryID); ok {
				row += "  " + lipgloss.NewStyle().Foreground(hexColor(category.Color)).Render("● "+truncate(category.Name, 16))
			}
		}
		lines = append(lines, row)
	}
	if rest := len(m.board.Todos) - end; rest > 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(dim).Render(fmt.Sprintf("  ↓ %d more", rest)))
	}
	return strings.Join(lines, "\n")
}

// renderModeOverlay renders the modal for the active mode, if any.
func (m Model) renderModeOverlay(accent, muted, dim color.Color, maxWidth int) string {
	hintStyle := lipgloss.NewStyle().Foreground(muted)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	modal := func(minW, maxW int, border color.Color) lipgloss.Style {
		style := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1)
		if maxWidth > 0 {
			style = style.Width(clamp(maxWidth, minW, maxW))
		}
		return style
	}

	switch m.mode {
	case modeAddTodo:
		title := "New item"
		if category, ok := m.board.SelectedCategory(); ok {
			title = "New item in " + category.Name
		}
		lines := []string{
			titleStyle.Render(title),
			m.todoInput.View(),
			hintStyle.Render("enter save • esc cancel"),
		}
		return modal(36, 72, accent).Render(strings.Join(lines, "\n"))

	case modeAddCategory, modeEditCategory:
		title := "New category"
		if m.mode == modeEditCategory {
			title = "Edit category"
		}
		label := func(text string, field int) string {
			if m.categoryField == field {
				return titleStyle.Render(text)
			}
			return hintStyle.Render(text)
		}
		lines := []string{
			titleStyle.Render(title),
			label("name:  ", categoryFieldName) + m.categoryInput.View(),
			label("color: ", categoryFieldColor) + m.renderSwatches(),
			hintStyle.Render("tab switch field • h/l or 1-8 pick color • enter save • esc cancel"),
		}
		return modal(40, 80, accent).Render(strings.Join(lines, "\n"))

	case modeConfirmAction:
		confirmStyle := lipgloss.NewStyle().Foreground(muted)
		cancelStyle := lipgloss.NewStyle().Foreground(muted)
		if m.confirmChoice == 0 {
			confirmStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
		} else {
			cancelStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
		}
		c := m.pendingConfirm
		lines := []string{
			titleStyle.Render(c.Title),
			c.Message,
			confirmStyle.Render("["+strings.ToLower(c.ConfirmLabel)+"]") + "  " + cancelStyle.Render("["+strings.ToLower(c.CancelLabel)+"]"),
			hintStyle.Render("enter apply • esc cancel • h/l switch • y confirm • n cancel"),
		}
		return modal(36, 72, accent).Render(strings.Join(lines, "\n"))

	case modeAlert:
		lines := []string{
			titleStyle.Render(m.alert.Title),
			m.alert.Message,
			lipgloss.NewStyle().Bold(true).Foreground(accent).Render("[ok]"),
			hintStyle.Render("enter dismiss"),
		}
		return modal(32, 64, accent).Render(strings.Join(lines, "\n"))
	}

	if m.help.ShowAll {
		width := clamp(maxWidth, 48, 90)
		hb := m.help
		hb.ShowAll = true
		hb.SetWidth(width - 4)
		lines := []string{
			titleStyle.Render("checklist help"),
			"",
			hb.View(m.keys),
			"",
			hintStyle.Render("press ? or esc to close"),
		}
		return modal(48, 90, dim).Render(strings.Join(lines, "\n"))
	}
	return ""
}

// renderSwatches renders the palette with the chosen color bracketed.
func (m Model) renderSwatches() string {
	parts := make([]string, 0, len(domain.Palette)+1)
	for idx, c := range domain.Palette {
		dot := lipgloss.NewStyle().Foreground(hexColor(c)).Render("●")
		if idx == m.categoryColor {
			parts = append(parts, "["+dot+"]")
			continue
		}
		parts = append(parts, " "+dot+" ")
	}
	name := "(choose a color)"
	if m.categoryColor >= 0 && m.categoryColor < len(domain.Palette) {
		name = domain.PaletteNames[domain.Palette[m.categoryColor]]
	}
	return strings.Join(parts, "") + " " + name
}

// hexColor converts a domain color to a lipgloss color.
func hexColor(c domain.Color) color.Color {
	return lipgloss.Color(string(c))
}

// newModalInput constructs modal input.
func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	if value != "" {
		in.SetValue(value)
	}
	return in
}

// wrapIndex wraps an index by delta for a bounded collection.
func wrapIndex(current int, delta int, total int) int {
	if total <= 0 {
		return 0
	}
	next := current + delta
	for next < 0 {
		next += total
	}
	for next >= total {
		next -= total
	}
	return next
}

// windowBounds returns an inclusive-exclusive list window that keeps selected visible.
func windowBounds(total, selected, windowSize int) (int, int) {
	if total <= 0 || windowSize <= 0 {
		return 0, 0
	}
	if total <= windowSize {
		return 0, total
	}
	selected = clamp(selected, 0, total-1)
	start := max(0, selected-windowSize/2)
	end := start + windowSize
	if end > total {
		end = total
		start = max(0, end-windowSize)
	}
	return start, end
}

// clamp clamps the requested operation.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent overlays on content.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centeredOverlay := lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		overlay,
	)
	overlayLayer := lipgloss.NewLayer(centeredOverlay).X(0).Y(0).Z(10)

	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}

// truncate truncates the requested operation.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}
