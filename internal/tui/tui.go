// Package tui is the interactive list view. Every key action goes straight to
// the store and the list is rebuilt from the collection the store returns.
package tui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/shoplist/internal/model"
	"github.com/idilsaglam/shoplist/internal/share"
	"github.com/idilsaglam/shoplist/internal/ui"
)

// ItemStore is the part of store.Store the view drives.
type ItemStore interface {
	Items() []model.Item
	Add(text string) ([]model.Item, error)
	Update(id, text string) ([]model.Item, error)
	Toggle(id string) ([]model.Item, error)
	Delete(id string) ([]model.Item, error)
	ClearCompleted() ([]model.Item, error)
	ClearAll() ([]model.Item, error)
	ExportFile(dir string) (string, error)
}

// Options configure the view.
type Options struct {
	ExportDir  string
	ShareTitle string
	// Copy puts text on the clipboard. Nil disables the share key.
	Copy func(text string) error
}

// listItem adapts model.Item to bubbles/list.Item
type listItem struct {
	item model.Item
}

func (i listItem) FilterValue() string { return i.item.Text }

// single-line delegate
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	box, text := mutedStyle.Render(boxUnchecked), it.item.Text
	if it.item.Completed {
		box, text = successStyle.Render(boxChecked), doneStyle.Render(text)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s", prefix, box, text)
}

type mode int

const (
	browsing mode = iota
	adding
	editing
	confirming
)

// pending is an action waiting for a yes/no answer. Declining drops it
// without touching the store.
type pending struct {
	prompt string
	run    func() ([]model.Item, error)
	done   string
}

type Model struct {
	store ItemStore
	opt   Options

	list list.Model
	ti   textinput.Model
	mode mode

	editID  string
	confirm *pending

	status    string
	statusErr bool

	width, height int
}

var (
	addBind    = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	editBind   = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
	toggleBind = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle"))
	deleteBind = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	clearBind  = key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear done"))
	wipeBind   = key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "clear all"))
	exportBind = key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export"))
	shareBind  = key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "copy share text"))
)

// New builds the view over s, loading the current collection.
func New(s ItemStore, opt Options) Model {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("item", "items")
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{addBind, editBind, toggleBind, deleteBind}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{addBind, editBind, toggleBind, deleteBind, clearBind, wipeBind, exportBind, shareBind}
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	m := Model{store: s, opt: opt, list: l, ti: ti, width: 80, height: 24}
	m.refresh(s.Items())
	return m
}

// Run starts the program on the alternate screen and blocks until quit.
func Run(s ItemStore, opt Options) error {
	_, err := tea.NewProgram(New(s, opt), tea.WithAltScreen()).Run()
	return err
}

// refresh rebuilds the list from the store's latest collection.
func (m *Model) refresh(items []model.Item) tea.Cmd {
	li := make([]list.Item, 0, len(items))
	for _, it := range items {
		li = append(li, listItem{item: it})
	}
	done, pending := model.Stats(items)
	m.list.Title = fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render("Shopping list"),
		successStyle.Render("✔"), done,
		pendingStyle.Render("•"), pending,
		accentStyle.Render("Total"), len(items),
	)
	return m.list.SetItems(li)
}

// apply runs a store mutation and re-renders from its result.
func (m *Model) apply(items []model.Item, err error, okMsg string) tea.Cmd {
	if err != nil {
		m.setStatus(err.Error(), true)
		return nil
	}
	if okMsg != "" {
		m.setStatus(okMsg, false)
	}
	return m.refresh(items)
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status, m.statusErr = msg, isErr
}

func (m Model) selected() (model.Item, bool) {
	li, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return model.Item{}, false
	}
	return li.item, true
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = ws.Width, ws.Height
		return m, nil
	}

	switch m.mode {
	case adding, editing:
		return m.updateInput(msg)
	case confirming:
		return m.updateConfirm(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok || m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	m.setStatus("", false)
	switch km.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "a":
		m.mode = adding
		m.ti.SetValue("")
		m.ti.Placeholder = "New item..."
		return m, m.ti.Focus()

	case "e":
		it, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.mode = editing
		m.editID = it.ID
		m.ti.SetValue(it.Text)
		m.ti.CursorEnd()
		m.ti.Placeholder = "Edit item..."
		return m, m.ti.Focus()

	case " ":
		it, ok := m.selected()
		if !ok {
			return m, nil
		}
		items, err := m.store.Toggle(it.ID)
		return m, m.apply(items, err, "")

	case "d":
		it, ok := m.selected()
		if !ok {
			return m, nil
		}
		id := it.ID
		m.ask(pending{
			prompt: ui.DeletePrompt,
			run:    func() ([]model.Item, error) { return m.store.Delete(id) },
			done:   "Item deleted",
		})
		return m, nil

	case "c":
		done, _ := model.Stats(m.store.Items())
		if done == 0 {
			m.setStatus("No completed items to clear", false)
			return m, nil
		}
		m.ask(pending{
			prompt: ui.ClearCompletedPrompt(done),
			run:    m.store.ClearCompleted,
			done:   "Completed items cleared",
		})
		return m, nil

	case "X":
		n := len(m.store.Items())
		if n == 0 {
			m.setStatus("List is already empty", false)
			return m, nil
		}
		m.ask(pending{
			prompt: ui.ClearAllPrompt(n),
			run:    m.store.ClearAll,
			done:   "List cleared",
		})
		return m, nil

	case "x":
		p, err := m.store.ExportFile(m.opt.ExportDir)
		if err != nil {
			m.setStatus(err.Error(), true)
		} else {
			m.setStatus("Exported to "+p, false)
		}
		return m, nil

	case "s":
		m.shareToClipboard()
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) ask(p pending) {
	m.confirm = &p
	m.mode = confirming
}

func (m *Model) shareToClipboard() {
	if m.opt.Copy == nil {
		m.setStatus("Clipboard is not available", true)
		return
	}
	text, err := share.Text(m.opt.ShareTitle, m.store.Items())
	if errors.Is(err, share.ErrNothingToShare) {
		m.setStatus("No items to share", false)
		return
	}
	if err == nil {
		err = m.opt.Copy(text)
	}
	if err != nil {
		m.setStatus("share: "+err.Error(), true)
		return
	}
	m.setStatus("Share text copied to clipboard", false)
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch km.String() {
	case "y", "Y", "enter":
		p := m.confirm
		m.confirm, m.mode = nil, browsing
		items, err := p.run()
		return m, m.apply(items, err, p.done)
	case "n", "N", "esc", "q":
		m.confirm, m.mode = nil, browsing
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "enter":
			text := strings.TrimSpace(m.ti.Value())
			if text == "" {
				m.setStatus("Please enter an item name", true)
				return m, nil
			}
			var (
				items []model.Item
				err   error
				cmd   tea.Cmd
			)
			if m.mode == editing {
				items, err = m.store.Update(m.editID, text)
				cmd = m.apply(items, err, "")
			} else {
				items, err = m.store.Add(text)
				if err == nil {
					m.list.ResetFilter()
				}
				cmd = m.apply(items, err, "")
				if err == nil {
					m.list.Select(len(items) - 1)
				}
			}
			m.closeInput()
			return m, cmd
		case "esc":
			m.closeInput()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m *Model) closeInput() {
	m.mode = browsing
	m.editID = ""
	m.ti.SetValue("")
	m.ti.Blur()
}

func (m Model) View() string {
	extra := 0
	if m.mode != browsing {
		extra += 4
	}
	if m.status != "" {
		extra++
	}
	m.list.SetSize(max(m.width-4, 10), max(m.height-4-extra, 3))

	content := m.list.View()
	switch m.mode {
	case adding, editing:
		title := "Add item"
		if m.mode == editing {
			title = "Edit item"
		}
		content += "\n" + frameStyle.Render(title+"\n"+m.ti.View())
	case confirming:
		content += "\n" + confirmStyle.Render(m.confirm.prompt+"\n"+mutedStyle.Render("y: yes   n/esc: cancel"))
	}
	if m.status != "" {
		st := mutedStyle
		if m.statusErr {
			st = errorStyle
		}
		content = lipgloss.JoinVertical(lipgloss.Left, content, st.Render(m.status))
	}
	return frameStyle.Render(content)
}
