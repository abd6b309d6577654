package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"nawabs/internal/prompt"
)

type pickItem string

func (i pickItem) Title() string       { return string(i) }
func (i pickItem) Description() string { return "" }
func (i pickItem) FilterValue() string { return string(i) }

type pickModel struct {
	list    list.Model
	choice  int
	aborted bool
}

func (m pickModel) Init() tea.Cmd { return nil }

func (m pickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			m.choice = m.list.Index()
			return m, tea.Quit
		case "q", "esc", "ctrl+c":
			m.aborted = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickModel) View() string { return m.list.View() }

// Pick renders a full-screen selection list and returns the chosen index.
// Quitting the list maps to prompt.ErrAborted so callers treat it exactly
// like a typed "abort".
func Pick(in io.Reader, out io.Writer, title string, options []string) (int, error) {
	items := make([]list.Item, len(options))
	for i, opt := range options {
		items[i] = pickItem(opt)
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false

	l := list.New(items, delegate, 0, 0)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)

	program := tea.NewProgram(pickModel{list: l}, tea.WithInput(in), tea.WithOutput(out))
	final, err := program.Run()
	if err != nil {
		return 0, fmt.Errorf("run picker: %w", err)
	}

	m, ok := final.(pickModel)
	if !ok || m.aborted {
		return 0, prompt.ErrAborted
	}
	return m.choice, nil
}

// Picker is a prompt.Asker whose Choose uses the bubbletea list instead of a
// numbered text prompt. Free-form questions still go through the terminal.
type Picker struct {
	*prompt.Terminal
	in  io.Reader
	out io.Writer
}

// NewPicker creates a picker-backed asker reading from in (normally a TTY).
func NewPicker(in io.Reader, out io.Writer) *Picker {
	return &Picker{Terminal: prompt.NewTerminal(in, out), in: in, out: out}
}

// Choose presents the options as a selection list.
func (p *Picker) Choose(title string, options []string) (int, error) {
	return Pick(p.in, p.out, title, options)
}

var _ prompt.Asker = (*Picker)(nil)
