package editor

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Internal is the built-in editor. Esc or Ctrl+Q finishes editing, Ctrl+C
// aborts.
type Internal struct {
	// ProgramOptions are appended to the bubbletea program options.
	ProgramOptions []tea.ProgramOption
}

func (e *Internal) Edit(ctx context.Context, d Draft) (string, error) {
	opts := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, e.ProgramOptions...)
	p := tea.NewProgram(newEditorModel(d), opts...)

	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("internal editor: %w", err)
	}

	m, ok := final.(editorModel)
	if !ok {
		return "", fmt.Errorf("internal editor: unexpected model %T", final)
	}
	if m.aborted {
		return "", ErrAborted
	}
	return m.Value(), nil
}

var (
	nameStyle = lipgloss.NewStyle().Bold(true)
	dateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type editorModel struct {
	draft    Draft
	textarea textarea.Model
	width    int
	done     bool
	aborted  bool
}

func newEditorModel(d Draft) editorModel {
	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.MaxWidth = 0
	ta.SetValue(d.Text)
	ta.Focus()

	return editorModel{draft: d, textarea: ta}
}

// Value is the current text, lines joined with "\n".
func (m editorModel) Value() string {
	return m.textarea.Value()
}

func (m editorModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc, tea.KeyCtrlQ:
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlC:
			m.aborted = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.textarea.SetWidth(msg.Width)
		// title row and help row
		m.textarea.SetHeight(max(msg.Height-2, 1))
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m editorModel) View() string {
	if m.done || m.aborted {
		return ""
	}
	return m.title() + "\n" + m.textarea.View() + "\n" + helpStyle.Render("esc/ctrl+q save • ctrl+c abort")
}

// title renders "name|" in the left quarter of the row and the date after it.
func (m editorModel) title() string {
	left := ""
	if m.draft.Name != "" {
		left = m.draft.Name + "|"
	}
	date := dateStyle.Render(m.draft.Date.Format(DateLayout))
	if m.width <= 0 {
		if left == "" {
			return date
		}
		return nameStyle.Render(left) + date
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		nameStyle.Width(m.width/4).Render(left),
		date,
	)
}
