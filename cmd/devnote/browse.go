package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/vinayprograms/devnote/internal/editor"
	"github.com/vinayprograms/devnote/internal/note"
	"github.com/vinayprograms/devnote/internal/store"
)

func newBrowseCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the notes of the selected project in a terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			project, notes, err := a.svc.List(ctx)
			if err != nil {
				return err
			}

			watcher, err := setupWatcher(a.cfg.Paths().Database)
			if err != nil {
				log.Printf("Warning: not watching the database: %v", err)
			} else {
				defer watcher.Close()
			}

			m := newBrowseModel(ctx, a.svc, project, notes)
			m.watcher = watcher
			m.dbName = filepath.Base(a.cfg.Paths().Database)
			if r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80)); err == nil {
				m.renderer = r
			}

			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
			_, err = p.Run()
			return err
		},
	}
}

type noteItem struct {
	note        store.Note
	includeTime bool
}

func (i noteItem) FilterValue() string {
	return i.note.Name + " " + i.note.Content
}

func (i noteItem) Title() string {
	return note.HeaderText(i.note, i.includeTime)
}

func (i noteItem) Description() string {
	line, _, _ := strings.Cut(i.note.Content, "\n")
	if line == "" {
		return note.Empty
	}
	return line
}

func (i noteItem) renderWithSelection(isSelected bool) string {
	guid := colors.guidStyle.Render(i.note.ID[:min(8, len(i.note.ID))])
	title := i.Title()
	if isSelected {
		title = colors.selectorStyle.Render("█ ") + colors.headerStyle.Render(title)
	} else {
		title = "  " + title
	}

	desc := i.Description()
	if i.note.Content == "" {
		desc = colors.emptyStyle.Render(desc)
	} else {
		desc = colors.navStyle.Render(desc)
	}
	return title + " " + guid + "\n    " + desc
}

type noteDelegate struct {
	list.DefaultDelegate
}

func (d noteDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	noteItem, ok := item.(noteItem)
	if !ok {
		return
	}
	fmt.Fprint(w, noteItem.renderWithSelection(index == m.Index()))
}

type fileChangedMsg struct{}

type editorFinishedMsg struct {
	err error
}

type browseModel struct {
	ctx         context.Context
	svc         *note.Service
	project     store.Project
	includeTime bool

	list     list.Model
	viewport viewport.Model
	renderer *glamour.TermRenderer
	watcher  *fsnotify.Watcher
	dbName   string

	previewing    bool
	preview       *store.Note
	confirmDelete *store.Note
	status        string
	quitting      bool
}

func newBrowseModel(ctx context.Context, svc *note.Service, project store.Project, notes []store.Note) browseModel {
	m := browseModel{
		ctx:         ctx,
		svc:         svc,
		project:     project,
		includeTime: svc.Config.IncludeTime,
		viewport:    viewport.New(80, 20),
	}

	m.list = list.New(m.items(notes), noteDelegate{list.NewDefaultDelegate()}, 80, 20)
	m.list.Title = "Notes for " + project.Name
	m.list.SetShowHelp(false)
	m.list.SetShowStatusBar(false)
	return m
}

func (m browseModel) items(notes []store.Note) []list.Item {
	items := make([]list.Item, len(notes))
	// newest first
	for i, n := range notes {
		items[len(notes)-1-i] = noteItem{note: n, includeTime: m.includeTime}
	}
	return items
}

func (m browseModel) Init() tea.Cmd {
	return waitForFileChange(m.watcher, m.dbName)
}

func setupWatcher(dbPath string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(dbPath)); err != nil {
		watcher.Close()
		return nil, err
	}
	return watcher, nil
}

// waitForFileChange reports writes to the database file or its journal.
func waitForFileChange(watcher *fsnotify.Watcher, dbName string) tea.Cmd {
	return func() tea.Msg {
		if watcher == nil {
			return nil
		}

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if !strings.HasPrefix(filepath.Base(event.Name), dbName) {
					continue
				}
				if event.Op&fsnotify.Write == fsnotify.Write ||
					event.Op&fsnotify.Create == fsnotify.Create ||
					event.Op&fsnotify.Remove == fsnotify.Remove {
					return fileChangedMsg{}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				log.Printf("Watcher error: %v", err)
			}
		}
	}
}

func (m *browseModel) reload() {
	notes, err := m.svc.NotesOf(m.ctx, m.project)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.list.SetItems(m.items(notes))

	if m.preview != nil {
		for _, n := range notes {
			if n.ID == m.preview.ID {
				n := n
				m.preview = &n
				m.viewport.SetContent(m.render(n))
				return
			}
		}
		m.preview = nil
		m.previewing = false
	}
}

// styledHeader renders "name|date" with the name in the header color and the
// date in the date color.
func styledHeader(n store.Note, includeTime bool) string {
	layout := note.DateLayout
	if includeTime {
		layout = note.DateTimeLayout
	}
	date := colors.dateStyle.Render(n.TS.UTC().Format(layout))
	if n.Name == "" {
		return date
	}
	return colors.headerStyle.Render(n.Name+"|") + date
}

func (m browseModel) render(n store.Note) string {
	header := styledHeader(n, true) + "  " + colors.guidStyle.Render(n.ID)
	if n.Content == "" {
		return header + "\n\n" + colors.emptyStyle.Render(note.Empty)
	}
	if m.renderer == nil {
		return header + "\n\n" + n.Content
	}
	out, err := m.renderer.Render(n.Content)
	if err != nil {
		return header + "\n\n" + n.Content
	}
	return header + "\n" + out
}

func (m browseModel) selected() (store.Note, bool) {
	if m.previewing && m.preview != nil {
		return *m.preview, true
	}
	i, ok := m.list.SelectedItem().(noteItem)
	return i.note, ok
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

		if m.confirmDelete != nil {
			switch msg.String() {
			case "y", "Y":
				n := *m.confirmDelete
				m.confirmDelete = nil
				if _, err := m.svc.RemoveNote(m.ctx, n.ID); err != nil {
					m.status = err.Error()
				} else {
					m.status = "Removed note " + n.ID
				}
				m.previewing = false
				m.preview = nil
				m.reload()
			case "n", "N", "esc":
				m.confirmDelete = nil
				m.status = ""
			}
			return m, nil
		}

		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "q":
			if m.previewing {
				m.previewing = false
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit
		case "esc":
			if m.previewing {
				m.previewing = false
				return m, nil
			}
			if m.list.FilterState() == list.Unfiltered {
				m.quitting = true
				return m, tea.Quit
			}
		case "enter":
			if !m.previewing {
				if n, ok := m.selected(); ok {
					m.preview = &n
					m.previewing = true
					m.viewport.SetContent(m.render(n))
					m.viewport.GotoTop()
				}
				return m, nil
			}
		case "a":
			return m, m.exec(func(ctx context.Context) error {
				_, err := m.svc.Add(ctx, "", "")
				return err
			})
		case "e":
			if n, ok := m.selected(); ok {
				return m, m.exec(func(ctx context.Context) error {
					_, _, err := m.svc.Edit(ctx, n.ID)
					return err
				})
			}
		case "d":
			if n, ok := m.selected(); ok {
				m.confirmDelete = &n
				m.status = fmt.Sprintf("Delete %s? (y/n)", note.HeaderText(n, m.includeTime))
				return m, nil
			}
		case "r":
			m.reload()
			return m, nil
		}

		if m.previewing {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	case fileChangedMsg:
		m.reload()
		return m, waitForFileChange(m.watcher, m.dbName)
	case editorFinishedMsg:
		if msg.err != nil {
			m.status = "Editor error: " + msg.err.Error()
		} else {
			m.status = ""
		}
		m.reload()
		return m, nil
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 2)
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 2
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// exec releases the terminal to the note editor, then reloads.
func (m browseModel) exec(fn func(ctx context.Context) error) tea.Cmd {
	c := &editCommand{svc: m.svc, ctx: m.ctx, run: fn}
	return tea.Exec(c, func(err error) tea.Msg {
		return editorFinishedMsg{err: err}
	})
}

// editCommand runs a note operation that opens the editor on the terminal
// handed over by tea.Exec.
type editCommand struct {
	svc *note.Service
	ctx context.Context
	run func(ctx context.Context) error

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func (c *editCommand) SetStdin(r io.Reader)  { c.stdin = r }
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

func (c *editCommand) Run() error {
	newEditor := c.svc.NewEditor
	c.svc.NewEditor = func() editor.Editor {
		return editor.Attach(newEditor(), c.stdin, c.stdout, c.stderr)
	}
	defer func() { c.svc.NewEditor = newEditor }()
	return c.run(c.ctx)
}

func (m browseModel) View() string {
	if m.quitting {
		return ""
	}

	var body string
	help := "enter: view • a: add • e: edit • d: delete • /: filter • q: quit"
	if m.previewing {
		body = m.viewport.View()
		help = "↑/↓: scroll • e: edit • d: delete • esc/q: back"
	} else {
		body = m.list.View()
	}

	footer := colors.navStyle.Render(help)
	if m.status != "" {
		footer = colors.errorStyle.Render(m.status) + "\n" + footer
	}
	return body + "\n" + footer
}
