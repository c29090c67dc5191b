package note

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vinayprograms/devnote/internal/config"
	"github.com/vinayprograms/devnote/internal/store"
)

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"

	NoteRule  = "====================================="
	GroupRule = "================"
	Empty     = "<EMPTY>"
)

// Formatter renders notes for the terminal. Style hooks left nil print
// plain text.
type Formatter struct {
	IncludeTime bool
	ShowGUID    bool

	GUID   func(string) string
	Header func(string) string
	Empty  func(string) string
}

// NewFormatter builds a Formatter styled with the configured colors.
func NewFormatter(cfg *config.Config, showGUID bool) *Formatter {
	f := &Formatter{IncludeTime: cfg.IncludeTime, ShowGUID: showGUID}
	f.GUID = colorize(cfg.Colors.GUIDColor)
	f.Header = colorize(cfg.Colors.HeaderColor)
	f.Empty = colorize(cfg.Colors.EmptyColor)
	return f
}

func colorize(color string) func(string) string {
	if color == "" {
		return nil
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	return func(s string) string { return style.Render(s) }
}

func apply(style func(string) string, s string) string {
	if style == nil {
		return s
	}
	return style(s)
}

// HeaderText is "name|date", or just the date for unnamed notes.
func HeaderText(n store.Note, includeTime bool) string {
	layout := DateLayout
	if includeTime {
		layout = DateTimeLayout
	}
	date := n.TS.UTC().Format(layout)
	if n.Name == "" {
		return date
	}
	return n.Name + "|" + date
}

// Note renders one note: optional guid, header, content and a closing rule.
func (f *Formatter) Note(n store.Note) string {
	var b strings.Builder
	if f.ShowGUID {
		b.WriteString(apply(f.GUID, n.ID))
		b.WriteString("\n")
	}
	b.WriteString(apply(f.Header, HeaderText(n, f.IncludeTime)))
	b.WriteString("\n")
	if n.Content == "" {
		b.WriteString(apply(f.Empty, Empty))
	} else {
		b.WriteString(n.Content)
	}
	b.WriteString("\n")
	b.WriteString(NoteRule)
	return b.String()
}

// Group collects the notes sharing a header.
type Group struct {
	Header  string
	Entries []string
}

// Groups buckets notes by header, keeping the order in which headers first
// appear.
func (f *Formatter) Groups(notes []store.Note) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, n := range notes {
		header := HeaderText(n, f.IncludeTime)
		entry := n.Content
		if f.ShowGUID {
			entry = apply(f.GUID, n.ID) + "\n" + entry
		}
		i, ok := index[header]
		if !ok {
			i = len(groups)
			index[header] = i
			groups = append(groups, Group{Header: header})
		}
		groups[i].Entries = append(groups[i].Entries, entry)
	}
	return groups
}

// Render prints the header line and the entries separated by rules.
func (f *Formatter) Render(g Group) string {
	return apply(f.Header, g.Header) + "\n" + strings.Join(g.Entries, "\n"+GroupRule+"\n")
}

// List renders notes one by one, or grouped when groupByDate is set.
func (f *Formatter) List(notes []store.Note, groupByDate bool) []string {
	var out []string
	if !groupByDate {
		for _, n := range notes {
			out = append(out, f.Note(n))
		}
		return out
	}
	for _, g := range f.Groups(notes) {
		out = append(out, f.Render(g))
	}
	return out
}

// ProjectLine prints a project name, marking the selected one.
func ProjectLine(p store.Project, selected string, color string) string {
	name := p.Name
	if color != "" {
		name = lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(name)
	}
	if p.Name == selected {
		return "* " + name
	}
	return "  " + name
}
