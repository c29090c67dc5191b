// Package editor obtains note text from the user, either in a built-in
// full-screen terminal editor or by running an external editor program on a
// temporary file.
package editor

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DateLayout is how a draft's date is shown while editing.
const DateLayout = "2006-01-02 15:04:05"

var ErrAborted = errors.New("edit aborted")

// Draft is what the editor starts from.
type Draft struct {
	Name string
	Date time.Time
	Text string
}

// Header is the "name|date" line shown above the text, or just the date for
// unnamed notes.
func (d Draft) Header() string {
	date := d.Date.Format(DateLayout)
	if d.Name == "" {
		return date
	}
	return d.Name + "|" + date
}

type Editor interface {
	// Edit returns the final text of the draft.
	Edit(ctx context.Context, d Draft) (string, error)
}

// IsInternal reports whether editApp selects the built-in editor.
func IsInternal(editApp string) bool {
	switch strings.TrimSpace(editApp) {
	case "", "internal", "interna":
		return true
	}
	return false
}

// New picks the editor configured by editApp. External editors work on
// temporary files in dir.
func New(editApp, dir string) Editor {
	if IsInternal(editApp) {
		return &Internal{}
	}
	return &External{Command: editApp, Dir: dir}
}

// Attach points ed at the given terminal streams. Editors of unknown types
// are returned unchanged.
func Attach(ed Editor, in io.Reader, out, errOut io.Writer) Editor {
	switch e := ed.(type) {
	case *External:
		c := *e
		c.Stdin, c.Stdout, c.Stderr = in, out, errOut
		return &c
	case *Internal:
		c := *e
		c.ProgramOptions = append(append([]tea.ProgramOption{}, e.ProgramOptions...),
			tea.WithInput(in), tea.WithOutput(out))
		return &c
	}
	return ed
}
