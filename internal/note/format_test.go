package note

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vinayprograms/devnote/internal/store"
)

func sampleNotes() []store.Note {
	day := time.Date(2024, 6, 3, 14, 5, 9, 0, time.UTC)
	return []store.Note{
		{ID: "g1", Name: "standup", Content: "yesterday: parser", TS: day},
		{ID: "g2", Name: "", Content: "", TS: day},
		{ID: "g3", Name: "standup", Content: "today: lexer", TS: day},
	}
}

func TestHeaderText(t *testing.T) {
	notes := sampleNotes()
	assert.Equal(t, "standup|2024-06-03", HeaderText(notes[0], false))
	assert.Equal(t, "standup|2024-06-03 14:05:09", HeaderText(notes[0], true))
	assert.Equal(t, "2024-06-03", HeaderText(notes[1], false))
}

func TestFormatNote(t *testing.T) {
	notes := sampleNotes()
	f := &Formatter{}

	assert.Equal(t, "standup|2024-06-03\nyesterday: parser\n"+NoteRule, f.Note(notes[0]))
	assert.Equal(t, "2024-06-03\n<EMPTY>\n"+NoteRule, f.Note(notes[1]))

	f.ShowGUID = true
	f.IncludeTime = true
	assert.Equal(t, "g1\nstandup|2024-06-03 14:05:09\nyesterday: parser\n"+NoteRule, f.Note(notes[0]))
}

func TestFormatterStyles(t *testing.T) {
	f := &Formatter{
		ShowGUID: true,
		GUID:     func(s string) string { return "<" + s + ">" },
		Header:   strings.ToUpper,
		Empty:    func(s string) string { return "_" + s + "_" },
	}
	assert.Equal(t, "<g2>\n2024-06-03\n_<EMPTY>_\n"+NoteRule, f.Note(sampleNotes()[1]))
}

func TestGroups(t *testing.T) {
	f := &Formatter{}
	groups := f.Groups(sampleNotes())
	require.Len(t, groups, 2)

	assert.Equal(t, "standup|2024-06-03", groups[0].Header)
	assert.Equal(t, []string{"yesterday: parser", "today: lexer"}, groups[0].Entries)
	assert.Equal(t, "2024-06-03", groups[1].Header)

	assert.Equal(t,
		"standup|2024-06-03\nyesterday: parser\n"+GroupRule+"\ntoday: lexer",
		f.Render(groups[0]))

	f.ShowGUID = true
	groups = f.Groups(sampleNotes())
	assert.Equal(t, "g1\nyesterday: parser", groups[0].Entries[0])
}

func TestList(t *testing.T) {
	f := &Formatter{}
	assert.Len(t, f.List(sampleNotes(), false), 3)
	assert.Len(t, f.List(sampleNotes(), true), 2)
	assert.Empty(t, f.List(nil, true))
}

func TestProjectLine(t *testing.T) {
	p := store.Project{ID: "p", Name: "alpha"}
	assert.Equal(t, "* alpha", ProjectLine(p, "alpha", ""))
	assert.Equal(t, "  alpha", ProjectLine(p, "beta", ""))
}
