package note

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vinayprograms/devnote/internal/config"
	"github.com/vinayprograms/devnote/internal/editor"
	"github.com/vinayprograms/devnote/internal/state"
	"github.com/vinayprograms/devnote/internal/store"
)

// fakeEditor returns text for every draft and records what it was given.
type fakeEditor struct {
	text   string
	err    error
	drafts []editor.Draft
}

func (f *fakeEditor) Edit(_ context.Context, d editor.Draft) (string, error) {
	f.drafts = append(f.drafts, d)
	return f.text, f.err
}

func newTestService(t *testing.T) (*Service, *fakeEditor) {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{Dir: dir}
	repo, err := store.Open(cfg.Paths().Database)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = repo.Close()
	})

	ed := &fakeEditor{}
	svc := NewService(repo, cfg)
	svc.NewEditor = func() editor.Editor { return ed }

	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return svc, ed
}

func TestUseCreatesAndSelects(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	previous, err := svc.Use(ctx, "alpha")
	require.NoError(t, err)
	assert.Empty(t, previous)

	previous, err = svc.Use(ctx, "beta")
	require.NoError(t, err)
	assert.Equal(t, "alpha", previous)

	// Reusing an existing name selects without duplicating.
	previous, err = svc.Use(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, "beta", previous)

	projects, err := svc.Projects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "alpha", projects[0].Name)
	assert.Equal(t, "beta", projects[1].Name)

	selected, err := state.Load(svc.SelectedPath)
	require.NoError(t, err)
	assert.Equal(t, "alpha", selected)

	_, err = svc.Use(ctx, "  ")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestCommandsRequireSelection(t *testing.T) {
	svc, ed := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "", "")
	assert.EqualError(t, err, `No project selected please run with the "use <proj_name>" command first`)
	assert.Empty(t, ed.drafts, "editor must not open without a project")

	_, _, err = svc.List(ctx)
	assert.ErrorIs(t, err, ErrNoProjectSelected)
	_, err = svc.Remove(ctx, "abc")
	assert.ErrorIs(t, err, ErrNoProjectSelected)
	_, err = svc.View(ctx, "abc")
	assert.ErrorIs(t, err, ErrNoProjectSelected)
	_, _, err = svc.Edit(ctx, "abc")
	assert.ErrorIs(t, err, ErrNoProjectSelected)
	_, err = svc.Move(ctx, "abc")
	assert.ErrorIs(t, err, ErrNoProjectSelected)

	projects, err := svc.Projects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestStaleSelection(t *testing.T) {
	svc, _ := newTestService(t)
	require.NoError(t, state.Save(svc.SelectedPath, "ghost"))

	_, _, err := svc.List(context.Background())
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestAddNote(t *testing.T) {
	svc, ed := newTestService(t)
	ctx := context.Background()
	svc.Config.DefaultName = "log"

	_, err := svc.Use(ctx, "alpha")
	require.NoError(t, err)

	ed.text = "did things"
	n, err := svc.Add(ctx, "", "")
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, "log", n.Name)
	assert.Equal(t, "did things", n.Content)
	require.Len(t, ed.drafts, 1)
	assert.Equal(t, "log", ed.drafts[0].Name)
	assert.Empty(t, ed.drafts[0].Text)

	n, err = svc.Add(ctx, "standup", "2023-12-24")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 12, 24, 0, 0, 0, 0, time.UTC), n.TS)

	n, err = svc.Add(ctx, "standup", "2023-12-24 08:30:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 12, 24, 8, 30, 0, 0, time.UTC), n.TS)

	_, err = svc.Add(ctx, "standup", "yesterday")
	assert.ErrorIs(t, err, ErrInvalidDate)

	project, notes, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alpha", project.Name)
	require.Len(t, notes, 3)
	// oldest first
	assert.Equal(t, "standup", notes[0].Name)
	assert.Equal(t, "log", notes[2].Name)
}

func TestAddEmptyText(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Use(ctx, "alpha")
	require.NoError(t, err)

	n, err := svc.Add(ctx, "", "")
	require.NoError(t, err)
	require.NotNil(t, n, "empty notes are stored by default")

	svc.Config.NoEmptyAddsOrUpdates = true
	n, err = svc.Add(ctx, "", "")
	require.NoError(t, err)
	assert.Nil(t, n)

	_, notes, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestAddEditorFailure(t *testing.T) {
	svc, ed := newTestService(t)
	ctx := context.Background()
	_, err := svc.Use(ctx, "alpha")
	require.NoError(t, err)

	ed.err = editor.ErrAborted
	_, err = svc.Add(ctx, "", "")
	assert.True(t, errors.Is(err, editor.ErrAborted))

	_, notes, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestResolvePrefix(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Use(ctx, "alpha")
	require.NoError(t, err)

	p, err := svc.SelectedProject(ctx)
	require.NoError(t, err)
	for _, id := range []string{"abc1", "abc2", "def"} {
		require.NoError(t, svc.Repo.InsertNote(ctx, store.Note{ID: id, ProjectID: p.ID, TS: svc.now()}))
	}

	n, err := svc.View(ctx, "de")
	require.NoError(t, err)
	assert.Equal(t, "def", n.ID)

	_, err = svc.View(ctx, "abc")
	assert.ErrorIs(t, err, store.ErrAmbiguousPrefix)

	_, err = svc.View(ctx, "zzz")
	assert.ErrorIs(t, err, store.ErrNoMatch)

	_, err = svc.View(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyPrefix)
}

func TestEditNote(t *testing.T) {
	svc, ed := newTestService(t)
	ctx := context.Background()
	_, err := svc.Use(ctx, "alpha")
	require.NoError(t, err)

	ed.text = "first"
	n, err := svc.Add(ctx, "todo", "2024-01-02 03:04:05")
	require.NoError(t, err)

	ed.text = "first\nsecond"
	updated, ok, err := svc.Edit(ctx, n.ID[:6])
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "first\nsecond", updated.Content)

	last := ed.drafts[len(ed.drafts)-1]
	assert.Equal(t, "todo", last.Name)
	assert.Equal(t, "first", last.Text)
	assert.True(t, n.TS.Equal(last.Date), "draft date %v", last.Date)

	got, err := svc.View(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond", got.Content)

	svc.Config.NoEmptyAddsOrUpdates = true
	ed.text = ""
	_, ok, err = svc.Edit(ctx, n.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err = svc.View(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond", got.Content, "empty edit must be discarded")
}

func TestRemoveNote(t *testing.T) {
	svc, ed := newTestService(t)
	ctx := context.Background()
	_, err := svc.Use(ctx, "alpha")
	require.NoError(t, err)

	ed.text = "bye"
	n, err := svc.Add(ctx, "", "")
	require.NoError(t, err)

	removed, err := svc.Remove(ctx, n.ID[:4])
	require.NoError(t, err)
	assert.Equal(t, n.ID, removed.ID)

	_, err = svc.Remove(ctx, n.ID)
	assert.ErrorIs(t, err, store.ErrNoMatch)
}

func TestMoveNote(t *testing.T) {
	svc, ed := newTestService(t)
	ctx := context.Background()
	_, err := svc.Use(ctx, "alpha")
	require.NoError(t, err)

	ed.text = "travelling"
	n, err := svc.Add(ctx, "", "")
	require.NoError(t, err)

	_, err = svc.Use(ctx, "beta")
	require.NoError(t, err)
	moved, err := svc.Move(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "travelling", moved.Content)

	_, notes, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, n.ID, notes[0].ID)

	_, err = svc.MoveTo(ctx, n.ID, "alpha")
	require.NoError(t, err)
	_, err = svc.MoveTo(ctx, n.ID, "nowhere")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestDropProject(t *testing.T) {
	svc, ed := newTestService(t)
	ctx := context.Background()
	_, err := svc.Use(ctx, "alpha")
	require.NoError(t, err)
	ed.text = "keep me"
	_, err = svc.Add(ctx, "", "")
	require.NoError(t, err)

	_, err = svc.Drop(ctx, "alpha", false)
	assert.ErrorIs(t, err, ErrProjectHasNotes)

	removed, err := svc.Drop(ctx, "alpha", true)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	selected, err := svc.Selected()
	require.NoError(t, err)
	assert.Empty(t, selected, "dropping the selected project clears the selection")

	notes, err := svc.Repo.ListNotes(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)

	_, err = svc.Drop(ctx, "alpha", false)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestDropOtherProjectKeepsSelection(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Use(ctx, "alpha")
	require.NoError(t, err)
	_, err = svc.Use(ctx, "beta")
	require.NoError(t, err)

	_, err = svc.Drop(ctx, "alpha", false)
	require.NoError(t, err)

	selected, err := svc.Selected()
	require.NoError(t, err)
	assert.Equal(t, "beta", selected)
}

func TestSearch(t *testing.T) {
	svc, ed := newTestService(t)
	ctx := context.Background()
	_, err := svc.Use(ctx, "alpha")
	require.NoError(t, err)

	ed.text = "Fixed the Parser bug"
	_, err = svc.Add(ctx, "bugs", "")
	require.NoError(t, err)
	ed.text = "lunch"
	_, err = svc.Add(ctx, "misc", "")
	require.NoError(t, err)

	notes, err := svc.Search(ctx, "parser")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "bugs", notes[0].Name)

	notes, err = svc.Search(ctx, "MISC")
	require.NoError(t, err)
	require.Len(t, notes, 1)

	// Other projects are not searched.
	_, err = svc.Use(ctx, "beta")
	require.NoError(t, err)
	notes, err = svc.Search(ctx, "lunch")
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestOnChangeCalledForWrites(t *testing.T) {
	svc, ed := newTestService(t)
	ctx := context.Background()
	var messages []string
	svc.OnChange = func(msg string) { messages = append(messages, msg) }

	_, err := svc.Use(ctx, "alpha")
	require.NoError(t, err)
	ed.text = "x"
	n, err := svc.Add(ctx, "", "")
	require.NoError(t, err)
	_, err = svc.View(ctx, n.ID)
	require.NoError(t, err)
	_, err = svc.Remove(ctx, n.ID)
	require.NoError(t, err)

	require.Len(t, messages, 3)
	assert.Equal(t, "Create project 'alpha'", messages[0])
	assert.Contains(t, messages[1], "Add note")
	assert.Contains(t, messages[2], "Remove note")
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseDate(" 2024-02-29 23:59:59 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC), got)

	for _, bad := range []string{"2024/02/29", "2023-02-29", "29-02-2024", "2024-02-29T10:00:00"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}
