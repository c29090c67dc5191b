package note

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/vinayprograms/devnote/internal/store"
)

// MCP Tool Input/Output types

// Project types
type ListProjectsArgs struct{}

type ListProjectsResult struct {
	Projects []ProjectInfo `json:"projects" jsonschema:"list of projects"`
	Count    int           `json:"count" jsonschema:"total number of projects"`
	Selected string        `json:"selected,omitempty" jsonschema:"project selected on the command line"`
}

type ProjectInfo struct {
	ID        string `json:"id" jsonschema:"project guid"`
	Name      string `json:"name" jsonschema:"project name"`
	Created   string `json:"created" jsonschema:"creation time (YYYY-MM-DD HH:MM:SS)"`
	NoteCount int    `json:"note_count" jsonschema:"number of notes in project"`
}

type CreateProjectArgs struct {
	Name string `json:"name" jsonschema:"project name to create"`
}

type CreateProjectResult struct {
	ID      string `json:"id" jsonschema:"project guid"`
	Name    string `json:"name" jsonschema:"created project name"`
	Message string `json:"message" jsonschema:"status message"`
}

// Note types
type ListNotesArgs struct {
	Project string `json:"project" jsonschema:"project name"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum number of notes to return, newest first (default: all)"`
}

type ListNotesResult struct {
	Notes   []NoteInfo `json:"notes" jsonschema:"list of notes"`
	Count   int        `json:"count" jsonschema:"total number of notes returned"`
	Project string     `json:"project" jsonschema:"project name"`
}

type NoteInfo struct {
	ID   string `json:"id" jsonschema:"note guid"`
	Name string `json:"name" jsonschema:"note name"`
	Date string `json:"date" jsonschema:"note date (YYYY-MM-DD HH:MM:SS)"`
}

type CreateNoteArgs struct {
	Project string `json:"project" jsonschema:"project name"`
	Name    string `json:"name,omitempty" jsonschema:"note name (optional, defaults to the configured default_name)"`
	Content string `json:"content,omitempty" jsonschema:"note text"`
}

type CreateNoteResult struct {
	ID      string `json:"id" jsonschema:"created note guid"`
	Project string `json:"project" jsonschema:"project name"`
	Message string `json:"message" jsonschema:"status message"`
}

type GetNoteArgs struct {
	NoteID string `json:"note_id" jsonschema:"note guid or guid prefix"`
}

type GetNoteResult struct {
	ID      string `json:"id" jsonschema:"note guid"`
	Name    string `json:"name" jsonschema:"note name"`
	Date    string `json:"date" jsonschema:"note date"`
	Content string `json:"content" jsonschema:"full content of the note"`
	Project string `json:"project" jsonschema:"project name"`
}

type UpdateNoteArgs struct {
	NoteID     string `json:"note_id" jsonschema:"note guid or guid prefix"`
	OldContent string `json:"old_content" jsonschema:"exact content block to find (must match character-for-character including all whitespace, newlines, and indentation). Copy this directly from get_note output."`
	NewContent string `json:"new_content" jsonschema:"content block to replace old_content with"`
}

type UpdateNoteResult struct {
	Success bool   `json:"success" jsonschema:"whether the update succeeded"`
	Message string `json:"message" jsonschema:"status message"`
}

type DeleteNoteArgs struct {
	NoteID string `json:"note_id" jsonschema:"note guid or guid prefix"`
}

type DeleteNoteResult struct {
	Message string `json:"message" jsonschema:"status message"`
}

type MoveNoteArgs struct {
	NoteID  string `json:"note_id" jsonschema:"note guid or guid prefix"`
	Project string `json:"project" jsonschema:"destination project name"`
}

type MoveNoteResult struct {
	Message string `json:"message" jsonschema:"status message"`
}

type CountNotesArgs struct {
	Project string `json:"project" jsonschema:"project name"`
}

type CountNotesResult struct {
	Count   int    `json:"count" jsonschema:"total number of notes"`
	Project string `json:"project" jsonschema:"project name"`
}

// Search types
type SearchNotesArgs struct {
	Project string `json:"project" jsonschema:"project name"`
	Pattern string `json:"pattern" jsonschema:"search pattern (case-insensitive substring match on name and content)"`
}

type SearchNotesResult struct {
	Results []SearchResultInfo `json:"results" jsonschema:"list of matching lines"`
	Count   int                `json:"count" jsonschema:"total number of matches"`
	Project string             `json:"project" jsonschema:"project name"`
}

type SearchResultInfo struct {
	NoteID  string `json:"note_id" jsonschema:"note guid"`
	Name    string `json:"name" jsonschema:"note name"`
	LineNum int    `json:"line_num" jsonschema:"line number of the match, 0 when only the name matched"`
	Line    string `json:"line" jsonschema:"the matching line"`
}

// GetLines types
type GetLinesArgs struct {
	NoteID      string `json:"note_id" jsonschema:"note guid or guid prefix"`
	Pattern     string `json:"pattern,omitempty" jsonschema:"search pattern to find anchor line (case-insensitive). Either pattern or line_number is required."`
	LineNumber  int    `json:"line_number,omitempty" jsonschema:"specific line number to use as anchor (1-based). Either pattern or line_number is required."`
	LinesBefore int    `json:"lines_before,omitempty" jsonschema:"number of lines to return before the anchor (default: 0)"`
	LinesAfter  int    `json:"lines_after,omitempty" jsonschema:"number of lines to return after the anchor (default: 0)"`
}

type GetLinesResult struct {
	Matches []LineMatch `json:"matches" jsonschema:"list of matches with their context lines"`
	Count   int         `json:"count" jsonschema:"number of matches found"`
	NoteID  string      `json:"note_id" jsonschema:"note guid"`
}

type LineMatch struct {
	AnchorLine  int      `json:"anchor_line" jsonschema:"line number of the matched/anchor line (1-based)"`
	AnchorText  string   `json:"anchor_text" jsonschema:"text of the anchor line"`
	LinesBefore []string `json:"lines_before,omitempty" jsonschema:"lines before the anchor"`
	LinesAfter  []string `json:"lines_after,omitempty" jsonschema:"lines after the anchor"`
	StartLine   int      `json:"start_line" jsonschema:"first line number in the returned range (1-based)"`
	EndLine     int      `json:"end_line" jsonschema:"last line number in the returned range (1-based)"`
}

// MCPServer exposes the note service as MCP tools.
type MCPServer struct {
	service *Service
	server  *mcp.Server
}

// NewMCPServer creates a new MCP server for note operations
func NewMCPServer(svc *Service, version string) *MCPServer {
	s := &MCPServer{
		service: svc,
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "devnote",
		Version: version,
	}, nil)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport
func (s *MCPServer) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *MCPServer) registerTools() {
	// Project operations
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_projects",
		Description: "List all note projects with their note counts and the currently selected project. Use this first to see what projects exist.",
	}, s.listProjects)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "create_project",
		Description: "Create a new project to hold notes. Does not change the project selected on the command line.",
	}, s.createProject)

	// Note operations
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_notes",
		Description: "List the notes of a project, newest first.",
	}, s.listNotes)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "create_note",
		Description: "Add a note to a project. The note is dated now.",
	}, s.createNote)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_note",
		Description: "Retrieve the full content of a note. Accepts any unique guid prefix.",
	}, s.getNote)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "update_note",
		Description: "Replace one block of a note's text. IMPORTANT: (1) First call get_note to see exact content. (2) Copy exact lines to replace into old_content. (3) Provide new_content. Fails if old_content not found or matches multiple locations.",
	}, s.updateNote)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_note",
		Description: "Remove a note. Use with caution - this action cannot be undone.",
	}, s.deleteNote)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "move_note",
		Description: "Move a note to another existing project.",
	}, s.moveNote)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "count_notes",
		Description: "Return the number of notes in a project.",
	}, s.countNotes)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_lines",
		Description: "Extract lines from a note around an anchor point. Use pattern to search for a line, or line_number for direct access. Returns the anchor line plus specified lines before/after.",
	}, s.getLines)

	// Search operations
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_notes",
		Description: "Search the names and text of a project's notes. Case-insensitive substring match.",
	}, s.searchNotes)
}

func toNoteInfo(n store.Note) NoteInfo {
	return NoteInfo{ID: n.ID, Name: n.Name, Date: n.TS.UTC().Format(DateTimeLayout)}
}

func (s *MCPServer) projectName(ctx context.Context, id string) string {
	projects, err := s.service.Repo.ListProjects(ctx)
	if err != nil {
		return ""
	}
	for _, p := range projects {
		if p.ID == id {
			return p.Name
		}
	}
	return ""
}

// Project operations

func (s *MCPServer) listProjects(ctx context.Context, req *mcp.CallToolRequest, args ListProjectsArgs) (*mcp.CallToolResult, ListProjectsResult, error) {
	projects, err := s.service.Projects(ctx)
	if err != nil {
		return nil, ListProjectsResult{}, fmt.Errorf("failed to list projects: %w", err)
	}
	counts, err := s.service.NoteCounts(ctx)
	if err != nil {
		return nil, ListProjectsResult{}, fmt.Errorf("failed to count notes: %w", err)
	}

	infos := make([]ProjectInfo, len(projects))
	for i, p := range projects {
		infos[i] = ProjectInfo{
			ID:        p.ID,
			Name:      p.Name,
			Created:   p.TS.UTC().Format(DateTimeLayout),
			NoteCount: counts[p.ID],
		}
	}

	selected, _ := s.service.Selected()
	return nil, ListProjectsResult{
		Projects: infos,
		Count:    len(infos),
		Selected: selected,
	}, nil
}

func (s *MCPServer) createProject(ctx context.Context, req *mcp.CallToolRequest, args CreateProjectArgs) (*mcp.CallToolResult, CreateProjectResult, error) {
	if strings.TrimSpace(args.Name) == "" {
		return nil, CreateProjectResult{}, fmt.Errorf("project name is required")
	}

	p, err := s.service.CreateProject(ctx, args.Name)
	if errors.Is(err, store.ErrDuplicateName) {
		return nil, CreateProjectResult{
			ID:      p.ID,
			Name:    p.Name,
			Message: fmt.Sprintf("Project '%s' already exists", p.Name),
		}, nil
	}
	if err != nil {
		return nil, CreateProjectResult{}, fmt.Errorf("failed to create project: %w", err)
	}

	return nil, CreateProjectResult{
		ID:      p.ID,
		Name:    p.Name,
		Message: fmt.Sprintf("Created project '%s'", p.Name),
	}, nil
}

// Note operations

func (s *MCPServer) listNotes(ctx context.Context, req *mcp.CallToolRequest, args ListNotesArgs) (*mcp.CallToolResult, ListNotesResult, error) {
	if args.Project == "" {
		return nil, ListNotesResult{}, fmt.Errorf("project name is required")
	}

	project, err := s.service.ProjectByName(ctx, args.Project)
	if err != nil {
		return nil, ListNotesResult{}, err
	}
	notes, err := s.service.NotesOf(ctx, project)
	if err != nil {
		return nil, ListNotesResult{}, fmt.Errorf("failed to list notes: %w", err)
	}

	infos := make([]NoteInfo, 0, len(notes))
	for i := len(notes) - 1; i >= 0; i-- {
		if args.Limit > 0 && len(infos) >= args.Limit {
			break
		}
		infos = append(infos, toNoteInfo(notes[i]))
	}

	return nil, ListNotesResult{
		Notes:   infos,
		Count:   len(infos),
		Project: project.Name,
	}, nil
}

func (s *MCPServer) createNote(ctx context.Context, req *mcp.CallToolRequest, args CreateNoteArgs) (*mcp.CallToolResult, CreateNoteResult, error) {
	if args.Project == "" {
		return nil, CreateNoteResult{}, fmt.Errorf("project name is required")
	}

	name := args.Name
	if name == "" {
		name = s.service.Config.DefaultName
	}
	if s.service.skipEmpty(args.Content) {
		return nil, CreateNoteResult{
			Project: args.Project,
			Message: "Empty note discarded (no_empty_adds_or_updates is set)",
		}, nil
	}

	n, err := s.service.CreateNote(ctx, args.Project, name, args.Content)
	if err != nil {
		return nil, CreateNoteResult{}, err
	}

	return nil, CreateNoteResult{
		ID:      n.ID,
		Project: args.Project,
		Message: fmt.Sprintf("Created note %s in '%s'", n.ID, args.Project),
	}, nil
}

func (s *MCPServer) getNote(ctx context.Context, req *mcp.CallToolRequest, args GetNoteArgs) (*mcp.CallToolResult, GetNoteResult, error) {
	n, err := s.service.Resolve(ctx, args.NoteID)
	if err != nil {
		return nil, GetNoteResult{}, err
	}

	return nil, GetNoteResult{
		ID:      n.ID,
		Name:    n.Name,
		Date:    n.TS.UTC().Format(DateTimeLayout),
		Content: n.Content,
		Project: s.projectName(ctx, n.ProjectID),
	}, nil
}

func (s *MCPServer) updateNote(ctx context.Context, req *mcp.CallToolRequest, args UpdateNoteArgs) (*mcp.CallToolResult, UpdateNoteResult, error) {
	if args.OldContent == "" {
		return nil, UpdateNoteResult{Success: false, Message: "old_content is required - use get_note first to see exact content"}, nil
	}

	n, err := s.service.Resolve(ctx, args.NoteID)
	if err != nil {
		return nil, UpdateNoteResult{Success: false, Message: err.Error()}, nil
	}

	count := strings.Count(n.Content, args.OldContent)
	if count == 0 {
		return nil, UpdateNoteResult{
			Success: false,
			Message: "old_content block not found in note. The entire old_content string must match character-for-character including all whitespace, newlines, and indentation. Use get_note first and copy the exact text you want to replace.",
		}, nil
	}
	if count > 1 {
		return nil, UpdateNoteResult{
			Success: false,
			Message: fmt.Sprintf("old_content block found %d times in the note. Include more surrounding lines in old_content to uniquely identify the section you want to replace.", count),
		}, nil
	}

	newContent := strings.Replace(n.Content, args.OldContent, args.NewContent, 1)
	if s.service.skipEmpty(newContent) {
		return nil, UpdateNoteResult{Success: false, Message: "update would leave the note empty (no_empty_adds_or_updates is set)"}, nil
	}
	if _, err := s.service.UpdateText(ctx, n.ID, newContent); err != nil {
		return nil, UpdateNoteResult{Success: false, Message: fmt.Sprintf("failed to update note: %v", err)}, nil
	}

	return nil, UpdateNoteResult{
		Success: true,
		Message: fmt.Sprintf("Updated note %s", n.ID),
	}, nil
}

func (s *MCPServer) deleteNote(ctx context.Context, req *mcp.CallToolRequest, args DeleteNoteArgs) (*mcp.CallToolResult, DeleteNoteResult, error) {
	n, err := s.service.RemoveNote(ctx, args.NoteID)
	if err != nil {
		return nil, DeleteNoteResult{}, err
	}
	return nil, DeleteNoteResult{Message: fmt.Sprintf("Deleted note %s", n.ID)}, nil
}

func (s *MCPServer) moveNote(ctx context.Context, req *mcp.CallToolRequest, args MoveNoteArgs) (*mcp.CallToolResult, MoveNoteResult, error) {
	if args.Project == "" {
		return nil, MoveNoteResult{}, fmt.Errorf("project name is required")
	}
	n, err := s.service.MoveTo(ctx, args.NoteID, args.Project)
	if err != nil {
		return nil, MoveNoteResult{}, err
	}
	return nil, MoveNoteResult{Message: fmt.Sprintf("Moved note %s to '%s'", n.ID, args.Project)}, nil
}

func (s *MCPServer) countNotes(ctx context.Context, req *mcp.CallToolRequest, args CountNotesArgs) (*mcp.CallToolResult, CountNotesResult, error) {
	if args.Project == "" {
		return nil, CountNotesResult{}, fmt.Errorf("project name is required")
	}
	project, err := s.service.ProjectByName(ctx, args.Project)
	if err != nil {
		return nil, CountNotesResult{}, err
	}
	notes, err := s.service.NotesOf(ctx, project)
	if err != nil {
		return nil, CountNotesResult{}, fmt.Errorf("failed to count notes: %w", err)
	}
	return nil, CountNotesResult{Count: len(notes), Project: project.Name}, nil
}

func (s *MCPServer) searchNotes(ctx context.Context, req *mcp.CallToolRequest, args SearchNotesArgs) (*mcp.CallToolResult, SearchNotesResult, error) {
	if args.Project == "" {
		return nil, SearchNotesResult{}, fmt.Errorf("project name is required")
	}

	project, err := s.service.ProjectByName(ctx, args.Project)
	if err != nil {
		return nil, SearchNotesResult{}, err
	}
	notes, err := s.service.SearchIn(ctx, project, args.Pattern)
	if err != nil {
		return nil, SearchNotesResult{}, fmt.Errorf("failed to search notes: %w", err)
	}

	patternLower := strings.ToLower(args.Pattern)
	infos := make([]SearchResultInfo, 0, len(notes))
	for _, n := range notes {
		found := false
		for i, line := range strings.Split(n.Content, "\n") {
			if strings.Contains(strings.ToLower(line), patternLower) {
				infos = append(infos, SearchResultInfo{NoteID: n.ID, Name: n.Name, LineNum: i + 1, Line: line})
				found = true
			}
		}
		if !found {
			infos = append(infos, SearchResultInfo{NoteID: n.ID, Name: n.Name})
		}
	}

	return nil, SearchNotesResult{
		Results: infos,
		Count:   len(infos),
		Project: project.Name,
	}, nil
}

func (s *MCPServer) getLines(ctx context.Context, req *mcp.CallToolRequest, args GetLinesArgs) (*mcp.CallToolResult, GetLinesResult, error) {
	if args.NoteID == "" {
		return nil, GetLinesResult{}, fmt.Errorf("note_id is required")
	}

	if args.Pattern == "" && args.LineNumber == 0 {
		return nil, GetLinesResult{}, fmt.Errorf("either pattern or line_number is required")
	}

	n, err := s.service.Resolve(ctx, args.NoteID)
	if err != nil {
		return nil, GetLinesResult{}, err
	}

	lines := strings.Split(n.Content, "\n")
	matches := make([]LineMatch, 0)

	if args.LineNumber > 0 {
		if args.LineNumber > len(lines) {
			return nil, GetLinesResult{}, fmt.Errorf("line_number %d exceeds note length (%d lines)", args.LineNumber, len(lines))
		}
		matches = append(matches, extractLines(lines, args.LineNumber-1, args.LinesBefore, args.LinesAfter))
	} else {
		patternLower := strings.ToLower(args.Pattern)
		for i, line := range lines {
			if strings.Contains(strings.ToLower(line), patternLower) {
				matches = append(matches, extractLines(lines, i, args.LinesBefore, args.LinesAfter))
			}
		}
	}

	return nil, GetLinesResult{
		Matches: matches,
		Count:   len(matches),
		NoteID:  n.ID,
	}, nil
}

func extractLines(lines []string, anchorIdx, linesBefore, linesAfter int) LineMatch {
	startIdx := anchorIdx - linesBefore
	if startIdx < 0 {
		startIdx = 0
	}
	endIdx := anchorIdx + linesAfter
	if endIdx >= len(lines) {
		endIdx = len(lines) - 1
	}

	var beforeLines []string
	for i := startIdx; i < anchorIdx; i++ {
		beforeLines = append(beforeLines, lines[i])
	}

	var afterLines []string
	for i := anchorIdx + 1; i <= endIdx; i++ {
		afterLines = append(afterLines, lines[i])
	}

	return LineMatch{
		AnchorLine:  anchorIdx + 1, // 1-based
		AnchorText:  lines[anchorIdx],
		LinesBefore: beforeLines,
		LinesAfter:  afterLines,
		StartLine:   startIdx + 1,
		EndLine:     endIdx + 1,
	}
}
