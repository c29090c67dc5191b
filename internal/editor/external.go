package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	GuardLine = "DO NOT EDIT ABOVE THE LINE, CAUSE IT WILL NOT BE RECORDED(===)"
	Separator = "===================="
)

// External runs an editor program on a temporary file in Dir. Command may
// carry arguments ("code -w"); the file path is appended last.
type External struct {
	Command string
	Dir     string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (e *External) Edit(ctx context.Context, d Draft) (string, error) {
	command := e.Command
	if strings.HasPrefix(command, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			command = filepath.Join(home, command[2:])
		}
	}
	editorParts := strings.Fields(command)
	if len(editorParts) == 0 {
		return "", errors.New("no editor command configured")
	}

	if err := os.MkdirAll(e.Dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(e.Dir, uuid.NewString()+".txt")
	if err := os.WriteFile(path, []byte(RenderFile(d)), 0600); err != nil {
		return "", fmt.Errorf("write draft: %w", err)
	}
	defer os.Remove(path)

	editorArgs := append(editorParts[1:], path)
	cmd := exec.CommandContext(ctx, editorParts[0], editorArgs...)
	cmd.Dir = e.Dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if e.Stdin != nil {
		cmd.Stdin = e.Stdin
	}
	if e.Stdout != nil {
		cmd.Stdout = e.Stdout
	}
	if e.Stderr != nil {
		cmd.Stderr = e.Stderr
	}
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("run editor %s: %w", editorParts[0], err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read draft: %w", err)
	}
	return ParseFile(string(data)), nil
}

// RenderFile lays out the temporary file: header, guard line, separator,
// then the existing text.
func RenderFile(d Draft) string {
	var b strings.Builder
	b.WriteString(d.Header())
	b.WriteString("\n")
	b.WriteString(GuardLine)
	b.WriteString("\n")
	b.WriteString(Separator)
	b.WriteString("\n")
	if d.Text != "" {
		b.WriteString(d.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// ParseFile returns everything after the separator line. If the separator
// was deleted the whole file is kept rather than dropping the user's text.
func ParseFile(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if line == Separator {
			return strings.TrimRight(strings.Join(lines[i+1:], "\n"), "\n")
		}
	}
	return strings.TrimRight(content, "\n")
}
