package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/vinayprograms/devnote/internal/config"
	"github.com/vinayprograms/devnote/internal/git"
	"github.com/vinayprograms/devnote/internal/note"
	"github.com/vinayprograms/devnote/internal/store"
)

var version = "dev"

type ColorScheme struct {
	projectStyle  lipgloss.Style
	guidStyle     lipgloss.Style
	dateStyle     lipgloss.Style
	headerStyle   lipgloss.Style
	emptyStyle    lipgloss.Style
	selectorStyle lipgloss.Style
	navStyle      lipgloss.Style
	errorStyle    lipgloss.Style
}

var colors = ColorScheme{
	selectorStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	navStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	errorStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
}

func InitializeColors(cfg *config.Config) {
	colors.projectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Colors.ProjectColor))
	colors.guidStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Colors.GUIDColor))
	colors.dateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Colors.DateColor))
	colors.headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(cfg.Colors.HeaderColor))
	colors.emptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Colors.EmptyColor))
}

// app carries what every command needs once the config is loaded.
type app struct {
	out    io.Writer
	errOut io.Writer
	// home overrides the devnote home directory.
	home   string

	cfg  *config.Config
	repo *store.SQLite
	svc  *note.Service
}

func (a *app) open() error {
	if a.svc != nil {
		return nil
	}

	var err error
	if a.home != "" {
		a.cfg, err = config.LoadFrom(a.home)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if a.cfg.Created {
		fmt.Fprintf(a.errOut, "Config did not exist, created defaults at %s\n", a.cfg.Paths().Config)
	}
	InitializeColors(a.cfg)

	paths := a.cfg.Paths()
	a.repo, err = store.Open(paths.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	a.svc = note.NewService(a.repo, a.cfg)
	a.svc.OnChange = func(message string) {
		if err := git.CommitFiles([]string{paths.Database}, message, a.cfg.GitPush); err != nil {
			log.Printf("Warning: git commit failed: %v", err)
		}
	}
	return nil
}

func (a *app) close() {
	if a.repo != nil {
		if err := a.repo.Close(); err != nil {
			log.Printf("Warning: closing database: %v", err)
		}
	}
}

func run(ctx context.Context, args []string, out, errOut io.Writer, home string) error {
	a := &app{out: out, errOut: errOut, home: home}
	defer a.close()

	cmd := newRootCommand(a)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("devnote: ")

	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, ""); err != nil {
		fmt.Fprintln(os.Stderr, colors.errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
