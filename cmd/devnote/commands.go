package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"github.com/vinayprograms/devnote/internal/note"
	"github.com/vinayprograms/devnote/internal/store"
)

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "devnote",
		Short:         "Keep short developer notes grouped by project",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
	}
	cmd.SetOut(a.out)
	cmd.SetErr(a.errOut)

	cmd.AddCommand(
		newUseCommand(a),
		newAddCommand(a),
		newRemoveCommand(a),
		newListCommand(a),
		newProjectsCommand(a),
		newViewCommand(a),
		newEditCommand(a),
		newMoveCommand(a),
		newDropCommand(a),
		newSearchCommand(a),
		newBrowseCommand(a),
		newMCPCommand(a),
	)
	return cmd
}

// printSelected prints the "Project: ..." banner shown before most commands.
func (a *app) printSelected() error {
	selected, err := a.svc.Selected()
	if err != nil {
		return err
	}
	if selected == "" {
		selected = "Not Selected"
	}
	fmt.Fprintf(a.out, "Project: %s\n", colors.projectStyle.Render(selected))
	return nil
}

func newUseCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "use <project>",
		Short: "Select the project notes are added to, creating it if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.printSelected(); err != nil {
				return err
			}
			if _, err := a.svc.Use(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Using Project: %s\n", colors.projectStyle.Render(strings.TrimSpace(args[0])))
			return nil
		},
	}
}

func newAddCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add [name] [date]",
		Short: "Write a new note in the selected project",
		Long: `Write a new note in the selected project.

The optional date is "YYYY-MM-DD HH:MM:SS" or "YYYY-MM-DD" and defaults to now.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.printSelected(); err != nil {
				return err
			}
			var name, date string
			if len(args) > 0 {
				name = args[0]
			}
			if len(args) > 1 {
				date = args[1]
			}

			n, err := a.svc.Add(cmd.Context(), name, date)
			if err != nil {
				return err
			}
			if n == nil {
				fmt.Fprintln(a.out, "Empty note discarded")
				return nil
			}
			fmt.Fprintf(a.out, "Added note %s\n", colors.guidStyle.Render(n.ID))
			return nil
		},
	}
}

func newRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <guid-prefix>",
		Short: "Delete the note whose guid starts with the prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.svc.Remove(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Removed note %s\n", colors.guidStyle.Render(n.ID))
			return nil
		},
	}
}

func newListCommand(a *app) *cobra.Command {
	var showGUID bool

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List the notes of the selected project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.printSelected(); err != nil {
				return err
			}
			project, notes, err := a.svc.List(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Notes for %s\n", colors.projectStyle.Render(project.Name))
			printNotes(a, notes, showGUID)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&showGUID, "guid", "g", false, "Show note guids")
	return cmd
}

func printNotes(a *app, notes []store.Note, showGUID bool) {
	f := note.NewFormatter(a.cfg, showGUID)
	for _, block := range f.List(notes, a.cfg.GroupByDate) {
		fmt.Fprintln(a.out, block)
	}
}

func newProjectsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List all projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := a.svc.Projects(cmd.Context())
			if err != nil {
				return err
			}
			selected, err := a.svc.Selected()
			if err != nil {
				return err
			}
			for _, p := range projects {
				fmt.Fprintln(a.out, note.ProjectLine(p, selected, a.cfg.Colors.ProjectColor))
			}
			return nil
		},
	}
}

func newViewCommand(a *app) *cobra.Command {
	var (
		showGUID bool
		render   bool
	)

	cmd := &cobra.Command{
		Use:   "view <guid-prefix>",
		Short: "Show one note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.printSelected(); err != nil {
				return err
			}
			n, err := a.svc.View(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			f := note.NewFormatter(a.cfg, showGUID)
			if (!render && !a.cfg.RenderMarkdown) || n.Content == "" {
				fmt.Fprintln(a.out, f.Note(n))
				return nil
			}

			rendered, err := renderMarkdown(n.Content)
			if err != nil {
				return err
			}
			if showGUID {
				fmt.Fprintln(a.out, colors.guidStyle.Render(n.ID))
			}
			fmt.Fprintln(a.out, styledHeader(n, a.cfg.IncludeTime))
			fmt.Fprint(a.out, rendered)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&showGUID, "guid", "g", false, "Show the note guid")
	cmd.Flags().BoolVar(&render, "render", false, "Render the note as markdown")
	return cmd
}

func renderMarkdown(content string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return "", err
	}
	return r.Render(content)
}

func newEditCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <guid-prefix>",
		Short: "Edit the text of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.printSelected(); err != nil {
				return err
			}
			n, updated, err := a.svc.Edit(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !updated {
				fmt.Fprintln(a.out, "Empty text discarded, note unchanged")
				return nil
			}
			fmt.Fprintf(a.out, "Updated note %s\n", colors.guidStyle.Render(n.ID))
			return nil
		},
	}
}

func newMoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move <guid-prefix>",
		Short: "Move a note into the selected project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.printSelected(); err != nil {
				return err
			}
			n, err := a.svc.Move(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Moved note %s\n", colors.guidStyle.Render(n.ID))
			return nil
		},
	}
}

func newDropCommand(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "drop <project>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := a.svc.Drop(cmd.Context(), args[0], force)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Dropped project %s (%d notes removed)\n", colors.projectStyle.Render(args[0]), removed)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Also delete the project's notes")
	return cmd
}

func newSearchCommand(a *app) *cobra.Command {
	var showGUID bool

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Find notes of the selected project by name or text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.printSelected(); err != nil {
				return err
			}
			notes, err := a.svc.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if len(notes) == 0 {
				fmt.Fprintln(a.out, "No matching notes")
				return nil
			}
			printNotes(a, notes, showGUID)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&showGUID, "guid", "g", false, "Show note guids")
	return cmd
}

func newMCPCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the notes as MCP tools on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return note.NewMCPServer(a.svc, version).Run(cmd.Context())
		},
	}
}
