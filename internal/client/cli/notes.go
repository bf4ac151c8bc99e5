package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Chris-Obeng/talkflo-app1/internal/client/models"
	"github.com/Chris-Obeng/talkflo-app1/internal/client/ui"
	"github.com/Chris-Obeng/talkflo-app1/internal/common"
)

func (a *App) notesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Browse and change notes",
	}
	cmd.AddCommand(
		a.notesListCmd(),
		a.notesShowCmd(),
		a.notesNewCmd(),
		a.notesEditCmd(),
		a.notesRmCmd(),
		a.notesPublishCmd(true),
		a.notesPublishCmd(false),
		a.notesRegenerateCmd(),
		a.notesRewriteCmd(),
		a.notesStylesCmd(),
		a.notesExportCmd(),
	)
	return cmd
}

func (a *App) notesListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			folder, _ := cmd.Flags().GetString("folder")
			search, _ := cmd.Flags().GetString("search")

			notes, err := a.backend.ListNotes(cmd.Context(), folder, search)
			if err != nil {
				return fmt.Errorf("failed to list notes: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(notes) == 0 {
				fmt.Fprintln(out, "No notes found.")
				return nil
			}
			for _, n := range notes {
				fmt.Fprint(out, ui.NoteListItem(n))
			}
			return nil
		},
	}
	cmd.Flags().StringP("folder", "f", "", "only notes in this folder id")
	cmd.Flags().StringP("search", "s", "", "match title, content or transcript")
	return cmd
}

func (a *App) notesShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.backend.GetNote(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get note: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, ui.NoteHeader(*n))
			fmt.Fprint(out, ui.Markdown(n.Content))

			if transcript, _ := cmd.Flags().GetBool("transcript"); transcript {
				fmt.Fprint(out, ui.Separator())
				if n.Transcript == nil {
					fmt.Fprintln(out, "No transcript.")
				} else {
					fmt.Fprintln(out, *n.Transcript)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolP("transcript", "t", false, "also print the raw transcript")
	return cmd
}

func (a *App) notesNewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Write a note by hand",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			title, _ := cmd.Flags().GetString("title")
			content, _ := cmd.Flags().GetString("content")
			folder, _ := cmd.Flags().GetString("folder")
			tags, _ := cmd.Flags().GetStringSlice("tag")

			var err error
			if title == "" {
				if title, err = askLine(a.reader, out, "Title"); err != nil {
					return err
				}
			}
			if content == "" {
				if content, err = askText(a.reader, out, "Content"); err != nil {
					return err
				}
			}

			in := models.NoteInput{Title: title, Content: content, Tags: tags}
			if folder != "" {
				in.FolderID = &folder
			}
			n, err := a.backend.CreateNote(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("failed to create note: %w", err)
			}
			fmt.Fprintln(out, ui.Success("Created note "+n.ID))
			return nil
		},
	}
	cmd.Flags().String("title", "", "note title")
	cmd.Flags().String("content", "", "note body (markdown)")
	cmd.Flags().StringP("folder", "f", "", "folder id")
	cmd.Flags().StringSlice("tag", nil, "tag, repeatable")
	return cmd
}

func (a *App) notesEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a note; opens $EDITOR when no flags are given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			flags := cmd.Flags()
			var patch models.NotePatch

			if flags.Changed("title") {
				v, _ := flags.GetString("title")
				patch.Title = &v
			}
			if flags.Changed("content") {
				v, _ := flags.GetString("content")
				patch.Content = &v
			}
			if flags.Changed("folder") {
				v, _ := flags.GetString("folder")
				patch.FolderID = &v
			}
			if unfile, _ := flags.GetBool("unfile"); unfile {
				if patch.FolderID != nil {
					return fmt.Errorf("%w: --folder and --unfile are exclusive", common.ErrInvalidArgument)
				}
				patch.ClearFolder = true
			}
			if flags.Changed("tag") {
				v, _ := flags.GetStringSlice("tag")
				patch.Tags = &v
			}

			if patch == (models.NotePatch{}) {
				n, err := a.backend.GetNote(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to get note: %w", err)
				}
				edited, err := editText(n.Content)
				if err != nil {
					return fmt.Errorf("failed to open editor: %w", err)
				}
				if edited == n.Content {
					fmt.Fprintln(cmd.OutOrStdout(), "No changes made.")
					return nil
				}
				patch.Content = &edited
			}

			n, err := a.backend.UpdateNote(ctx, args[0], patch)
			if err != nil {
				return fmt.Errorf("failed to update note: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Updated note "+n.ID))
			return nil
		},
	}
	cmd.Flags().String("title", "", "new title")
	cmd.Flags().String("content", "", "new body")
	cmd.Flags().StringP("folder", "f", "", "move to folder id")
	cmd.Flags().Bool("unfile", false, "remove from its folder")
	cmd.Flags().StringSlice("tag", nil, "replace tags, repeatable")
	return cmd
}

func (a *App) notesRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <id>...",
		Short: "Delete one or more notes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if force, _ := cmd.Flags().GetBool("force"); !force {
				if !confirm(a.reader, out, fmt.Sprintf("Delete %d note(s)?", len(args))) {
					fmt.Fprintln(out, "Cancelled.")
					return nil
				}
			}

			if len(args) == 1 {
				if err := a.backend.DeleteNote(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("failed to delete note: %w", err)
				}
				fmt.Fprintln(out, ui.Success("Deleted note "+args[0]))
				return nil
			}
			n, err := a.backend.DeleteNotes(cmd.Context(), args)
			if err != nil {
				return fmt.Errorf("failed to delete notes: %w", err)
			}
			fmt.Fprintln(out, ui.Success(fmt.Sprintf("Deleted %d of %d notes", n, len(args))))
			return nil
		},
	}
	cmd.Flags().BoolP("force", "F", false, "skip confirmation")
	return cmd
}

func (a *App) notesPublishCmd(publish bool) *cobra.Command {
	use, short := "publish <id>", "Share a note through a public link"
	if !publish {
		use, short = "unpublish <id>", "Stop sharing a note; the link is kept for later"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.backend.SetPublished(cmd.Context(), args[0], publish)
			if err != nil {
				return fmt.Errorf("failed to change sharing: %w", err)
			}
			out := cmd.OutOrStdout()
			if !p.Published {
				fmt.Fprintln(out, ui.Success("Note is private"))
				return nil
			}
			fmt.Fprintln(out, ui.Success("Note is public"))
			fmt.Fprintln(out, p.URL)
			return nil
		},
	}
}

func (a *App) notesRegenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regenerate <id>",
		Short: "Rewrite a note from its transcript in a named style",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			style, _ := cmd.Flags().GetString("style")
			if style == "" {
				return fmt.Errorf("%w: --style is required, see `talkflo notes styles`", common.ErrInvalidArgument)
			}
			n, err := a.backend.Regenerate(cmd.Context(), args[0], style)
			if err != nil {
				return aiError("regenerate", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), ui.Markdown(n.Content))
			return nil
		},
	}
	cmd.Flags().String("style", "", "style name")
	return cmd
}

func (a *App) notesRewriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rewrite <id> [instructions]",
		Short: "Rewrite a note from its transcript following free-text instructions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instructions := strings.Join(args[1:], " ")
			if instructions == "" {
				var err error
				if instructions, err = askText(a.reader, cmd.OutOrStdout(), "How should the note be rewritten?"); err != nil {
					return err
				}
			}
			if instructions == "" {
				return fmt.Errorf("%w: rewrite instructions are required", common.ErrInvalidArgument)
			}
			n, err := a.backend.Rewrite(cmd.Context(), args[0], instructions)
			if err != nil {
				return aiError("rewrite", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), ui.Markdown(n.Content))
			return nil
		},
	}
}

func (a *App) notesStylesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "styles",
		Short: "List the styles regenerate accepts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			styles, err := a.backend.Styles(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list styles: %w", err)
			}
			for _, s := range styles {
				fmt.Fprintln(cmd.OutOrStdout(), "  "+s)
			}
			return nil
		},
	}
}

func (a *App) notesExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Save a note as PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("output")
			if path == "" {
				path = args[0] + ".pdf"
			}
			pdf, err := a.backend.ExportPDF(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to export note: %w", err)
			}
			if err := os.WriteFile(path, pdf, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Saved "+path))
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "file to write, default <id>.pdf")
	return cmd
}

// aiError turns the conflict for notes without a transcript into advice.
func aiError(op string, err error) error {
	if errors.Is(err, common.ErrNoTranscript) {
		return fmt.Errorf("failed to %s: the note was typed by hand and has no transcript", op)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
