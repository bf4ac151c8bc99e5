package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Chris-Obeng/talkflo-app1/internal/client/ui"
)

func (a *App) foldersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folders",
		Short: "Organise notes into folders",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List folders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			folders, err := a.backend.ListFolders(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list folders: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(folders) == 0 {
				fmt.Fprintln(out, "No folders.")
				return nil
			}
			for _, f := range folders {
				fmt.Fprint(out, ui.FolderItem(f))
			}
			return nil
		},
	}

	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a folder",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.backend.CreateFolder(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("failed to create folder: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Created folder %q (%s)", f.Name, f.ID)))
			return nil
		},
	}

	rename := &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a folder",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.backend.RenameFolder(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return fmt.Errorf("failed to rename folder: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Renamed folder to %q", f.Name)))
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a folder; its notes are kept and become unfiled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.backend.DeleteFolder(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete folder: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Deleted folder "+args[0]))
			return nil
		},
	}

	cmd.AddCommand(list, create, rename, rm)
	return cmd
}
