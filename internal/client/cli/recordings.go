package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Chris-Obeng/talkflo-app1/internal/client/models"
	"github.com/Chris-Obeng/talkflo-app1/internal/client/ui"
)

func (a *App) recordingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recordings",
		Short: "Recent recordings and their processing state",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the latest recordings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := a.backend.ListRecordings(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list recordings: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(recs) == 0 {
				fmt.Fprintln(out, "No recordings.")
				return nil
			}
			for _, r := range recs {
				fmt.Fprint(out, ui.RecordingItem(r))
			}
			return nil
		},
	}

	watch := &cobra.Command{
		Use:   "watch <id>",
		Short: "Follow a recording until it is done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.follow(cmd.Context(), args[0], cmd.OutOrStdout())
			return err
		},
	}

	discard := &cobra.Command{
		Use:   "discard <id>",
		Short: "Delete the kept audio of a failed recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.backend.DiscardRecording(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to discard recording: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Audio deleted"))
			return nil
		},
	}

	cmd.AddCommand(list, watch, discard)
	return cmd
}

// follow prints each state of the recording until it is terminal and
// raises a notification for the outcome.
func (a *App) follow(ctx context.Context, id string, out io.Writer) (models.State, error) {
	var last models.State
	for ev := range a.poller.Watch(ctx, id) {
		if ev.Err != nil {
			return last, fmt.Errorf("failed to follow recording: %w", ev.Err)
		}
		last = ev.State
		fmt.Fprintf(out, "\r\033[K%s", ui.RecordingStatus(last.Status))
	}
	fmt.Fprintln(out)

	switch last.Status {
	case models.RecordingCompleted:
		fmt.Fprintln(out, ui.Success("Note ready: "+last.NoteID))
		_ = a.notifier.Notify("Your note is ready")
	case models.RecordingFailed:
		fmt.Fprintln(out, ui.Error(last.ErrorMessage))
		fmt.Fprintf(out, "The audio was kept. Run `talkflo recordings discard %s` to delete it.\n", id)
		_ = a.notifier.Notify("Processing failed: " + last.ErrorMessage)
		return last, fmt.Errorf("recording %s failed", id)
	default:
		if err := ctx.Err(); err != nil {
			return last, err
		}
	}
	return last, nil
}
