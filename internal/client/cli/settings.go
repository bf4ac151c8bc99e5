package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Chris-Obeng/talkflo-app1/internal/client/models"
	"github.com/Chris-Obeng/talkflo-app1/internal/client/ui"
	"github.com/Chris-Obeng/talkflo-app1/internal/common"
)

func (a *App) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Language and writing preferences used for new notes",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.backend.GetSettings(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get settings: %w", err)
			}
			printSettings(cmd, s)
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set",
		Short: "Change settings; only the given flags are updated",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in models.Settings
			for flag, dst := range map[string]**string{
				"input-language":  &in.InputLanguage,
				"output-language": &in.OutputLanguage,
				"style":           &in.WritingStyle,
				"length":          &in.WritingLength,
			} {
				if cmd.Flags().Changed(flag) {
					v, _ := cmd.Flags().GetString(flag)
					*dst = &v
				}
			}
			if in == (models.Settings{}) {
				return fmt.Errorf("%w: nothing to change", common.ErrInvalidArgument)
			}
			s, err := a.backend.UpdateSettings(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("failed to update settings: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Settings saved"))
			printSettings(cmd, s)
			return nil
		},
	}
	set.Flags().String("input-language", "", "spoken language hint, e.g. en")
	set.Flags().String("output-language", "", "language notes are written in")
	set.Flags().String("style", "", "writing style, e.g. casual")
	set.Flags().String("length", "", "short, medium or long")

	cmd.AddCommand(show, set)
	return cmd
}

func printSettings(cmd *cobra.Command, s *models.Settings) {
	out := cmd.OutOrStdout()
	row := func(name string, v *string) {
		val := "(default)"
		if v != nil {
			val = *v
		}
		fmt.Fprintf(out, "  %-16s %s\n", name, val)
	}
	row("input language", s.InputLanguage)
	row("output language", s.OutputLanguage)
	row("writing style", s.WritingStyle)
	row("writing length", s.WritingLength)
}
