package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Chris-Obeng/talkflo-app1/internal/client/ui"
)

func (a *App) subscriptionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscription",
		Short: "Billing status and checkout",
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the current plan and recent payments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			v, err := a.backend.GetSubscription(ctx)
			if err != nil {
				return fmt.Errorf("failed to get subscription: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, ui.Subscription(*v))

			payments, err := a.backend.ListPayments(ctx)
			if err != nil {
				return fmt.Errorf("failed to list payments: %w", err)
			}
			if len(payments) > 0 {
				fmt.Fprintln(out, "Payments:")
				for _, p := range payments {
					fmt.Fprint(out, ui.PaymentItem(p))
				}
			}
			return nil
		},
	}

	checkout := &cobra.Command{
		Use:   "checkout <plan-id>",
		Short: "Open a checkout for a plan and print the payment link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			link, err := a.backend.Checkout(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to start checkout: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Complete the payment at:")
			fmt.Fprintln(out, link.PaymentLink)
			return nil
		},
	}

	cmd.AddCommand(status, checkout)
	return cmd
}
