package cli

import (
	"context"

	"github.com/spf13/cobra"

	"outreach-backend/internal/payments"
)

const cliReviewer = "cli"

type reviewFunc func(svc *payments.Service, ctx context.Context, id, reviewer string) (payments.Payment, error)

func (c *cli) paymentsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "Review payment screenshots",
	}

	var status string
	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List payments, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := c.runtime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			items, err := rt.Payments.List(cmd.Context(), payments.Status(status), limit, 0)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), items)
		},
	}
	list.Flags().StringVar(&status, "status", "", "filter by status (pending, approved, rejected)")
	list.Flags().IntVar(&limit, "limit", 50, "maximum number of payments")

	cmd.AddCommand(
		list,
		c.reviewCommand("approve <payment-id>", "Approve a pending payment and upgrade its owner to pro", (*payments.Service).Approve),
		c.reviewCommand("reject <payment-id>", "Reject a pending payment", (*payments.Service).Reject),
	)
	return cmd
}

func (c *cli) reviewCommand(use, short string, review reviewFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			p, err := review(rt.Payments, cmd.Context(), args[0], cliReviewer)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}
}
