package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"outreach-backend/internal/profiles"
)

func (c *cli) profilesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Inspect and override user profiles",
	}

	get := &cobra.Command{
		Use:   "get <user-id>",
		Short: "Show a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			p, err := rt.Profiles.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}

	setPlan := &cobra.Command{
		Use:   "set-plan <user-id> <free|pro>",
		Short: "Switch a profile's plan and reset its credits to the plan default",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan := profiles.Plan(args[1])
			if !plan.Valid() {
				return fmt.Errorf("plan must be free or pro, got %q", args[1])
			}
			rt, err := c.runtime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			p, err := rt.Profiles.SetPlan(cmd.Context(), args[0], plan)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}

	setCredits := &cobra.Command{
		Use:   "set-credits <user-id> <n>",
		Short: "Override a profile's credit balance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 0 {
				return fmt.Errorf("credits must be a non-negative integer, got %q", args[1])
			}
			rt, err := c.runtime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			p, err := rt.Profiles.SetCredits(cmd.Context(), args[0], n)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}

	cmd.AddCommand(get, setPlan, setCredits)
	return cmd
}
