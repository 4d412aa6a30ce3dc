package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete a learner's attempts, mastery and sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("refusing to reset %s without --yes", user)
		}

		e, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.store.ResetLearner(cmd.Context(), user); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Reset learner %s\n", user)
		return nil
	},
}

func init() {
	resetCmd.Flags().String("user", "", "Learner id")
	resetCmd.Flags().Bool("yes", false, "Confirm the reset")
	_ = resetCmd.MarkFlagRequired("user")
}
