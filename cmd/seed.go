package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/assessor/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed <bank.yaml>",
	Short: "Load topics and questions from a YAML question bank",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open bank: %w", err)
		}
		defer f.Close()

		bank, err := store.ParseBank(f)
		if err != nil {
			return err
		}

		e, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := e.store.Seed(cmd.Context(), bank)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d topic(s) and %d question(s) for %s\n",
			res.Topics, res.Questions, bank.OrganizationID)
		return nil
	},
}
