package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print the questions a learner would be asked next",
	Long: "Selects questions exactly as a practice session would and prints the " +
		"instruction payload without starting a session or recording anything.",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := requestFromFlags(cmd)
		if err != nil {
			return err
		}
		e, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		in, err := e.orchestrator(req, nil).Initialize(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(in)
		}
		fmt.Fprintf(out, "Strategy: %s\n\n", in.Strategy)
		fmt.Fprint(out, in.Render())
		return nil
	},
}

func init() {
	addLearnerFlags(previewCmd)
	previewCmd.Flags().Bool("json", false, "Print the payload as JSON")
}
