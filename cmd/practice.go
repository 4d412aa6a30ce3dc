package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abhisek/assessor/internal/selector"
	"github.com/abhisek/assessor/internal/session"
	"github.com/abhisek/assessor/internal/transport"
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Run an interactive knowledge check in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		req, err := requestFromFlags(cmd)
		if err != nil {
			return err
		}

		e, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		term := transport.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout())
		var t session.Transport = term
		if addr := e.cfg.Redis.Addr; addr != "" {
			rdb, err := transport.DialRedis(ctx, addr)
			if err != nil {
				e.log.Warn("event publishing disabled", "addr", addr, "error", err)
			} else {
				pub := transport.NewRedis(rdb, e.cfg.Redis.Channel, req.UserID, e.log)
				defer pub.Close()
				t = transport.Multi{term, pub}
			}
		}

		o := e.orchestrator(req, t)
		in, err := o.Initialize(ctx)
		if err != nil {
			return err
		}
		if len(in.Items) == 0 {
			return nil
		}
		if _, err := o.Start(ctx); err != nil {
			return err
		}

		for _, it := range in.Items {
			answer, spent, err := term.Ask(ctx, it)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return fmt.Errorf("read answer: %w", err)
			}
			if _, err := o.RecordQuestionAttempt(ctx, it.Index, answer, &spent); err != nil {
				return err
			}
		}

		_, err = o.End(ctx)
		return err
	},
}

func init() {
	addLearnerFlags(practiceCmd)
}

func addLearnerFlags(c *cobra.Command) {
	c.Flags().String("org", "", "Organization id")
	c.Flags().String("user", "", "Learner id")
	c.Flags().Int("max", 0, "Maximum number of questions (default from config)")
	_ = c.MarkFlagRequired("org")
	_ = c.MarkFlagRequired("user")
}

func requestFromFlags(cmd *cobra.Command) (selector.Request, error) {
	org, _ := cmd.Flags().GetString("org")
	user, _ := cmd.Flags().GetString("user")
	limit, _ := cmd.Flags().GetInt("max")
	if limit < 0 {
		return selector.Request{}, fmt.Errorf("--max must not be negative")
	}
	return selector.Request{OrganizationID: org, UserID: user, MaxQuestions: limit}, nil
}
