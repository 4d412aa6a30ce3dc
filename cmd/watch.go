package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/assessor/internal/knowledge"
	"github.com/abhisek/assessor/internal/logger"
	"github.com/abhisek/assessor/internal/session"
	"github.com/abhisek/assessor/internal/transport"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow live session events published to Redis",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("redis"); addr != "" {
			cfg.Redis.Addr = addr
		}
		if cfg.Redis.Addr == "" {
			return fmt.Errorf("no Redis address: set redis.addr, ASSESSOR_REDIS_ADDR or --redis")
		}
		log, err := logger.New(cfg.LogMode)
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		defer log.Sync()

		rdb, err := transport.DialRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			return err
		}
		defer rdb.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Following %s on %s\n", cfg.Redis.Channel, cfg.Redis.Addr)
		return transport.Follow(ctx, rdb, cfg.Redis.Channel, log, func(ev transport.Event) {
			fmt.Fprintln(out, describeEvent(ev))
		})
	},
}

func init() {
	watchCmd.Flags().String("redis", "", "Redis address (overrides config)")
}

func describeEvent(ev transport.Event) string {
	prefix := ev.At.Local().Format("15:04:05") + " " + ev.UserID
	switch ev.Kind {
	case transport.KindInstructions:
		var in session.Instructions
		if err := json.Unmarshal(ev.Data, &in); err == nil {
			return fmt.Sprintf("%s selected %d question(s) via %s", prefix, len(in.Items), in.Strategy)
		}
	case transport.KindProgress:
		var p session.ProgressEvent
		if err := json.Unmarshal(ev.Data, &p); err == nil {
			verdict := "incorrect"
			if p.IsCorrect {
				verdict = "correct"
			}
			return fmt.Sprintf("%s q%d %s, score %d (%.0f%%)", prefix, p.QuestionIndex+1, verdict, p.CurrentScore, p.FractionComplete*100)
		}
	case transport.KindSummary:
		var s knowledge.SessionSummary
		if err := json.Unmarshal(ev.Data, &s); err == nil {
			return fmt.Sprintf("%s finished %d/%d, review: %v", prefix, s.Score, s.MaxScore, s.ImprovementAreas)
		}
	}
	return fmt.Sprintf("%s %s", prefix, ev.Kind)
}
