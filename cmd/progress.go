package cmd

import (
	"fmt"
	"time"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/abhisek/assessor/internal/knowledge"
	"github.com/abhisek/assessor/internal/mastery"
	"github.com/abhisek/assessor/internal/ui/theme"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show a learner's mastery per topic and recent sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		user, _ := cmd.Flags().GetString("user")
		org, _ := cmd.Flags().GetString("org")
		recent, _ := cmd.Flags().GetInt("sessions")

		e, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		m := e.mastery()
		recs, err := m.GetProgress(ctx, user)
		if err != nil {
			return err
		}

		names := make(map[string]string)
		if org != "" {
			topics, err := e.store.ListActiveTopics(ctx, org)
			if err != nil {
				return err
			}
			for _, t := range topics {
				names[t.ID] = t.Name
			}
		}

		out := cmd.OutOrStdout()
		if len(recs) == 0 {
			lipgloss.Fprintln(out, theme.Hint.Render("No attempts recorded for "+user+"."))
			return nil
		}

		tbl := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
			Headers("Topic", "Mastery", "Correct", "Last attempt", "Status")
		for _, r := range recs {
			tbl.Row(
				topicLabel(r.TopicID, names),
				theme.ProgressBar(r.MasteryLevel, 10),
				fmt.Sprintf("%d/%d", r.CorrectAttempts, r.TotalAttempts),
				formatTime(r.LastAttemptAt),
				masteryStatus(&r, m.Threshold()),
			)
		}
		lipgloss.Fprintln(out, tbl.Render())

		if recent > 0 {
			sessions, err := e.store.ListSessions(ctx, user, recent)
			if err != nil {
				return err
			}
			for _, s := range sessions {
				line := fmt.Sprintf("%s  %s  %d question(s)", s.Meta.StartedAt.Local().Format(time.DateTime), s.Meta.Strategy, s.Meta.TotalQuestions)
				if s.Summary != nil {
					line += fmt.Sprintf("  score %d/%d", s.Summary.Score, s.Summary.MaxScore)
				} else {
					line += "  " + theme.Hint.Render("unfinished")
				}
				lipgloss.Fprintln(out, line)
			}
		}
		return nil
	},
}

func init() {
	progressCmd.Flags().String("user", "", "Learner id")
	progressCmd.Flags().String("org", "", "Organization id, used to show topic names")
	progressCmd.Flags().Int("sessions", 5, "Number of recent sessions to list")
	_ = progressCmd.MarkFlagRequired("user")
}

func topicLabel(id string, names map[string]string) string {
	if n, ok := names[id]; ok {
		return n
	}
	return id
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}

func masteryStatus(r *knowledge.MasteryRecord, threshold float64) string {
	st := mastery.StateOf(r, threshold)
	switch st {
	case mastery.StateMastered:
		return theme.Correct.Render(string(st))
	case mastery.StateSlipping:
		return theme.Warning.Render(string(st))
	}
	return theme.Hint.Render(string(st))
}
