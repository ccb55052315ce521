package main

import (
	"fmt"
	"time"

	"github.com/phrazzld/scry-progression/internal/domain"
	"github.com/phrazzld/scry-progression/internal/domain/srs"
	"github.com/spf13/cobra"
)

func newIntervalCmd(c *cli) *cobra.Command {
	var (
		history string
		correct bool
		now     string
	)

	cmd := &cobra.Command{
		Use:   "interval",
		Short: "Compute the next review interval for a card history",
		Long: `interval applies the configured spaced-repetition policy to a review
history written oldest first, one character per review: c for correct and
x for incorrect. For example --history ccx --correct.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			policy, err := srs.NewServiceWithParams(c.config.SRS.Params())
			if err != nil {
				return err
			}

			at := time.Now().UTC()
			if now != "" {
				if at, err = time.Parse(time.RFC3339, now); err != nil {
					return fmt.Errorf("invalid --now: %w", err)
				}
			}

			records, err := parseHistory(history, at)
			if err != nil {
				return err
			}

			interval := policy.CalculateNextInterval(records, correct)
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "consecutive_correct: %d\n", policy.ConsecutiveCorrect(records))
			_, _ = fmt.Fprintf(out, "consecutive_failures: %d\n", policy.ConsecutiveFailures(records))
			_, _ = fmt.Fprintf(out, "next_interval_days: %d\n", interval.Days())
			_, _ = fmt.Fprintf(out, "next_review_at: %s\n", policy.NextReviewDate(interval, at).Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&history, "history", "", "prior reviews, oldest first (c = correct, x = incorrect)")
	cmd.Flags().BoolVar(&correct, "correct", false, "whether the review being scored was correct")
	cmd.Flags().StringVar(&now, "now", "", "review time in RFC 3339 (default: current time)")
	return cmd
}

func newStrugglingCmd(c *cli) *cobra.Command {
	var failures, attempts int

	cmd := &cobra.Command{
		Use:   "struggling",
		Short: "Check whether failure counts mark a card as struggling",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if failures < 0 || attempts < 0 {
				return fmt.Errorf("--failures and --attempts cannot be negative")
			}
			if failures > attempts {
				return fmt.Errorf("--failures (%d) cannot exceed --attempts (%d)", failures, attempts)
			}

			policy, err := srs.NewServiceWithParams(c.config.SRS.Params())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "struggling: %t\n", policy.ShouldMarkAsStruggling(failures, attempts))
			return err
		},
	}
	cmd.Flags().IntVar(&failures, "failures", 0, "consecutive failures, including the current review")
	cmd.Flags().IntVar(&attempts, "attempts", 0, "total attempts, including the current review")
	return cmd
}

// parseHistory turns a c/x string into one-day-apart history records that
// end the day before at.
func parseHistory(s string, at time.Time) ([]domain.ReviewHistoryRecord, error) {
	records := make([]domain.ReviewHistoryRecord, 0, len(s))
	for i, ch := range s {
		var ok bool
		switch ch {
		case 'c', 'C':
			ok = true
		case 'x', 'X':
			ok = false
		default:
			return nil, fmt.Errorf("invalid history character %q at position %d", ch, i+1)
		}
		records = append(records, domain.ReviewHistoryRecord{
			IsCorrect:    ok,
			Mode:         domain.ReviewModeFlashcard,
			ReviewedAt:   at.AddDate(0, 0, i-len(s)),
			IntervalDays: domain.MinIntervalDays,
		})
	}
	return records, nil
}
