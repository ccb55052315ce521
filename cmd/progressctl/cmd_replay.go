package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func newReplayCmd(c *cli) *cobra.Command {
	var showMetrics bool

	cmd := &cobra.Command{
		Use:   "replay <scenario.yaml>",
		Short: "Replay a scripted learner scenario and print the resulting events",
		Long: `replay runs every step of a YAML scenario through the progression service.
Each published event is printed as one JSON line, followed by the learner's
final progress. Steps may declare expect_error to assert a refusal such as
NO_HEARTS without stopping the replay.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := loadScenario(args[0])
			if err != nil {
				return err
			}

			out := newRecordWriter(cmd.OutOrStdout())
			app, err := newApplication(c.config, c.logger, out)
			if err != nil {
				return err
			}

			r, err := newReplayer(app, sc, out)
			if err != nil {
				return fmt.Errorf("failed to prepare scenario: %w", err)
			}

			app.logger.Info("replaying scenario",
				slog.String("file", args[0]),
				slog.Int("steps", len(sc.Steps)),
				slog.String("user_id", r.userID.String()),
				slog.String("path_id", r.pathID.String()))

			if err := r.run(cmd.Context(), sc.Steps); err != nil {
				return err
			}

			if showMetrics {
				return app.writeMetrics(cmd.OutOrStdout())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "print collected metrics after the replay")
	return cmd
}
