package cmd

import (
	"fmt"
	"strconv"

	"github.com/abhisek/qgen/internal/store"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List saved supervision runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		runs, err := s.RunRepo().ListRuns(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Println("No runs saved yet.")
			return nil
		}

		rows := make([][]string, 0, len(runs))
		for _, r := range runs {
			rows = append(rows, []string{
				r.ID, stamp(r.Timestamp), r.Mode, truncate(r.Topic, 20),
				fmt.Sprintf("%d/%d", r.Accepted, r.Requested), strconv.Itoa(r.Attempts), r.Outcome,
			})
		}
		printTable([]string{"ID", "Timestamp", "Mode", "Topic", "Passed", "Rounds", "Outcome"}, rows)
		return nil
	},
}

var runsViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show a saved run and its accepted questions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		r, err := s.RunRepo().GetRun(ctx, args[0])
		if err != nil {
			return fmt.Errorf("get run: %w", err)
		}
		if r == nil {
			return fmt.Errorf("run %s not found", args[0])
		}

		printFields([][2]string{
			{"ID", r.ID},
			{"Time", stamp(r.Timestamp)},
			{"Mode", r.Mode},
			{"Topic", r.Topic},
			{"Chapter", r.Chapter},
			{"Outcome", r.Outcome},
			{"Accepted", fmt.Sprintf("%d/%d", r.Accepted, r.Requested)},
			{"Rejected", strconv.Itoa(r.Rejected)},
			{"Disagreements", strconv.Itoa(r.Disagreements)},
			{"Degraded", strconv.Itoa(r.Degraded)},
			{"Rounds", strconv.Itoa(r.Attempts)},
			{"Error", r.Error},
		})

		qs, err := s.RunRepo().ListQuestions(ctx, store.QuestionQuery{RunID: r.ID})
		if err != nil {
			return fmt.Errorf("query questions: %w", err)
		}
		if len(qs) > 0 {
			fmt.Println()
			printQuestions(qs)
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().IntP("limit", "n", 20, "Number of runs to show")
	runsCmd.AddCommand(runsViewCmd)
}
