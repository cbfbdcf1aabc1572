package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/qgen/internal/store"
	"github.com/spf13/cobra"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "List saved accepted questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, _ := cmd.Flags().GetString("run")
		topic, _ := cmd.Flags().GetString("topic")
		limit, _ := cmd.Flags().GetInt("limit")
		full, _ := cmd.Flags().GetBool("full")

		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		qs, err := s.RunRepo().ListQuestions(cmd.Context(), store.QuestionQuery{
			RunID: runID,
			Topic: topic,
			Limit: limit,
		})
		if err != nil {
			return fmt.Errorf("query questions: %w", err)
		}
		if len(qs) == 0 {
			fmt.Println("No questions saved yet.")
			return nil
		}

		if full {
			for _, q := range qs {
				fmt.Println(string(q.Body))
			}
			return nil
		}
		printQuestions(qs)
		return nil
	},
}

func printQuestions(qs []store.QuestionRecord) {
	rows := make([][]string, 0, len(qs))
	for _, q := range qs {
		rows = append(rows, []string{
			truncate(q.RunID, 8), truncate(q.Topic, 16), q.Type, q.Difficulty,
			strconv.Itoa(q.Score), truncate(strings.Join(strings.Fields(q.Text), " "), 40),
		})
	}
	printTable([]string{"Run", "Topic", "Type", "Difficulty", "Score", "Question"}, rows)
}

func init() {
	questionsCmd.Flags().String("run", "", "Only questions from this run")
	questionsCmd.Flags().String("topic", "", "Only questions for this topic")
	questionsCmd.Flags().IntP("limit", "n", 50, "Number of questions to show")
	questionsCmd.Flags().Bool("full", false, "Print each question as JSON")
}
