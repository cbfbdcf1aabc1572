package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/abhisek/qgen/internal/question"
	"github.com/abhisek/qgen/internal/report"
	"github.com/abhisek/qgen/internal/store"
	"github.com/abhisek/qgen/internal/supervisor"
	"github.com/spf13/cobra"
)

const (
	modePractice   = "practice"
	modeAssessment = "assessment"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an audited question set",
}

var generatePracticeCmd = &cobra.Command{
	Use:   "practice",
	Short: "Generate practice questions for one topic",
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		chapter, _ := cmd.Flags().GetString("chapter")
		diff, _ := cmd.Flags().GetString("difficulty")
		count, _ := cmd.Flags().GetInt("count")

		d, err := question.ParseDifficulty(diff)
		if err != nil {
			return err
		}
		spec := question.PracticeSpec(topic, d, count)
		spec.Chapter = chapter
		return runGenerate(cmd, modePractice, spec)
	},
}

var generateAssessmentCmd = &cobra.Command{
	Use:   "assessment",
	Short: "Generate a mixed-difficulty assessment for a chapter",
	RunE: func(cmd *cobra.Command, args []string) error {
		chapter, _ := cmd.Flags().GetString("chapter")
		topics, _ := cmd.Flags().GetStringSlice("topics")
		grade, _ := cmd.Flags().GetString("grade")
		count, _ := cmd.Flags().GetInt("count")

		return runGenerate(cmd, modeAssessment, question.AssessmentSpec(chapter, topics, grade, count))
	},
}

// runGenerate runs one supervision and writes the result. A run whose last
// round failed to generate is still reported and saved before its error is
// returned.
func runGenerate(cmd *cobra.Command, mode string, spec question.Spec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	maxRetries, _ := cmd.Flags().GetInt("max-retries")
	asJSON, _ := cmd.Flags().GetBool("json")
	save, _ := cmd.Flags().GetBool("save")
	xlsxPath, _ := cmd.Flags().GetString("xlsx")

	p, err := openPipeline(cmd, maxRetries)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx := cmd.Context()
	slog.Info("supervision started", "mode", mode, "topic", spec.Topic, "count", spec.Count,
		"generator", p.generator.ModelID(), "auditor", p.auditor.ModelID())

	res, runErr := p.supervisor.Run(ctx, spec)
	if res == nil {
		return runErr
	}

	var runID string
	if save {
		run, qs, err := runRecords(mode, spec, res, runErr)
		if err != nil {
			return err
		}
		runID, err = p.store.RunRepo().SaveRun(ctx, run, qs)
		if err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		slog.Debug("run saved", "run_id", runID, "questions", len(qs))
	}

	if xlsxPath != "" {
		if err := report.WriteWorkbook(xlsxPath, res); err != nil {
			return err
		}
		slog.Info("workbook written", "path", xlsxPath)
	}

	if asJSON {
		if err := report.WriteJSON(os.Stdout, res, runID); err != nil {
			return err
		}
	} else {
		if err := report.Render(os.Stdout, res); err != nil {
			return err
		}
		if runID != "" {
			fmt.Printf("\nSaved as run %s\n", runID)
		}
	}
	return runErr
}

// runRecords converts a result into store records. Each accepted question
// carries the score of the audit that accepted it.
func runRecords(mode string, spec question.Spec, res *supervisor.Result, runErr error) (store.RunRecord, []store.QuestionRecord, error) {
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return store.RunRecord{}, nil, fmt.Errorf("encode spec: %w", err)
	}
	run := store.RunRecord{
		Mode:          mode,
		Topic:         spec.Topic,
		Chapter:       spec.Chapter,
		Requested:     res.Requested,
		Accepted:      res.Summary.Accepted,
		Rejected:      res.Summary.Rejected,
		Disagreements: res.Summary.Disagreements,
		Degraded:      res.Summary.Degraded,
		Attempts:      res.GenerationAttempts,
		Outcome:       string(res.Status),
		Spec:          specJSON,
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}

	var qs []store.QuestionRecord
	for _, o := range res.AuditResults {
		if !o.Accepted {
			continue
		}
		body, err := json.Marshal(o.Question.Record())
		if err != nil {
			return store.RunRecord{}, nil, fmt.Errorf("encode question: %w", err)
		}
		qs = append(qs, store.QuestionRecord{
			Topic:      spec.Topic,
			Type:       o.Question.Type().String(),
			Difficulty: o.Question.Difficulty().String(),
			Text:       o.Question.Text(),
			Score:      o.Verdict.Score,
			Body:       body,
		})
	}
	return run, qs, nil
}

func addGenerateFlags(c *cobra.Command, defaultCount int) {
	c.Flags().Int("count", defaultCount, "Number of questions to accept")
	c.Flags().Int("max-retries", -1, "Rounds allowed after the first (default from config)")
	c.Flags().Bool("json", false, "Write the result as JSON")
	c.Flags().Bool("save", true, "Persist the run and accepted questions")
	c.Flags().String("xlsx", "", "Also write an xlsx workbook to this path")
}

func init() {
	generatePracticeCmd.Flags().String("topic", "", "Topic to practise")
	generatePracticeCmd.Flags().String("chapter", "", "Chapter the topic belongs to")
	generatePracticeCmd.Flags().String("difficulty", "basic", "Difficulty: basic, intermediate or hard")
	generatePracticeCmd.MarkFlagRequired("topic")
	addGenerateFlags(generatePracticeCmd, 3)

	generateAssessmentCmd.Flags().String("chapter", "", "Chapter to assess")
	generateAssessmentCmd.Flags().StringSlice("topics", nil, "Knowledge points to cover (comma separated)")
	generateAssessmentCmd.Flags().String("grade", "10", "Grade level")
	generateAssessmentCmd.MarkFlagRequired("chapter")
	addGenerateFlags(generateAssessmentCmd, 5)

	generateCmd.AddCommand(generatePracticeCmd)
	generateCmd.AddCommand(generateAssessmentCmd)
}
