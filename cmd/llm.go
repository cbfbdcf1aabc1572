package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/qgen/internal/llm"
	"github.com/abhisek/qgen/internal/store"
	"github.com/spf13/cobra"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM calls",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		var rows [][]string
		for _, e := range events {
			if purpose != "" && e.Purpose != purpose {
				continue
			}
			rows = append(rows, []string{
				strconv.Itoa(e.ID), stamp(e.Timestamp), e.Purpose, truncate(e.Model, 28),
				strconv.Itoa(e.InputTokens), strconv.Itoa(e.OutputTokens),
				strconv.FormatInt(e.LatencyMs, 10), check(e.Success),
			})
		}
		if len(rows) == 0 {
			fmt.Println("No LLM events found.")
			return nil
		}
		printTable([]string{"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK"}, rows)
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full prompt, reply and reasoning of one LLM call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}

		printFields([][2]string{
			{"ID", strconv.Itoa(e.ID)},
			{"Time", stamp(e.Timestamp)},
			{"Provider", e.Provider},
			{"Model", e.Model},
			{"Purpose", e.Purpose},
			{"Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens)},
			{"Latency", fmt.Sprintf("%dms", e.LatencyMs)},
			{"Success", strconv.FormatBool(e.Success)},
			{"Error", e.ErrorMessage},
		})
		fmt.Println()
		printSection("REQUEST", e.RequestBody)
		printSection("RESPONSE", e.ResponseBody)
		if e.Reasoning != "" {
			printSection("REASONING", e.Reasoning)
		}
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage per purpose and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		events := s.EventRepo()
		byPurpose, err := events.LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		if len(byPurpose) == 0 {
			fmt.Println("No LLM usage recorded yet.")
			return nil
		}

		var rows [][]string
		var calls, in, out int
		for _, u := range byPurpose {
			rows = append(rows, []string{
				u.Purpose, strconv.Itoa(u.Calls), strconv.Itoa(u.InputTokens),
				strconv.Itoa(u.OutputTokens), strconv.Itoa(u.InputTokens + u.OutputTokens),
				strconv.FormatInt(u.AvgLatencyMs, 10),
			})
			calls += u.Calls
			in += u.InputTokens
			out += u.OutputTokens
		}
		rows = append(rows, []string{"TOTAL", strconv.Itoa(calls), strconv.Itoa(in), strconv.Itoa(out), strconv.Itoa(in + out), ""})
		fmt.Println("Usage by purpose")
		printTable([]string{"Purpose", "Calls", "Input", "Output", "Total", "Avg ms"}, rows)

		byModel, err := events.LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}
		if len(byModel) == 0 {
			return nil
		}

		rows = rows[:0]
		var total float64
		var unpriced []string
		for _, u := range byModel {
			cost := "?"
			if price := llm.LookupCost(u.Model); price != nil {
				c := price.Cost(u.InputTokens, u.OutputTokens)
				total += c
				cost = formatCost(c)
			} else {
				unpriced = append(unpriced, u.Model)
			}
			rows = append(rows, []string{
				truncate(u.Model, 32), strconv.Itoa(u.Calls),
				strconv.Itoa(u.InputTokens), strconv.Itoa(u.OutputTokens), cost,
			})
		}
		label := "TOTAL"
		if len(unpriced) > 0 {
			label = "TOTAL (partial)"
		}
		rows = append(rows, []string{label, "", "", "", formatCost(total)})

		fmt.Println("\nEstimated cost (USD)")
		printTable([]string{"Model", "Calls", "Input", "Output", "Cost"}, rows)
		if len(unpriced) > 0 {
			fmt.Printf("Pricing unavailable for: %s\n", strings.Join(unpriced, ", "))
		}
		return nil
	},
}

var llmTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Show the latest LLM calls mirrored to Redis",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt64("limit")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Store.RedisURL == "" {
			return fmt.Errorf("no redis URL configured (set QGEN_REDIS_URL or store.redis_url)")
		}

		ctx := cmd.Context()
		r, err := store.NewRedisEventRepo(ctx, cfg.Store.RedisURL, cfg.Store.RedisKey)
		if err != nil {
			return err
		}
		defer r.Close()

		events, err := r.Recent(ctx, limit)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("No mirrored LLM events.")
			return nil
		}

		rows := make([][]string, 0, len(events))
		for _, e := range events {
			rows = append(rows, []string{
				e.Provider, e.Purpose, truncate(e.Model, 28),
				strconv.Itoa(e.InputTokens), strconv.Itoa(e.OutputTokens),
				strconv.FormatInt(e.LatencyMs, 10), check(e.Success),
			})
		}
		printTable([]string{"Provider", "Purpose", "Model", "In", "Out", "Ms", "OK"}, rows)
		return nil
	},
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose ("+
		strings.Join([]string{llm.PurposeGeneration, llm.PurposeAudit, llm.PurposePing}, ", ")+")")
	llmTailCmd.Flags().Int64P("limit", "n", 20, "Number of events to show")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd, llmTailCmd)
}
