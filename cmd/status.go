package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/qgen/internal/llm"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check that the generator and auditor models respond",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openPipeline(cmd, -1)
		if err != nil {
			return err
		}
		defer p.Close()

		checks := []struct {
			role  llm.ServiceRole
			model string
			ping  func(context.Context) error
		}{
			{llm.GeneratorRole, p.generator.ModelID(), p.generator.Ping},
			{llm.AuditorRole, p.auditor.ModelID(), p.auditor.Ping},
		}

		var failed int
		for _, c := range checks {
			start := time.Now()
			err := c.ping(cmd.Context())
			ms := time.Since(start).Milliseconds()
			if err != nil {
				failed++
				fmt.Printf("✗ %-10s %-28s %s\n", c.role, truncate(c.model, 28), err)
				continue
			}
			fmt.Printf("✓ %-10s %-28s %dms\n", c.role, truncate(c.model, 28), ms)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d services unavailable", failed, len(checks))
		}
		return nil
	},
}
