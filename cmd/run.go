package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abhisek/qgen/internal/audit"
	"github.com/abhisek/qgen/internal/config"
	"github.com/abhisek/qgen/internal/llm"
	"github.com/abhisek/qgen/internal/problemgen"
	"github.com/abhisek/qgen/internal/store"
	"github.com/abhisek/qgen/internal/supervisor"
	"github.com/spf13/cobra"
)

// pipeline is the wired generator, auditor and supervisor for one command.
type pipeline struct {
	cfg        config.Config
	store      *store.Store
	redis      *store.RedisEventRepo
	generator  *problemgen.Client
	auditor    *audit.Client
	supervisor *supervisor.Supervisor
}

// openPipeline opens the store, builds both providers and the supervisor.
// maxRetries overrides the configured budget when non-negative.
func openPipeline(cmd *cobra.Command, maxRetries int) (*pipeline, error) {
	ctx := cmd.Context()
	st, cfg, err := openStore(cmd)
	if err != nil {
		return nil, err
	}
	p := &pipeline{cfg: cfg, store: st}

	if maxRetries >= 0 {
		p.cfg.Pipeline.MaxRetries = maxRetries
	}
	if err := p.cfg.Validate(); err != nil {
		p.Close()
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if p.cfg.SameModel() {
		slog.Warn("generator and auditor use the same model; audits are not independent",
			"model", p.cfg.LLM(llm.GeneratorRole).Model())
	}

	var events store.EventRepo = st.EventRepo()
	if url := p.cfg.Store.RedisURL; url != "" {
		r, err := store.NewRedisEventRepo(ctx, url, p.cfg.Store.RedisKey)
		if err != nil {
			slog.Warn("redis event mirror disabled", "error", err)
		} else {
			p.redis = r
			events = store.Tee(events, r)
		}
	}

	gen, err := newProvider(ctx, p.cfg, llm.GeneratorRole, events)
	if err != nil {
		p.Close()
		return nil, err
	}
	aud, err := newProvider(ctx, p.cfg, llm.AuditorRole, events)
	if err != nil {
		p.Close()
		return nil, err
	}

	p.generator = problemgen.New(gen, problemgen.DefaultConfig())
	p.auditor = audit.New(aud, p.cfg.Audit())
	p.supervisor = supervisor.New(p.generator, p.auditor, p.cfg.Supervisor(),
		supervisor.WithHook(supervisor.NewLogHook(slog.Default())))
	return p, nil
}

func newProvider(ctx context.Context, cfg config.Config, role llm.ServiceRole, events store.EventRepo) (llm.Provider, error) {
	p, err := llm.NewProvider(ctx, cfg.LLM(role), events)
	if err != nil {
		return nil, fmt.Errorf("%s provider: %w", role, err)
	}
	return p, nil
}

func (p *pipeline) Close() {
	if p.redis != nil {
		p.redis.Close()
	}
	p.store.Close()
}
