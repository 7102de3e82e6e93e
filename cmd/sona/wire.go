package main

import (
	"fmt"

	"github.com/sona-ai/sona/pkg/backend"
	"github.com/sona-ai/sona/pkg/cache"
	"github.com/sona-ai/sona/pkg/config"
	"github.com/sona-ai/sona/pkg/history"
	"github.com/sona-ai/sona/pkg/query"
	"github.com/sona-ai/sona/pkg/ratelimit"
	"github.com/sona-ai/sona/pkg/search"
)

// buildOrchestrator assembles the query pipeline from config. The
// returned close func releases the history store.
func buildOrchestrator(cfg *config.Config) (*query.Orchestrator, func(), error) {
	if cfg.Backend.APIKey == "" {
		return nil, nil, fmt.Errorf("no API key configured: set backend.api_key or GEMINI_API_KEY")
	}

	hist, err := history.New(cfg.History.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open history: %w", err)
	}

	c := cache.Disabled()
	if cfg.Cache.Enabled {
		c = cache.New(cfg.Cache.MaxItems, cfg.Cache.TTL.Std())
	}

	limiter := ratelimit.NewDualTierLimiter(cfg.Tiers.Quotas(), cfg.Admission.PollInterval.Std())
	client := backend.NewGemini(cfg.Backend)

	orch := query.New(cfg, c, limiter, client, hist, search.NewDuckDuckGo())
	return orch, func() { _ = hist.Close() }, nil
}
