package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/pipeline"
	"github.com/sells-group/outreach-cli/internal/source"
	"github.com/sells-group/outreach-cli/internal/store"
	anthropicpkg "github.com/sells-group/outreach-cli/pkg/anthropic"
	apollopkg "github.com/sells-group/outreach-cli/pkg/apollo"
)

// pipelineEnv holds the initialized store and pipeline needed by the
// generate/serve commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initStore opens the configured run-log backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}

// initPipeline sets up the store and API clients and builds the Pipeline.
// Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}

	anthropic := anthropicpkg.NewClient(cfg.Anthropic.Key)

	// Without an Apollo key every run serves the sample fallback.
	var primary source.LeadSource
	if cfg.Apollo.Key != "" {
		apollo := apollopkg.NewClient(cfg.Apollo.Key,
			apollopkg.WithBaseURL(cfg.Apollo.BaseURL),
			apollopkg.WithRateLimit(cfg.Apollo.RateLimit),
		)
		primary = source.NewApolloSource(apollo,
			source.WithSearchResults(cfg.Pipeline.SearchResults),
		)
	} else {
		zap.L().Info("apollo key not configured, using sample lead source")
	}

	p := pipeline.New(pipeline.Options{
		Model:          cfg.Anthropic.Model,
		MaxTokens:      cfg.Anthropic.MaxTokens,
		MaxLeads:       cfg.Pipeline.MaxLeads,
		ResearchBriefs: cfg.Pipeline.ResearchBriefs,
		Seller:         cfg.SellerContext(),
	}, st, anthropic, primary, source.NewSampleSource())

	return &pipelineEnv{Store: st, Pipeline: p}, nil
}
