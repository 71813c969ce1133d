package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sme-outreach/internal/discovery"
	"github.com/sells-group/sme-outreach/internal/pipeline"
	"github.com/sells-group/sme-outreach/internal/store"
	"github.com/sells-group/sme-outreach/pkg/anthropic"
	"github.com/sells-group/sme-outreach/pkg/deploy"
	"github.com/sells-group/sme-outreach/pkg/websearch"
)

// env bundles the wired components a command needs.
type env struct {
	Store store.Store
	Ctrl  *pipeline.Controller
}

func (e *env) Close() {
	if e.Store != nil {
		e.Store.Close()
	}
}

func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func initEnv(ctx context.Context) (*env, error) {
	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	ai := anthropic.NewClient(cfg.Anthropic.Key)

	var runner anthropic.ToolRunner = discovery.NoopSearch{}
	if cfg.Search.Provider == "jina" {
		var opts []websearch.Option
		if cfg.Search.BaseURL != "" {
			opts = append(opts, websearch.WithBaseURL(cfg.Search.BaseURL))
		}
		runner = discovery.NewWebSearch(websearch.NewClient(cfg.Search.Key, opts...))
	}

	driver := discovery.NewDriver(ai, runner, discovery.Config{
		Model:     cfg.Anthropic.DiscoveryModel,
		MaxTokens: cfg.Anthropic.MaxTokens,
		MinBatch:  cfg.Discovery.MinBatch,
		MaxBatch:  cfg.Discovery.MaxBatch,
	})

	deployer := deploy.NewStaticTarget(cfg.Deploy.Domain)

	return &env{
		Store: st,
		Ctrl:  pipeline.NewController(st, ai, driver, deployer, cfg.Anthropic),
	}, nil
}
