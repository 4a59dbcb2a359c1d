package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/company-profiler/internal/extract"
	"github.com/sells-group/company-profiler/internal/fetch"
	"github.com/sells-group/company-profiler/internal/service"
	"github.com/sells-group/company-profiler/internal/store"
	"github.com/sells-group/company-profiler/pkg/anthropic"
)

// env bundles the wired collaborators shared by the commands. Lifecycle of
// the store belongs here; the core logic only holds references.
type env struct {
	Store   store.Store
	Service *service.Service
}

func (e *env) Close() {
	_ = e.Store.Close()
}

// initService opens the store and wires fetcher, AI client, and extractor
// into the orchestrator.
func initService(ctx context.Context) (*env, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	fetcher := fetch.New(cfg.Fetch)
	client := anthropic.NewClient(cfg.Anthropic.Key)
	extractor := extract.New(client, cfg.Extract)

	return &env{
		Store:   st,
		Service: service.New(st, fetcher, extractor),
	}, nil
}
