// Package engine is the central coordinator: it owns the loaded workspace
// and wires the tagger, scorer, resolver, and discovery backend into the
// analyze and refine operations the CLI exposes.
package engine

import (
	"context"

	"archscope/internal/config"
	"archscope/internal/discovery"
	"archscope/internal/logging"
	"archscope/internal/ontology"
	"archscope/internal/resolver"
	"archscope/internal/scorer"
	"archscope/internal/session"
	"archscope/internal/tagger"
)

// Engine coordinates one workspace's analysis pipeline. Safe for concurrent
// use: the pipeline stages are stateless and the catalog handles its own
// locking.
type Engine struct {
	cfg      *config.Config
	ws       *ontology.Workspace
	tagger   *tagger.Tagger
	scorer   *scorer.Scorer
	resolver *resolver.Resolver
	discover discovery.Backend
	logger   *logging.Logger
}

// New builds an engine over a loaded workspace. Scoring thresholds come from
// the config, then RULES.toml overrides; discovery defaults to the in-memory
// catalog search with the configured signal weights.
func New(ws *ontology.Workspace, cfg *config.Config, logger *logging.Logger) *Engine {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	scorerCfg := scorer.Config{
		HighThreshold:  cfg.Scoring.HighThreshold,
		OwnershipBonus: cfg.Scoring.OwnershipBonus,
	}.ApplyOverrides(ws.Rules)

	weights := discovery.Weights{
		Name:     cfg.Discovery.NameWeight,
		Domain:   cfg.Discovery.DomainWeight,
		Fragment: cfg.Discovery.FragmentWeight,
	}

	return &Engine{
		cfg:      cfg,
		ws:       ws,
		tagger:   tagger.New(ws.Ontology),
		scorer:   scorer.New(ws.Ontology, scorerCfg),
		resolver: resolver.New(ws.Catalog),
		discover: discovery.NewCatalogSearch(ws.Catalog, weights),
		logger:   logger.WithComponent("engine"),
	}
}

// UseDiscovery swaps in a different discovery backend, typically the FTS one.
func (e *Engine) UseDiscovery(b discovery.Backend) {
	e.discover = b
}

// Catalog returns the live component catalog.
func (e *Engine) Catalog() *ontology.Catalog {
	return e.ws.Catalog
}

// Ontology returns the loaded domain ontology.
func (e *Engine) Ontology() *ontology.Ontology {
	return e.ws.Ontology
}

// Analyze runs the full pipeline on one request and opens a refinement
// session. Analysis never fails: unrecognizable input comes back as a
// session holding a rephrase question.
func (e *Engine) Analyze(request string) *session.Session {
	tags := e.tagger.Tag(request)
	res := e.scorer.Score(tags)

	tied := make(map[string]bool, len(res.Ties))
	for _, d := range res.Ties {
		tied[d] = true
	}

	outputs := make([]resolver.Output, 0, len(res.Records))
	for _, rec := range res.Records {
		outputs = append(outputs, e.resolver.Resolve(rec, tied[rec.Domain]))
	}

	sess := session.New(request, res, outputs, e.ws.Catalog, e.logger)
	e.logger.Info("analysis complete", map[string]interface{}{
		"sessionId": sess.ID(),
		"tags":      len(tags),
		"domains":   len(res.Records),
		"ties":      len(res.Ties),
		"state":     string(sess.State()),
	})
	return sess
}

// Tags exposes the tagging stage on its own, for explain-style output.
func (e *Engine) Tags(request string) []tagger.Tag {
	return e.tagger.Tag(request)
}

// Discover runs the configured discovery backend over context terms.
func (e *Engine) Discover(ctx context.Context, terms []string) ([]discovery.Match, error) {
	matches, err := e.discover.Discover(ctx, terms)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("discovery complete", map[string]interface{}{
		"terms":   terms,
		"matches": len(matches),
	})
	return matches, nil
}
