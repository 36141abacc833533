package sim

import (
	"context"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/verletlab/internal/config"
	"github.com/san-kum/verletlab/internal/scene"
)

// Ensemble runs one scene configuration over consecutive seeds
// concurrently.
type Ensemble struct {
	cfg       *config.Config
	registry  *scene.Registry
	numRuns   int
	seedStart uint64
	logger    *log.Logger

	// Metrics builds a fresh metric set for each run.
	Metrics func() []Metric
}

func NewEnsemble(cfg *config.Config, registry *scene.Registry, numRuns int, logger *log.Logger) *Ensemble {
	return &Ensemble{
		cfg:       cfg,
		registry:  registry,
		numRuns:   numRuns,
		seedStart: cfg.Seed,
		logger:    logger,
		Metrics:   func() []Metric { return DefaultMetrics(cfg.Solver.MaxSpeed) },
	}
}

func (e *Ensemble) Run(ctx context.Context, simCfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	g, ctx := errgroup.WithContext(ctx)

	for i := 0; i < e.numRuns; i++ {
		g.Go(func() error {
			cfgCopy := *e.cfg
			cfgCopy.Seed = e.seedStart + uint64(i)

			sc, err := e.registry.Build(&cfgCopy, e.logger)
			if err != nil {
				return err
			}
			s := New(sc, e.logger)
			for _, m := range e.Metrics() {
				s.AddMetric(m)
			}

			results[i], err = s.Run(ctx, simCfg)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
