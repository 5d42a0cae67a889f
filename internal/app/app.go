// Package app assembles the analysis pipeline from configuration.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ftorres/b3score/internal/analyzer"
	"github.com/ftorres/b3score/internal/api"
	"github.com/ftorres/b3score/internal/collector"
	"github.com/ftorres/b3score/internal/collector/yahoo"
	"github.com/ftorres/b3score/internal/config"
	"github.com/ftorres/b3score/internal/core"
	"github.com/ftorres/b3score/internal/filter"
	"github.com/ftorres/b3score/internal/llm/factory"
	"github.com/ftorres/b3score/internal/metrics"
	"github.com/ftorres/b3score/internal/reasoning"
	"github.com/ftorres/b3score/internal/scoring"
	"github.com/ftorres/b3score/internal/sector"
	"github.com/ftorres/b3score/internal/storage/archive"
	"github.com/ftorres/b3score/internal/storage/report"
)

// App owns the wired pipeline and the HTTP server built on top of it.
type App struct {
	cfg          *config.Config
	log          *zap.Logger
	Analyzer     *analyzer.Analyzer
	Fundamentals collector.Fundamentals
	Store        report.Store
	Archiver     *archive.Archiver
	Registry     *metrics.Registry
	server       *api.Server
}

// New builds the full pipeline from configuration.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
	}

	compositeOpts := []scoring.CompositeOption{scoring.WithLogger(log)}
	if cfg.LLM.Enabled {
		provider, err := factory.New(cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("building llm provider: %w", err)
		}
		var reasoner scoring.Reasoner = reasoning.New(provider, reasoning.WithTimeout(cfg.LLM.Timeout))
		if reg != nil {
			reasoner = meteredReasoner{inner: reasoner, provider: provider.Name(), reg: reg}
		}
		compositeOpts = append(compositeOpts, scoring.WithReasoner(reasoner))
		log.Info("llm refinement enabled", zap.String("provider", provider.Name()))
	}

	composite, err := scoring.NewComposite(weights(cfg.Analysis.Weights), compositeOpts...)
	if err != nil {
		return nil, err
	}

	comparatorOpts := []sector.Option{
		sector.WithCacheTTL(cfg.Sector.CacheTTL),
		sector.WithOutlierK(cfg.Sector.OutlierK),
		sector.WithLogger(log),
	}
	if reg != nil {
		comparatorOpts = append(comparatorOpts, sector.WithCacheObserver(reg.RecordSectorCache))
	}
	comparator := sector.NewComparator(comparatorOpts...)

	engine := filter.NewEngine(thresholds(cfg.Filters), log)

	an, err := analyzer.New(
		analyzer.WithComposite(composite),
		analyzer.WithComparator(comparator),
		analyzer.WithFilterEngine(engine),
		analyzer.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	app := &App{
		cfg:      cfg,
		log:      log,
		Analyzer: an,
		Store:    report.NewMemoryStore(1000),
	}

	collectors := collector.NewRegistry()
	collectors.Register(yahoo.New(yahoo.WithHTTPClient(httpClient(cfg.Collector.Timeout))))

	provider := cfg.Collector.Provider
	if provider == "" {
		provider = "yahoo"
	}
	fund, ok := collectors.Get(provider)
	if !ok {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown collector provider %q", provider))
	}
	app.Fundamentals = fund

	if cfg.Archive.Enabled {
		store, err := archiveStorage(cfg.Archive)
		if err != nil {
			return nil, err
		}
		app.Archiver = archive.NewArchiver(store)
	}

	app.Registry = reg

	serverOpts := []api.Option{api.WithLogger(log)}
	if app.Archiver != nil {
		serverOpts = append(serverOpts, api.WithArchiver(app.Archiver))
	}
	app.server = api.NewServer(api.Config{
		Host:             cfg.Server.Host,
		Port:             cfg.Server.Port,
		BatchConcurrency: cfg.Analysis.BatchConcurrency,
		MetricsPath:      cfg.Metrics.Path,
	}, an, app.Fundamentals, app.Store, app.Registry, serverOpts...)

	return app, nil
}

// Serve runs the HTTP server until the context is canceled.
func (a *App) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- a.server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.server.Shutdown(shutdownCtx)
}

func weights(w config.WeightsConfig) scoring.Weights {
	return scoring.Weights{
		core.CategoryValuation:     w.Valuation,
		core.CategoryProfitability: w.Profitability,
		core.CategoryGrowth:        w.Growth,
		core.CategoryLeverage:      w.Leverage,
	}
}

func thresholds(f config.FiltersConfig) filter.Thresholds {
	return filter.Thresholds{
		GoodROE:            f.GoodROE,
		SustainableGrowth:  f.SustainableGrowth,
		ControlledDebt:     f.ControlledDebt,
		HealthyLiquidity:   f.HealthyLiquidity,
		CriticalDebt:       f.CriticalDebt,
		ShrinkingRevenue:   f.ShrinkingRevenue,
		StretchedValuation: f.StretchedValuation,
	}
}

func httpClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// meteredReasoner counts refinement attempts by outcome around the real
// reasoner.
type meteredReasoner struct {
	inner    scoring.Reasoner
	provider string
	reg      *metrics.Registry
}

func (m meteredReasoner) Refine(ctx context.Context, code, sec string, metricSet core.MetricSet, scores core.CategoryScore) (scoring.Refinement, error) {
	ref, err := m.inner.Refine(ctx, code, sec, metricSet, scores)
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.reg.RecordReasonerCall(m.provider, status)
	return ref, err
}

func archiveStorage(cfg config.ArchiveConfig) (archive.Storage, error) {
	switch cfg.Type {
	case "localfs":
		return archive.NewLocalFS(cfg.Path)
	case "s3":
		return archive.NewS3(archive.S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
	default:
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown archive type %q", cfg.Type))
	}
}
