package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"sentenex/internal/agent"
	"sentenex/internal/config"
	"sentenex/internal/executor/backend"
	"sentenex/internal/gateway/binance"
	"sentenex/internal/gateway/database"
	"sentenex/internal/gateway/notifier"
	"sentenex/internal/graph"
	"sentenex/internal/logger"
	"sentenex/internal/market"
	"sentenex/internal/report"
	transporthttp "sentenex/internal/transport/http"
)

// App owns application wiring: config in, running services out.
type App struct {
	cfg        *config.Config
	httpSrv    *transporthttp.Server
	session    *agent.Session
	strategies database.StrategyStore
}

// NewApp builds the application from configuration without starting it.
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(cfg)
}

// Run serves until ctx is cancelled, then releases resources.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return a.httpSrv.Start(ctx)
	})
	err := group.Wait()

	if stopErr := a.session.Stop(); stopErr != nil {
		logger.Warnf("stop session on shutdown: %v", stopErr)
	}
	if closeErr := a.strategies.Close(); closeErr != nil {
		logger.Warnf("close strategy store: %v", closeErr)
	}
	return err
}

func newApp(cfg *config.Config, httpSrv *transporthttp.Server, session *agent.Session, strategies database.StrategyStore) *App {
	return &App{cfg: cfg, httpSrv: httpSrv, session: session, strategies: strategies}
}

func newGraphStore() *graph.Store {
	return graph.NewStore()
}

func newBackendClient(cfg *config.Config) (*backend.Client, error) {
	client, err := backend.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("init backend client: %w", err)
	}
	logger.Infof("✓ execution backend: %s", cfg.Backend.APIURL)
	return client, nil
}

func newEventSink(cfg *config.Config) agent.EventSink {
	if !cfg.Notify.Telegram.Enabled {
		return nil
	}
	logger.Infof("✓ telegram notifications enabled")
	return notifier.NewTelegram(cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID)
}

func newSession(cfg *config.Config, client *backend.Client, sink agent.EventSink) *agent.Session {
	interval := time.Duration(cfg.Agent.PollIntervalSeconds) * time.Second
	return agent.NewSession(client, interval, cfg.Agent.InitialInvestment, sink)
}

func newStrategyStore(cfg *config.Config) (database.StrategyStore, error) {
	store, err := database.OpenStrategyStore(cfg.Storage.StrategyDBPath)
	if err != nil {
		return nil, fmt.Errorf("open strategy store: %w", err)
	}
	logger.Infof("✓ strategy store at %s", cfg.Storage.StrategyDBPath)
	return store, nil
}

func newCandleStore() market.CandleStore {
	return market.NewMemoryCandleStore()
}

func newCandleSource(cfg *config.Config) *binance.Source {
	return binance.NewSource(cfg.Market.BinanceBaseURL)
}

func newReportGenerator(cfg *config.Config) (*report.Generator, error) {
	if cfg.Report.EnableSnapshot {
		if err := report.EnsureHeadlessAvailable(context.Background()); err != nil {
			return nil, fmt.Errorf("snapshots enabled but unusable: %w", err)
		}
		logger.Infof("✓ headless browser available for report snapshots")
	}
	return report.NewGenerator(cfg.Report.OutputDir), nil
}

func newHTTPServer(cfg *config.Config, graphs *graph.Store, strategies database.StrategyStore, session *agent.Session, candles market.CandleStore, source *binance.Source, reports *report.Generator) *transporthttp.Server {
	return transporthttp.NewServer(cfg, graphs, strategies, session, candles, source, reports)
}
