//go:build wireinject

package app

import (
	"github.com/google/wire"

	"sentenex/internal/config"
)

func buildAppWithWire(cfg *config.Config) (*App, error) {
	wire.Build(
		newGraphStore,
		newBackendClient,
		newEventSink,
		newSession,
		newStrategyStore,
		newCandleStore,
		newCandleSource,
		newReportGenerator,
		newHTTPServer,
		newApp,
	)
	return nil, nil
}
