//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"rld/internal"
	"rld/internal/controllers"
	"rld/internal/providers"
	"rld/internal/services"
	"rld/internal/snapshot"
	"rld/internal/storage"
	"rld/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		storage.NewSystemClock,
		providers.NewStoreProvider,
		providers.NewRateLimiter,

		services.NewRewardCalculator,
		services.NewViolationLedger,
		services.NewEngagementGate,

		snapshot.NewZstdCompressor,
		snapshot.NewFileManager,
		snapshot.NewScheduler,

		controllers.NewApiController,
		controllers.NewAdminController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewHandler,
		internal.NewApp,
	)

	return nil, nil
}
