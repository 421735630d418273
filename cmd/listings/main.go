package main

import (
	"suitespot/internal/health"
	"suitespot/internal/listings/handler"
	"suitespot/internal/listings/repository"
	"suitespot/internal/listings/service"
	"suitespot/internal/listings/validator"
	"suitespot/pkg/app"
	"suitespot/pkg/config"
)

const ServiceName = "listings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Listings service")
	listingService := initServices(cfg)

	healthHandler := health.NewHealthHandler(cfg.Log).Require("mongo", health.MongoPing(cfg.Client.Mongo))
	if cfg.Client.Redis != nil {
		healthHandler.Observe("redis", health.RedisPing(cfg.Client.Redis))
	}

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(healthHandler, handler.NewListingHandler(listingService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.ListingService {
	listingService := service.NewListingService(
		repository.NewMongoListingRepository(cfg),
		repository.NewMongoReviewRepository(cfg),
		validator.NewListingValidator(),
		cfg,
	)

	cfg.Log.Info("Listing service initialized", "database", cfg.MongoDatabaseName)
	return listingService
}
