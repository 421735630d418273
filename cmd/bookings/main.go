package main

import (
	billshandler "suitespot/internal/bills/handler"
	billsrepo "suitespot/internal/bills/repository"
	billsservice "suitespot/internal/bills/service"
	"suitespot/internal/bookings/events"
	"suitespot/internal/bookings/handler"
	"suitespot/internal/bookings/listing"
	"suitespot/internal/bookings/repository"
	"suitespot/internal/bookings/service"
	"suitespot/internal/bookings/validator"
	"suitespot/internal/health"
	listingsrepo "suitespot/internal/listings/repository"
	"suitespot/pkg/app"
	"suitespot/pkg/client"
	"suitespot/pkg/config"
	"suitespot/pkg/kafka"
	kafka_config "suitespot/pkg/kafka/config"
	kafkamw "suitespot/pkg/kafka/middleware"
	"suitespot/pkg/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Bookings service")
	serverApp := app.NewApplication(cfg)

	lookup := initListingLookup(cfg)
	serverApp.OnShutdown("listing-cache", func() error {
		lookup.Stop()
		return nil
	})

	publisher, metrics := initPublisher(cfg)
	serverApp.OnShutdown("booking-events", publisher.Close)

	billService := billsservice.NewBillService(billsrepo.NewMongoBillRepository(cfg), cfg)
	bookingService := service.NewBookingService(
		repository.NewMongoBookingRepository(cfg),
		repository.NewBookingLockRepository(cfg),
		billService,
		lookup,
		publisher,
		validator.NewBookingValidator(cfg.Log),
		cfg,
	)
	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)

	healthHandler := health.NewHealthHandler(cfg.Log).Require("mongo", health.MongoPing(cfg.Client.Mongo))
	if cfg.Client.Redis != nil {
		healthHandler.Observe("redis", health.RedisPing(cfg.Client.Redis))
	}
	if metrics != nil {
		healthHandler.WithPublishMetrics(metrics)
	}

	serverApp.SetApp(healthHandler,
		handler.NewBookingHandler(bookingService, cfg.Log),
		billshandler.NewBillHandler(billService, cfg.Log),
	)
	serverApp.Run()
}

// initListingLookup reads listings over HTTP when a listings service URL is
// configured and from the shared database otherwise. Either way lookups are
// cached.
func initListingLookup(cfg *config.Config) *listing.CachedLookup {
	var next listing.Lookup
	if cfg.ListingsServiceURL != "" {
		next = listing.NewHTTPLookup(client.NewListingClient(cfg.ListingsServiceURL))
		cfg.Log.Info("Listing lookup via listings service", "url", cfg.ListingsServiceURL)
	} else {
		next = listing.NewMongoLookup(listingsrepo.NewMongoListingRepository(cfg))
		cfg.Log.Info("Listing lookup via shared database", "database", cfg.MongoDatabaseName)
	}
	return listing.NewCachedLookup(next, cfg.ListingCacheTTL, int64(cfg.ListingCacheSize))
}

// initPublisher falls back to a no-op publisher when Kafka is disabled or
// misconfigured; admissions never depend on the broker.
func initPublisher(cfg *config.Config) (events.Publisher, *kafkamw.PublishMetrics) {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, booking events are not published")
		return events.NewNoopPublisher(), nil
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Error("Invalid Kafka configuration, booking events are not published", "error", err)
		return events.NewNoopPublisher(), nil
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, kafkaCfg.BookingEventsTopic, kafkaCfg.BookingEventsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Error("Failed to create Kafka producer, booking events are not published", "error", err)
		return events.NewNoopPublisher(), nil
	}

	var metrics *kafkamw.PublishMetrics
	if kafkaCfg.EnableMiddleware {
		metrics = kafkamw.NewPublishMetrics()
		producer.Use(kafkamw.LoggingProducerMiddleware(cfg.Log))
		producer.Use(metrics.Middleware())
	}

	cfg.Log.Info("Publishing booking events", "topic", producer.Topic())
	return events.NewKafkaPublisher(producer, middleware.RequestIDFromContext), metrics
}
