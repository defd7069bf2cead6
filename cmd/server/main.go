package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/trackhaus/trackhaus-backend/internal/gateway"
	"github.com/trackhaus/trackhaus-backend/internal/gateway/middleware"
	"github.com/trackhaus/trackhaus-backend/internal/modules/catalog"
	"github.com/trackhaus/trackhaus-backend/internal/modules/payment"
	"github.com/trackhaus/trackhaus-backend/internal/modules/reporting"
	"github.com/trackhaus/trackhaus-backend/internal/shared/infrastructure/config"
	"github.com/trackhaus/trackhaus-backend/internal/shared/infrastructure/database"
	"github.com/trackhaus/trackhaus-backend/internal/shared/logger"
	"github.com/trackhaus/trackhaus-backend/pkg/migration"
)

func main() {
	// .env is for local development; deployed environments set real vars.
	_ = godotenv.Load()

	cfg := config.Load()

	log := logger.New(logger.Options{
		ServiceName: "trackhaus-backend",
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
	})

	db, err := database.NewPostgresDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer db.Close()
	log.Info().Msg("database connected")

	if err := migration.AutoMigrate(cfg.Database.URL(), "./migrations", log); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// The callback lock is an optimization; the service runs without it.
	var locks *redis.Client
	if cfg.Redis.Enabled {
		locks, err = database.NewRedis(cfg.Redis.RedisConfig)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, callback lock disabled")
			locks = nil
		}
	}
	if locks != nil {
		defer locks.Close()
	}

	catalogModule := catalog.NewModule(db)
	paymentModule := payment.NewModule(db, locks, catalogModule.TrackFinder(), catalogModule.StatsUpdater(), cfg, log)
	reportingModule := reporting.NewModule(paymentModule.SaleRepository())

	mux := gateway.SetupRoutes(gateway.RouterConfig{
		AuthMiddleware:   middleware.NewAuthMiddleware(cfg.JWT.Secret),
		PaymentHandler:   paymentModule.HTTPHandler(),
		ReportingHandler: reportingModule.HTTPHandler(),
	})

	handler := middleware.PrometheusMiddleware(
		middleware.CORSMiddleware(mux, cfg.Server.AllowedOrigins),
	)

	server := gateway.NewServer(cfg.Server.Port, handler, log)
	if err := server.Start(); err != nil {
		log.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}
