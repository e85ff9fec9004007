package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/Priyansh-9021/Bike-Rental-System/internal/api"
	"github.com/Priyansh-9021/Bike-Rental-System/internal/core/ports"
	"github.com/Priyansh-9021/Bike-Rental-System/internal/core/service"
	"github.com/Priyansh-9021/Bike-Rental-System/internal/infrastructure/config"
	mongodb "github.com/Priyansh-9021/Bike-Rental-System/internal/infrastructure/db/mongo"
	redisdb "github.com/Priyansh-9021/Bike-Rental-System/internal/infrastructure/db/redis"
	"github.com/Priyansh-9021/Bike-Rental-System/internal/push"
	"github.com/Priyansh-9021/Bike-Rental-System/internal/registry"
	"github.com/Priyansh-9021/Bike-Rental-System/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		bikeRegistry ports.BikeRegistry
		userRepo     ports.UserRepository
		mongoDB      *mongodriver.Database
		mongoClient  *mongodriver.Client
	)

	switch cfg.Store {
	case "mongo":
		client, db, err := mongodb.Connect(ctx, mongodb.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to mongo")
		}
		mongoClient, mongoDB = client, db

		bikeRepo := mongodb.NewBikeRepository(db)
		if err := bikeRepo.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to create mongo indexes")
		}
		bikeRegistry = bikeRepo
		userRepo = mongodb.NewUserRepository(db)
	case "memory":
		bikeRegistry = registry.NewMemory()
		userRepo = registry.NewMemoryUsers()
	default:
		log.Fatal().Str("store", cfg.Store).Msg("unknown store backend")
	}

	var (
		redisClient *goredis.Client
		idemStore   service.IdempotencyStore
	)
	if cfg.Redis.Addr != "" {
		client, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		redisClient = client
		idemStore = redisdb.NewIdempotencyStore(client)
	}

	hub := push.NewHub(log)
	rentalService := service.NewRentalService(bikeRegistry, hub, idemStore, log)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, time.Hour)

	if cfg.Seed {
		if snap, err := rentalService.Bikes(ctx); err == nil && len(snap.Bikes) == 0 {
			if err := rentalService.Seed(ctx); err != nil {
				log.Fatal().Err(err).Msg("failed to seed inventory")
			}
			log.Info().Msg("sample inventory seeded")
		}
	}

	// Prime the hub so observers connecting before the first mutation still
	// receive the persisted state.
	if snap, err := rentalService.Bikes(ctx); err == nil {
		hub.Publish(snap.Bikes)
	}

	e := api.NewRouter(api.Deps{
		AuthService:   authService,
		RentalService: rentalService,
		Hub:           hub,
		JWTSecret:     cfg.JWTSecret,
		Mongo:         mongoDB,
		Redis:         redisClient,
		Logger:        log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("store", cfg.Store).Msg("bike rental server started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if mongoClient != nil {
		_ = mongoClient.Disconnect(shutdownCtx)
	}
}
