package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/report"
	"github.com/pageza/foodgram/backend/internal/server"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/migrations"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.Setup(cfg.LogLevel, config.IsDevelopment())

	db, err := database.New(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db, migrations.FS); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	font, err := report.LoadFont(cfg.FontPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.FontPath).Msg("failed to load PDF font")
	}
	renderer, err := report.NewRenderer(font)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.FontPath).Msg("failed to initialize PDF renderer")
	}

	ctx := context.Background()

	var rateLimiter *middleware.RateLimiter
	redisClient, err := database.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, recipe creation is not rate limited")
	} else {
		defer redisClient.Close()
		rateLimiter = middleware.NewRecipeCreationRateLimiter(redisClient)
	}

	s3Cfg, err := config.NewS3Config(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize S3 client")
	}
	var images service.ImageStore
	if s3Cfg != nil {
		images = service.NewS3ImageStore(s3Cfg.Client, s3Cfg.BucketName, s3Cfg.PublicURL)
		logger.Info().Str("bucket", s3Cfg.BucketName).Msg("storing recipe images in S3")
	} else {
		images = service.NewLocalImageStore(cfg.MediaRoot, cfg.MediaURL)
		logger.Info().Str("root", cfg.MediaRoot).Msg("storing recipe images on local disk")
	}

	deps := api.Dependencies{
		Auth:          service.NewAuthService(db, cfg.JWTSecret),
		Users:         service.NewUserService(db),
		Tags:          service.NewTagService(db),
		Ingredients:   service.NewIngredientService(db),
		Recipes:       service.NewRecipeService(db, images),
		Collections:   service.NewCollectionService(db),
		Subscriptions: service.NewSubscriptionService(db),
		ShoppingList:  service.NewShoppingListService(db),
		Renderer:      renderer,
		RateLimiter:   rateLimiter,
	}

	srv := server.New(cfg, logger, deps)
	if s3Cfg == nil {
		srv.ServeMedia(cfg.MediaURL, cfg.MediaRoot)
	}

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logger.Fatal().Err(err).Msg("server error")
		}
		return
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("received signal")
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
		return
	}
	logger.Info().Msg("server stopped")
}
