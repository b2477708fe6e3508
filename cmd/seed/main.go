package main

import (
	"context"
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/migrations"
)

const defaultDemoPassword = "testpassword123"

func main() {
	ingredientsPath := flag.String("ingredients", "data/ingredients.json", "JSON file with ingredients")
	tagsPath := flag.String("tags", "data/tags.json", "JSON file with tags")
	withUsers := flag.Bool("demo-users", false, "Create demo accounts, including an admin")
	flag.Parse()

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

	ctx := context.Background()

	if *ingredientsPath != "" {
		ingredients, err := readIngredients(*ingredientsPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to read ingredients")
		}
		created, err := seedIngredients(ctx, db, ingredients)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to seed ingredients")
		}
		logger.Info().Int("read", len(ingredients)).Int("created", created).Msg("ingredients seeded")
	}

	if *tagsPath != "" {
		tags, err := readTags(*tagsPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to read tags")
		}
		created, err := seedTags(ctx, db, tags)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to seed tags")
		}
		logger.Info().Int("read", len(tags)).Int("created", created).Msg("tags seeded")
	}

	if *withUsers {
		password := os.Getenv("SEED_PASSWORD")
		if password == "" {
			password = defaultDemoPassword
		}
		created, err := seedUsers(ctx, db, service.NewAuthService(db, cfg.JWTSecret), demoUsers, password)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to seed users")
		}
		logger.Info().Int("created", created).Msg("demo users seeded")
	}
}
