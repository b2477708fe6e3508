package logging

import (
	stdlog "log"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	gormlogger "gorm.io/gorm/logger"
)

// Setup configures the global zerolog logger. Development gets a
// human-readable console writer, everything else JSON on stdout.
func Setup(level string, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	var logger zerolog.Logger
	if pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	logger = logger.With().Timestamp().Logger()

	log.Logger = logger
	// Route anything still using the standard library logger through zerolog.
	stdlog.SetFlags(0)
	stdlog.SetOutput(logger)

	return logger
}

// NewGormLogger bridges GORM's logger onto zerolog.
func NewGormLogger(logger zerolog.Logger) gormlogger.Interface {
	return gormlogger.New(
		stdlog.New(logger.With().Str("component", "gorm").Logger(), "", 0),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
