package config

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()

	var problems []string

	switch cfg.DBDriver {
	case "postgres":
		for field, value := range map[string]string{
			"DB_HOST": cfg.DBHost,
			"DB_PORT": cfg.DBPort,
			"DB_USER": cfg.DBUser,
			"DB_NAME": cfg.DBName,
		} {
			if value == "" {
				problems = append(problems, ValidationError{Field: field, Message: "required when DB_DRIVER is postgres"}.Error())
			}
		}
		if cfg.DBPassword == "" && env != Development && env != Test {
			problems = append(problems, ValidationError{Field: "DB_PASSWORD", Message: "required outside development"}.Error())
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			problems = append(problems, ValidationError{Field: "SQLITE_PATH", Message: "required when DB_DRIVER is sqlite"}.Error())
		}
	default:
		problems = append(problems, ValidationError{Field: "DB_DRIVER", Message: fmt.Sprintf("unsupported driver %q", cfg.DBDriver)}.Error())
	}

	if cfg.JWTSecret == "" {
		problems = append(problems, ValidationError{Field: "JWT_SECRET", Message: "is required"}.Error())
	}
	if cfg.FontPath == "" {
		problems = append(problems, ValidationError{Field: "FONT_PATH", Message: "is required"}.Error())
	}

	if len(problems) > 0 {
		// map iteration order is random
		sort.Strings(problems)
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(problems, "\n"))
	}

	return nil
}
