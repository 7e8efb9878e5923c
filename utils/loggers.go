package utils

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger configures the global zerolog logger. Development builds get a
// human readable console writer, everything else logs JSON to stdout.
func InitLogger(level, env string) error {
	parsedLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}

	zerolog.TimeFieldFormat = time.RFC3339

	if env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).Level(parsedLevel)
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger().Level(parsedLevel)
	}

	return nil
}

// Component returns a sub-logger tagged with the component name.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// RequestLogger decorates base with the request id carried by ctx, if any.
func RequestLogger(ctx context.Context, base zerolog.Logger) *zerolog.Logger {
	meta, ok := RequestMetaFromContext(ctx)
	if !ok || meta.RequestID == "" {
		return &base
	}
	l := base.With().Str("request_id", meta.RequestID).Logger()
	return &l
}
