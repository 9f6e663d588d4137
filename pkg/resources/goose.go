package resources

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// GooseLogger sends goose output to zerolog. Fatalf logs at error level and does not exit; the
// migration error is returned to the caller instead.
type GooseLogger struct {
	logger zerolog.Logger
}

func NewGooseLogger(ctx context.Context) *GooseLogger {
	return &GooseLogger{
		logger: log.Ctx(ctx).With().Str("component", "migrations").Logger(),
	}
}

func (l *GooseLogger) Printf(format string, v ...any) {
	l.logger.Info().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *GooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
