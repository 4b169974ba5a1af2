package monitoring

import (
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog with helpers for the handful of event shapes this
// service emits.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a JSON logger at the given level.
func NewLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return &Logger{Logger: slog.New(handler)}
}

// Request logs one HTTP request.
func (l *Logger) Request(method, path, ip string, status int, duration time.Duration) {
	l.Info("http request",
		"method", method,
		"path", path,
		"ip", ip,
		"status", status,
		"duration_ms", duration.Milliseconds(),
	)
}

// Scored logs one completed composite-scoring run.
func (l *Logger) Scored(entity string, overall int, policy string, duration time.Duration) {
	l.Info("entity scored",
		"entity", entity,
		"overall", overall,
		"policy", policy,
		"duration_ms", duration.Milliseconds(),
	)
}

// ExternalCall logs one outbound metric-source call.
func (l *Logger) ExternalCall(api, endpoint string, status int, duration time.Duration, err error) {
	if err != nil {
		l.Warn("external api call failed",
			"api", api,
			"endpoint", endpoint,
			"status", status,
			"duration_ms", duration.Milliseconds(),
			"error", err.Error(),
		)
		return
	}
	l.Debug("external api call",
		"api", api,
		"endpoint", endpoint,
		"status", status,
		"duration_ms", duration.Milliseconds(),
	)
}
