package backend

import (
	"context"
	"log/slog"
)

// CallEvent records one backend call, including its retries.
type CallEvent struct {
	RequestID string
	Method    string
	Path      string
	Status    int
	Attempts  int
	LatencyMs int64
	Success   bool
	ErrorCode string
}

// Observer receives an event after every backend call.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// LogObserver writes call events through slog. Successes log at debug,
// failures at warn.
type LogObserver struct {
	logger *slog.Logger
}

func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	level := slog.LevelDebug
	if !event.Success {
		level = slog.LevelWarn
	}
	o.logger.Log(context.Background(), level, "backend_call",
		"request_id", event.RequestID,
		"method", event.Method,
		"path", event.Path,
		"status", event.Status,
		"attempts", event.Attempts,
		"latency_ms", event.LatencyMs,
		"success", event.Success,
		"error_code", event.ErrorCode,
	)
}

// NoopObserver discards all events.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}
