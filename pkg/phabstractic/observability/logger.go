// Package observability provides logging, metrics and tracing for event
// dispatch.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
// Every logging helper accepts a nil logger and does nothing with it.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds component context to a logger.
//
// Example:
//
//	log := EnrichLogger(logger, "conduit", "orders")
//	log.Info("dispatching") // includes component and name
func EnrichLogger(logger *slog.Logger, component, name string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("component", component),
		slog.String("name", name),
	)
}

// LogDispatch logs the outcome of routing one event.
func LogDispatch(logger *slog.Logger, eventID string, matched int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("event dispatched",
		slog.String("event_id", eventID),
		slog.Int("filters_matched", matched),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogHandlerInvoked logs one handler invocation inside a queue.
func LogHandlerInvoked(logger *slog.Logger, eventID string, priority int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("handler invoked",
		slog.String("event_id", eventID),
		slog.Int("priority", priority),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogPropagationHalted logs that a stopped event skipped the rest of a queue.
func LogPropagationHalted(logger *slog.Logger, eventID string, priority int, skipped int) {
	if logger == nil {
		return
	}
	logger.Debug("propagation halted",
		slog.String("event_id", eventID),
		slog.Int("stopped_at_priority", priority),
		slog.Int("handlers_skipped", skipped),
	)
}

// LogStateRejected logs a notification whose state was not an event.
func LogStateRejected(logger *slog.Logger, stateType string) {
	if logger == nil {
		return
	}
	logger.Debug("state rejected",
		slog.String("state_type", stateType),
	)
}

// LogFilterRejected logs an event that a head filter turned away.
func LogFilterRejected(logger *slog.Logger, eventID string) {
	if logger == nil {
		return
	}
	logger.Debug("event rejected by filter",
		slog.String("event_id", eventID),
	)
}

// LogHandlerError logs a handler that failed or panicked.
func LogHandlerError(logger *slog.Logger, eventID string, err error) {
	if logger == nil {
		return
	}
	logger.Error("handler failed",
		slog.String("event_id", eventID),
		slog.String("error", err.Error()),
	)
}

// LogBindingError logs a handler rebind that was refused.
func LogBindingError(logger *slog.Logger, binding string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("handler binding failed",
		slog.String("binding", binding),
		slog.String("error", err.Error()),
	)
}

// LogJournalError logs a failure to record an event (non-fatal).
func LogJournalError(logger *slog.Logger, stream, eventID string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("journal write failed",
		slog.String("stream", stream),
		slog.String("event_id", eventID),
		slog.String("error", err.Error()),
	)
}

// LogBridgeError logs a message that could not cross the NATS bridge.
func LogBridgeError(logger *slog.Logger, subject, eventID string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("bridge transfer failed",
		slog.String("subject", subject),
		slog.String("event_id", eventID),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
