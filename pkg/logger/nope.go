package logger

import "log/slog"

// NewNope creates a logger that discards all output.
// Used as the default wherever logging is not configured.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
