package errs

import (
	"log/slog"

	"github.com/samber/oops"
)

// Log writes an error with structured context if it's (or wraps) an
// AetherError/oops error, falling back to a plain error attribute
// otherwise.
func Log(logger *slog.Logger, msg string, err error) {
	if oopsErr, ok := oops.AsOops(err); ok {
		attrs := []any{"error", oopsErr.Error()}
		if code := oopsErr.Code(); code != "" {
			attrs = append(attrs, "code", code)
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			attrs = append(attrs, "context", ctx)
		}
		logger.Error(msg, attrs...)
		return
	}
	logger.Error(msg, "error", err)
}
