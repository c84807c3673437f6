// Package service orchestrates treasury operations: it loads state from the
// store, applies the pure transitions in workflow and persists the result.
package service

import (
	"context"
	"log/slog"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/events"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
)

// publish sends e and logs failures. Events never fail an operation.
func publish(ctx context.Context, pub events.Publisher, e events.Event) {
	if err := pub.Publish(ctx, e); err != nil {
		slog.Warn("Failed to publish event", "type", e.Type, "subject_id", e.SubjectID, "error", err)
	}
}

// logFailure logs expected domain failures at warn and everything else at error.
func logFailure(msg string, err error, args ...any) {
	args = append(args, "error", err, "kind", models.KindOf(err))
	if models.KindOf(err) == models.KindUnknown {
		slog.Error(msg, args...)
		return
	}
	slog.Warn(msg, args...)
}

func publisherOrNop(pub events.Publisher) events.Publisher {
	if pub == nil {
		return events.Nop{}
	}
	return pub
}
