package journal

import (
	"context"
	"log/slog"
	"time"

	"longtake/internal/engine"
	"longtake/internal/logging"
)

const recordTimeout = 5 * time.Second

// Recorder adapts a Store to the engine's recorder hook. Persistence errors
// are logged and swallowed; the engine must never stall on the journal.
type Recorder struct {
	store  *Store
	logger *slog.Logger
}

// NewRecorder wraps store.
func NewRecorder(store *Store, logger *slog.Logger) *Recorder {
	return &Recorder{
		store:  store,
		logger: logging.NewComponentLogger(logger, "journal"),
	}
}

// RecordTransition persists one committed transition.
func (r *Recorder) RecordTransition(rec engine.TransitionRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	err := r.store.Append(ctx, Entry{
		AttemptID:   rec.AttemptID,
		From:        rec.From,
		To:          rec.To,
		Clip:        rec.Clip,
		Trigger:     rec.Trigger,
		LoopWait:    rec.LoopWait,
		Bridge:      rec.Bridge,
		Fallback:    rec.Fallback,
		Reason:      rec.Reason,
		CommittedAt: rec.CommittedAt,
	})
	if err != nil {
		r.logger.Warn("journal append failed",
			logging.String(logging.FieldTransitionID, rec.AttemptID),
			logging.Error(err))
	}
}
