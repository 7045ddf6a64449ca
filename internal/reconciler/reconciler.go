package reconciler

import (
	"fmt"
	"time"

	"github.com/lcastelli/streampulse/internal/logger"
	"github.com/lcastelli/streampulse/internal/models"
)

// Action is the typed decision taken for one channel during reconciliation
type Action string

const (
	// ActionInsert marks a channel seen for the first time
	ActionInsert Action = "insert"

	// ActionUpdate marks a known channel whose url or status changed
	ActionUpdate Action = "update"

	// ActionKeep marks a known channel with no counted change; it is still
	// upserted because the incoming batch always wins
	ActionKeep Action = "keep"

	// ActionDeactivate marks a stored channel missing from the incoming
	// batch; it is soft-deleted, never removed
	ActionDeactivate Action = "deactivate"
)

// Decision pairs a channel record with the action decided for it
type Decision struct {
	Channel models.Channel
	Action  Action
}

// Result is the outcome of one reconciliation pass
type Result struct {
	Decisions []Decision
	ToUpsert  []models.Channel
	Added     int
	Updated   int
	Removed   int
	Audit     models.SourceUpdate
}

// Reconciler diffs an incoming channel batch against stored channels for a
// source. It performs no I/O.
type Reconciler struct {
	logger *logger.Logger
	now    func() time.Time
}

// New creates a reconciler
func New() *Reconciler {
	return &Reconciler{
		logger: logger.AppLogger(),
		now:    time.Now,
	}
}

// NewWithClock creates a reconciler with an injected clock, for tests
func NewWithClock(log *logger.Logger, now func() time.Time) *Reconciler {
	return &Reconciler{logger: log, now: now}
}

// Reconcile computes per-channel decisions and the audit record for one
// incoming batch. Incoming channels always win: every one is slated for
// upsert with its incoming properties. Stored channels missing from the
// batch are deactivated; a channel that is already inactive and still
// missing is left alone, which keeps repeat runs idempotent.
func (r *Reconciler) Reconcile(source string, incoming, existing []models.Channel) Result {
	byID := make(map[string]models.Channel, len(existing))
	for _, ch := range existing {
		byID[ch.ID] = ch
	}

	incomingIDs := make(map[string]struct{}, len(incoming))

	result := Result{
		Decisions: make([]Decision, 0, len(incoming)),
		ToUpsert:  make([]models.Channel, 0, len(incoming)),
	}

	for _, ch := range incoming {
		incomingIDs[ch.ID] = struct{}{}

		stored, known := byID[ch.ID]
		action := ActionKeep
		switch {
		case !known:
			action = ActionInsert
			result.Added++
		case stored.URL != ch.URL || stored.Status != ch.Status:
			action = ActionUpdate
			result.Updated++
		}

		result.Decisions = append(result.Decisions, Decision{Channel: ch, Action: action})
		result.ToUpsert = append(result.ToUpsert, ch)
	}

	for _, stored := range existing {
		if _, present := incomingIDs[stored.ID]; present {
			continue
		}
		if stored.Status == models.StatusInactive {
			continue
		}

		deactivated := stored
		deactivated.Status = models.StatusInactive
		result.Decisions = append(result.Decisions, Decision{Channel: deactivated, Action: ActionDeactivate})
		result.ToUpsert = append(result.ToUpsert, deactivated)
		result.Removed++
	}

	result.Audit = models.SourceUpdate{
		Source:    source,
		Timestamp: r.now().UTC(),
		Message: fmt.Sprintf("reconciled %d channels: %d added, %d updated, %d removed",
			len(incoming), result.Added, result.Updated, result.Removed),
		ChannelsAdded:   result.Added,
		ChannelsUpdated: result.Updated,
		ChannelsRemoved: result.Removed,
	}

	r.logger.WithFields(map[string]interface{}{
		"source":  source,
		"batch":   len(incoming),
		"added":   result.Added,
		"updated": result.Updated,
		"removed": result.Removed,
	}).Info("reconciliation complete")

	return result
}
