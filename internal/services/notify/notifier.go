package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	pgrepo "github.com/emberapp/backend/internal/repo/postgres"
)

type EventStore interface {
	InsertBatch(ctx context.Context, userID *int64, events []pgrepo.EventWriteRecord) error
}

// Notifier fans a new match out to both participants: one outbox event per
// user for the downstream push pipeline, plus a structured log line. It runs
// after the swipe transaction committed, so failures here are logged and
// swallowed rather than surfaced to the swiping user.
type Notifier struct {
	events EventStore
	log    *zap.Logger
}

func NewNotifier(events EventStore, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{
		events: events,
		log:    log,
	}
}

func (n *Notifier) MatchCreated(ctx context.Context, matchID string, userAID, userBID int64, occurredAt time.Time) {
	n.log.Info("match created",
		zap.String("match_id", matchID),
		zap.Int64("user_a_id", userAID),
		zap.Int64("user_b_id", userBID),
	)

	if n.events == nil {
		return
	}

	for _, userID := range []int64{userAID, userBID} {
		uid := userID
		other := userAID
		if uid == userAID {
			other = userBID
		}
		err := n.events.InsertBatch(ctx, &uid, []pgrepo.EventWriteRecord{{
			Name:       "match_created",
			OccurredAt: occurredAt,
			Props: map[string]any{
				"match_id":       matchID,
				"target_user_id": other,
			},
		}})
		if err != nil {
			n.log.Warn("enqueue match event failed",
				zap.String("match_id", matchID),
				zap.Int64("user_id", uid),
				zap.Error(err),
			)
		}
	}
}
