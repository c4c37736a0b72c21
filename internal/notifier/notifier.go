package notifier

import (
	"context"
	"time"

	"CricketScoreApi/internal/engine"
	"CricketScoreApi/internal/jsonlog"

	"github.com/redis/go-redis/v9"
)

const (
	publishTimeout = 2 * time.Second
	streamMaxLen   = 1000
)

// Notifier publishes scoring events to a per-match Redis stream for
// downstream consumers (push workers, site widgets). Publishing is best
// effort and happens after the state change has been committed; a failed
// publish is logged and never fails the scoring operation.
type Notifier struct {
	client *redis.Client
	logger *jsonlog.Logger
}

func New(addr, password string, db int, logger *jsonlog.Logger) *Notifier {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &Notifier{
		client: client,
		logger: logger,
	}
}

// Ping verifies the connection on startup.
func (n *Notifier) Ping(ctx context.Context) error {
	return n.client.Ping(ctx).Err()
}

func (n *Notifier) Close() error {
	return n.client.Close()
}

func streamKey(matchID string) string {
	return "match:" + matchID + ":events"
}

// Publish appends the events to the match's stream, capped at streamMaxLen
// entries.
func (n *Notifier) Publish(events []engine.Event) {
	if len(events) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	pipe := n.client.Pipeline()
	for _, e := range events {
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: streamKey(e.MatchID),
			MaxLen: streamMaxLen,
			Approx: true,
			Values: map[string]any{
				"kind":    string(e.Kind),
				"innings": e.Innings,
				"over":    e.Over,
				"message": e.Message,
			},
		})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		n.logger.PrintError(err, map[string]string{
			"match_id": events[0].MatchID,
		})
	}
}
