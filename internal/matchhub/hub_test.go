package matchhub

import (
	"context"
	"errors"
	"io"
	"testing"

	"CricketScoreApi/internal/assert"
	"CricketScoreApi/internal/engine"
	"CricketScoreApi/internal/jsonlog"
)

// fakeStore records calls and can be told to fail state updates, so the
// hub's persist paths can be exercised without a database.
type fakeStore struct {
	failUpdates bool
	updates     int
	balls       int
	undone      int
}

func (s *fakeStore) Get(ctx context.Context, matchID string) (*engine.Match, error) {
	return nil, engine.ErrMatchNotFound
}

func (s *fakeStore) Update(ctx context.Context, m *engine.Match) error {
	if s.failUpdates {
		return errors.New("connection reset by peer")
	}
	s.updates++
	return nil
}

func (s *fakeStore) AppendBall(ctx context.Context, matchID string, innings int64,
	ev engine.BallEvent) error {
	s.balls++
	return nil
}

func (s *fakeStore) MarkUndone(ctx context.Context, matchID string, innings, seq int64) error {
	s.undone++
	return nil
}

func newLiveHub(t *testing.T, store Store) *Hub {
	t.Helper()

	match, err := engine.NewMatch("Lions", "Tigers", 2, 2, "")
	assert.NilError(t, err)

	hub := newHub(match, store, nil, jsonlog.New(io.Discard, jsonlog.LevelOff))

	ctx := context.Background()
	assert.NilError(t, hub.SetToss(ctx, "Lions", engine.TossBat))
	_, err = hub.StartInnings(ctx, "Lions", "Tigers", "Asif", "Bilal", "Khan")
	assert.NilError(t, err)

	return hub
}

func TestRecordBallRestoresStateWhenPersistFails(t *testing.T) {
	store := &fakeStore{}
	hub := newLiveHub(t, store)
	ctx := context.Background()

	version := hub.Match.Version

	// With two players a side the wicket ends the innings, so the rollback
	// has to recover from a terminal transition, not just a counter bump.
	store.failUpdates = true
	_, _, err := hub.RecordBall(ctx, engine.Ball{
		Wicket: &engine.Wicket{Batter: "Asif", Method: engine.DismissalBowled},
	})
	assert.Error(t, err)

	inn := hub.Match.CurrentInnings()
	if inn == nil {
		t.Fatal("expected the innings to still be in progress")
	}
	assert.Equal(t, len(inn.History), 0)
	assert.Equal(t, inn.Wickets, int64(0))
	assert.Equal(t, hub.Match.Status, engine.MatchInProgress)
	assert.Equal(t, hub.Match.Version, version)

	// Once the store recovers, scoring continues from the restored version.
	store.failUpdates = false
	_, _, err = hub.RecordBall(ctx, engine.Ball{Runs: 1})
	assert.NilError(t, err)
	assert.Equal(t, hub.Match.Version, version+1)
	assert.Equal(t, hub.Match.CurrentInnings().Runs, int64(1))
}

func TestSimpleOpRestoresStateWhenPersistFails(t *testing.T) {
	store := &fakeStore{}
	hub := newLiveHub(t, store)
	ctx := context.Background()

	version := hub.Match.Version
	striker := hub.Match.CurrentInnings().Striker

	store.failUpdates = true
	err := hub.SwapStrike(ctx)
	assert.Error(t, err)

	assert.Equal(t, hub.Match.CurrentInnings().Striker, striker)
	assert.Equal(t, hub.Match.Version, version)
}

func TestUndoRestoresStateWhenPersistFails(t *testing.T) {
	store := &fakeStore{}
	hub := newLiveHub(t, store)
	ctx := context.Background()

	_, _, err := hub.RecordBall(ctx, engine.Ball{Runs: 2})
	assert.NilError(t, err)
	version := hub.Match.Version

	store.failUpdates = true
	_, err = hub.UndoLastBall(ctx)
	assert.Error(t, err)

	inn := hub.Match.CurrentInnings()
	assert.Equal(t, len(inn.History), 1)
	assert.Equal(t, inn.Runs, int64(2))
	assert.Equal(t, hub.Match.Version, version)
}
