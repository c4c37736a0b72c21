package matchhub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"CricketScoreApi/internal/engine"
	"CricketScoreApi/internal/jsonlog"

	"github.com/gorilla/websocket"
)

const persistTimeout = 3 * time.Second

// Store is the persistence surface the hub needs: the full match state for
// load and save, plus the append-only ball log.
type Store interface {
	Get(ctx context.Context, matchID string) (*engine.Match, error)
	Update(ctx context.Context, m *engine.Match) error
	AppendBall(ctx context.Context, matchID string, innings int64, ev engine.BallEvent) error
	MarkUndone(ctx context.Context, matchID string, innings, seq int64) error
}

// Publisher receives the events a scoring operation produced, after the
// operation has been committed.
type Publisher interface {
	Publish(events []engine.Event)
}

// Hub owns the live state of one match. Every mutation, whether it arrives
// over a scorer's websocket or the REST API, goes through the hub's apply
// methods under the hub mutex, which is what gives the engine its
// one-writer-per-match guarantee.
type Hub struct {
	Match *engine.Match

	store     Store
	publisher Publisher
	logger    *jsonlog.Logger
	mu        sync.Mutex

	keepers      map[*keeper]bool
	Watchers     map[*Watcher]bool
	Errors       chan error
	JoinWatcher  chan *Watcher
	LeaveWatcher chan *Watcher
	joinKeeper   chan *keeper
	leaveKeeper  chan *keeper
	broadcastCh  chan []byte
	done         chan struct{}
}

func newHub(m *engine.Match, store Store, publisher Publisher, logger *jsonlog.Logger) *Hub {
	return &Hub{
		Match:        m,
		store:        store,
		publisher:    publisher,
		logger:       logger,
		keepers:      make(map[*keeper]bool),
		Watchers:     make(map[*Watcher]bool),
		Errors:       make(chan error),
		JoinWatcher:  make(chan *Watcher),
		LeaveWatcher: make(chan *Watcher),
		joinKeeper:   make(chan *keeper),
		leaveKeeper:  make(chan *keeper),
		broadcastCh:  make(chan []byte, 32),
		done:         make(chan struct{}),
	}
}

// JoinKeeper registers a scorer connection and starts its pumps. Pin
// authorization happens before the upgrade, in the API middleware.
func (h *Hub) JoinKeeper(conn *websocket.Conn) {
	k := newKeeper(h, conn)
	go k.readEvents()
	go k.writeEvents()
	select {
	case h.joinKeeper <- k:
	case <-h.done:
		_ = conn.Close()
	}
}

// JoinViewer registers a read-only connection and starts its write pump.
func (h *Hub) JoinViewer(conn *websocket.Conn) *Watcher {
	w := newWatcher(h, conn)
	go w.WriteEvents()
	go w.ReadControl()
	select {
	case h.JoinWatcher <- w:
	case <-h.done:
		_ = conn.Close()
	}
	return w
}

// Run owns the client maps. Scoring operations run on the callers'
// goroutines under the hub mutex and hand finished state messages to Run
// for fan-out.
func (h *Hub) Run() {
	for {
		select {
		case watcher := <-h.JoinWatcher:
			h.Watchers[watcher] = true
		case watcher := <-h.LeaveWatcher:
			if _, ok := h.Watchers[watcher]; ok {
				delete(h.Watchers, watcher)
				close(watcher.Receive)
			}
		case k := <-h.joinKeeper:
			h.keepers[k] = true
		case k := <-h.leaveKeeper:
			if _, ok := h.keepers[k]; ok {
				delete(h.keepers, k)
				close(k.Receive)
			}
		case msg := <-h.broadcastCh:
			h.ToAllWatchers(msg)
			h.ToAllKeepers(msg)
		case err := <-h.Errors:
			h.logger.PrintError(err, map[string]string{"match_id": h.Match.ID})
		case <-h.done:
			for k := range h.keepers {
				close(k.Receive)
			}
			for w := range h.Watchers {
				close(w.Receive)
			}
			return
		}
	}
}

// Stop shuts the hub down, closing every connected client.
func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) ToAllWatchers(msg []byte) {
	for watcher := range h.Watchers {
		select {
		case watcher.Receive <- msg:
		default:
			close(watcher.Receive)
			delete(h.Watchers, watcher)
		}
	}
}

func (h *Hub) ToAllKeepers(msg []byte) {
	for k := range h.keepers {
		select {
		case k.Receive <- msg:
		default:
			close(k.Receive)
			delete(h.keepers, k)
		}
	}
}

// broadcast hands the current match state to the Run loop for fan-out. The
// caller must hold the hub mutex.
func (h *Hub) broadcast() {
	msg := h.toByteArr(envelope{"match": h.Match})
	select {
	case h.broadcastCh <- msg:
	case <-h.done:
	}
}

// snapshot deep-copies the aggregate so a failed persist can put the
// in-memory state back exactly as it was before the operation, version
// included.
func (h *Hub) snapshot() (*engine.Match, error) {
	state, err := json.Marshal(h.Match)
	if err != nil {
		return nil, err
	}
	var before engine.Match
	if err := json.Unmarshal(state, &before); err != nil {
		return nil, err
	}
	before.Version = h.Match.Version
	before.Recompute()
	return &before, nil
}

// restore swaps the snapshot back in place. The pointer identity of
// h.Match is preserved for anything holding it.
func (h *Hub) restore(before *engine.Match) {
	*h.Match = *before
}

// SetToss applies the toss and opens the match for scoring.
func (h *Hub) SetToss(ctx context.Context, winner string, decision engine.TossDecision) error {
	return h.applySimple(ctx, func() error {
		return h.Match.SetToss(winner, decision)
	})
}

// StartInnings opens an innings with the given opening batters and bowler.
func (h *Hub) StartInnings(ctx context.Context, batting, bowling, striker, nonStriker,
	bowler string) (*engine.Innings, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	before, err := h.snapshot()
	if err != nil {
		return nil, err
	}

	inn, err := h.Match.StartInnings(batting, bowling, striker, nonStriker, bowler)
	if err != nil {
		return nil, err
	}
	if err := h.persist(ctx); err != nil {
		h.restore(before)
		return nil, err
	}
	h.broadcast()
	return inn, nil
}

// RecordBall applies a delivery, persists it and fans out the resulting
// events. On a failed persist the pre-delivery state is restored, so the
// delivery is neither stored nor applied.
func (h *Hub) RecordBall(ctx context.Context, b engine.Ball) (engine.BallEvent, []engine.Event, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	before, err := h.snapshot()
	if err != nil {
		return engine.BallEvent{}, nil, err
	}

	inn := h.Match.CurrentInnings()
	ev, events, err := h.Match.RecordBall(b)
	if err != nil {
		return engine.BallEvent{}, nil, err
	}

	pctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()
	err = h.store.AppendBall(pctx, h.Match.ID, inn.Number, ev)
	if err == nil {
		err = h.store.Update(pctx, h.Match)
	}
	if err != nil {
		h.restore(before)
		return engine.BallEvent{}, nil, err
	}

	if h.publisher != nil {
		h.publisher.Publish(events)
	}
	h.broadcast()
	return ev, events, nil
}

// UndoLastBall removes the most recent delivery of the current innings.
func (h *Hub) UndoLastBall(ctx context.Context) (engine.BallEvent, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	before, err := h.snapshot()
	if err != nil {
		return engine.BallEvent{}, err
	}

	inn := h.Match.CurrentInnings()
	ev, err := h.Match.UndoLastBall()
	if err != nil {
		return engine.BallEvent{}, err
	}

	pctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()
	err = h.store.MarkUndone(pctx, h.Match.ID, inn.Number, ev.Seq)
	if err == nil {
		err = h.store.Update(pctx, h.Match)
	}
	if err != nil {
		h.restore(before)
		return engine.BallEvent{}, err
	}

	h.broadcast()
	return ev, nil
}

// ChangeBowler sets the bowler for the over about to start.
func (h *Hub) ChangeBowler(ctx context.Context, name string) error {
	return h.applySimple(ctx, func() error {
		return h.Match.ChangeBowler(name)
	})
}

// SwapStrike manually swaps the batters at the crease.
func (h *Hub) SwapStrike(ctx context.Context) error {
	return h.applySimple(ctx, func() error {
		return h.Match.SwapStrike()
	})
}

// EndInnings closes the current innings without a further delivery.
func (h *Hub) EndInnings(ctx context.Context) error {
	return h.applySimple(ctx, func() error {
		return h.Match.EndInnings()
	})
}

// Abandon terminally abandons the match.
func (h *Hub) Abandon(ctx context.Context) error {
	return h.applySimple(ctx, func() error {
		return h.Match.AbandonMatch()
	})
}

func (h *Hub) applySimple(ctx context.Context, op func() error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	before, err := h.snapshot()
	if err != nil {
		return err
	}

	if err := op(); err != nil {
		return err
	}
	if err := h.persist(ctx); err != nil {
		h.restore(before)
		return err
	}
	h.broadcast()
	return nil
}

func (h *Hub) persist(ctx context.Context) error {
	pctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()
	return h.store.Update(pctx, h.Match)
}

// Scorecard derives the full scorecard under the hub lock.
func (h *Hub) Scorecard() engine.Scorecard {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Match.BuildScorecard()
}

// StateJSON marshals the live match state under the hub lock.
func (h *Hub) StateJSON() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.toByteArr(envelope{"match": h.Match})
}

// Status reads the match status under the hub lock.
func (h *Hub) Status() engine.MatchStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Match.Status
}
