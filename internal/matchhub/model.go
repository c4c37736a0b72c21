package matchhub

import (
	"context"
	"sync"

	"CricketScoreApi/internal/engine"
	"CricketScoreApi/internal/jsonlog"
)

// HubModel tracks the hubs for matches currently being scored or watched.
// Hubs are created lazily: the first request for a match loads it from the
// store, replays its ball history and starts the hub's run loop.
type HubModel struct {
	Active    map[string]*Hub
	mu        sync.Mutex
	store     Store
	publisher Publisher
	logger    *jsonlog.Logger
}

func NewModel(store Store, publisher Publisher, logger *jsonlog.Logger) *HubModel {
	return &HubModel{
		Active:    make(map[string]*Hub),
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// Get returns the hub for the match, loading it from the store on first
// use. Returns engine.ErrMatchNotFound for an unknown id.
func (m *HubModel) Get(ctx context.Context, matchID string) (*Hub, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.Active[matchID]; ok {
		return hub, nil
	}

	match, err := m.store.Get(ctx, matchID)
	if err != nil {
		return nil, err
	}
	match.Recompute()

	hub := newHub(match, m.store, m.publisher, m.logger)
	m.Active[matchID] = hub
	go hub.Run()

	return hub, nil
}

// Register starts a hub for a match that was just created, so scoring can
// begin without a reload.
func (m *HubModel) Register(match *engine.Match) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.Active[match.ID]; ok {
		return hub
	}
	hub := newHub(match, m.store, m.publisher, m.logger)
	m.Active[match.ID] = hub
	go hub.Run()
	return hub
}

// Release stops the hub for a finished match and drops it from the active
// set. The match itself stays in the store.
func (m *HubModel) Release(matchID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.Active[matchID]; ok {
		hub.Stop()
		delete(m.Active, matchID)
	}
}

// Count reports how many hubs are live.
func (m *HubModel) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Active)
}

// Shutdown stops every active hub.
func (m *HubModel) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, hub := range m.Active {
		hub.Stop()
		delete(m.Active, id)
	}
}
