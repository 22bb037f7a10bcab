package state

import (
	"context"
	"log"
)

const (
	stateKey      = "session:root"
	schemaVersion = 1
)

// Store is the durable key-value backing for persisted session state.
// Get reports whether the key existed; a stored value that cannot be
// decoded into dest is an error, not a miss.
type Store interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

// persistedState versions the snapshot blob so future schema changes can be
// detected and discarded instead of half-decoded.
type persistedState struct {
	SchemaVersion int      `json:"schemaVersion"`
	State         Snapshot `json:"state"`
}

// Gateway writes the container's snapshot through to the Store on every
// committed transition and rehydrates the container at startup. Persistence
// is best-effort: a write failure is logged and never reaches the caller of
// the transition that triggered it.
type Gateway struct {
	store Store
}

func NewGateway(store Store) *Gateway {
	return &Gateway{store: store}
}

// Rehydrate loads the persisted snapshot into the container, then subscribes
// for write-through. Must run before the container is handed to any caller.
// A missing, corrupt, or version-mismatched blob falls back to defaults.
func (g *Gateway) Rehydrate(ctx context.Context, c *Container) {
	var blob persistedState
	found, err := g.store.Get(ctx, stateKey, &blob)
	switch {
	case err != nil:
		log.Printf("state: discarding unreadable persisted state: %v", err)
		_ = g.store.Delete(ctx, stateKey)
	case found && blob.SchemaVersion != schemaVersion:
		log.Printf("state: discarding persisted state with schema version %d", blob.SchemaVersion)
		_ = g.store.Delete(ctx, stateKey)
	case found:
		c.hydrate(blob.State)
	}

	c.Subscribe(func(snap Snapshot) {
		g.persist(snap)
	})
}

func (g *Gateway) persist(snap Snapshot) {
	blob := persistedState{
		SchemaVersion: schemaVersion,
		State:         snap,
	}
	if err := g.store.Set(context.Background(), stateKey, blob); err != nil {
		log.Printf("state: failed to persist session state: %v", err)
	}
}
