// Package handle maps opaque handle IDs, the unit of identity the
// plugin host deals in, to the live blockcache.Cache engine each one
// refers to.
package handle

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/marmos91/blkcache/internal/logger"
	"github.com/marmos91/blkcache/pkg/blockcache"
)

// Table is a thread-safe handle ID -> *blockcache.Cache map. IDs are
// assigned by an atomic monotonic counter, never reused, so a stale
// handle from a closed connection can never alias a live one.
type Table struct {
	mu      sync.Mutex
	engines map[int64]*blockcache.Cache
	next    atomic.Int64
}

// NewTable returns an empty handle table.
func NewTable() *Table {
	return &Table{
		engines: make(map[int64]*blockcache.Cache),
	}
}

// Open assigns a new handle ID to engine and returns it.
func (t *Table) Open(engine *blockcache.Cache) int64 {
	id := t.next.Add(1)

	t.mu.Lock()
	t.engines[id] = engine
	t.mu.Unlock()

	return id
}

// Get returns the engine for id, or an error if it isn't open.
func (t *Table) Get(id int64) (*blockcache.Cache, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	engine, ok := t.engines[id]
	if !ok {
		return nil, fmt.Errorf("handle %d is not open", id)
	}
	return engine, nil
}

// Close releases the engine behind id. A release failure is logged
// and swallowed, matching spec §4.4's close contract — the host has
// already decided to tear the connection down regardless.
func (t *Table) Close(ctx context.Context, id int64) {
	t.mu.Lock()
	engine, ok := t.engines[id]
	delete(t.engines, id)
	t.mu.Unlock()

	if !ok {
		return
	}
	if err := engine.Close(ctx); err != nil {
		logger.WarnCtx(ctx, "error releasing handle", logger.Handle(id), logger.Err(err))
	}
}

// Len reports the number of currently open handles.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.engines)
}
