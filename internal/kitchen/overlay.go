package kitchen

import (
	"strings"
	"sync"
	"time"
)

// ItemState is one overlay entry: the locally known production status of a
// single item plus when work on it started.
type ItemState struct {
	Status    ItemStatus
	StartedAt *time.Time
}

// Overlay caches per-item status and timing for one terminal. The order
// service only tracks whole-order status, so this cache is what lets item
// granularity survive the full re-adaptation every poll performs. It is local
// to a terminal and never synchronized with other terminals.
type Overlay struct {
	mu     sync.RWMutex
	states map[string]ItemState
}

// NewOverlay creates an empty overlay.
func NewOverlay() *Overlay {
	return &Overlay{
		states: make(map[string]ItemState),
	}
}

// Get returns the recorded state for an item id, if any.
func (o *Overlay) Get(itemID string) (ItemState, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	state, ok := o.states[itemID]
	return state, ok
}

// Set records a status for an item. Item status is monotonic: a write that
// would regress an already recorded status is dropped. The first recorded
// start time is kept.
func (o *Overlay) Set(itemID string, status ItemStatus, startedAt *time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()

	existing, ok := o.states[itemID]
	if ok && !status.AtLeast(existing.Status) {
		return
	}
	if ok && existing.StartedAt != nil {
		startedAt = existing.StartedAt
	}
	o.states[itemID] = ItemState{Status: status, StartedAt: startedAt}
}

// Len returns the number of recorded entries.
func (o *Overlay) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.states)
}

// Prune drops entries whose parent order has left the open set. Item ids are
// derived as "<orderID>-<index>", so ownership is a prefix check.
func (o *Overlay) Prune(openOrderIDs []string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for itemID := range o.states {
		open := false
		for _, id := range openOrderIDs {
			if strings.HasPrefix(itemID, id+"-") {
				open = true
				break
			}
		}
		if !open {
			delete(o.states, itemID)
		}
	}
}
