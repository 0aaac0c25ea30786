package orchestrator

import "sync"

// turnBudget tracks agent invocations against the global per-run cap.
// A turn is one task execution that reached the agent and returned
// successfully; an agent that loops internally over many model calls is
// still charged one turn.
type turnBudget struct {
	mu     sync.Mutex
	max    int
	spent  int
	forced bool
}

// newTurnBudget creates a budget with the given cap. A non-positive cap
// means unlimited.
func newTurnBudget(max int) *turnBudget {
	return &turnBudget{max: max}
}

// consume charges one turn.
func (b *turnBudget) consume() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.spent++
}

// used returns the number of turns consumed.
func (b *turnBudget) used() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.spent
}

// exhausted reports whether the run must stop scheduling further tasks.
func (b *turnBudget) exhausted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.forced {
		return true
	}
	return b.max > 0 && b.spent >= b.max
}

// exhaust forces the budget into the exhausted state, winding the run
// down early. Idempotent.
func (b *turnBudget) exhaust() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.forced = true
}
