package core

import (
	"fmt"
	"sync"
)

// RoundBudget enforces a maximum number of rounds (model calls) per run.
type RoundBudget struct {
	max   int
	count int
	mu    sync.Mutex
}

// NewRoundBudget creates a budget allowing max rounds. Values below one are
// clamped to one so that a run always gets at least one model turn.
func NewRoundBudget(max int) *RoundBudget {
	if max < 1 {
		max = 1
	}
	return &RoundBudget{max: max}
}

// Next consumes one round and returns an error wrapping ErrBudgetExceeded
// when no rounds are left. The counter is not advanced on failure.
func (b *RoundBudget) Next() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count >= b.max {
		return fmt.Errorf("%w: %d rounds used", ErrBudgetExceeded, b.max)
	}
	b.count++

	return nil
}

// Used returns the number of rounds consumed so far.
func (b *RoundBudget) Used() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.count
}

// Remaining returns how many rounds are left.
func (b *RoundBudget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.max - b.count
}

// Max returns the configured budget.
func (b *RoundBudget) Max() int { return b.max }

// Exhausted reports whether every round has been consumed.
func (b *RoundBudget) Exhausted() bool { return b.Remaining() <= 0 }
