package editor

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// PlaceholderPrefix marks identifiers minted locally for entities the server
// has not created yet. Backends never hand out ids with this prefix.
const PlaceholderPrefix = "tmp-"

// Allocator mints placeholder identifiers. Ids combine the clock reading with
// a per-allocator counter, so they stay distinct within a process and across
// processes resuming the same draft.
type Allocator struct {
	clock   Clock
	counter atomic.Uint64
}

// NewAllocator creates an Allocator. A nil clock uses RealClock.
func NewAllocator(clock Clock) *Allocator {
	if clock == nil {
		clock = RealClock{}
	}
	return &Allocator{clock: clock}
}

// NewPlaceholderID returns a fresh placeholder identifier.
func (a *Allocator) NewPlaceholderID() string {
	n := a.counter.Add(1)
	return fmt.Sprintf("%s%d-%d", PlaceholderPrefix, a.clock.Now().UnixNano(), n)
}

// IsPlaceholder reports whether id was minted by an Allocator.
func IsPlaceholder(id string) bool {
	return strings.HasPrefix(id, PlaceholderPrefix)
}
