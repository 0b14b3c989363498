package celltree

// slot is one entry of the construction buffer. A slot is either live, in
// which case it owns its value, or consumed. Ownership leaves a slot only
// through Take, and a second Take panics, so a value can never be handed
// out (or released) twice.
type slot[T any] struct {
	val  T
	live bool
}

func newSlot[T any](v T) slot[T] { return slot[T]{val: v, live: true} }

// Occupied reports whether the slot still owns its value.
func (s *slot[T]) Occupied() bool { return s.live }

// Peek returns the owned value for reading. It panics on a consumed slot.
func (s *slot[T]) Peek() *T {
	if !s.live {
		panic("celltree: read of consumed buffer slot")
	}
	return &s.val
}

// Take moves the value out of the slot and marks it consumed.
func (s *slot[T]) Take() T {
	if !s.live {
		panic("celltree: buffer slot consumed twice")
	}
	v := s.val
	var zero T
	s.val = zero
	s.live = false
	return v
}

// Ledger observes the lifecycle of point summaries created during a build.
// Every id passed to Allocated is later passed to Released exactly once:
// either during the build, for temporaries and for per-point summaries
// folded into a larger leaf, or by Tree.Close for summaries stored in nodes.
//
// Implementations must be safe for concurrent use.
type Ledger interface {
	Allocated(id uint64)
	Released(id uint64)
}

type nopLedger struct{}

func (nopLedger) Allocated(uint64) {}
func (nopLedger) Released(uint64)  {}
