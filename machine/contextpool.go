package machine

// ContextPool is the fixed-size arena of architectural-state slots the
// instruction-set emulator hands out (spec.md §3, §9 design note). Contexts
// are claimed one at a time in allocation order; a claimed slot is bound to
// exactly one core for the machine's lifetime and is never returned to the
// pool while the machine is alive.
type ContextPool struct {
	contexts []Context
	used     []bool
	cursor   int
}

// NewContextPool wraps contexts in a pool whose capacity is fixed at
// construction time, matching the emulator's fixed global array.
func NewContextPool(contexts []Context) *ContextPool {
	return &ContextPool{
		contexts: contexts,
		used:     make([]bool, len(contexts)),
	}
}

// Claim hands out the next unclaimed context in allocation order. It
// returns false once the pool is exhausted.
func (p *ContextPool) Claim() (Context, bool) {
	for p.cursor < len(p.contexts) {
		idx := p.cursor
		p.cursor++
		if !p.used[idx] {
			p.used[idx] = true
			return p.contexts[idx], true
		}
	}
	return nil, false
}

// Claimed returns how many contexts have been claimed so far.
func (p *ContextPool) Claimed() int {
	n := 0
	for _, u := range p.used {
		if u {
			n++
		}
	}
	return n
}

// Capacity returns the architectural maximum this pool was built with.
func (p *ContextPool) Capacity() int {
	return len(p.contexts)
}
