package machine

// FlushTLB broadcasts a context-wide TLB flush to every core in coreid
// order, sequentially (spec.md §4.8). It is only legal between cycles or
// before the loop starts; calling it while a cycle is in flight is a
// programming error, not a recoverable condition, so it panics rather than
// silently racing with the cycle engine.
func (m *Machine) FlushTLB(ctx Context) {
	if m.Running {
		panic("machine: FlushTLB called while a cycle is in progress")
	}
	for _, c := range m.cores {
		c.FlushTLB(ctx)
	}
}

// FlushTLBAddr broadcasts a single-address TLB flush to every core in
// coreid order, sequentially (spec.md §4.8). Same legality constraint as
// FlushTLB.
func (m *Machine) FlushTLBAddr(ctx Context, vaddr uint64) {
	if m.Running {
		panic("machine: FlushTLBAddr called while a cycle is in progress")
	}
	for _, c := range m.cores {
		c.FlushTLBAddr(ctx, vaddr)
	}
}
