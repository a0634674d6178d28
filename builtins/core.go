// Package builtins provides the reference Core, Controller, Interconnect,
// and MemoryHierarchy implementations plus the machine templates the
// driver ships with (spec.md §6.2, §6.3, §4.2). None of this is required
// reading for the machine/engine packages — it is the same role the source
// project's example receivers/sinks play: a working default plus a model
// for third-party plugins to follow.
package builtins

import (
	"fmt"
	"io"

	"github.com/coreforge/simdriver/machine"
)

// InsnsPerCycle is the fixed number of instructions OOOCore commits every
// RunCycle; it has no pipeline model beyond this (spec.md Non-goals exclude
// microarchitectural timing fidelity from this layer's test doubles).
const InsnsPerCycle = 100

// OOOCore is a minimal Core implementation used by the "single_core" and
// "dual_core" templates and by the engine's own tests (spec.md §6.2).
type OOOCore struct {
	id           int
	instanceName string
	m            *machine.Machine

	committed  uint64
	terminate  func(insns uint64, coreID int) bool
	insnsEach  uint64
	tlbFlushes int
}

// NewOOOCore is a CoreFactory registered under "ooo".
func NewOOOCore(m *machine.Machine, coreID int, instanceName string) (machine.Core, error) {
	return &OOOCore{
		id:           coreID,
		instanceName: instanceName,
		m:            m,
		insnsEach:    InsnsPerCycle,
	}, nil
}

// SetInsnsPerCycle overrides the fixed per-cycle commit count; used by
// tests that need a different commit rate (scenario S1 uses zero).
func (c *OOOCore) SetInsnsPerCycle(n uint64) { c.insnsEach = n }

// SetTerminateFunc installs a predicate consulted at the end of every
// RunCycle; it receives the core's own total committed-instruction count
// and coreid and returns true to cast a termination vote.
func (c *OOOCore) SetTerminateFunc(f func(insns uint64, coreID int) bool) { c.terminate = f }

func (c *OOOCore) Reset() {
	c.committed = 0
}

func (c *OOOCore) CheckContextChanges() {}

// RunCycle commits the per-cycle instruction count (InsnsPerCycle unless
// overridden by SetInsnsPerCycle) and evaluates the installed termination
// predicate, if any.
func (c *OOOCore) RunCycle() bool {
	c.committed += c.insnsEach
	if c.terminate == nil {
		return false
	}
	return c.terminate(c.committed, c.id)
}

func (c *OOOCore) FlushTLB(ctx machine.Context) {
	c.tlbFlushes++
}

func (c *OOOCore) FlushTLBAddr(ctx machine.Context, vaddr uint64) {
	c.tlbFlushes++
}

func (c *OOOCore) InstructionsCommitted() uint64 { return c.committed }

func (c *OOOCore) UpdateMemoryHierarchyPointer() {}

func (c *OOOCore) CoreID() int { return c.id }

func (c *OOOCore) DumpState(w io.Writer) {
	fmt.Fprintf(w, "core %s: committed=%d tlb_flushes=%d\n", c.instanceName, c.committed, c.tlbFlushes)
}

func (c *OOOCore) UpdateStats(stats machine.StatsSink) {
	stats.SetStat(c.instanceName, "instructions_committed", float64(c.committed))
}
