// Package machine implements the machine graph: the builder registries,
// the Connection Graph, the Options Store, and the Machine Assembler
// (spec.md §3, §4.1-§4.4). The Cycle Engine that drives a built Machine
// lives in the sibling engine package.
//
// The concrete core, controller, interconnect and memory-hierarchy
// implementations are external collaborators (spec.md §1): this package
// only defines the contracts they must satisfy and the plumbing that wires
// them together.
package machine

import "io"

// Core is the contract every simulated-processor implementation must
// satisfy (spec.md §6.2). The driver holds cores by reference; a core's
// CoreID is assigned once by the machine and stable for its lifetime.
type Core interface {
	Reset()
	CheckContextChanges()
	// RunCycle advances the core by exactly one simulated cycle and
	// returns true if this core votes to terminate the simulation.
	RunCycle() bool
	FlushTLB(ctx Context)
	FlushTLBAddr(ctx Context, vaddr uint64)
	InstructionsCommitted() uint64
	UpdateMemoryHierarchyPointer()
	CoreID() int
	DumpState(w io.Writer)
	UpdateStats(stats StatsSink)
}

// StatsSink is the minimal surface a core needs to report structured
// per-core statistics; the concrete statistics subsystem is out of scope
// (spec.md §1) and only consumed through this contract.
type StatsSink interface {
	SetStat(component string, name string, value float64)
}

// Context is the opaque architectural-state handle the instruction-set
// emulator hands out (spec.md §3). The driver never inspects it; it only
// allocates and tracks ownership.
type Context interface {
	ContextID() int
}

// Controller is the contract every cache/coherence controller must
// satisfy. RegisterInterconnect is called once per attachment declared for
// this controller in the Connection Graph (spec.md §4.3).
type Controller interface {
	CoreID() int
	InstanceName() string
	RegisterInterconnect(portType string, ic Interconnect)
}

// Interconnect is the contract every interconnect implementation must
// satisfy. RegisterController is called once per attachment in the
// ConnectionDef that produced this interconnect (spec.md §4.3).
type Interconnect interface {
	InstanceName() string
	RegisterController(portType string, ctrl Controller)
}

// MemoryHierarchy is the contract the memory subsystem must satisfy
// (spec.md §6.3). It is constructed strictly after all cores and
// controllers exist and strictly before the first cycle runs (spec.md §3).
type MemoryHierarchy interface {
	Clock()
	DumpInfo(w io.Writer)
}

// CoreFactory builds a Core bound to m under instanceName.
type CoreFactory func(m *Machine, coreID int, instanceName string) (Core, error)

// ControllerFactory builds a Controller bound to a coreid, a port type tag,
// and the machine's memory hierarchy.
type ControllerFactory func(m *Machine, coreID int, instanceName string, portType string) (Controller, error)

// InterconnectFactory builds an Interconnect bound to the machine's memory
// hierarchy, under instanceName.
type InterconnectFactory func(m *Machine, instanceName string) (Interconnect, error)

// MachineGenerator populates a freshly created Machine from a template: it
// calls back into m to add cores, controllers, connection declarations, and
// options (spec.md §4.2).
type MachineGenerator func(m *Machine) error
