package machine

import (
	"fmt"

	simlog "github.com/coreforge/simdriver/simlog"
)

// Machine is the root aggregate (spec.md §3): it exclusively owns its
// cores, controllers, interconnects, and memory hierarchy, and releases
// them in reverse construction order on Close.
type Machine struct {
	Name string

	cores         []Core
	controllers   []Controller
	interconnects []Interconnect
	memory        MemoryHierarchy

	controllersByName map[string]Controller

	graph   ConnectionGraph
	options *OptionsStore
	pool    *ContextPool

	nextCoreID int

	// Running is true only while a cycle is in flight (threaded mode);
	// it guards the TLB flush fan-out (spec.md §4.8).
	Running bool
}

// NewMachine creates an empty Machine bound to a fixed-size context pool.
// Contexts are supplied by the instruction-set emulator; an empty pool is
// valid for machines whose cores manage context binding out of band.
func NewMachine(name string, contexts []Context) *Machine {
	return &Machine{
		Name:              name,
		controllersByName: make(map[string]Controller),
		options:           newOptionsStore(),
		pool:              NewContextPool(contexts),
	}
}

// Options returns the machine's OptionsStore.
func (m *Machine) Options() *OptionsStore {
	return m.options
}

// Contexts returns the machine's ContextPool.
func (m *Machine) Contexts() *ContextPool {
	return m.pool
}

// Cores returns the owned cores in coreid order.
func (m *Machine) Cores() []Core {
	return m.cores
}

// Controllers returns the owned controllers in construction order.
func (m *Machine) Controllers() []Controller {
	return m.controllers
}

// Interconnects returns the owned interconnects in construction order.
func (m *Machine) Interconnects() []Interconnect {
	return m.interconnects
}

// Memory returns the owned memory hierarchy, or nil before it is
// constructed (spec.md §3 invariant: strictly after cores/controllers,
// strictly before the first cycle).
func (m *Machine) Memory() MemoryHierarchy {
	return m.memory
}

// ConnectionGraph returns the machine's accumulated Connection Graph.
func (m *Machine) ConnectionGraph() *ConnectionGraph {
	return &m.graph
}

// AddCore allocates a new coreid, composes the instance name as
// "<instancePrefix><coreid>", looks up coreType in CoreBuilder, invokes the
// factory, and appends the result to the cores sequence (spec.md §4.2).
// Fatal (process abort) if coreType is unknown, matching the configuration
// error taxonomy of spec.md §7: nothing can run without a valid machine
// graph.
func (m *Machine) AddCore(instancePrefix, coreType string) Core {
	factory, ok := CoreBuilder[coreType]
	if !ok {
		simlog.ComponentFatal("Assembler", fmt.Sprintf(
			"unknown core type %q; registered types: %v", coreType, registeredCoreKeys()))
	}

	coreID := m.nextCoreID
	m.nextCoreID++
	instanceName := fmt.Sprintf("%s%d", instancePrefix, coreID)

	core, err := factory(m, coreID, instanceName)
	if err != nil {
		simlog.ComponentFatal("Assembler", fmt.Sprintf(
			"core type %q (instance %s) failed to build: %v", coreType, instanceName, err))
	}
	m.cores = append(m.cores, core)
	simlog.ComponentDebug("Assembler", "ADD CORE", instanceName, "type", coreType)
	return core
}

// AddController allocates a controller bound to coreID, looks up
// controllerType in ControllerBuilder, invokes the factory, appends the
// result to the controllers sequence, and inserts it into the by-name index
// consulted during interconnect materialization (spec.md §4.2). Fatal if
// controllerType is unknown.
func (m *Machine) AddController(coreID int, instancePrefix, controllerType, portType string) Controller {
	factory, ok := ControllerBuilder[controllerType]
	if !ok {
		simlog.ComponentFatal("Assembler", fmt.Sprintf(
			"unknown controller type %q; registered types: %v", controllerType, registeredControllerKeys()))
	}

	instanceName := fmt.Sprintf("%s%d", instancePrefix, coreID)
	ctrl, err := factory(m, coreID, instanceName, portType)
	if err != nil {
		simlog.ComponentFatal("Assembler", fmt.Sprintf(
			"controller type %q (instance %s) failed to build: %v", controllerType, instanceName, err))
	}
	m.controllers = append(m.controllers, ctrl)
	m.controllersByName[instanceName] = ctrl
	simlog.ComponentDebug("Assembler", "ADD CONTROLLER", instanceName, "type", controllerType)
	return ctrl
}

// DeclareConnection creates an empty ConnectionDef named
// "<instancePrefix><seqID>", appends it to the Connection Graph, and
// returns a handle for Attach calls (spec.md §4.2).
func (m *Machine) DeclareConnection(interconnectType, instancePrefix string, seqID int) *ConnectionDef {
	instanceName := fmt.Sprintf("%s%d", instancePrefix, seqID)
	return m.graph.Declare(interconnectType, instanceName)
}

// SetMemory binds the machine's memory hierarchy. Called by the assembler
// strictly after all cores and controllers exist (spec.md §3 invariant).
func (m *Machine) SetMemory(mem MemoryHierarchy) {
	m.memory = mem
}

// addInterconnect appends ic to the owned interconnects sequence. Only
// called by the assembler during materialization (spec.md §4.3).
func (m *Machine) addInterconnect(ic Interconnect) {
	m.interconnects = append(m.interconnects, ic)
}

// controllerByName looks up a previously added controller by its instance
// name, as consulted during interconnect materialization (spec.md §4.3).
func (m *Machine) controllerByName(name string) (Controller, bool) {
	c, ok := m.controllersByName[name]
	return c, ok
}

// Close releases cores, controllers, interconnects, and the memory
// hierarchy in reverse construction order (spec.md §3). The concrete
// collaborators are assumed to free their own resources; this method only
// fixes the release ordering the machine is responsible for.
func (m *Machine) Close() {
	for i := len(m.interconnects) - 1; i >= 0; i-- {
		if closer, ok := m.interconnects[i].(interface{ Close() }); ok {
			closer.Close()
		}
	}
	if closer, ok := m.memory.(interface{ Close() }); ok {
		closer.Close()
	}
	for i := len(m.controllers) - 1; i >= 0; i-- {
		if closer, ok := m.controllers[i].(interface{ Close() }); ok {
			closer.Close()
		}
	}
	for i := len(m.cores) - 1; i >= 0; i-- {
		if closer, ok := m.cores[i].(interface{ Close() }); ok {
			closer.Close()
		}
	}
}
