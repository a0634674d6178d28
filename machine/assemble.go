package machine

import (
	"fmt"

	simlog "github.com/coreforge/simdriver/simlog"
)

// MemoryHierarchyFactory builds the memory hierarchy bound to m, after all
// cores and controllers have been added (spec.md §3 invariant).
type MemoryHierarchyFactory func(m *Machine, cacheConfigType string) (MemoryHierarchy, error)

// Assemble resolves templateName in MachineBuilder, invokes the generator,
// constructs the memory hierarchy, and materializes interconnects from the
// Connection Graph (spec.md §4.2). templateName must be registered; an
// empty templateName or an unregistered one is a fatal configuration error
// naming the available templates.
func Assemble(m *Machine, templateName string, cacheConfigType string, memFactory MemoryHierarchyFactory) error {
	if templateName == "" {
		simlog.ComponentFatal("Assembler", "machine_config is required and must not be empty")
	}

	gen, ok := MachineBuilder[templateName]
	if !ok {
		simlog.ComponentFatal("Assembler", fmt.Sprintf(
			"unknown machine template %q; registered templates: %v", templateName, registeredMachineKeys()))
	}

	simlog.ComponentDebug("Assembler", "ASSEMBLE", templateName)
	if err := gen(m); err != nil {
		simlog.ComponentFatal("Assembler", fmt.Sprintf("template %q generator failed: %v", templateName, err))
	}

	mem, err := memFactory(m, cacheConfigType)
	if err != nil {
		simlog.ComponentFatal("Assembler", fmt.Sprintf("memory hierarchy construction failed: %v", err))
	}
	m.SetMemory(mem)

	return materializeInterconnects(m)
}

// materializeInterconnects walks the Connection Graph in insertion order
// and, for each ConnectionDef, instantiates the interconnect and performs
// the symmetric controller<->interconnect registrations spec.md §4.3
// requires. It runs exactly once, after the memory hierarchy exists.
func materializeInterconnects(m *Machine) error {
	for _, def := range m.graph.Defs() {
		factory, ok := InterconnectBuilder[def.InterconnectType]
		if !ok {
			simlog.ComponentFatal("Assembler", fmt.Sprintf(
				"unknown interconnect type %q; registered types: %v", def.InterconnectType, registeredInterconnectKeys()))
		}

		ic, err := factory(m, def.InstanceName)
		if err != nil {
			simlog.ComponentFatal("Assembler", fmt.Sprintf(
				"interconnect %q (type %q) failed to build: %v", def.InstanceName, def.InterconnectType, err))
		}
		m.addInterconnect(ic)

		for _, att := range def.Attachments {
			ctrl, ok := m.controllerByName(att.ControllerName)
			if !ok {
				simlog.ComponentFatal("Assembler", fmt.Sprintf(
					"connection %q references unregistered controller %q", def.InstanceName, att.ControllerName))
			}
			ic.RegisterController(att.PortType, ctrl)
			ctrl.RegisterInterconnect(att.PortType, ic)
		}

		simlog.ComponentDebug("Assembler", "MATERIALIZED", def.InstanceName, "attachments", len(def.Attachments))
	}
	return nil
}
