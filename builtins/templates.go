package builtins

import "github.com/coreforge/simdriver/machine"

// singleCore registers one "ooo" core and no controllers (scenario S1).
func singleCore(m *machine.Machine) error {
	m.AddCore("core", "ooo")
	return nil
}

// dualCore registers two "ooo" cores, each behind its own L1 controller
// attached to a shared bus (scenario S2-S4).
func dualCore(m *machine.Machine) error {
	for i := 0; i < 2; i++ {
		m.AddCore("core", "ooo")
	}
	for i := 0; i < 2; i++ {
		m.AddController(i, "l1c", "l1", "data")
	}

	conn := m.DeclareConnection("bus", "ic", 0)
	conn.Attach("l1c0", "data")
	conn.Attach("l1c1", "data")
	return nil
}

// unregisteredCoreType requests a core type that is never registered, used
// to exercise the fatal configuration-error path (scenario S5).
func unregisteredCoreType(m *machine.Machine) error {
	m.AddCore("core", "unobtainium")
	return nil
}

// RegisterBuiltins populates the machine package's four registries with
// this package's Core/Controller/Interconnect implementations and machine
// templates (spec.md §9 design note: registration happens before assembly,
// via an explicit call from the program entry point).
func RegisterBuiltins() {
	machine.RegisterCore("ooo", NewOOOCore)
	machine.RegisterController("l1", NewL1Controller)
	machine.RegisterInterconnect("bus", NewBusInterconnect)

	machine.RegisterMachine("single_core", singleCore)
	machine.RegisterMachine("dual_core", dualCore)
	machine.RegisterMachine("unregistered_core_type", unregisteredCoreType)
}
