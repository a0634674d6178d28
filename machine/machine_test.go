package machine

import (
	"io"
	"testing"
)

type fakeCore struct {
	id      int
	insns   uint64
	flushes int
}

func (c *fakeCore) Reset()              {}
func (c *fakeCore) CheckContextChanges() {}
func (c *fakeCore) RunCycle() bool      { c.insns += 10; return false }

func (c *fakeCore) FlushTLB(ctx Context) { c.flushes++ }

func (c *fakeCore) FlushTLBAddr(ctx Context, vaddr uint64) { c.flushes++ }

func (c *fakeCore) InstructionsCommitted() uint64 { return c.insns }
func (c *fakeCore) UpdateMemoryHierarchyPointer()  {}
func (c *fakeCore) CoreID() int                    { return c.id }
func (c *fakeCore) DumpState(w io.Writer)          {}
func (c *fakeCore) UpdateStats(stats StatsSink)    {}

type fakeController struct {
	coreID int
	name   string
}

func (c *fakeController) CoreID() int          { return c.coreID }
func (c *fakeController) InstanceName() string { return c.name }
func (c *fakeController) RegisterInterconnect(portType string, ic Interconnect) {}

type fakeInterconnect struct {
	name        string
	registered  []string
}

func (i *fakeInterconnect) InstanceName() string { return i.name }
func (i *fakeInterconnect) RegisterController(portType string, ctrl Controller) {
	i.registered = append(i.registered, ctrl.InstanceName())
}

type fakeMemory struct{ clocks int }

func (m *fakeMemory) Clock()             { m.clocks++ }
func (m *fakeMemory) DumpInfo(w io.Writer) {}

func resetRegistries() {
	MachineBuilder = map[string]MachineGenerator{}
	CoreBuilder = map[string]CoreFactory{}
	ControllerBuilder = map[string]ControllerFactory{}
	InterconnectBuilder = map[string]InterconnectFactory{}
}

func TestOptionsStoreRoundTrip(t *testing.T) {
	o := newOptionsStore()

	o.SetBool("core0", "enabled", true)
	o.SetInt("core0", "width", 4)
	o.SetString("core0", "isa", "rv64")

	if v, ok := o.GetBool("core0", "enabled"); !ok || v != true {
		t.Fatalf("bool round-trip failed: got (%v, %v)", v, ok)
	}
	if v, ok := o.GetInt("core0", "width"); !ok || v != 4 {
		t.Fatalf("int round-trip failed: got (%v, %v)", v, ok)
	}
	if v, ok := o.GetString("core0", "isa"); !ok || v != "rv64" {
		t.Fatalf("string round-trip failed: got (%v, %v)", v, ok)
	}

	if _, ok := o.GetBool("core0", "width"); ok {
		t.Fatal("expected no implicit coercion between bool and int tables")
	}

	if v, ok := o.GetIntIndexed("core", 0, "width"); !ok || v != 4 {
		t.Fatalf("indexed overload failed: got (%v, %v)", v, ok)
	}
}

func TestAssembleMaterializesConnections(t *testing.T) {
	resetRegistries()
	RegisterCore("fake", func(m *Machine, coreID int, instanceName string) (Core, error) {
		return &fakeCore{id: coreID}, nil
	})
	RegisterController("fakectrl", func(m *Machine, coreID int, instanceName string, portType string) (Controller, error) {
		return &fakeController{coreID: coreID, name: instanceName}, nil
	})
	RegisterInterconnect("fakebus", func(m *Machine, instanceName string) (Interconnect, error) {
		return &fakeInterconnect{name: instanceName}, nil
	})
	RegisterMachine("two_core", func(m *Machine) error {
		m.AddCore("core", "fake")
		m.AddCore("core", "fake")
		m.AddController(0, "ctrl", "fakectrl", "data")
		m.AddController(1, "ctrl", "fakectrl", "data")
		conn := m.DeclareConnection("fakebus", "ic", 0)
		conn.Attach("ctrl0", "data")
		conn.Attach("ctrl1", "data")
		return nil
	})

	m := NewMachine("test", nil)
	err := Assemble(m, "two_core", "auto", func(m *Machine, cacheConfigType string) (MemoryHierarchy, error) {
		return &fakeMemory{}, nil
	})
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	if len(m.Cores()) != 2 {
		t.Fatalf("expected 2 cores, got %d", len(m.Cores()))
	}
	for i, c := range m.Cores() {
		if c.CoreID() != i {
			t.Fatalf("core %d has CoreID %d, want coreid sequence [0,N)", i, c.CoreID())
		}
	}

	if len(m.Interconnects()) != 1 {
		t.Fatalf("expected 1 interconnect, got %d", len(m.Interconnects()))
	}
	ic := m.Interconnects()[0].(*fakeInterconnect)
	if len(ic.registered) != 2 {
		t.Fatalf("expected both controllers registered on the interconnect, got %v", ic.registered)
	}
}

func TestFlushTLBPanicsWhileRunning(t *testing.T) {
	resetRegistries()
	RegisterCore("fake", func(m *Machine, coreID int, instanceName string) (Core, error) {
		return &fakeCore{id: coreID}, nil
	})
	RegisterMachine("one_core", func(m *Machine) error {
		m.AddCore("core", "fake")
		return nil
	})

	m := NewMachine("test", nil)
	if err := Assemble(m, "one_core", "auto", func(m *Machine, cacheConfigType string) (MemoryHierarchy, error) {
		return &fakeMemory{}, nil
	}); err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	m.Running = true
	defer func() {
		if recover() == nil {
			t.Fatal("expected FlushTLB to panic while a cycle is in progress")
		}
	}()
	m.FlushTLB(nil)
}
