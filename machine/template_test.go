package machine

import (
	"encoding/json"
	"testing"
)

// S8: a declarative template missing the required "cores" array must fail
// schema validation before any AddCore call.
func TestCompileDeclarativeTemplateRejectsMissingCores(t *testing.T) {
	doc := json.RawMessage(`{"controllers": []}`)
	if _, err := CompileDeclarativeTemplate(doc); err == nil {
		t.Fatal("expected schema validation to reject a document with no 'cores' array")
	}
}

func TestCompileDeclarativeTemplateBuildsMachine(t *testing.T) {
	resetRegistries()
	var addedCores, addedControllers int

	RegisterCore("fake", func(m *Machine, coreID int, instanceName string) (Core, error) {
		addedCores++
		return &fakeCore{id: coreID}, nil
	})
	RegisterController("fakectrl", func(m *Machine, coreID int, instanceName string, portType string) (Controller, error) {
		addedControllers++
		return &fakeController{coreID: coreID, name: instanceName}, nil
	})
	RegisterInterconnect("fakebus", func(m *Machine, instanceName string) (Interconnect, error) {
		return &fakeInterconnect{name: instanceName}, nil
	})

	doc := json.RawMessage(`{
		"cores": [{"prefix": "core", "type": "fake"}, {"prefix": "core", "type": "fake"}],
		"controllers": [
			{"prefix": "ctrl", "type": "fakectrl", "core": 0, "port": "data"},
			{"prefix": "ctrl", "type": "fakectrl", "core": 1, "port": "data"}
		],
		"connections": [
			{"prefix": "ic", "type": "fakebus", "seq": 0, "attach": [
				{"controller": "ctrl0", "port": "data"},
				{"controller": "ctrl1", "port": "data"}
			]}
		],
		"options": [
			{"name": "core0", "opt": "enabled", "value": true},
			{"name": "core0", "opt": "width", "value": 4},
			{"name": "core0", "opt": "isa", "value": "rv64"}
		]
	}`)

	gen, err := CompileDeclarativeTemplate(doc)
	if err != nil {
		t.Fatalf("CompileDeclarativeTemplate failed: %v", err)
	}
	RegisterMachine("declarative_test", gen)

	m := NewMachine("test", nil)
	if err := Assemble(m, "declarative_test", "auto", func(m *Machine, cacheConfigType string) (MemoryHierarchy, error) {
		return &fakeMemory{}, nil
	}); err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	if addedCores != 2 {
		t.Fatalf("expected 2 cores added, got %d", addedCores)
	}
	if addedControllers != 2 {
		t.Fatalf("expected 2 controllers added, got %d", addedControllers)
	}
	if len(m.ConnectionGraph().Defs()) != 1 {
		t.Fatalf("expected 1 connection declared, got %d", len(m.ConnectionGraph().Defs()))
	}

	if v, ok := m.Options().GetBool("core0", "enabled"); !ok || v != true {
		t.Fatalf("bool option replay failed: got (%v, %v)", v, ok)
	}
	if v, ok := m.Options().GetInt("core0", "width"); !ok || v != 4 {
		t.Fatalf("int option replay failed: got (%v, %v)", v, ok)
	}
	if v, ok := m.Options().GetString("core0", "isa"); !ok || v != "rv64" {
		t.Fatalf("string option replay failed: got (%v, %v)", v, ok)
	}
}
