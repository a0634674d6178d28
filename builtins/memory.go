package builtins

import (
	"fmt"
	"io"

	"github.com/coreforge/simdriver/machine"
)

// SimpleMemory is a minimal MemoryHierarchy implementation: it only counts
// clock ticks, carrying no cache/coherence model of its own (spec.md §6.3
// Non-goals). It implements the engine package's optional field-dumping
// extension so periodic snapshots carry a clock count field.
type SimpleMemory struct {
	cacheConfigType string
	clocks          uint64
}

// NewSimpleMemory is a machine.MemoryHierarchyFactory.
func NewSimpleMemory(m *machine.Machine, cacheConfigType string) (machine.MemoryHierarchy, error) {
	return &SimpleMemory{cacheConfigType: cacheConfigType}, nil
}

func (mem *SimpleMemory) Clock() {
	mem.clocks++
}

func (mem *SimpleMemory) DumpInfo(w io.Writer) {
	fmt.Fprintf(w, "memory: cache_config_type=%s clocks=%d\n", mem.cacheConfigType, mem.clocks)
}

// DumpFields implements the engine package's optional field-dumper
// extension (spec.md §4.9).
func (mem *SimpleMemory) DumpFields() map[string]any {
	return map[string]any{"memory_clocks": mem.clocks}
}
