package engine_test

import (
	"sync"
	"testing"

	"github.com/coreforge/simdriver/builtins"
	"github.com/coreforge/simdriver/engine"
	"github.com/coreforge/simdriver/machine"
	simconfig "github.com/coreforge/simdriver/simconfig"
)

func init() {
	builtins.RegisterBuiltins()
}

func newOOOMachine(t *testing.T, name string, nCores int) (*machine.Machine, []*builtins.OOOCore) {
	t.Helper()
	tmplName := name
	var cores []*builtins.OOOCore

	machine.RegisterMachine(tmplName, func(m *machine.Machine) error {
		for i := 0; i < nCores; i++ {
			c := m.AddCore("core", "ooo")
			cores = append(cores, c.(*builtins.OOOCore))
		}
		return nil
	})

	m := machine.NewMachine(name, nil)
	if err := machine.Assemble(m, tmplName, "auto", builtins.NewSimpleMemory); err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	return m, cores
}

// S1: one core committing 0 instructions/cycle, stop_at_user_insns=0.
// Expected: exit at cycle 1.
func TestScenarioS1SingleCoreZeroBudget(t *testing.T) {
	m, cores := newOOOMachine(t, "s1_single_core", 1)
	cores[0].SetInsnsPerCycle(0)

	cfg := simconfig.DriverConfig{MachineConfig: "s1_single_core", StopAtUserInsns: 0}
	eng, err := engine.Run(m, cfg, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if eng.SimCycle() != 1 {
		t.Fatalf("expected exit at cycle 1, got %d", eng.SimCycle())
	}
	if cores[0].InstructionsCommitted() != 0 {
		t.Fatalf("expected 0 instructions committed, got %d", cores[0].InstructionsCommitted())
	}
}

// S2: two cores each committing 100 insns/cycle, stop_at_user_insns=1000.
// Expected: exit at cycle 5, RunCycle called 5 times per core.
func TestScenarioS2DualCoreBudget(t *testing.T) {
	m, cores := newOOOMachine(t, "s2_dual_core", 2)

	cfg := simconfig.DriverConfig{MachineConfig: "s2_dual_core", StopAtUserInsns: 1000}
	eng, err := engine.Run(m, cfg, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if eng.SimCycle() != 5 {
		t.Fatalf("expected exit at cycle 5, got %d", eng.SimCycle())
	}
	for i, c := range cores {
		if c.InstructionsCommitted() != 500 {
			t.Fatalf("core %d: expected 500 instructions committed, got %d", i, c.InstructionsCommitted())
		}
	}
}

// S3: same as S2 but threaded with cores_per_worker=1. Expected: same exit
// cycle and aggregate counts.
func TestScenarioS3ThreadedMatchesSequential(t *testing.T) {
	m, cores := newOOOMachine(t, "s3_dual_core", 2)

	cfg := simconfig.DriverConfig{
		MachineConfig:      "s3_dual_core",
		StopAtUserInsns:    1000,
		ThreadedSimulation: true,
		CoresPerWorker:     1,
	}
	eng, err := engine.Run(m, cfg, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if eng.SimCycle() != 5 {
		t.Fatalf("expected exit at cycle 5, got %d", eng.SimCycle())
	}
	for i, c := range cores {
		if c.InstructionsCommitted() != 500 {
			t.Fatalf("core %d: expected 500 instructions committed, got %d", i, c.InstructionsCommitted())
		}
	}
}

// S4: same as S2 but one core votes true on its third cycle. Expected: exit
// at cycle 3, per-core call counts (3, 3).
func TestScenarioS4EarlyTerminationVote(t *testing.T) {
	m, cores := newOOOMachine(t, "s4_dual_core", 2)

	var calls [2]int
	var mu sync.Mutex
	for i, c := range cores {
		idx := i
		core := c
		core.SetTerminateFunc(func(insns uint64, coreID int) bool {
			mu.Lock()
			calls[idx]++
			n := calls[idx]
			mu.Unlock()
			return idx == 0 && n == 3
		})
	}

	cfg := simconfig.DriverConfig{MachineConfig: "s4_dual_core", StopAtUserInsns: 1_000_000}
	eng, err := engine.Run(m, cfg, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if eng.SimCycle() != 3 {
		t.Fatalf("expected exit at cycle 3, got %d", eng.SimCycle())
	}
	if calls[0] != 3 || calls[1] != 3 {
		t.Fatalf("expected per-core call counts (3, 3), got %v", calls)
	}
}

// The header callback fires exactly once, during cycle 1's preamble,
// regardless of how many cycles the run goes on to complete.
func TestHeaderCallbackFiresOnceDuringFirstCycle(t *testing.T) {
	m, _ := newOOOMachine(t, "header_cb_dual_core", 2)

	cfg := simconfig.DriverConfig{MachineConfig: "header_cb_dual_core", StopAtUserInsns: 1000}
	eng := engine.NewEngine(m, cfg, nil)

	var calls int
	var cycleAtFirstCall uint64
	eng.SetHeaderCallback(func() {
		calls++
		cycleAtFirstCall = eng.SimCycle()
	})

	if err := eng.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected the header callback to fire exactly once, got %d", calls)
	}
	if cycleAtFirstCall != 0 {
		t.Fatalf("expected the header callback to fire during cycle 1's preamble (SimCycle still 0), got %d", cycleAtFirstCall)
	}
}

// S6: deferred logging triggers a one-way degrade from threaded to
// sequential mode at the configured iteration.
func TestScenarioS6DeferredLoggingDegrades(t *testing.T) {
	m, _ := newOOOMachine(t, "s6_dual_core", 2)

	cfg := simconfig.DriverConfig{
		MachineConfig:       "s6_dual_core",
		StopAtUserInsns:     4000, // 200 insns/cycle * 20 cycles, past the cycle-10 degrade point
		ThreadedSimulation:  true,
		CoresPerWorker:      1,
		StartLogAtIteration: 10,
	}
	eng := engine.NewEngine(m, cfg, nil)
	if err := eng.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if eng.SimCycle() < 10 {
		t.Fatalf("expected the loop to run past the degrade point, stopped at cycle %d", eng.SimCycle())
	}
}
