// Package engine implements the Cycle Engine (spec.md §4.5-§4.7): the
// per-cycle preamble/postamble shared by both scheduling modes, the
// sequential loop, and the threaded worker-pool loop with its two-barrier
// handshake.
package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/coreforge/simdriver/machine"
	simconfig "github.com/coreforge/simdriver/simconfig"
	simlog "github.com/coreforge/simdriver/simlog"
	simmessage "github.com/coreforge/simdriver/simmessage"
	statsink "github.com/coreforge/simdriver/statsink"
)

const (
	progressStride = 1000
	sampleStride   = 10000
)

// fieldDumper is the optional extension a memory hierarchy may implement to
// contribute free-form fields to periodic sample snapshots (spec.md §4.9).
// It is checked with a type assertion rather than added to the required
// MemoryHierarchy contract, matching the machine package's optional-Close
// idiom.
type fieldDumper interface {
	DumpFields() map[string]any
}

// Engine drives a Machine's cycle loop. It owns the counters reserved to
// the orchestrator: sim_cycle, iterations, and the deferred-logging/
// header-sent state machine (spec.md §4.5, §5).
type Engine struct {
	m   *machine.Machine
	cfg simconfig.DriverConfig
	fm  *statsink.ForwardingManager

	simCycle   uint64
	iterations uint64

	loggingEnabled bool
	headerSent     bool

	onHeaderSent func()
}

// NewEngine builds an Engine bound to m, cfg, and fm. fm may be nil, in
// which case snapshot forwarding is skipped entirely.
func NewEngine(m *machine.Machine, cfg simconfig.DriverConfig, fm *statsink.ForwardingManager) *Engine {
	return &Engine{
		m:              m,
		cfg:            cfg,
		fm:             fm,
		loggingEnabled: cfg.LogUserOnly || cfg.StartLogAtIteration <= 0,
	}
}

// SimCycle returns the number of completed cycles.
func (e *Engine) SimCycle() uint64 { return e.simCycle }

// Iterations returns the number of completed cycles (alias kept distinct
// from SimCycle because the two diverge once a driver supports pause/resume
// outside this package's scope; today they always agree).
func (e *Engine) Iterations() uint64 { return e.iterations }

// SetHeaderCallback installs f to run once, right after the first-cycle
// header snapshot is forwarded. The driver uses this to defer the systemd
// "ready" notification until the engine has actually produced its first
// output (spec.md §4.10).
func (e *Engine) SetHeaderCallback(f func()) {
	e.onHeaderSent = f
}

// InstructionsPerCycle returns the run's committed-instructions-per-cycle
// rate. It is NaN before the first cycle completes.
func (e *Engine) InstructionsPerCycle() simmessage.Float {
	if e.simCycle == 0 {
		return simmessage.NaN
	}
	return simmessage.Float(float64(e.totalUserInsns()) / float64(e.simCycle))
}

// Run selects sequential or threaded mode per spec.md §4.7's entry
// condition, drives the loop to completion, and transparently re-enters
// sequential mode if threaded mode degrades at the deferred-logging
// threshold. It returns once the stop predicate is satisfied.
//
// Run blocks until the loop exits. Callers that want to observe SimCycle
// and Iterations while the loop is in flight (e.g. the admin HTTP surface)
// should construct the Engine with NewEngine and call (*Engine).Run from a
// goroutine instead of using this package-level convenience.
func Run(m *machine.Machine, cfg simconfig.DriverConfig, fm *statsink.ForwardingManager) (*Engine, error) {
	e := NewEngine(m, cfg, fm)
	return e, e.Run()
}

// Run drives e's cycle loop to completion, selecting sequential or
// threaded mode per spec.md §4.7's entry condition.
func (e *Engine) Run() error {
	threaded := e.cfg.ThreadedSimulation && len(e.m.Cores()) > e.cfg.CoresPerWorker && e.cfg.LogLevel < 1
	if !threaded {
		simlog.ComponentInfo("Engine", "running sequentially")
		return e.runSequential()
	}

	simlog.ComponentInfo("Engine", fmt.Sprintf("running threaded, workers=%d", workerCount(len(e.m.Cores()), e.cfg.CoresPerWorker)))
	if err := e.runThreaded(); err != nil {
		if err != ErrReenterSequential {
			return err
		}
		simlog.ComponentWarn("Engine", "degrading to sequential mode at cycle", e.simCycle)
		return e.runSequential()
	}
	return nil
}

func workerCount(cores, coresPerWorker int) int {
	if coresPerWorker <= 0 {
		coresPerWorker = 1
	}
	return (cores + coresPerWorker - 1) / coresPerWorker
}

// preamble performs steps 1-6 of spec.md §4.5 and reports whether this call
// just transitioned logging from disabled to enabled, which threaded mode
// uses to decide whether to degrade after this cycle completes.
func (e *Engine) preamble() (loggingJustEnabled bool) {
	loggingJustEnabled = e.maybeEnableLogging()
	e.maybeReportProgress()
	e.maybeSendHeader()
	e.maybeSendSample()
	e.maybeRotateLog()
	e.m.Memory().Clock()
	return loggingJustEnabled
}

func (e *Engine) maybeEnableLogging() bool {
	if e.loggingEnabled || e.cfg.LogUserOnly {
		return false
	}
	if e.cfg.StartLogAtIteration > 0 && e.iterations >= uint64(e.cfg.StartLogAtIteration) {
		e.loggingEnabled = true
		simlog.ComponentInfo("Engine", "logging enabled at iteration", e.iterations)
		return true
	}
	return false
}

func (e *Engine) maybeReportProgress() {
	if e.simCycle%progressStride == 0 {
		simlog.ComponentInfo("Engine", fmt.Sprintf("cycle %d iterations %d", e.simCycle, e.iterations))
	}
}

func (e *Engine) maybeSendHeader() {
	if e.headerSent {
		return
	}
	e.headerSent = true
	if e.fm != nil {
		e.fm.Forward(simmessage.NewHeaderSnapshot(e.m.Name, time.Now()))
	}
	if e.onHeaderSent != nil {
		e.onHeaderSent()
	}
}

func (e *Engine) maybeSendSample() {
	if e.fm == nil || e.simCycle == 0 || e.simCycle%sampleStride != 0 {
		return
	}
	e.fm.Forward(simmessage.NewSampleSnapshot(e.m.Name, e.simCycle, e.iterations, e.totalUserInsns(), e.memoryFields(), time.Now()))
}

func (e *Engine) memoryFields() map[string]any {
	if fd, ok := e.m.Memory().(fieldDumper); ok {
		return fd.DumpFields()
	}
	return nil
}

func (e *Engine) maybeRotateLog() {
	if e.cfg.LogFileSize <= 0 || !simlog.ShouldRotate(e.cfg.LogFileSize) {
		return
	}
	if err := simlog.Rotate(); err != nil {
		simlog.ComponentError("Engine", "log rotation failed:", err)
	}
}

func (e *Engine) totalUserInsns() uint64 {
	var total uint64
	for _, c := range e.m.Cores() {
		total += c.InstructionsCommitted()
	}
	return total
}

// postamble performs steps 8-9 of spec.md §4.5 and reports whether the loop
// should stop.
func (e *Engine) postamble(terminationVote bool) bool {
	total := e.totalUserInsns()
	e.simCycle++
	e.iterations++

	stop := e.cfg.WaitAllFinished ||
		total >= e.cfg.StopAtUserInsns ||
		terminationVote

	if stop {
		e.bindFallbackContext()
	}
	return stop
}

// bindFallbackContext ensures a guest context is claimed on exit so the
// emulator can resume cleanly (spec.md §4.5 step 9), for the case where the
// machine's cores claimed none of their own.
func (e *Engine) bindFallbackContext() {
	pool := e.m.Contexts()
	if pool.Capacity() == 0 || pool.Claimed() > 0 {
		return
	}
	if _, ok := pool.Claim(); ok {
		simlog.ComponentDebug("Engine", "bound fallback guest context on exit")
	}
}

// runSequential is the sequential scheduling mode (spec.md §4.6): the
// driver itself executes phase 2, advancing cores in coreid order.
func (e *Engine) runSequential() error {
	for {
		e.preamble()

		terminate := false
		for _, c := range e.m.Cores() {
			if c.RunCycle() {
				terminate = true
			}
		}

		if e.postamble(terminate) {
			simlog.ComponentInfo("Engine", "stopped at cycle", e.simCycle)
			return nil
		}
	}
}

// runThreaded is the threaded scheduling mode (spec.md §4.7): a fixed pool
// of workers rendezvous with the orchestrator at two barriers per cycle.
func (e *Engine) runThreaded() error {
	cores := e.m.Cores()
	coresPerWorker := e.cfg.CoresPerWorker
	if coresPerWorker <= 0 {
		coresPerWorker = 1
	}
	workers := workerCount(len(cores), coresPerWorker)

	runBarrier := newBarrier(workers + 1)
	joinBarrier := newBarrier(workers + 1)
	quit := make(chan struct{})

	var termMu sync.Mutex
	var termFlag bool

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		lo := i * coresPerWorker
		hi := lo + coresPerWorker
		if hi > len(cores) {
			hi = len(cores)
		}
		slice := cores[lo:hi]

		wg.Add(1)
		go func(workerID int, slice []machine.Core) {
			defer wg.Done()
			runtimeLockAndPin(workerID)

			for {
				if !runBarrier.waitContext(quit) {
					return
				}
				local := false
				for _, c := range slice {
					if c.RunCycle() {
						local = true
					}
				}
				if local {
					termMu.Lock()
					termFlag = true
					termMu.Unlock()
				}
				joinBarrier.wait()
			}
		}(i, slice)
	}

	defer func() {
		close(quit)
		wg.Wait()
	}()

	for {
		justEnabled := e.preamble()

		e.m.Running = true
		runBarrier.wait()
		joinBarrier.wait()
		e.m.Running = false

		termMu.Lock()
		terminate := termFlag
		termFlag = false
		termMu.Unlock()

		if e.postamble(terminate) {
			simlog.ComponentInfo("Engine", "stopped at cycle", e.simCycle)
			return nil
		}
		if justEnabled {
			return ErrReenterSequential
		}
	}
}
