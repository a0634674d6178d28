package engine

import (
	"fmt"
	"runtime"

	simlog "github.com/coreforge/simdriver/simlog"
)

// runtimeLockAndPin locks the calling goroutine to its OS thread and
// attempts to pin that thread to CPU workerID (spec.md §4.7). Pinning
// failure, including the platforms where pinToCPU is a no-op, is a warning
// only: the simulation is still correct without it (spec.md §7).
func runtimeLockAndPin(workerID int) {
	runtime.LockOSThread()
	if err := pinToCPU(workerID); err != nil {
		simlog.ComponentWarn(fmt.Sprintf("Worker-%d", workerID), "CPU affinity pinning failed:", err)
	}
}
