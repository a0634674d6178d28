//go:build linux

package engine

import "golang.org/x/sys/unix"

// pinToCPU pins the calling OS thread to cpu via sched_setaffinity
// (spec.md §4.7). Callers must run this from the goroutine that is to be
// pinned, after locking it to its OS thread.
func pinToCPU(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}
