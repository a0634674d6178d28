//go:build !linux

package engine

// pinToCPU is a no-op on non-Linux platforms, a valid outcome of "when the
// host supports it" (spec.md §4.7).
func pinToCPU(cpu int) error {
	return nil
}
