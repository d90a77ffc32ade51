//go:build linux

package worker

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// lowerThreadPriority pins the calling goroutine to its OS thread and raises
// the thread's nice value. The thread is never unlocked, so the runtime
// discards it when the goroutine exits instead of reusing it at low priority.
func lowerThreadPriority(niceness int) error {
	if niceness == 0 {
		return nil
	}
	runtime.LockOSThread()
	return unix.Setpriority(unix.PRIO_PROCESS, unix.Gettid(), niceness)
}
