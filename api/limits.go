package api

import (
	"math"
	"os"
	"os/signal"
	"sync"

	"golang.org/x/sys/unix"
)

// The resource guard is a process-lifetime singleton: it tracks every
// live solver, applies CPU and virtual-memory rlimits around solve
// calls, and converts SIGXCPU into an interrupt of all live solvers.
// The guard keeps an explicit nesting depth so nested enable/disable
// pairs restore the original limits exactly once; the signal
// subscription likewise follows the outermost scope only.
//
// Time and memory limits are global, shared among all solvers of the
// process. A negative limit, or one at INT32_MAX or above, means "no
// limit".
var guard = struct {
	mu sync.Mutex

	timeLimit int64 // Seconds of CPU time; -1 unlimited
	memLimit  int64 // MiB of virtual memory; -1 unlimited

	solvers map[*Solver]struct{}

	depth       int
	savedCPU    unix.Rlimit
	savedAS     unix.Rlimit
	hasSavedCPU bool
	hasSavedAS  bool
	sigCh       chan os.Signal
	sigDone     chan struct{}
}{
	timeLimit: -1,
	memLimit:  -1,
	solvers:   make(map[*Solver]struct{}),
}

func limited(v int64) bool {
	return v >= 0 && v < math.MaxInt32
}

// SetTimeLimit bounds the CPU seconds of subsequent solve calls, for
// every solver of the process.
func SetTimeLimit(seconds int) {
	guard.mu.Lock()
	defer guard.mu.Unlock()
	guard.timeLimit = int64(seconds)
}

// SetMemoryLimit bounds the virtual memory, in MiB, of subsequent
// solve calls.
func SetMemoryLimit(mb int) {
	guard.mu.Lock()
	defer guard.mu.Unlock()
	guard.memLimit = int64(mb)
}

func registerSolver(s *Solver) {
	guard.mu.Lock()
	defer guard.mu.Unlock()
	guard.solvers[s] = struct{}{}
}

func unregisterSolver(s *Solver) {
	guard.mu.Lock()
	defer guard.mu.Unlock()
	delete(guard.solvers, s)
}

// enableResourceLimits opens a limit scope. Scopes nest; only the
// outermost scope mutates the process rlimits and signal routing.
func enableResourceLimits() {
	guard.mu.Lock()
	defer guard.mu.Unlock()
	guard.depth++
	if guard.depth != 1 {
		return
	}
	var usage unix.Rusage
	_ = unix.Getrusage(unix.RUSAGE_SELF, &usage)
	curTime := int64(usage.Utime.Sec)

	var rl unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_CPU, &rl); err == nil {
		guard.savedCPU = rl
		guard.hasSavedCPU = true
		if limited(guard.timeLimit) {
			localLimit := uint64(guard.timeLimit + curTime)
			if rl.Max == unix.RLIM_INFINITY || localLimit < rl.Max {
				rl.Cur = localLimit
				_ = unix.Setrlimit(unix.RLIMIT_CPU, &rl)
			}
		} else {
			rl.Cur = rl.Max
			_ = unix.Setrlimit(unix.RLIMIT_CPU, &rl)
		}
	}
	if err := unix.Getrlimit(unix.RLIMIT_AS, &rl); err == nil {
		guard.savedAS = rl
		guard.hasSavedAS = true
		if limited(guard.memLimit) {
			newLimit := uint64(guard.memLimit) * 1024 * 1024
			if rl.Max == unix.RLIM_INFINITY || newLimit < rl.Max {
				rl.Cur = newLimit
				_ = unix.Setrlimit(unix.RLIMIT_AS, &rl)
			}
		}
	}

	guard.sigCh = make(chan os.Signal, 1)
	guard.sigDone = make(chan struct{})
	signal.Notify(guard.sigCh, unix.SIGXCPU)
	go func(ch chan os.Signal, done chan struct{}) {
		for {
			select {
			case <-ch:
				interruptAllSolvers()
			case <-done:
				return
			}
		}
	}(guard.sigCh, guard.sigDone)
}

// disableResourceLimits closes a limit scope, restoring the saved
// rlimits and signal routing when the outermost scope exits.
func disableResourceLimits() {
	guard.mu.Lock()
	defer guard.mu.Unlock()
	if guard.depth == 0 {
		return
	}
	guard.depth--
	if guard.depth != 0 {
		return
	}
	if guard.hasSavedCPU {
		_ = unix.Setrlimit(unix.RLIMIT_CPU, &guard.savedCPU)
		guard.hasSavedCPU = false
	}
	if guard.hasSavedAS {
		_ = unix.Setrlimit(unix.RLIMIT_AS, &guard.savedAS)
		guard.hasSavedAS = false
	}
	signal.Stop(guard.sigCh)
	close(guard.sigDone)
	guard.sigCh = nil
	guard.sigDone = nil
}

func interruptAllSolvers() {
	guard.mu.Lock()
	defer guard.mu.Unlock()
	for s := range guard.solvers {
		s.Interrupt()
	}
}
