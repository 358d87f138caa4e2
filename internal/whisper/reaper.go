package whisper

import (
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// Reaper tracks live bridge processes so the daemon can kill them during
// shutdown. Runs untrack themselves on exit; KillAll handles whatever is
// still running when the host goes down.
type Reaper struct {
	mu    sync.Mutex
	procs map[int]*os.Process
}

// NewReaper returns an empty reaper.
func NewReaper() *Reaper {
	return &Reaper{procs: make(map[int]*os.Process)}
}

// Track registers a running process.
func (r *Reaper) Track(proc *os.Process) {
	if proc == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.procs[proc.Pid] = proc
}

// Untrack removes a process after it has been waited on.
func (r *Reaper) Untrack(pid int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.procs, pid)
}

// Live reports the number of tracked processes.
func (r *Reaper) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.procs)
}

// KillAll sends SIGKILL to every tracked process. Processes that have
// already exited are skipped silently.
func (r *Reaper) KillAll() {
	r.mu.Lock()
	procs := make([]*os.Process, 0, len(r.procs))
	for _, proc := range r.procs {
		procs = append(procs, proc)
	}
	r.procs = make(map[int]*os.Process)
	r.mu.Unlock()

	for _, proc := range procs {
		_ = proc.Signal(unix.SIGKILL)
	}
}
