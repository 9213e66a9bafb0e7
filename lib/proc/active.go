package proc

import "sync"

var activeProcess = processList{}
var _activeProcessMu sync.Mutex

type processList map[*Process]struct{}

func (pl processList) Add(p *Process) {
	_activeProcessMu.Lock()
	defer _activeProcessMu.Unlock()
	pl[p] = struct{}{}
}

func (pl processList) Remove(p *Process) {
	_activeProcessMu.Lock()
	defer _activeProcessMu.Unlock()
	delete(pl, p)
}

// KillActive kills every started process that has not been waited for yet
// and returns how many were signalled.
func KillActive() (n int) {
	_activeProcessMu.Lock()
	defer _activeProcessMu.Unlock()
	for proc := range activeProcess {
		if proc.Process == nil {
			continue
		}
		if proc.Process.Kill() == nil {
			n++
		}
	}
	return
}

func activeCount() int {
	_activeProcessMu.Lock()
	defer _activeProcessMu.Unlock()
	return len(activeProcess)
}
