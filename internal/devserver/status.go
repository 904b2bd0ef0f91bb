package devserver

import (
	"sync"
	"time"

	"git.home.luguber.info/inful/twbuild/internal/assemble"
)

// BuildStatus holds the outcome of the most recent build. It is written by
// the watch loop and read by HTTP handlers.
type BuildStatus struct {
	mu     sync.RWMutex
	result *assemble.Result
	err    error
	at     time.Time
}

// Record stores the outcome of a build. A failed build keeps the previous
// successful result so the last good artifact stays visible.
func (s *BuildStatus) Record(res *assemble.Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.at = time.Now()
	s.err = err
	if err == nil && res != nil {
		s.result = res
	}
}

// Snapshot returns the last successful result, when the last build finished
// and its error. All are zero before the first build.
func (s *BuildStatus) Snapshot() (*assemble.Result, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result, s.at, s.err
}
