package preview

import (
	"sync"
	"time"
)

// BuildStatus tracks the outcome of the most recent build for health reporting.
type BuildStatus struct {
	mu           sync.RWMutex
	lastBuildID  string
	lastError    error
	lastFinished time.Time
	failures     int
	hasGoodBuild bool // true if at least one build completed
}

// Snapshot is a copy of BuildStatus safe to serialize.
type Snapshot struct {
	Status       string    `json:"status"`
	BuildID      string    `json:"build_id,omitempty"`
	LastError    string    `json:"last_error,omitempty"`
	Failures     int       `json:"failures"`
	LastFinished time.Time `json:"last_finished,omitzero"`
}

// Record stores the result of a build. failures is the number of per-file
// failures of a build that otherwise completed.
func (bs *BuildStatus) Record(buildID string, failures int, err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.lastBuildID = buildID
	bs.lastError = err
	bs.failures = failures
	bs.lastFinished = time.Now()
	if err == nil {
		bs.hasGoodBuild = true
	}
}

// Snapshot reports "ok" after a clean build, "degraded" when the last build
// failed or had per-file failures and "starting" before any build completed.
func (bs *BuildStatus) Snapshot() Snapshot {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	snap := Snapshot{BuildID: bs.lastBuildID, Failures: bs.failures, LastFinished: bs.lastFinished}
	switch {
	case bs.lastError != nil:
		snap.Status = "degraded"
		snap.LastError = bs.lastError.Error()
	case !bs.hasGoodBuild:
		snap.Status = "starting"
	case bs.failures > 0:
		snap.Status = "degraded"
	default:
		snap.Status = "ok"
	}
	return snap
}

// Healthy reports whether the served tree came from a completed build.
func (bs *BuildStatus) Healthy() bool {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.hasGoodBuild && bs.lastError == nil
}
