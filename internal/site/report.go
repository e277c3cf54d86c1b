package site

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/cosmodrome/internal/metrics"
)

// Format names the tree an output belongs to.
const (
	FormatHTML    = "html"
	FormatCapsule = "capsule"
)

// Failure is one per-file problem that did not stop the build.
type Failure struct {
	// Source is the path relative to the source root.
	Source string
	// Format is FormatHTML, FormatCapsule or empty when both trees are affected.
	Format string
	Err    error
}

func (f Failure) Error() string {
	if f.Format == "" {
		return f.Source + ": " + f.Err.Error()
	}
	return f.Source + " (" + f.Format + "): " + f.Err.Error()
}

func (f Failure) Unwrap() error { return f.Err }

// Report summarizes one build.
type Report struct {
	BuildID   string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Pages    int // HTML pages written
	Capsules int // capsule pages written
	Copied   int // verbatim copies written, counted per tree
	Ignored  int // hidden entries skipped
	Overlays int // overlay directories applied

	Failures []Failure
}

// HasFailures reports whether any file failed.
func (r *Report) HasFailures() bool {
	return len(r.Failures) > 0
}

// Outcome maps the report and the build error to a metrics outcome.
func (r *Report) Outcome(err error) metrics.BuildOutcome {
	switch {
	case err != nil:
		return metrics.OutcomeFailed
	case r.HasFailures():
		return metrics.OutcomePartial
	default:
		return metrics.OutcomeSuccess
	}
}

// Summary is the one-line human readable result.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d pages, %d capsule pages, %d copied files, %d overlays, %d failures in %s",
		r.Pages, r.Capsules, r.Copied, r.Overlays, len(r.Failures), r.Duration.Round(time.Millisecond))
}
