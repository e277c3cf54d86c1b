package metrics

import "time"

// ResultLabel enumerates per-item result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
	ResultSkipped ResultLabel = "skipped"
)

// BuildOutcome is the final status of one build.
type BuildOutcome string

const (
	OutcomeSuccess BuildOutcome = "success"
	OutcomePartial BuildOutcome = "partial" // finished, some files failed
	OutcomeFailed  BuildOutcome = "failed"
)

// Recorder defines observability hooks for build, stage and per-file metrics.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcome)
	IncFileRoute(route string)
	IncPageResult(format string, result ResultLabel)
	IncCopyResult(result ResultLabel)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncBuildOutcome(BuildOutcome)               {}
func (NoopRecorder) IncFileRoute(string)                        {}
func (NoopRecorder) IncPageResult(string, ResultLabel)          {}
func (NoopRecorder) IncCopyResult(ResultLabel)                  {}
