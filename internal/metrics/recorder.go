package metrics

import "time"

// BuildOutcome enumerates build result labels.
type BuildOutcome string

const (
	OutcomeSuccess BuildOutcome = "success"
	OutcomeFailed  BuildOutcome = "failed"
)

// Recorder defines observability hooks for builds and watch events.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcome)
	SetFilesBundled(n int)
	SetArtifactBytes(n int)
	IncWatchEvent(kind string)
	IncManifestWarning()
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration) {}
func (NoopRecorder) IncBuildOutcome(BuildOutcome)       {}
func (NoopRecorder) SetFilesBundled(int)                {}
func (NoopRecorder) SetArtifactBytes(int)               {}
func (NoopRecorder) IncWatchEvent(string)               {}
func (NoopRecorder) IncManifestWarning()                {}
