package metrics

import "time"

// testRecorder is a compile-time check that a hand-written recorder satisfies the interface.
type testRecorder struct {
	buildDurations int
	buildOutcomes  map[BuildOutcome]int
	watchEvents    map[string]int
}

var (
	_ Recorder = (*testRecorder)(nil)
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
)

func (t *testRecorder) ObserveBuildDuration(time.Duration)   { t.buildDurations++ }
func (t *testRecorder) IncBuildOutcome(outcome BuildOutcome) { t.buildOutcomes[outcome]++ }
func (t *testRecorder) SetFilesBundled(int)                  {}
func (t *testRecorder) SetArtifactBytes(int)                 {}
func (t *testRecorder) IncWatchEvent(kind string)            { t.watchEvents[kind]++ }
func (t *testRecorder) IncManifestWarning()                  {}
