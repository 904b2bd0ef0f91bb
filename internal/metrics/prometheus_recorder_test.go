package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveBuildDuration(15 * time.Millisecond)
	pr.IncBuildOutcome(OutcomeSuccess)
	pr.IncBuildOutcome(OutcomeFailed)
	pr.IncBuildOutcome(OutcomeSuccess)
	pr.SetFilesBundled(2)
	pr.SetArtifactBytes(2048)
	pr.IncWatchEvent("added")
	pr.IncManifestWarning()

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, mfs, 6)

	assert.InDelta(t, 2, testutil.ToFloat64(pr.buildOutcome.WithLabelValues(string(OutcomeSuccess))), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(pr.filesBundled), 0)
	assert.InDelta(t, 2048, testutil.ToFloat64(pr.artifactBytes), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.watchEvents.WithLabelValues("added")), 0)
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.ObserveBuildDuration(time.Second)
		pr.IncBuildOutcome(OutcomeFailed)
		pr.SetFilesBundled(1)
		pr.SetArtifactBytes(1)
		pr.IncWatchEvent("changed")
		pr.IncManifestWarning()
	})
}
