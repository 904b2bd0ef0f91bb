package devserver

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/twbuild/internal/assemble"
	foundationerrors "git.home.luguber.info/inful/twbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/twbuild/internal/header"
	"git.home.luguber.info/inful/twbuild/internal/metrics"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extension.js"), []byte("(function (Scratch) {})(Scratch);\n"), 0o644))
	return New(Options{Addr: "127.0.0.1:0", Dir: dir}), dir
}

func get(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestServesArtifactWithDevHeaders(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s.Handler(), http.MethodGet, "/extension.js")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "(function (Scratch) {})(Scratch);\n", rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "javascript")
}

func TestMissingFileIs404(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s.Handler(), http.MethodGet, "/nope.js")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestPreflight(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s.Handler(), http.MethodOptions, "/extension.js")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealth(t *testing.T) {
	t.Run("before first build", func(t *testing.T) {
		s, _ := newTestServer(t)
		rec := get(t, s.Handler(), http.MethodGet, "/healthz")
		require.Equal(t, http.StatusOK, rec.Code)

		var body healthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "starting", body.Status)
		assert.Equal(t, "/extension.js", body.Script)
	})

	t.Run("after success", func(t *testing.T) {
		s, _ := newTestServer(t)
		s.status.Record(&assemble.Result{
			ID:       "b-1",
			Output:   "build/extension.js",
			Bytes:    2048,
			Files:    []string{"01-core.js"},
			Metadata: header.Metadata{Name: "My Extension"},
		}, nil)

		rec := get(t, s.Handler(), http.MethodGet, "/healthz")
		require.Equal(t, http.StatusOK, rec.Code)
		var body healthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, "b-1", body.BuildID)
		assert.Equal(t, "2.00", body.SizeKiB)
		assert.Equal(t, []string{"01-core.js"}, body.Files)
		assert.False(t, body.BuiltAt.IsZero())
	})

	t.Run("after failure", func(t *testing.T) {
		s, _ := newTestServer(t)
		s.status.Record(&assemble.Result{ID: "b-1"}, nil)
		s.status.Record(nil, foundationerrors.FileSystemError("read source file").WithContext("file", "01-core.js").Build())

		rec := get(t, s.Handler(), http.MethodGet, "/healthz")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var body foundationerrors.HTTPErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "filesystem", body.Code)
		assert.Equal(t, "01-core.js", body.Details["file"])
	})

	t.Run("write failure is 422", func(t *testing.T) {
		s, _ := newTestServer(t)
		s.status.Record(nil, foundationerrors.BuildError("write artifact").Build())
		rec := get(t, s.Handler(), http.MethodGet, "/healthz")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestBuildStatusKeepsLastGoodResult(t *testing.T) {
	var st BuildStatus
	good := &assemble.Result{ID: "good"}
	st.Record(good, nil)
	st.Record(nil, foundationerrors.BuildError("boom").Build())

	res, at, err := st.Snapshot()
	assert.Same(t, good, res)
	assert.Error(t, err)
	assert.False(t, at.IsZero())

	st.Record(&assemble.Result{ID: "next"}, nil)
	res, _, err = st.Snapshot()
	assert.NoError(t, err)
	assert.Equal(t, "next", res.ID)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prom.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	rec.IncBuildOutcome(metrics.OutcomeSuccess)

	s := New(Options{Dir: t.TempDir(), Registry: reg})
	resp := get(t, s.Handler(), http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "twbuild_build_outcomes_total")
}

func TestRunShutsDownOnCancel(t *testing.T) {
	s, _ := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/extension.js"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestURL(t *testing.T) {
	s := New(Options{Addr: "localhost:8000", Dir: t.TempDir()})
	assert.Equal(t, "http://localhost:8000/extension.js", s.URL())
}

func TestRunListenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	s := New(Options{Addr: ln.Addr().String(), Dir: t.TempDir()})
	err = s.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, foundationerrors.CategoryRuntime, foundationerrors.GetCategory(err))
}
