// Package assemble concatenates source fragments into the single wrapped
// script the host runtime loads.
package assemble

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	foundationerrors "git.home.luguber.info/inful/twbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/twbuild/internal/header"
	"git.home.luguber.info/inful/twbuild/internal/logfields"
	"git.home.luguber.info/inful/twbuild/internal/manifest"
	"git.home.luguber.info/inful/twbuild/internal/metrics"
)

// maxParallelReads bounds concurrent fragment reads within one build.
const maxParallelReads = 8

// Builder runs the full pipeline: manifest, header, discovery, assembly, write.
type Builder struct {
	SrcDir     string
	OutputFile string
	Logger     *slog.Logger
	Recorder   metrics.Recorder
}

// Result describes a successful build.
type Result struct {
	ID       string
	Output   string
	Bytes    int
	Files    []string
	Metadata header.Metadata
	Duration time.Duration
	// ManifestWarning is the recovered manifest error, if any.
	ManifestWarning error
}

// SizeKiB formats the artifact size in kibibytes with two decimals.
func (r *Result) SizeKiB() string {
	return fmt.Sprintf("%.2f", float64(r.Bytes)/1024)
}

// NewBuilder returns a Builder with a default logger and no-op metrics.
func NewBuilder(srcDir, outputFile string) *Builder {
	return &Builder{
		SrcDir:     srcDir,
		OutputFile: outputFile,
		Logger:     slog.Default(),
		Recorder:   metrics.NoopRecorder{},
	}
}

// Build regenerates the artifact from scratch. It never panics on I/O
// problems: read and write failures come back as classified errors and the
// caller decides whether to continue.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()
	res, err := b.build(ctx)
	b.recorder().ObserveBuildDuration(time.Since(start))
	if err != nil {
		b.recorder().IncBuildOutcome(metrics.OutcomeFailed)
		b.logger().Error("Build failed", logfields.Error(err))
		return nil, err
	}
	res.Duration = time.Since(start)

	b.recorder().IncBuildOutcome(metrics.OutcomeSuccess)
	b.recorder().SetFilesBundled(len(res.Files))
	b.recorder().SetArtifactBytes(res.Bytes)
	b.logger().Info("Extension build successful",
		logfields.BuildID(res.ID),
		logfields.Output(res.Output),
		logfields.SizeKiB(res.SizeKiB()),
		logfields.Files(len(res.Files)),
		logfields.DurationMS(float64(res.Duration.Microseconds())/1000))
	return res, nil
}

func (b *Builder) build(ctx context.Context) (*Result, error) {
	res := &Result{ID: uuid.NewString(), Output: b.OutputFile}

	m, warn := manifest.Read(b.SrcDir)
	if warn != nil {
		res.ManifestWarning = warn
		b.recorder().IncManifestWarning()
		b.logger().Warn("Using default metadata", logfields.Path(manifest.Path(b.SrcDir)), logfields.Error(warn))
	}
	res.Metadata = header.Resolve(m)

	set, err := Discover(b.SrcDir)
	if err != nil {
		return nil, err
	}
	fragments, err := readFragments(ctx, set)
	if err != nil {
		return nil, err
	}
	res.Files = set.Names()

	text := Render(header.Render(res.Metadata), fragments)
	if err := writeArtifact(b.OutputFile, []byte(text)); err != nil {
		return nil, err
	}
	res.Bytes = len(text)
	return res, nil
}

// readFragments reads every file of set. Reads run in parallel; the result
// keeps the order of set.
func readFragments(ctx context.Context, set SourceSet) ([]Fragment, error) {
	fragments := make([]Fragment, len(set))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)
	for i, path := range set {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "failed to read source file").
					WithContext("path", path).
					Build()
			}
			fragments[i] = Fragment{Name: filepath.Base(path), Content: string(data)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return fragments, nil
}

// writeArtifact replaces path with data. The build directory is created if
// needed, and the content goes through a temporary file in the same
// directory so the artifact is never observed half-written.
func writeArtifact(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryBuild, "failed to create build directory").
			WithContext("dir", dir).
			Build()
	}

	wrap := func(err error, msg string) error {
		return foundationerrors.WrapError(err, foundationerrors.CategoryBuild, msg).
			WithContext("path", path).
			Build()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return wrap(err, "failed to create temporary output file")
	}
	tmpPath := tmp.Name()
	defer func() {
		// no-op after a successful rename
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return wrap(err, "failed to write output file")
	}
	if err := tmp.Close(); err != nil {
		return wrap(err, "failed to write output file")
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return wrap(err, "failed to set output file mode")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return wrap(err, "failed to replace output file")
	}
	return nil
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.Default()
	}
	return b.Logger
}

func (b *Builder) recorder() metrics.Recorder {
	if b.Recorder == nil {
		return metrics.NoopRecorder{}
	}
	return b.Recorder
}
