package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/twbuild/internal/assemble"
	"git.home.luguber.info/inful/twbuild/internal/config"
	"git.home.luguber.info/inful/twbuild/internal/devserver"
	"git.home.luguber.info/inful/twbuild/internal/logfields"
	"git.home.luguber.info/inful/twbuild/internal/metrics"
	"git.home.luguber.info/inful/twbuild/internal/watch"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Src      string        `help:"Source directory (default: src)" placeholder:"DIR"`
	OutDir   string        `name:"out-dir" help:"Build directory (default: build)" placeholder:"DIR"`
	Watch    bool          `short:"w" help:"Rebuild whenever a source file changes, until interrupted"`
	Serve    string        `help:"In watch mode, serve the build directory on this address (e.g. localhost:8000)" placeholder:"ADDR"`
	Debounce time.Duration `help:"Per-file stability window in watch mode (default: 100ms)"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	if err := b.applyFlags(cfg); err != nil {
		return err
	}

	logger := cfg.Logging.NewLogger(os.Stderr, root.Verbose)
	slog.SetDefault(logger)
	if g != nil {
		g.Logger = logger
	}

	if !b.Watch {
		if b.Serve != "" {
			logger.Warn("--serve only applies in watch mode; ignoring", logfields.Addr(b.Serve))
		}
		_, err := RunBuild(context.Background(), cfg, logger)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return RunWatch(ctx, cfg, logger, nil)
}

// applyFlags overrides file and environment values with explicit flags.
func (b *BuildCmd) applyFlags(cfg *config.Config) error {
	if b.Src != "" {
		cfg.Source.Directory = b.Src
	}
	if b.OutDir != "" {
		cfg.Output.Directory = b.OutDir
	}
	if b.Serve != "" {
		cfg.Watch.Serve = b.Serve
	}
	if b.Debounce != 0 {
		cfg.Watch.Debounce = b.Debounce.String()
	}
	return cfg.Normalize()
}

func newBuilder(cfg *config.Config, logger *slog.Logger, rec metrics.Recorder) *assemble.Builder {
	builder := assemble.NewBuilder(cfg.Source.Directory, cfg.OutputFile())
	if logger != nil {
		builder.Logger = logger
	}
	builder.Recorder = rec
	return builder
}

// RunBuild performs one build.
func RunBuild(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*assemble.Result, error) {
	return newBuilder(cfg, logger, metrics.NoopRecorder{}).Build(ctx)
}

// RunWatch resolves the notifier, builds once and then rebuilds after every
// settled change until ctx is canceled. The initial build may fail without
// ending watch mode. A nil factory selects fsnotify.
func RunWatch(ctx context.Context, cfg *config.Config, logger *slog.Logger, notifier watch.NotifierFactory) error {
	if logger == nil {
		logger = slog.Default()
	}
	var rec metrics.Recorder = metrics.NoopRecorder{}
	var reg *prom.Registry
	if cfg.Watch.Serve != "" {
		reg = prom.NewRegistry()
		rec = metrics.NewPrometheusRecorder(reg)
	}

	builder := newBuilder(cfg, logger, rec)
	status := &devserver.BuildStatus{}
	rebuild := func(ctx context.Context) error {
		res, err := builder.Build(ctx)
		status.Record(res, err)
		return err
	}

	w, err := watch.New(watch.Config{
		Dir:         cfg.Source.Directory,
		Debounce:    cfg.Watch.DebounceDuration(),
		Ignore:      cfg.Watch.Ignore,
		Logger:      logger,
		Recorder:    rec,
		NewNotifier: notifier,
		OnChange: func(ctx context.Context, _ watch.Event) error {
			return rebuild(ctx)
		},
	})
	if err != nil {
		return err
	}

	if err := rebuild(ctx); err != nil {
		logger.Warn("Initial build failed; fix the sources and save to rebuild")
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return w.Run(gctx)
	})
	if cfg.Watch.Serve != "" {
		srv := devserver.New(devserver.Options{
			Addr:     cfg.Watch.Serve,
			Dir:      cfg.Output.Directory,
			Status:   status,
			Registry: reg,
			Logger:   logger,
		})
		group.Go(func() error {
			return srv.Run(gctx)
		})
	}

	err = group.Wait()
	logger.Info("Watch mode stopped")
	return err
}
