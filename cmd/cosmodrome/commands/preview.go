package commands

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	ferrors "git.home.luguber.info/inful/cosmodrome/internal/foundation/errors"
	"git.home.luguber.info/inful/cosmodrome/internal/metrics"
	"git.home.luguber.info/inful/cosmodrome/internal/preview"
	"git.home.luguber.info/inful/cosmodrome/internal/site"
	"git.home.luguber.info/inful/cosmodrome/internal/watch"
)

// PreviewCmd implements the 'preview' command.
type PreviewCmd struct {
	Path     string        `arg:"" optional:"" default:"." help:"Site directory to preview"`
	Host     string        `default:"127.0.0.1" help:"Address to listen on"`
	Port     int           `short:"p" default:"8080" help:"Port to listen on"`
	Every    time.Duration `help:"Also rebuild at this interval, 0 disables"`
	Debounce time.Duration `default:"300ms" help:"Quiet period after the last change before rebuilding"`
	Check    bool          `help:"Validate that every generated HTML page is balanced"`
}

func (p *PreviewCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g, p.Path)
	if err != nil {
		return err
	}

	recorder := metrics.NewPrometheusRecorder(nil)
	server := preview.NewServer(preview.Options{
		Addr:    net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Root:    cfg.HTMLOutputPath(),
		Metrics: metrics.HTTPHandler(recorder.Registry()),
		Logger:  g.Logger,
	})
	runner := &siteRunner{
		root:     root,
		global:   g,
		dir:      p.Path,
		check:    p.Check,
		recorder: recorder,
		onBuild: func(report *site.Report, err error) {
			var id string
			var failures int
			if report != nil {
				id, failures = report.BuildID, len(report.Failures)
			}
			server.Status().Record(id, failures, err)
		},
	}

	dirs, files := watchInputs(cfg, root.configFile(cfg.BaseDir))
	watcher, err := watch.New(runner.rebuild, watch.Options{
		Dirs:         dirs,
		Files:        files,
		Exclude:      []string{cfg.OutputPath()},
		Debounce:     p.Debounce,
		Every:        p.Every,
		BuildOnStart: true,
		Logger:       g.Logger,
	})
	if err != nil {
		return err
	}

	if err := server.Start(); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to start preview server").
			WithContext("addr", server.Addr).Build()
	}
	_, _ = fmt.Fprintf(g.stdout(), "Serving %s at http://%s/\n", cfg.HTMLOutputPath(), server.ListenAddr())
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			g.Logger.Warn("Preview server shutdown error", "error", err)
		}
	}()

	return watcher.Run(ctx)
}
