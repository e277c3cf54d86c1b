package commands

import (
	"context"
	"time"

	"git.home.luguber.info/inful/cosmodrome/internal/metrics"
	"git.home.luguber.info/inful/cosmodrome/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Path     string        `arg:"" optional:"" default:"." help:"Site directory to watch"`
	Every    time.Duration `help:"Also rebuild at this interval, 0 disables"`
	Debounce time.Duration `default:"300ms" help:"Quiet period after the last change before rebuilding"`
	Check    bool          `help:"Validate that every generated HTML page is balanced"`
}

func (w *WatchCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g, w.Path)
	if err != nil {
		return err
	}
	runner := &siteRunner{root: root, global: g, dir: w.Path, check: w.Check, recorder: metrics.NoopRecorder{}}

	dirs, files := watchInputs(cfg, root.configFile(cfg.BaseDir))
	watcher, err := watch.New(runner.rebuild, watch.Options{
		Dirs:         dirs,
		Files:        files,
		Exclude:      []string{cfg.OutputPath()},
		Debounce:     w.Debounce,
		Every:        w.Every,
		BuildOnStart: true,
		Logger:       g.Logger,
	})
	if err != nil {
		return err
	}
	return watcher.Run(ctx)
}
