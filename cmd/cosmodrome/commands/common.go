// Package commands implements the cosmodrome subcommands.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/cosmodrome/internal/config"
	ferrors "git.home.luguber.info/inful/cosmodrome/internal/foundation/errors"
	"git.home.luguber.info/inful/cosmodrome/internal/metrics"
	"git.home.luguber.info/inful/cosmodrome/internal/site"
)

// Global carries the process streams and the active logger to every command.
type Global struct {
	Logger *slog.Logger
	Stdout io.Writer
	Stderr io.Writer
}

func (g *Global) stdout() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

func (g *Global) stderr() io.Writer {
	if g.Stderr == nil {
		return os.Stderr
	}
	return g.Stderr
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path (default: <path>/cosmodrome.yaml)"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Log format (text|json), overrides logging.format"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Init    InitCmd    `cmd:"" help:"Initialize directories and required files for a site"`
	Build   BuildCmd   `cmd:"" help:"Build the static website and the Gemini capsule"`
	Watch   WatchCmd   `cmd:"" help:"Rebuild whenever sources, overlays or configuration change"`
	Preview PreviewCmd `cmd:"" help:"Serve the website locally and rebuild on change"`
}

// AfterApply runs after flag parsing; setup logging once. The configuration
// file may refine the handler later, see loadConfig.
func (c *CLI) AfterApply(g *Global) error {
	if _, err := config.ParseLogFormat(c.LogFormat); err != nil {
		return ferrors.ValidationError("invalid --log-format").WithCause(err).Build()
	}
	g.Logger = config.LoggingConfig{Format: c.LogFormat}.NewLogger(g.stderr(), c.Verbose)
	slog.SetDefault(g.Logger)
	return nil
}

// loadConfig loads the site configuration rooted at dir and installs the
// logger it describes. --log-format and -v win over the file.
func (c *CLI) loadConfig(g *Global, dir string) (*config.Config, error) {
	cfg, err := config.Load(dir, c.Config)
	if err != nil {
		return nil, err
	}
	if c.LogFormat != "" {
		cfg.Logging.Format = c.LogFormat
	}
	g.Logger = cfg.Logging.NewLogger(g.stderr(), c.Verbose)
	slog.SetDefault(g.Logger)
	return cfg, nil
}

// configFile is the path of the configuration file for a site rooted at baseDir.
func (c *CLI) configFile(baseDir string) string {
	if c.Config != "" {
		if abs, err := filepath.Abs(c.Config); err == nil {
			return abs
		}
		return c.Config
	}
	return filepath.Join(baseDir, config.FileName)
}

// siteRunner reloads the configuration and runs one build per call. It is the
// rebuild function shared by build, watch and preview.
type siteRunner struct {
	root     *CLI
	global   *Global
	dir      string
	check    bool
	recorder metrics.Recorder
	onBuild  func(report *site.Report, err error)
}

func (r *siteRunner) build(ctx context.Context) (*site.Report, error) {
	cfg, err := r.root.loadConfig(r.global, r.dir)
	if err != nil {
		r.notify(nil, err)
		return nil, err
	}
	report, err := site.NewBuilder(cfg).
		WithRecorder(r.recorder).
		WithLogger(r.global.Logger).
		WithCheck(r.check).
		Build(ctx)
	r.notify(report, err)
	if err == nil {
		_, _ = fmt.Fprintln(r.global.stdout(), report.Summary())
	}
	return report, err
}

// rebuild adapts build to watch.BuildFunc.
func (r *siteRunner) rebuild(ctx context.Context) error {
	_, err := r.build(ctx)
	return err
}

func (r *siteRunner) notify(report *site.Report, err error) {
	if r.onBuild != nil {
		r.onBuild(report, err)
	}
}

// watchInputs lists what a rebuild depends on: the source tree, both overlay
// directories and the configuration and environment files.
func watchInputs(cfg *config.Config, configFile string) (dirs, files []string) {
	seen := map[string]bool{}
	for _, dir := range []string{cfg.SourcePath(), cfg.HTMLOverlayPath(), cfg.CapsuleOverlayPath()} {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	files = []string{
		configFile,
		filepath.Join(cfg.BaseDir, ".env"),
		filepath.Join(cfg.BaseDir, ".env.local"),
	}
	return dirs, files
}
