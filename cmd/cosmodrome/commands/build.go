package commands

import (
	"context"
	"fmt"
	"log/slog"

	ferrors "git.home.luguber.info/inful/cosmodrome/internal/foundation/errors"
	"git.home.luguber.info/inful/cosmodrome/internal/logfields"
	"git.home.luguber.info/inful/cosmodrome/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Path        string `arg:"" optional:"" default:"." help:"Site directory to build"`
	Strict      bool   `help:"Exit with an error when any file fails"`
	Check       bool   `help:"Validate that every generated HTML page is balanced"`
	MetricsFile string `name:"metrics-file" help:"Write build metrics in Prometheus textfile format to this path"`
}

func (b *BuildCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	out := g.stdout()
	recorder := metrics.NewPrometheusRecorder(nil)
	runner := &siteRunner{root: root, global: g, dir: b.Path, check: b.Check, recorder: recorder}

	_, _ = fmt.Fprintln(out, "Building site")
	report, err := runner.build(ctx)
	if b.MetricsFile != "" {
		if werr := recorder.WriteTextfile(b.MetricsFile); werr != nil {
			slog.Warn("Failed to write metrics file", logfields.Path(b.MetricsFile), logfields.Error(werr))
		}
	}
	if err != nil {
		_, _ = fmt.Fprintln(out, "Build failed")
		return err
	}

	if report.HasFailures() {
		for _, f := range report.Failures {
			_, _ = fmt.Fprintf(out, "  failed: %s\n", f.Error())
		}
		if b.Strict {
			return ferrors.BuildError(fmt.Sprintf("%d files failed", len(report.Failures))).
				WithContext("build_id", report.BuildID).
				WithContext("failures", len(report.Failures)).
				Build()
		}
	}
	_, _ = fmt.Fprintln(out, "Build completed!")
	return nil
}
