package site

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/cosmodrome/internal/config"
	ferrors "git.home.luguber.info/inful/cosmodrome/internal/foundation/errors"
	"git.home.luguber.info/inful/cosmodrome/internal/fsutil"
	"git.home.luguber.info/inful/cosmodrome/internal/gemtext"
	"git.home.luguber.info/inful/cosmodrome/internal/logfields"
	"git.home.luguber.info/inful/cosmodrome/internal/metrics"
	"git.home.luguber.info/inful/cosmodrome/internal/observability"
	"git.home.luguber.info/inful/cosmodrome/internal/wrapper"
)

var (
	// ErrSourceNotFound is the cause of the error returned when the source
	// directory is missing or not a directory.
	ErrSourceNotFound = errors.New("source directory not found")
	// ErrPathStructure is the cause of per-file errors for entries whose path
	// cannot be expressed relative to the source root.
	ErrPathStructure = errors.New("path is not below the source root")
)

const (
	stagePrepare = "prepare"
	stageClean   = "clean"
	stageWalk    = "walk"
	stageOverlay = "overlay"
)

// Builder runs full builds for one configuration. A Builder is not safe for
// concurrent use; callers serialize builds.
type Builder struct {
	cfg        *config.Config
	router     Router
	transpiler *gemtext.Transpiler
	recorder   metrics.Recorder
	logger     *slog.Logger
	check      bool
}

// NewBuilder creates a Builder for cfg with a no-op recorder and the default logger.
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{
		cfg:    cfg,
		router: NewRouter(cfg),
		transpiler: gemtext.NewTranspiler(gemtext.Options{
			MarkupExtension: cfg.MarkupExtension,
			HTMLExtension:   cfg.HTML.Extension,
			RawText:         cfg.HTML.RawText,
		}),
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
}

// WithRecorder sets the metrics recorder. nil restores the no-op recorder.
func (b *Builder) WithRecorder(r metrics.Recorder) *Builder {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	b.recorder = r
	return b
}

// WithLogger sets the logger every build logs through.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	if l != nil {
		b.logger = l
	}
	return b
}

// WithCheck enables validation that every generated HTML body is balanced.
// Unbalanced pages are not written and count as HTML failures.
func (b *Builder) WithCheck(enabled bool) *Builder {
	b.check = enabled
	return b
}

type templates struct {
	html    wrapper.Template
	capsule wrapper.Template
}

// Build performs a clean build of both trees. The report is returned even when
// err is non-nil. Per-file failures do not produce an error; inspect
// Report.Failures.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	report := &Report{BuildID: uuid.NewString(), StartTime: time.Now()}
	ctx = observability.WithBuildID(observability.WithLogger(ctx, b.logger), report.BuildID)
	observability.InfoContext(ctx, "Starting build",
		logfields.Path(b.cfg.SourcePath()),
		logfields.Output(b.cfg.OutputPath()))

	tpls, err := b.prepare(observability.WithStage(ctx, stagePrepare))
	if err != nil {
		return b.finish(ctx, report, err)
	}
	if err := b.clean(observability.WithStage(ctx, stageClean)); err != nil {
		return b.finish(ctx, report, err)
	}
	if err := b.walk(observability.WithStage(ctx, stageWalk), tpls, report); err != nil {
		return b.finish(ctx, report, err)
	}
	if err := b.overlay(observability.WithStage(ctx, stageOverlay), report); err != nil {
		return b.finish(ctx, report, err)
	}
	return b.finish(ctx, report, nil)
}

func (b *Builder) finish(ctx context.Context, report *Report, err error) (*Report, error) {
	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)
	outcome := report.Outcome(err)
	b.recorder.IncBuildOutcome(outcome)
	b.recorder.ObserveBuildDuration(report.Duration)

	attrs := []slog.Attr{
		slog.String("outcome", string(outcome)),
		slog.Int("pages", report.Pages),
		slog.Int("capsules", report.Capsules),
		slog.Int("copied", report.Copied),
		slog.Int("failures", len(report.Failures)),
		logfields.Duration(report.Duration),
	}
	switch {
	case err != nil:
		observability.ErrorContext(ctx, "Build failed", append(attrs, logfields.Error(err))...)
	case report.HasFailures():
		observability.WarnContext(ctx, "Build finished with failures", attrs...)
	default:
		observability.InfoContext(ctx, "Build finished", attrs...)
	}
	return report, err
}

// prepare validates the source root and loads both wrappers before any output
// is touched.
func (b *Builder) prepare(ctx context.Context) (templates, error) {
	defer b.observeStage(stagePrepare, time.Now())

	src := b.cfg.SourcePath()
	if exists, isDir := fsutil.Exists(src); !exists || !isDir {
		return templates{}, ferrors.NotFoundError("source directory not found").
			WithCause(ErrSourceNotFound).
			WithContext("path", src).
			Build()
	}

	htmlTpl, err := wrapper.LoadTemplate(b.cfg.HTMLWrapperPath(), b.cfg.Placeholder)
	if err != nil {
		return templates{}, err
	}
	capsuleTpl, err := wrapper.LoadTemplate(b.cfg.CapsuleWrapperPath(), b.cfg.Placeholder)
	if err != nil {
		return templates{}, err
	}
	observability.DebugContext(ctx, "Loaded wrapper templates",
		slog.String("html_wrapper", b.cfg.HTMLWrapperPath()),
		slog.String("capsule_wrapper", b.cfg.CapsuleWrapperPath()))
	return templates{html: htmlTpl, capsule: capsuleTpl}, nil
}

// clean removes the output root and recreates both tree roots.
func (b *Builder) clean(ctx context.Context) error {
	defer b.observeStage(stageClean, time.Now())

	out := b.cfg.OutputPath()
	if err := os.RemoveAll(out); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "remove output directory").
			Fatal().WithContext("path", out).Build()
	}
	for _, dir := range []string{b.cfg.HTMLOutputPath(), b.cfg.CapsuleOutputPath()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "create output directory").
				Fatal().WithContext("path", dir).Build()
		}
	}
	observability.DebugContext(ctx, "Reset output directory", logfields.Output(out))
	return nil
}

func (b *Builder) walk(ctx context.Context, tpls templates, report *Report) error {
	defer b.observeStage(stageWalk, time.Now())

	root := b.cfg.SourcePath()
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if d == nil || path == root {
				return ferrors.WrapError(walkErr, ferrors.CategoryFileSystem, "read source directory").
					Fatal().WithContext("path", path).Build()
			}
			b.fail(ctx, report, Failure{Source: path, Err: ferrors.WrapError(walkErr, ferrors.CategoryFileSystem, "read source entry").
				WithContext("path", path).Build()})
			return nil
		}
		if path == root {
			return nil
		}

		if b.router.Hidden(d.Name()) {
			report.Ignored++
			b.recorder.IncFileRoute(RouteIgnore.String())
			observability.DebugContext(ctx, "Skipping hidden entry", logfields.Path(path))
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, err := relative(root, path)
		if err != nil {
			b.fail(ctx, report, Failure{Source: path, Err: err})
			return nil
		}
		route := b.router.Route(d.Name())
		b.recorder.IncFileRoute(route.String())
		fileCtx := observability.WithFile(ctx, filepath.ToSlash(rel))
		switch route {
		case RouteMarkup:
			b.buildPage(fileCtx, path, rel, tpls, report)
		case RouteVerbatimCopy:
			b.copyFile(fileCtx, path, rel, report)
		case RouteIgnore:
		}
		return nil
	})
}

// relative returns path relative to root or a PathStructure error.
func relative(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return rel, nil
	}
	builder := ferrors.PathError("cannot compute path relative to source root").
		WithCause(ErrPathStructure).
		WithContext("path", path).
		WithContext("root", root)
	if err != nil {
		builder = builder.WithContext("error", err.Error())
	}
	return "", builder.Build()
}

// buildPage reads a markup source once and feeds both pipelines. A failure in
// one pipeline does not prevent the other.
func (b *Builder) buildPage(ctx context.Context, path, rel string, tpls templates, report *Report) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from walking the source tree
	if err != nil {
		b.recorder.IncPageResult(FormatHTML, metrics.ResultFailed)
		b.recorder.IncPageResult(FormatCapsule, metrics.ResultFailed)
		b.fail(ctx, report, Failure{Source: rel, Err: ferrors.WrapError(err, ferrors.CategoryFileSystem, "read source page").
			WithContext("path", path).Build()})
		return
	}
	source := string(data)

	if err := b.writeHTML(ctx, rel, source, tpls.html); err != nil {
		b.recorder.IncPageResult(FormatHTML, metrics.ResultFailed)
		b.fail(ctx, report, Failure{Source: rel, Format: FormatHTML, Err: err})
	} else {
		report.Pages++
		b.recorder.IncPageResult(FormatHTML, metrics.ResultSuccess)
	}

	if err := b.writeCapsule(ctx, rel, source, tpls.capsule); err != nil {
		b.recorder.IncPageResult(FormatCapsule, metrics.ResultFailed)
		b.fail(ctx, report, Failure{Source: rel, Format: FormatCapsule, Err: err})
	} else {
		report.Capsules++
		b.recorder.IncPageResult(FormatCapsule, metrics.ResultSuccess)
	}
}

func (b *Builder) writeHTML(ctx context.Context, rel, source string, tpl wrapper.Template) error {
	out := filepath.Join(b.cfg.HTMLOutputPath(), b.htmlName(rel))
	body := b.transpiler.RenderDocument(source)
	if b.check {
		if err := gemtext.CheckBalanced(body); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryValidation, "generated page is not balanced").
				WithContext("output", out).Build()
		}
	}
	if err := fsutil.WriteFile(out, []byte(tpl.Splice(body))); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "write html page").
			WithContext("output", out).Build()
	}
	observability.DebugContext(ctx, "Built page", logfields.Format(FormatHTML), logfields.Output(out))
	return nil
}

func (b *Builder) writeCapsule(ctx context.Context, rel, source string, tpl wrapper.Template) error {
	out := filepath.Join(b.cfg.CapsuleOutputPath(), rel)
	if err := fsutil.WriteFile(out, []byte(wrapper.Capsule(tpl, source))); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "write capsule page").
			WithContext("output", out).Build()
	}
	observability.DebugContext(ctx, "Built page", logfields.Format(FormatCapsule), logfields.Output(out))
	return nil
}

// htmlName swaps the markup extension of rel for the HTML extension.
func (b *Builder) htmlName(rel string) string {
	return strings.TrimSuffix(rel, filepath.Ext(rel)) + "." + b.cfg.HTML.Extension
}

func (b *Builder) copyFile(ctx context.Context, path, rel string, report *Report) {
	for _, target := range []struct{ format, root string }{
		{FormatHTML, b.cfg.HTMLOutputPath()},
		{FormatCapsule, b.cfg.CapsuleOutputPath()},
	} {
		out := filepath.Join(target.root, rel)
		if err := fsutil.CopyFile(path, out); err != nil {
			b.recorder.IncCopyResult(metrics.ResultFailed)
			b.fail(ctx, report, Failure{Source: rel, Format: target.format, Err: ferrors.WrapError(err, ferrors.CategoryFileSystem, "copy file").
				WithContext("output", out).Build()})
			continue
		}
		report.Copied++
		b.recorder.IncCopyResult(metrics.ResultSuccess)
		observability.DebugContext(ctx, "Copied file", logfields.Format(target.format), logfields.Output(out))
	}
}

// overlay copies each existing static asset directory over its tree.
func (b *Builder) overlay(ctx context.Context, report *Report) error {
	defer b.observeStage(stageOverlay, time.Now())

	for _, target := range []struct{ format, src, dst string }{
		{FormatHTML, b.cfg.HTMLOverlayPath(), b.cfg.HTMLOutputPath()},
		{FormatCapsule, b.cfg.CapsuleOverlayPath(), b.cfg.CapsuleOutputPath()},
	} {
		exists, isDir := fsutil.Exists(target.src)
		if !exists || !isDir {
			observability.WarnContext(ctx, "Overlay directory not found, skipping",
				logfields.Format(target.format), logfields.Path(target.src))
			continue
		}
		if err := fsutil.CopyDir(target.src, target.dst); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "copy overlay directory").
				Fatal().
				WithContext("path", target.src).
				WithContext("output", target.dst).
				Build()
		}
		report.Overlays++
		observability.InfoContext(ctx, "Applied overlay",
			logfields.Format(target.format), logfields.Path(target.src), logfields.Output(target.dst))
	}
	return nil
}

func (b *Builder) fail(ctx context.Context, report *Report, f Failure) {
	report.Failures = append(report.Failures, f)
	observability.ErrorContext(ctx, "File failed",
		logfields.Path(f.Source), logfields.Format(f.Format), logfields.Error(f.Err))
}

func (b *Builder) observeStage(stage string, start time.Time) {
	b.recorder.ObserveStageDuration(stage, time.Since(start))
}
