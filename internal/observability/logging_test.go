package observability

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func newBufferLogger(level slog.Level) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})), &buf
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	ctx = WithBuildID(ctx, "build-1")
	ctx = WithStage(ctx, "walk")
	ctx = WithFile(ctx, "notes/index.gmi")

	lc := GetContext(ctx)
	if lc.BuildID != "build-1" {
		t.Errorf("expected build-1, got %s", lc.BuildID)
	}
	if lc.Stage != "walk" {
		t.Errorf("expected walk, got %s", lc.Stage)
	}
	if lc.File != "notes/index.gmi" {
		t.Errorf("expected notes/index.gmi, got %s", lc.File)
	}
}

func TestStageOverride(t *testing.T) {
	ctx := WithStage(context.Background(), "walk")
	child := WithStage(ctx, "overlay")

	if GetContext(ctx).Stage != "walk" {
		t.Error("parent context must keep its stage")
	}
	if GetContext(child).Stage != "overlay" {
		t.Error("child context must carry the new stage")
	}
}

func TestEmptyContext(t *testing.T) {
	lc := GetContext(context.Background())
	if lc.BuildID != "" || lc.Stage != "" || lc.File != "" || lc.Logger != nil {
		t.Errorf("expected empty log context, got %+v", lc)
	}
}

func TestInfoContext_IncludesContextAttrs(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelDebug)
	ctx := WithLogger(context.Background(), logger)
	ctx = WithBuildID(ctx, "b-42")
	ctx = WithStage(ctx, "overlay")

	InfoContext(ctx, "copied overlay", slog.Int("count", 3))

	out := buf.String()
	for _, want := range []string{"copied overlay", "build_id=b-42", "stage=overlay", "count=3"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestLevels(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelWarn)
	ctx := WithLogger(context.Background(), logger)

	DebugContext(ctx, "debug line")
	InfoContext(ctx, "info line")
	WarnContext(ctx, "warn line")
	ErrorContext(ctx, "error line")

	out := buf.String()
	if strings.Contains(out, "debug line") || strings.Contains(out, "info line") {
		t.Errorf("messages below warn must be dropped: %q", out)
	}
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "level=ERROR") {
		t.Errorf("expected warn and error lines: %q", out)
	}
}

func TestDefaultLoggerFallback(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo)
	prev := slog.Default()
	slog.SetDefault(logger)
	t.Cleanup(func() { slog.SetDefault(prev) })

	InfoContext(WithFile(context.Background(), "a.gmi"), "rendered")
	if !strings.Contains(buf.String(), "file=a.gmi") {
		t.Errorf("expected default logger to receive the line, got %q", buf.String())
	}
}
