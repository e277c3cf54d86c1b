package commands

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/cosmodrome/internal/config"
	"git.home.luguber.info/inful/cosmodrome/internal/testutil/testutils"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newGlobal(stdout io.Writer) *Global {
	return &Global{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Stdout: stdout,
		Stderr: io.Discard,
	}
}

func initSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, RunInit(newGlobal(io.Discard), config.Default(dir), false))
	return dir
}

func TestWatchInputs(t *testing.T) {
	cfg := config.Default("/site")
	dirs, files := watchInputs(cfg, "/site/cosmodrome.yaml")
	assert.Equal(t, []string{"/site/src", "/site/www", "/site/gemini"}, dirs)
	assert.Equal(t, []string{"/site/cosmodrome.yaml", "/site/.env", "/site/.env.local"}, files)

	cfg.Capsule.Overlay = "www"
	dirs, _ = watchInputs(cfg, "/site/cosmodrome.yaml")
	assert.Equal(t, []string{"/site/src", "/site/www"}, dirs, "shared overlays are watched once")
}

func TestConfigFile(t *testing.T) {
	root := &CLI{}
	assert.Equal(t, filepath.Join("/site", config.FileName), root.configFile("/site"))

	root.Config = "/etc/cosmodrome.yaml"
	assert.Equal(t, "/etc/cosmodrome.yaml", root.configFile("/site"))
}

func TestAfterApply_RejectsUnknownLogFormat(t *testing.T) {
	g := newGlobal(io.Discard)
	require.Error(t, (&CLI{LogFormat: "xml"}).AfterApply(g))
	require.NoError(t, (&CLI{LogFormat: "json"}).AfterApply(g))
	assert.NotNil(t, g.Logger)
}

func TestWatchCmd_RebuildsOnChange(t *testing.T) {
	dir := initSite(t)
	var out syncBuffer
	g := newGlobal(&out)
	root := &CLI{}
	cmd := &WatchCmd{Path: dir, Debounce: 20 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cmd.Run(ctx, g, root) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watch did not stop")
		}
	})

	index := filepath.Join(dir, "srv", "www", "index.html")
	require.Eventually(t, func() bool {
		_, err := os.Stat(index)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond, "initial build")

	// Let fsnotify settle before editing.
	time.Sleep(100 * time.Millisecond)
	testutils.WriteTree(t, dir, map[string]string{"src/index.gmi": "# Changed"})
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(index)
		return err == nil && bytes.Contains(data, []byte("<h1>Changed</h1>"))
	}, 5*time.Second, 20*time.Millisecond, "rebuild after change")
	assert.Contains(t, out.String(), "pages")
}

func TestPreviewCmd_ServesBuiltSite(t *testing.T) {
	dir := initSite(t)
	var out syncBuffer
	g := newGlobal(&out)
	cmd := &PreviewCmd{Path: dir, Host: "127.0.0.1", Port: 0, Debounce: 20 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cmd.Run(ctx, g, &CLI{}) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("preview did not stop")
		}
	})

	addrPattern := regexp.MustCompile(`at http://([^/]+)/`)
	var addr string
	require.Eventually(t, func() bool {
		m := addrPattern.FindStringSubmatch(out.String())
		if m == nil {
			return false
		}
		addr = m[1]
		return true
	}, 5*time.Second, 20*time.Millisecond)

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond, "first build reported")

	resp, err := http.Get("http://" + addr + "/about.html")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)
	assert.Contains(t, string(body), "<h2>About</h2>")

	resp, err = http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	metricsBody, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)
	assert.Contains(t, string(metricsBody), "cosmodrome_build_outcomes_total")
}
