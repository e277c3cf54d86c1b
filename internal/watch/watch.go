// Package watch rebuilds a site when its inputs change.
//
// Filesystem events are debounced into rebuild requests; an optional gocron
// job adds periodic requests. A single worker drains the requests, so builds
// never overlap and a burst of requests during a build collapses into one
// follow-up build.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/cosmodrome/internal/logfields"
)

// DefaultDebounce is the quiet period after the last event before a rebuild starts.
const DefaultDebounce = 300 * time.Millisecond

// BuildFunc runs one full build. Errors are logged and do not stop the watcher.
type BuildFunc func(ctx context.Context) error

// Options configures a Watcher.
type Options struct {
	// Dirs are watched recursively. Missing directories are skipped with a warning.
	Dirs []string
	// Files are watched through their parent directory, so editors that
	// replace files on save are still noticed.
	Files []string
	// Exclude lists directories whose events never trigger a rebuild.
	Exclude []string
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
	// Every schedules a periodic rebuild when positive.
	Every time.Duration
	// BuildOnStart requests a build as soon as Run starts.
	BuildOnStart bool
	Logger       *slog.Logger
}

// Watcher turns input changes into serialized rebuilds.
type Watcher struct {
	build    BuildFunc
	opts     Options
	logger   *slog.Logger
	files    map[string]struct{}
	requests chan struct{}

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// New creates a Watcher. Nothing is watched until Run.
func New(build BuildFunc, opts Options) (*Watcher, error) {
	if build == nil {
		return nil, errors.New("watch: build function is required")
	}
	if len(opts.Dirs) == 0 && len(opts.Files) == 0 {
		return nil, errors.New("watch: nothing to watch")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Every < 0 {
		return nil, fmt.Errorf("watch: negative interval %s", opts.Every)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	files := make(map[string]struct{}, len(opts.Files))
	for _, f := range opts.Files {
		files[filepath.Clean(f)] = struct{}{}
	}
	return &Watcher{
		build:    build,
		opts:     opts,
		logger:   logger,
		files:    files,
		requests: make(chan struct{}, 1),
	}, nil
}

// Trigger requests a rebuild after the debounce period. Further calls within
// the period restart it.
func (w *Watcher) Trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, w.request)
}

// request enqueues a rebuild unless one is already pending.
func (w *Watcher) request() {
	select {
	case w.requests <- struct{}{}:
	default:
	}
}

// Run watches until ctx is done, then waits for a running build to return.
// A Watcher runs once.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	for _, dir := range w.opts.Dirs {
		w.addDirsRecursive(fsw, dir)
	}
	for _, parent := range w.fileParents() {
		if err := fsw.Add(parent); err != nil {
			w.logger.Warn("Watch add failed", logfields.Path(parent), logfields.Error(err))
		}
	}

	var scheduler gocron.Scheduler
	if w.opts.Every > 0 {
		scheduler, err = w.startScheduler()
		if err != nil {
			return err
		}
		defer func() {
			if err := scheduler.Shutdown(); err != nil {
				w.logger.Warn("Scheduler shutdown failed", logfields.Error(err))
			}
		}()
	}

	var wg sync.WaitGroup
	defer wg.Wait()
	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer w.stop()
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.worker(workerCtx)
	}()

	if w.opts.BuildOnStart {
		w.request()
	}
	w.logger.Info("Watching for changes",
		logfields.Count(len(w.opts.Dirs)+len(w.opts.Files)),
		slog.Duration("debounce", w.opts.Debounce),
		slog.Duration("every", w.opts.Every))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopping watcher")
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fsw, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) startScheduler() (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(w.opts.Every),
		gocron.NewTask(w.request),
		gocron.WithName("periodic-rebuild"),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create periodic rebuild job: %w", err)
	}
	s.Start()
	return s, nil
}

// stop cancels a pending debounce timer and rejects further triggers.
func (w *Watcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.requests:
			start := time.Now()
			w.logger.Info("Rebuilding site")
			if err := w.build(ctx); err != nil {
				w.logger.Warn("Rebuild failed", logfields.Error(err), logfields.Duration(time.Since(start)))
				continue
			}
			w.logger.Info("Rebuild finished", logfields.Duration(time.Since(start)))
		}
	}
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, ev fsnotify.Event) {
	if ev.Op == fsnotify.Chmod || !w.relevant(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			w.addDirsRecursive(fsw, ev.Name)
		}
	}
	w.logger.Debug("File change detected", logfields.Path(ev.Name), logfields.Op(ev.Op.String()))
	w.Trigger()
}

// relevant reports whether an event for path should trigger a rebuild. Watched
// files always count; anything else must lie in a watched directory and not be
// excluded. Parents of watched files deliver events for their siblings too.
func (w *Watcher) relevant(path string) bool {
	path = filepath.Clean(path)
	if _, ok := w.files[path]; ok {
		return true
	}
	if w.ignored(path) {
		return false
	}
	for _, dir := range w.opts.Dirs {
		if under(path, dir) {
			return true
		}
	}
	return false
}

func (w *Watcher) ignored(path string) bool {
	for _, dir := range w.opts.Exclude {
		if under(path, dir) {
			return true
		}
	}
	return shouldIgnoreEvent(path)
}

func (w *Watcher) fileParents() []string {
	seen := make(map[string]struct{})
	var parents []string
	for f := range w.files {
		parent := filepath.Dir(f)
		if _, ok := seen[parent]; ok {
			continue
		}
		seen[parent] = struct{}{}
		parents = append(parents, parent)
	}
	return parents
}

func (w *Watcher) addDirsRecursive(fsw *fsnotify.Watcher, root string) {
	if fi, err := os.Stat(root); err != nil || !fi.IsDir() {
		w.logger.Warn("Watch directory not found, skipping", logfields.Path(root))
		return
	}
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) && path != root {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			w.logger.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// under reports whether path is dir or lies below it.
func under(path, dir string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// shouldIgnoreEvent returns true for filesystem events that should not trigger rebuilds.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	// Ignore hidden files
	if strings.HasPrefix(base, ".") {
		return true
	}

	// Ignore editor temp/swap files
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}

	return base == "Thumbs.db" || base == "4913"
}
