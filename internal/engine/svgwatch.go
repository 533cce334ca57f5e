package engine

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/virgil-serbanuta/kdebug/internal/uigraph"
)

// svgWatcher watches one SVG file for writes and reparses it into a Graph
// each time the engine rewrites it, posting the result onto the logic
// goroutine. The engine's `graph expanded <path> svg` command creates the
// file on the first render and rewrites the same path in place after
// that, so the watch is on the file's directory, filtered to Write and
// Create events on the exact path.
type svgWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	post    func(func())
	onGraph func(uigraph.Graph)
	log     *slog.Logger
	done    chan struct{}
}

func newSVGWatcher(path string, post func(func()), onGraph func(uigraph.Graph), logger *slog.Logger) (*svgWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("engine: creating svg watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("engine: watching svg directory: %w", err)
	}
	return &svgWatcher{
		path:    path,
		watcher: w,
		post:    post,
		onGraph: onGraph,
		log:     logger,
		done:    make(chan struct{}),
	}, nil
}

// run blocks, dispatching reparse events until Close is called. Meant to
// be the body of a dedicated goroutine started through life.Guard.Go.
func (w *svgWatcher) run() {
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Name != w.path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reparse()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("svg watcher error", "error", err)
		case <-w.done:
			return
		}
	}
}

func (w *svgWatcher) reparse() {
	content, err := os.ReadFile(w.path)
	if err != nil {
		// The engine may still be mid-write; the next event will retry.
		return
	}
	graph, err := uigraph.ParseGraphSVG(string(content))
	if err != nil {
		w.log.Warn("failed to parse graph svg", "path", w.path, "error", err)
		return
	}
	w.post(func() { w.onGraph(graph) })
}

func (w *svgWatcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
