package fs

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultSettleDelay is how long a file must stay quiet before it is
// reported. Copies into the watched directory arrive as a burst of
// write events; reporting on the first one would ingest a partial file
// and reporting on every one would ingest it repeatedly.
const defaultSettleDelay = 500 * time.Millisecond

// Watcher monitors a directory and reports newly written files with
// watched extensions. Used by serve --watch to auto-ingest documents
// dropped into the upload directory.
type Watcher struct {
	watcher     *fsnotify.Watcher
	extensions  []string
	skipNames   map[string]struct{}
	settleDelay time.Duration
}

// NewWatcher creates a watcher for the given extensions. skipNames
// lists base file names that never trigger events (the ingestion
// artifact lives in the watched directory).
func NewWatcher(extensions, skipNames []string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	skip := make(map[string]struct{}, len(skipNames))
	for _, name := range skipNames {
		skip[name] = struct{}{}
	}

	return &Watcher{
		watcher:     w,
		extensions:  extensions,
		skipNames:   skip,
		settleDelay: defaultSettleDelay,
	}, nil
}

// Watch starts monitoring dir and emits the path of each created or
// modified file once it has gone quiet for the settle delay, until ctx
// is cancelled. A burst of writes to one file yields one event.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan string, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, err
	}

	paths := make(chan string, 100)

	go func() {
		defer close(paths)

		settled := make(chan string, 100)
		timers := make(map[string]*time.Timer)
		defer func() {
			for _, t := range timers {
				t.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !w.wants(event.Name) {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}
				path := event.Name
				if timer, pending := timers[path]; pending {
					timer.Reset(w.settleDelay)
					continue
				}
				timers[path] = time.AfterFunc(w.settleDelay, func() {
					select {
					case settled <- path:
					case <-ctx.Done():
					}
				})
			case path := <-settled:
				delete(timers, path)
				select {
				case paths <- path:
				case <-ctx.Done():
					return
				}
			case _, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return paths, nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) wants(path string) bool {
	if _, skip := w.skipNames[filepath.Base(path)]; skip {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range w.extensions {
		if ext == e {
			return true
		}
	}
	return false
}
