// Package watch provides a debounced fsnotify watcher that reindexes
// source documents as they change on disk. It merges the teacher's
// generic directory watcher (pkg/watcher) and its code-specific
// debounce/queueChange/flushPending wiring (pkg/code/watcher.go) into
// one watcher keyed to the files pkg/sourcelang can parse, since this
// core has only one source language instead of aide's many.
package watch

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tidesmith/symbolcore/pkg/ignore"
)

var watchLog = log.New(os.Stderr, "[symbolcore:watch] ", log.Ltime)

// DefaultDebounceDelay is how long the watcher waits after the last
// observed change before flushing pending paths to its handler.
const DefaultDebounceDelay = 750 * time.Millisecond

// SourceExtensions lists the file extensions pkg/sourcelang.Parse can
// consume. Only matching files trigger a reindex.
var SourceExtensions = map[string]bool{
	".php": true,
}

// ChangeHandler receives the set of changed paths, keyed by the
// fsnotify operation observed for each, once the debounce window
// elapses.
type ChangeHandler interface {
	OnChanges(paths map[string]fsnotify.Op)
}

// ChangeHandlerFunc adapts a plain function to ChangeHandler.
type ChangeHandlerFunc func(paths map[string]fsnotify.Op)

func (f ChangeHandlerFunc) OnChanges(paths map[string]fsnotify.Op) { f(paths) }

// Config configures a Watcher.
type Config struct {
	Root          string
	DebounceDelay time.Duration
	Ignore        *ignore.Matcher
}

// Watcher watches Config.Root for changes to source-language files,
// skipping ignored directories, and debounces bursts of changes (a
// save-triggered rename+write pair, a git checkout) into one batch.
type Watcher struct {
	fs       *fsnotify.Watcher
	config   Config
	handlers []ChangeHandler
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu           sync.Mutex
	pending      map[string]fsnotify.Op
	debounceOnce sync.Once

	dirsWatched int
	startTime   time.Time
}

// New creates a Watcher rooted at config.Root. config.DebounceDelay
// defaults to DefaultDebounceDelay and config.Ignore to
// ignore.NewFromDefaults() when left zero.
func New(config Config, handlers ...ChangeHandler) (*Watcher, error) {
	fsW, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if config.DebounceDelay == 0 {
		config.DebounceDelay = DefaultDebounceDelay
	}
	if config.Ignore == nil {
		config.Ignore = ignore.NewFromDefaults()
	}
	return &Watcher{
		fs:       fsW,
		config:   config,
		handlers: handlers,
		stop:     make(chan struct{}),
		pending:  make(map[string]fsnotify.Op),
	}, nil
}

// AddHandler registers an additional ChangeHandler.
func (w *Watcher) AddHandler(h ChangeHandler) { w.handlers = append(w.handlers, h) }

// Start walks config.Root, subscribing every non-ignored directory,
// then begins processing fsnotify events in a background goroutine.
func (w *Watcher) Start() error {
	root := w.config.Root
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		root = cwd
	}

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr == nil && w.config.Ignore.ShouldIgnoreDir(rel) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err == nil {
			w.dirsWatched++
		}
		return nil
	})
	if err != nil {
		return err
	}

	w.startTime = time.Now()
	w.wg.Add(1)
	go w.processEvents(root)

	watchLog.Printf("watching %d directories under %s (debounce: %v)", w.dirsWatched, root, w.config.DebounceDelay)
	return nil
}

// Stop stops event processing and closes the underlying fsnotify
// watcher. Safe to call more than once.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() { close(w.stop) })
	w.wg.Wait()
	return w.fs.Close()
}

// Stats reports current watcher status, for CLI display.
type Stats struct {
	Root         string
	DirsWatched  int
	Debounce     time.Duration
	PendingFiles int
	Uptime       time.Duration
}

func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	pending := len(w.pending)
	w.mu.Unlock()
	return Stats{
		Root:         w.config.Root,
		DirsWatched:  w.dirsWatched,
		Debounce:     w.config.DebounceDelay,
		PendingFiles: pending,
		Uptime:       time.Since(w.startTime),
	}
}

func (w *Watcher) processEvents(root string) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stop:
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					rel, relErr := filepath.Rel(root, event.Name)
					if relErr != nil || !w.config.Ignore.ShouldIgnoreDir(rel) {
						if err := w.fs.Add(event.Name); err == nil {
							w.dirsWatched++
							watchLog.Printf("watching new directory: %s", event.Name)
						}
					}
					continue
				}
			}

			if !SourceExtensions[strings.ToLower(filepath.Ext(event.Name))] {
				continue
			}
			if rel, err := filepath.Rel(root, event.Name); err == nil && w.config.Ignore.ShouldIgnoreFile(rel) {
				continue
			}
			name := filepath.Base(event.Name)
			if strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") || strings.HasSuffix(name, ".swp") {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				w.queueChange(event.Name, event.Op)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			watchLog.Printf("error: %v", err)
		}
	}
}

func (w *Watcher) queueChange(path string, op fsnotify.Op) {
	w.mu.Lock()
	w.pending[path] = op
	w.debounceOnce.Do(func() {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			select {
			case <-time.After(w.config.DebounceDelay):
				w.flushPending()
			case <-w.stop:
			}
		}()
	})
	w.mu.Unlock()
}

func (w *Watcher) flushPending() {
	w.mu.Lock()
	pending := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.debounceOnce = sync.Once{}
	w.mu.Unlock()

	if len(pending) == 0 {
		return
	}
	watchLog.Printf("processing %d changed files", len(pending))
	for _, h := range w.handlers {
		h.OnChanges(pending)
	}
}

// IsRemove reports whether op represents a file removal.
func IsRemove(op fsnotify.Op) bool { return op&fsnotify.Remove != 0 }
