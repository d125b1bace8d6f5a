package main

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/oklog/ulid/v2"

	"github.com/tidesmith/symbolcore/internal/cache"
	"github.com/tidesmith/symbolcore/internal/config"
	"github.com/tidesmith/symbolcore/internal/searchtext"
	"github.com/tidesmith/symbolcore/pkg/ignore"
	"github.com/tidesmith/symbolcore/pkg/symbol"
	"github.com/tidesmith/symbolcore/pkg/symbolstore"
	"github.com/tidesmith/symbolcore/pkg/watch"
)

// cmdWatch builds the index once, then keeps it current as files
// change, rebuilding each changed document's symbol table and
// replacing its entry in the store, cache, and search index, per spec
// §5's cooperative cancellation model — here realized as Ctrl-C
// stopping the watcher cleanly.
func cmdWatch(cfg *config.Config, args []string) error {
	if err := cmdIndex(cfg, nil); err != nil {
		return err
	}

	matcher, err := ignore.New(cfg.ProjectRoot)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	c, err := cache.Open(cfg.CachePath)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer c.Close()
	sx, err := searchtext.Open(cfg.SearchPath)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer sx.Close()

	st := symbolstore.New()
	tables, err := c.All()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	for _, t := range tables {
		_ = st.Add(t)
	}

	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)

	handler := watch.ChangeHandlerFunc(func(paths map[string]fsnotify.Op) {
		for path, op := range paths {
			if watch.IsRemove(op) {
				st.Remove(path)
				_ = c.Delete(path)
				continue
			}
			table, err := parseFile(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "watch: %s: %v\n", path, err)
				continue
			}
			if err := reindexDocument(st, c, sx, table); err != nil {
				fmt.Fprintf(os.Stderr, "watch: %s: %v\n", path, err)
			}
		}
		if _, err := c.Stamp(entropy); err != nil {
			fmt.Fprintf(os.Stderr, "watch: stamp snapshot: %v\n", err)
		}
		fmt.Printf("reindexed %d changed file(s)\n", len(paths))
	})

	w, err := watch.New(watch.Config{Root: cfg.ProjectRoot, DebounceDelay: cfg.WatchDebounce, Ignore: matcher}, handler)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	return w.Stop()
}

func reindexDocument(st *symbolstore.Store, c *cache.Cache, sx *searchtext.Index, table *symbol.SymbolTable) error {
	st.Remove(table.URI)
	if err := st.Add(table); err != nil {
		return err
	}
	if old, ok, err := c.Get(table.URI); err != nil {
		return err
	} else if ok {
		if err := sx.RemoveURI(table.URI, old); err != nil {
			return err
		}
	}
	if err := c.Put(table); err != nil {
		return err
	}
	return sx.IndexTable(table.URI, table)
}
