package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tidesmith/symbolcore/internal/cache"
	"github.com/tidesmith/symbolcore/internal/config"
	"github.com/tidesmith/symbolcore/internal/searchtext"
	"github.com/tidesmith/symbolcore/pkg/ignore"
	"github.com/tidesmith/symbolcore/pkg/symbolstore"
)

// cmdIndex walks cfg.ProjectRoot, parses every source file, and writes
// the resulting symbol tables to both the bbolt cache and the Bleve
// full-text index, replacing any prior entries for the same URIs.
func cmdIndex(cfg *config.Config, args []string) error {
	matcher, err := ignore.New(cfg.ProjectRoot)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}

	c, err := cache.Open(cfg.CachePath)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	defer c.Close()

	sx, err := searchtext.Open(cfg.SearchPath)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	defer sx.Close()

	st := symbolstore.New()
	var fileCount, symbolCount int

	err = walkSourceFiles(cfg.ProjectRoot, matcher, func(path string) error {
		table, err := parseFile(path)
		if err != nil {
			return err
		}
		if err := st.Add(table); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if old, ok, err := c.Get(table.URI); err != nil {
			return fmt.Errorf("%s: cache get: %w", path, err)
		} else if ok {
			if err := sx.RemoveURI(table.URI, old); err != nil {
				return fmt.Errorf("%s: search remove: %w", path, err)
			}
		}
		if err := c.Put(table); err != nil {
			return fmt.Errorf("%s: cache put: %w", path, err)
		}
		if err := sx.IndexTable(path, table); err != nil {
			return fmt.Errorf("%s: search index: %w", path, err)
		}
		fileCount++
		symbolCount += table.Count()
		return nil
	})
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}

	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	snapshot, err := c.Stamp(entropy)
	if err != nil {
		return fmt.Errorf("index: stamp snapshot: %w", err)
	}

	fmt.Printf("indexed %d files, %d symbols (snapshot %s)\n", fileCount, symbolCount, snapshot)
	return nil
}
