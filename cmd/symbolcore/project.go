package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/tidesmith/symbolcore/internal/cache"
	"github.com/tidesmith/symbolcore/internal/config"
	"github.com/tidesmith/symbolcore/pkg/ignore"
	"github.com/tidesmith/symbolcore/pkg/sourcelang"
	"github.com/tidesmith/symbolcore/pkg/symbol"
	"github.com/tidesmith/symbolcore/pkg/symbolstore"
)

// walkSourceFiles calls fn for every non-ignored .php file under root.
// When root is a git working tree, the files committed at HEAD are
// enumerated via go-git; otherwise (no repository, or an empty one
// with no commits yet) it falls back to a plain filesystem walk.
func walkSourceFiles(root string, matcher *ignore.Matcher, fn func(path string) error) error {
	if paths, ok := gitTrackedSourceFiles(root, matcher); ok {
		for _, p := range paths {
			if err := fn(p); err != nil {
				return err
			}
		}
		return nil
	}
	return filesystemWalk(root, matcher, fn)
}

// gitTrackedSourceFiles lists the .php files committed at HEAD of the
// git repository rooted at (or above) root. The second return value is
// false when root is not inside a git repository or has no commits,
// signaling the caller to fall back to a plain directory walk.
func gitTrackedSourceFiles(root string, matcher *ignore.Matcher) ([]string, bool) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, false
	}
	head, err := repo.Head()
	if err != nil {
		return nil, false
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, false
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, false
	}

	var paths []string
	err = tree.Files().ForEach(func(f *object.File) error {
		if strings.ToLower(filepath.Ext(f.Name)) != ".php" {
			return nil
		}
		if matcher.ShouldIgnoreFile(f.Name) {
			return nil
		}
		paths = append(paths, filepath.Join(root, filepath.FromSlash(f.Name)))
		return nil
	})
	if err != nil {
		return nil, false
	}
	return paths, true
}

func filesystemWalk(root string, matcher *ignore.Matcher, fn func(path string) error) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		if info.IsDir() {
			if matcher.ShouldIgnoreDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.ToLower(filepath.Ext(path)) != ".php" {
			return nil
		}
		if matcher.ShouldIgnoreFile(rel) {
			return nil
		}
		return fn(path)
	})
}

// parseFile reads and parses a single source file into a SymbolTable
// keyed by its absolute path as URI.
func parseFile(path string) (*symbol.SymbolTable, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc := sourcelang.Parse(path, src)
	return symbol.Create(doc), nil
}

// loadStoreFromCache rebuilds an in-memory symbolstore.Store from
// every table persisted in the bbolt cache, without reparsing source.
func loadStoreFromCache(cfg *config.Config) (*symbolstore.Store, *cache.Cache, error) {
	c, err := cache.Open(cfg.CachePath)
	if err != nil {
		return nil, nil, err
	}
	tables, err := c.All()
	if err != nil {
		c.Close()
		return nil, nil, err
	}
	st := symbolstore.New()
	for _, t := range tables {
		if err := st.Add(t); err != nil && err != symbolstore.ErrDuplicateURI {
			c.Close()
			return nil, nil, err
		}
	}
	return st, c, nil
}
