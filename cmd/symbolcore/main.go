// Command symbolcore is a CLI front end over the symbol-analysis core:
// it walks a project, builds the symbol index, and answers name/member
// queries against it, the same dispatch-by-subcommand shape as the
// teacher's cmd/aide.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"

	"github.com/tidesmith/symbolcore/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	root := findProjectRoot()
	cfg, err := config.Load(root, filepath.Join(root, "symbolcore.json"))
	if err != nil {
		fatal("%v", err)
	}

	if err := dispatch(cmd, cfg, args); err != nil {
		fatal("%v", err)
	}
}

func dispatch(cmd string, cfg *config.Config, args []string) error {
	switch cmd {
	case "index":
		return cmdIndex(cfg, args)
	case "find":
		return cmdFind(cfg, args)
	case "match":
		return cmdMatch(cfg, args)
	case "members":
		return cmdMembers(cfg, args)
	case "search":
		return cmdSearch(cfg, args)
	case "stats":
		return cmdStats(cfg, args)
	case "watch":
		return cmdWatch(cfg, args)
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// findProjectRoot locates the enclosing git repository's working tree
// root, falling back to the current directory when none is found —
// the same fallback cmd/aide's findProjectRoot applies, realized here
// with go-git instead of shelling out to `git rev-parse`.
func findProjectRoot() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	repo, err := git.PlainOpenWithOptions(cwd, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return cwd
	}
	wt, err := repo.Worktree()
	if err != nil {
		return cwd
	}
	return wt.Filesystem.Root()
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `symbolcore — symbol-analysis core CLI

Usage:
  symbolcore index              build/refresh the symbol index for the project
  symbolcore find <name>        exact-name symbol lookup
  symbolcore match <text>       prefix/fuzzy symbol lookup
  symbolcore members <class>    inheritance-aware member listing
  symbolcore search <text>      full-text search over names/signatures/docs
  symbolcore stats              index and cache statistics
  symbolcore watch              watch the project and keep the index fresh`)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "symbolcore: "+format+"\n", args...)
	os.Exit(1)
}
