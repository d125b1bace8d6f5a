package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuiltinDefaults(t *testing.T) {
	m := NewFromDefaults()

	dirs := []string{
		".git", ".svn", ".hg", "vendor", "node_modules",
		"build", "dist", "out", ".idea", ".vscode",
	}
	for _, d := range dirs {
		if !m.ShouldIgnoreDir(d) {
			t.Errorf("expected directory %q to be ignored by defaults", d)
		}
	}

	okFiles := []string{"index.php", "Widget.php", "README.md"}
	for _, f := range okFiles {
		if m.ShouldIgnoreFile(f) {
			t.Errorf("expected file %q to NOT be ignored by defaults", f)
		}
	}
}

func TestDirOnlyPattern(t *testing.T) {
	m := NewFromDefaults()

	if m.ShouldIgnoreFile("build") {
		t.Error("dir-only pattern 'build/' should not match file named 'build'")
	}
	if !m.ShouldIgnoreDir("build") {
		t.Error("dir-only pattern 'build/' should match directory named 'build'")
	}
}

func TestNegation(t *testing.T) {
	m := &Matcher{}
	m.rules = append(m.rules, parsePattern("*.bak"))
	m.rules = append(m.rules, parsePattern("!important.bak"))

	if !m.ShouldIgnoreFile("foo.bak") {
		t.Error("expected foo.bak to be ignored")
	}
	if m.ShouldIgnoreFile("important.bak") {
		t.Error("expected important.bak to be un-ignored by negation")
	}
}

func TestAnchoredPattern(t *testing.T) {
	m := &Matcher{}
	m.rules = append(m.rules, parsePattern("/rootfile.php"))

	if !m.ShouldIgnoreFile("rootfile.php") {
		t.Error("expected anchored pattern to match root file")
	}
	if m.ShouldIgnoreFile("sub/rootfile.php") {
		t.Error("expected anchored pattern to NOT match nested file")
	}
}

func TestUnanchoredPattern(t *testing.T) {
	m := &Matcher{}
	m.rules = append(m.rules, parsePattern("*.log"))

	if !m.ShouldIgnoreFile("error.log") {
		t.Error("expected *.log to match root-level file")
	}
	if !m.ShouldIgnoreFile("logs/error.log") {
		t.Error("expected *.log to match nested file")
	}
}

func TestDoubleStarPrefix(t *testing.T) {
	m := &Matcher{}
	m.rules = append(m.rules, parsePattern("**/testdata/"))

	if !m.ShouldIgnoreDir("testdata") {
		t.Error("expected **/testdata/ to match top-level dir")
	}
	if !m.ShouldIgnoreDir("a/b/testdata") {
		t.Error("expected **/testdata/ to match deeply nested dir")
	}
}

func TestDeepNestedDirMatch(t *testing.T) {
	m := NewFromDefaults()

	if !m.ShouldIgnoreDir("packages/foo/node_modules") {
		t.Error("expected node_modules to be ignored at any depth")
	}
	if !m.ShouldIgnoreDir(".git") {
		t.Error("expected .git to be ignored")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	content := `# Project-specific ignores
*.generated.php
testdata/
!testdata/important.php
/config.local.json
`
	if err := os.WriteFile(filepath.Join(dir, ".symbolcoreignore"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}

	if !m.ShouldIgnoreFile("foo.generated.php") {
		t.Error("expected *.generated.php to be ignored")
	}
	if !m.ShouldIgnoreDir("testdata") {
		t.Error("expected testdata/ to be ignored")
	}
	if m.ShouldIgnoreFile("testdata/important.php") {
		t.Error("expected testdata/important.php to be un-ignored")
	}
	if !m.ShouldIgnoreFile("config.local.json") {
		t.Error("expected /config.local.json to match root file")
	}
	if m.ShouldIgnoreFile("sub/config.local.json") {
		t.Error("expected /config.local.json to NOT match nested file")
	}
	if !m.ShouldIgnoreDir("node_modules") {
		t.Error("expected node_modules to still be ignored from builtins")
	}
}

func TestMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	m, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !m.ShouldIgnoreDir("node_modules") {
		t.Error("expected node_modules to be ignored from builtins")
	}
}

func TestWalkFunc(t *testing.T) {
	m := NewFromDefaults()
	root := "/project"
	shouldSkip := m.WalkFunc(root)

	skip, skipDir := shouldSkip(filepath.Join(root, "node_modules"), true)
	if !skip || !skipDir {
		t.Error("expected WalkFunc to skip node_modules directory")
	}

	skip, skipDir = shouldSkip(filepath.Join(root, "Widget.php"), false)
	if skip || skipDir {
		t.Error("expected WalkFunc to NOT skip Widget.php")
	}
}

func TestAnchoredDirChildPaths(t *testing.T) {
	m := &Matcher{}
	m.rules = append(m.rules, parsePattern("packages/plugin/src/"))

	if !m.ShouldIgnoreDir("packages/plugin/src") {
		t.Error("expected anchored dir pattern to match the directory itself")
	}
	if !m.ShouldIgnoreFile("packages/plugin/src/index.php") {
		t.Error("expected anchored dir pattern to match file inside directory")
	}
	if !m.ShouldIgnoreFile("packages/plugin/src/utils/helper.php") {
		t.Error("expected anchored dir pattern to match deeply nested file")
	}
	if m.ShouldIgnoreFile("packages/plugin/README.md") {
		t.Error("expected anchored dir pattern to NOT match file outside directory")
	}
	if m.ShouldIgnoreFile("packages/plugin/src-backup/file.php") {
		t.Error("expected anchored dir pattern to NOT match similarly-named directory")
	}
}

func TestUnanchoredDirChildPaths(t *testing.T) {
	m := NewFromDefaults()

	if !m.ShouldIgnoreFile("node_modules/express/index.js") {
		t.Error("expected unanchored dir pattern to match file inside node_modules")
	}
	if !m.ShouldIgnoreFile("packages/app/node_modules/lodash/lodash.js") {
		t.Error("expected unanchored dir pattern to match file inside nested node_modules")
	}
	if !m.ShouldIgnoreFile("vendor/composer/autoload.php") {
		t.Error("expected unanchored dir pattern to match file inside vendor")
	}
}
