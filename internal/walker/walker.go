package walker

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// Walker enumerates candidate Python source files under a root in sorted
// order, honoring an ignore list of names or glob patterns.
type Walker struct {
	ignoreNames map[string]bool
	ignoreGlobs []glob.Glob
}

func New(ignores []string) (*Walker, error) {
	w := &Walker{ignoreNames: make(map[string]bool)}
	for _, pattern := range ignores {
		if strings.ContainsAny(pattern, "*?[{") {
			g, err := glob.Compile(pattern)
			if err != nil {
				return nil, err
			}
			w.ignoreGlobs = append(w.ignoreGlobs, g)
			continue
		}
		w.ignoreNames[pattern] = true
	}
	return w, nil
}

// FindSources returns the .py files under root, sorted. A root that is
// itself a file is returned as-is.
func (w *Walker) FindSources(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		base := filepath.Base(path)
		if d.IsDir() {
			if path != root && w.ignored(base) {
				return filepath.SkipDir
			}
			return nil
		}
		if w.ignored(base) {
			return nil
		}
		// Editor leftovers start with ".#".
		if strings.HasPrefix(base, ".#") {
			return nil
		}
		if strings.HasSuffix(base, ".py") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (w *Walker) ignored(base string) bool {
	if w.ignoreNames[base] {
		return true
	}
	for _, g := range w.ignoreGlobs {
		if g.Match(base) {
			return true
		}
	}
	return false
}
