package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/samber/lo"
)

// FindFixtureFiles resolves CLI file arguments into concrete paths.
// Arguments containing glob metacharacters are expanded with doublestar
// (so tests/**/*.elm works); plain paths must exist.
func FindFixtureFiles(workDir string, args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		path := arg
		if !filepath.IsAbs(path) && workDir != "" {
			path = filepath.Join(workDir, arg)
		}

		if strings.ContainsAny(arg, "*?[{") {
			matches, err := doublestar.FilepathGlob(path)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
			}
			sort.Strings(matches)
			paths = append(paths, matches...)
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("fixture file %s: %w", arg, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("fixture file %s is a directory", arg)
		}
		paths = append(paths, path)
	}

	paths = lo.Uniq(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no fixture files found")
	}
	return paths, nil
}
