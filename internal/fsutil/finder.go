// Package fsutil provides file system helpers for workspace discovery.
package fsutil

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// FindFilesByExtension recursively searches the given root path for all
// files ending with the specified extension. Directories named in skipDirs
// are not descended into, which keeps build output and VCS metadata out of
// workspace discovery. Results are sorted so planning output is stable.
func FindFilesByExtension(rootPath string, extension string, skipDirs ...string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	skip := make(map[string]struct{}, len(skipDirs))
	for _, d := range skipDirs {
		skip[d] = struct{}{}
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if _, skipped := skip[d.Name()]; skipped && path != rootPath {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
