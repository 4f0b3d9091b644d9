// Package artifact finds the packaged widget a build produced and deploys it.
package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// DefaultExtension is the extension of a packaged Mendix widget.
const DefaultExtension = ".mpk"

var (
	// ErrArtifactMissing means the output directory held no artifact.
	ErrArtifactMissing = errors.New("artifact missing")
	// ErrArtifactAmbiguous means the output directory held more than one artifact.
	ErrArtifactAmbiguous = errors.New("artifact ambiguous")
)

// LocateError describes a failed lookup. It matches ErrArtifactMissing or
// ErrArtifactAmbiguous with errors.Is.
type LocateError struct {
	Dir     string
	Ext     string
	Matches []string
	Err     error // underlying filesystem error, if any
}

func (e *LocateError) Error() string {
	switch {
	case len(e.Matches) > 1:
		return fmt.Sprintf("Multiple %s files found in %s, expected exactly one", e.Ext, e.Dir)
	case e.Err != nil && errors.Is(e.Err, os.ErrNotExist):
		return fmt.Sprintf("Dist path does not exist: %s", e.Dir)
	case e.Err != nil:
		return fmt.Sprintf("Failed to read dist directory %s: %v", e.Dir, e.Err)
	default:
		return fmt.Sprintf("No %s file found in %s", e.Ext, e.Dir)
	}
}

// Is lets errors.Is match the sentinel for the failure kind.
func (e *LocateError) Is(target error) bool {
	if len(e.Matches) > 1 {
		return target == ErrArtifactAmbiguous
	}
	return target == ErrArtifactMissing
}

func (e *LocateError) Unwrap() error {
	return e.Err
}

// Locate returns the single regular file directly inside dir whose extension
// is ext. Symlinks count when they resolve to a regular file. It refuses to
// guess when there is more than one.
func Locate(dir, ext string) (string, error) {
	if ext == "" {
		ext = DefaultExtension
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", &LocateError{Dir: dir, Ext: ext, Err: err}
	}

	var matches []string
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) != ext {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if !isRegularFile(entry, path) {
			continue
		}
		matches = append(matches, path)
	}

	switch len(matches) {
	case 0:
		return "", &LocateError{Dir: dir, Ext: ext}
	case 1:
		return matches[0], nil
	default:
		sort.Strings(matches)
		return "", &LocateError{Dir: dir, Ext: ext, Matches: matches}
	}
}

func isRegularFile(entry os.DirEntry, path string) bool {
	if entry.Type()&os.ModeSymlink == 0 {
		return entry.Type().IsRegular()
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
