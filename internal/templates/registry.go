// Package templates enumerates the installed LaTeX templates. The set is the
// allow-list for generation requests: a name that does not resolve here is
// rejected before anything touches the filesystem.
package templates

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var (
	// ErrInvalidName signals a template identifier with characters outside
	// the allowed set. Rejecting these up front rules out path traversal.
	ErrInvalidName = errors.New("invalid template name")
	// ErrNotFound signals a well-formed identifier that is not installed.
	ErrNotFound = errors.New("template not found")
)

var nameRE = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// List scans dir for *.tex files and returns their sorted stems. The scan is
// repeated on every call; the set only changes on operator-driven redeploys.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan templates dir: %w", err)
	}

	names := []string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if stem, ok := strings.CutSuffix(e.Name(), ".tex"); ok {
			names = append(names, stem)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Resolve validates the identifier and returns the path of the installed
// template source, or an error when the name is malformed or unknown.
func Resolve(dir, name string) (string, error) {
	if !nameRE.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	path := filepath.Join(dir, name+".tex")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return "", fmt.Errorf("stat template %q: %w", name, err)
	}
	return path, nil
}
