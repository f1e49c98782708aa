package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// Workspace root markers.
const (
	DataDir    = ".furrow"
	ConfigFile = "furrow.yaml"
)

// ErrNoRoot is returned by FindRoot when no ancestor holds a marker.
var ErrNoRoot = errors.New("no furrow workspace found")

// rootMarkers lists what makes a directory a workspace root. A stray file
// called .furrow or a directory called furrow.yaml does not count.
var rootMarkers = []struct {
	name string
	dir  bool
}{
	{DataDir, true},
	{ConfigFile, false},
}

// FindRoot returns the nearest directory at or above startDir that holds a
// .furrow data directory or a furrow.yaml file.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		for _, m := range rootMarkers {
			if isKind(filepath.Join(dir, m.name), m.dir) {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoRoot
		}
		dir = parent
	}
}

// configIn returns the config file of root, if it has one.
func configIn(root string) (string, bool) {
	path := filepath.Join(root, ConfigFile)
	return path, isKind(path, false)
}

func isKind(path string, dir bool) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if dir {
		return info.IsDir()
	}
	return info.Mode().IsRegular()
}
