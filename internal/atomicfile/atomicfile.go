// Package atomicfile replaces files through a temp file and rename so
// readers never observe a half-written collection or export.
package atomicfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// TempFilePrefix marks in-flight temp files. Directory scans skip names with
// this prefix.
const TempFilePrefix = "furrow-tmp-"

// IsTemp reports whether name (a base name or a path) is an in-flight temp file.
func IsTemp(name string) bool {
	return strings.HasPrefix(filepath.Base(name), TempFilePrefix)
}

// Write replaces filename with data.
func Write(filename string, data []byte, perm os.FileMode) error {
	return WriteFunc(filename, perm, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// WriteFunc streams the new content of filename through fn. The target is
// replaced only when fn returns nil and the content reached the disk; on any
// failure the previous file is left untouched.
func WriteFunc(filename string, perm os.FileMode, fn func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", filepath.Base(filename), err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	bw := bufio.NewWriter(tmp)
	if err := fn(bw); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(filename), err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", filepath.Base(filename), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		_ = os.Remove(tmp.Name())
		committed = true
		return fmt.Errorf("replace %s: %w", filename, err)
	}
	committed = true
	return nil
}
