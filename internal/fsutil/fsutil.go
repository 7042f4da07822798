// Package fsutil holds the file moves, copies and lookups used to relocate
// build artifacts out of archives and scratch directories.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"syscall"
)

// rename is swapped in tests to simulate cross-device moves.
var rename = os.Rename

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// FirstMatch returns the lexically first entry directly under dir matching
// pattern, or "" when nothing matches.
func FirstMatch(dir, pattern string) string {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil || len(matches) == 0 {
		return ""
	}
	sort.Strings(matches)
	return matches[0]
}

// LastMatchRecursive walks root in lexical order and returns the last entry
// whose base name matches pattern, or "".
func LastMatchRecursive(root, pattern string) string {
	var last string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == root {
			return nil
		}
		if ok, _ := filepath.Match(pattern, d.Name()); ok {
			last = path
		}
		return nil
	})
	return last
}

// IsEmptyDir reports whether dir is missing or has no entries.
func IsEmptyDir(dir string) bool {
	entries, err := os.ReadDir(dir)
	return err != nil || len(entries) == 0
}

// MoveReplace moves src into dstDir, replacing any entry of the same name,
// and returns the new path. Moves across devices fall back to copy+remove.
func MoveReplace(src, dstDir string) (string, error) {
	dst := filepath.Join(dstDir, filepath.Base(src))
	if same, err := samePath(src, dst); err == nil && same {
		return dst, nil
	}
	if err := os.MkdirAll(dstDir, 0o750); err != nil {
		return "", err
	}
	if err := os.RemoveAll(dst); err != nil {
		return "", fmt.Errorf("remove existing %s: %w", dst, err)
	}
	err := rename(src, dst)
	if err == nil {
		return dst, nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return "", err
	}
	if err := copyTree(src, dst); err != nil {
		return "", err
	}
	if err := os.RemoveAll(src); err != nil {
		return "", fmt.Errorf("remove %s after copy: %w", src, err)
	}
	return dst, nil
}

// CopyDirReplace recursively copies src into dstDir, replacing any existing
// entry of the same name, and returns the new path. Symlinks are recreated
// rather than followed so bundle layouts survive.
func CopyDirReplace(src, dstDir string) (string, error) {
	dst := filepath.Join(dstDir, filepath.Base(src))
	if err := os.MkdirAll(dstDir, 0o750); err != nil {
		return "", err
	}
	if err := os.RemoveAll(dst); err != nil {
		return "", fmt.Errorf("remove existing %s: %w", dst, err)
	}
	if err := copyTree(src, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// CopyFile copies a regular file, preserving its permissions.
func CopyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = srcFile.Close()
	}()

	info, err := srcFile.Stat()
	if err != nil {
		return err
	}
	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return err
	}
	return dstFile.Close()
}

func copyTree(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(src)
		if err != nil {
			return err
		}
		return os.Symlink(target, dst)
	case !info.IsDir():
		return CopyFile(src, dst)
	}

	if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := copyTree(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func samePath(a, b string) (bool, error) {
	ai, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	return os.SameFile(ai, bi), nil
}
