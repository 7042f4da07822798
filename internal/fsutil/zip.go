package fsutil

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
)

// openFile is swapped in tests to simulate unreadable bundle contents.
var openFile = os.Open

// ZipDSYMs compresses every *.dSYM bundle that sits next to dsymPath into
// out. Bundles are stored under their own names so the archive unpacks into
// the same layout. It reports false, and writes nothing, when dsymPath is
// empty or no bundles are found. A failed write leaves no partial archive.
func ZipDSYMs(dsymPath, out string) (bool, error) {
	if dsymPath == "" {
		return false, nil
	}
	dir := filepath.Dir(dsymPath)
	bundles, err := filepath.Glob(filepath.Join(dir, "*.dSYM"))
	if err != nil || len(bundles) == 0 {
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o750); err != nil {
		return false, err
	}
	f, err := os.Create(out)
	if err != nil {
		return false, err
	}
	zw := zip.NewWriter(f)
	for _, bundle := range bundles {
		if err := addTree(zw, dir, bundle); err != nil {
			_ = zw.Close()
			_ = f.Close()
			_ = os.Remove(out)
			return false, fmt.Errorf("zip %s: %w", bundle, err)
		}
	}
	if err := zw.Close(); err != nil {
		_ = f.Close()
		_ = os.Remove(out)
		return false, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(out)
		return false, err
	}
	return true, nil
}

func addTree(zw *zip.Writer, base, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)

		switch {
		case d.IsDir():
			hdr.Name += "/"
			_, err := zw.CreateHeader(hdr)
			return err
		case info.Mode()&os.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			w, err := zw.CreateHeader(hdr)
			if err != nil {
				return err
			}
			_, err = io.WriteString(w, target)
			return err
		}

		hdr.Method = zip.Deflate
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		src, err := openFile(path)
		if err != nil {
			return err
		}
		defer func() {
			_ = src.Close()
		}()
		_, err = io.Copy(w, src)
		return err
	})
}
