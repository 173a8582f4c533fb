package fetcher

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Unpack extracts a ZIP archive into destDir and returns the extracted file
// paths. macOS resource forks and hidden files are skipped, and entries that
// would land outside destDir are rejected.
func Unpack(zipPath, destDir string) ([]string, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, eris.Wrap(err, "archive: open")
	}
	defer zr.Close() //nolint:errcheck

	root := filepath.Clean(destDir) + string(os.PathSeparator)
	var files []string
	for _, entry := range zr.File {
		if skipEntry(entry.Name) {
			continue
		}
		target := filepath.Join(destDir, entry.Name)
		if !strings.HasPrefix(target, root) {
			return files, eris.Errorf("archive: entry %q escapes destination", entry.Name)
		}
		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return files, eris.Wrap(err, "archive: mkdir")
			}
			continue
		}
		if err := writeEntry(entry, target); err != nil {
			return files, err
		}
		files = append(files, target)
	}
	return files, nil
}

func skipEntry(name string) bool {
	if strings.HasPrefix(name, "__MACOSX/") {
		return true
	}
	base := filepath.Base(name)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}

func writeEntry(entry *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return eris.Wrap(err, "archive: mkdir")
	}
	src, err := entry.Open()
	if err != nil {
		return eris.Wrapf(err, "archive: open %s", entry.Name)
	}
	defer src.Close() //nolint:errcheck

	dst, err := os.Create(target)
	if err != nil {
		return eris.Wrapf(err, "archive: create %s", target)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return eris.Wrapf(err, "archive: write %s", target)
	}
	return eris.Wrap(dst.Close(), "archive: close")
}

// FindByExt returns the first file under dir, in lexical walk order, whose
// extension equals ext ignoring case.
func FindByExt(dir, ext string) (string, error) {
	var found string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ext) {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", eris.Wrap(err, "archive: walk")
	}
	if found == "" {
		return "", eris.Errorf("archive: no %s file under %s", ext, dir)
	}
	return found, nil
}
