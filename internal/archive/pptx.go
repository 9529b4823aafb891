// Package archive extracts and repacks presentation archives so the
// videos embedded under ppt/media/ can be re-encoded in place.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/brianmathews/PPTcrunch/internal/util/media"
)

const mediaPrefix = "ppt/media/"

// Extracted is an archive unpacked to a temp directory. Entry names keep
// their original slash-separated form and order so the repacked file
// round-trips cleanly.
type Extracted struct {
	Root    string
	Entries []string
}

// Extract unpacks zipPath into destDir. Entries with path traversal are
// rejected outright rather than skipped.
func Extract(zipPath, destDir string) (*Extracted, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	ex := &Extracted{Root: destDir}
	for _, f := range r.File {
		if strings.Contains(f.Name, "..") {
			return nil, fmt.Errorf("archive entry escapes extraction dir: %s", f.Name)
		}
		if f.FileInfo().IsDir() {
			continue
		}
		if err := extractFile(f, destDir); err != nil {
			return nil, fmt.Errorf("extract %s: %w", f.Name, err)
		}
		ex.Entries = append(ex.Entries, f.Name)
	}
	return ex, nil
}

func extractFile(f *zip.File, destDir string) error {
	target := filepath.Join(destDir, filepath.FromSlash(f.Name))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// AbsPath returns the on-disk location of an entry.
func (e *Extracted) AbsPath(name string) string {
	return filepath.Join(e.Root, filepath.FromSlash(name))
}

// Videos lists the entries under ppt/media/ with a recognized video
// extension, in archive order.
func (e *Extracted) Videos() []string {
	var vids []string
	for _, name := range e.Entries {
		if strings.HasPrefix(name, mediaPrefix) && media.IsVideo(name) {
			vids = append(vids, name)
		}
	}
	return vids
}

// ReplaceEntry swaps oldName for newName in the entry list, keeping the
// original position. The caller is responsible for the files on disk.
func (e *Extracted) ReplaceEntry(oldName, newName string) {
	for i, name := range e.Entries {
		if name == oldName {
			e.Entries[i] = newName
			return
		}
	}
}

// Repack writes the extracted tree back into a zip at outPath, preserving
// entry names and order. Already-compressed media is stored rather than
// deflated a second time.
func Repack(e *Extracted, outPath string) error {
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	zw := zip.NewWriter(out)

	for _, name := range e.Entries {
		if err := repackEntry(zw, e, name); err != nil {
			zw.Close()
			out.Close()
			os.Remove(outPath)
			return fmt.Errorf("repack %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		out.Close()
		os.Remove(outPath)
		return fmt.Errorf("finalize archive: %w", err)
	}
	return out.Close()
}

func repackEntry(zw *zip.Writer, e *Extracted, name string) error {
	hdr := &zip.FileHeader{Name: name, Method: zip.Deflate}
	if media.IsVideo(path.Base(name)) {
		hdr.Method = zip.Store
	}
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	in, err := os.Open(e.AbsPath(name))
	if err != nil {
		return err
	}
	defer in.Close()
	_, err = io.Copy(w, in)
	return err
}
