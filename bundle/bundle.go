/*
Copyright 2026 The bundlekit authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package bundle produces the single zip archive that is uploaded to the
// publishing portal. The archive preserves the relative structure of the
// staging directory and is written atomically with deterministic entry
// ordering, so identical staging content always yields an identical entry
// sequence.
package bundle

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/opencontainers/go-digest"

	intdigest "github.com/bundlekit/publisher/digest"
)

const (
	// DefaultFileMode is the permission mode recorded for files inside
	// the bundle archive.
	DefaultFileMode os.FileMode = 0o600
	// ExeFileMode is the permission mode recorded for executable files
	// inside the bundle archive.
	ExeFileMode os.FileMode = 0o700
)

// Summary describes a produced bundle archive.
type Summary struct {
	// Path is the absolute path of the archive.
	Path string
	// Entries is the number of files written into the archive.
	Entries int
	// Size is the archive size in bytes.
	Size int64
	// Digest is the canonical digest of the archive bytes.
	Digest digest.Digest
}

// writeCounter is an implementation of io.Writer
// that only records the number of bytes written.
type writeCounter struct {
	written int64
}

// Write implements the io.Writer interface.
func (wc *writeCounter) Write(p []byte) (int, error) {
	n := len(p)
	wc.written += int64(n)
	return n, nil
}

// Build archives every regular file under sourceDir into a zip archive at
// destPath, preserving paths relative to sourceDir. Entries are written in
// sorted path order with environment specific header data (timestamps,
// ownership) stripped, and file modes normalized to DefaultFileMode or
// ExeFileMode. A pre-existing archive at destPath is overwritten; the
// destination itself is never included when it lives inside sourceDir.
func Build(sourceDir, destPath string) (_ *Summary, err error) {
	if f, statErr := os.Stat(sourceDir); statErr != nil || !f.IsDir() {
		return nil, fmt.Errorf("invalid dir path: %s", sourceDir)
	}
	absDest, err := filepath.Abs(destPath)
	if err != nil {
		return nil, err
	}

	var members []string
	if err := filepath.Walk(sourceDir, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.Mode().IsRegular() {
			return nil
		}
		if abs, err := filepath.Abs(p); err == nil && abs == absDest {
			return nil
		}
		members = append(members, p)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to enumerate files in %s: %w", sourceDir, err)
	}
	sort.Strings(members)

	tf, err := os.CreateTemp(filepath.Split(absDest))
	if err != nil {
		return nil, err
	}
	tmpName := tf.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	d := intdigest.Canonical.Digester()
	sz := &writeCounter{}
	mw := io.MultiWriter(tf, d.Hash(), sz)

	zw := zip.NewWriter(mw)
	for _, p := range members {
		if err = writeMember(zw, sourceDir, p); err != nil {
			zw.Close()
			tf.Close()
			return nil, err
		}
	}
	if err = zw.Close(); err != nil {
		tf.Close()
		return nil, err
	}
	if err = tf.Close(); err != nil {
		return nil, err
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return nil, err
	}
	if err = os.Rename(tmpName, absDest); err != nil {
		return nil, err
	}

	return &Summary{
		Path:    absDest,
		Entries: len(members),
		Size:    sz.written,
		Digest:  d.Digest(),
	}, nil
}

// writeMember writes the file at path p into the archive under its
// slash-separated path relative to sourceDir, with a sanitized header.
func writeMember(zw *zip.Writer, sourceDir, p string) error {
	fi, err := os.Stat(p)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(sourceDir, p)
	if err != nil {
		return err
	}

	header := &zip.FileHeader{
		Name:   filepath.ToSlash(rel),
		Method: zip.Deflate,
	}
	// Zero modification time and normalized modes keep the archive bytes
	// purely content based.
	mode := DefaultFileMode
	if fi.Mode()&0o111 != 0 {
		mode = ExeFileMode
	}
	header.SetMode(mode)

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	f, err := os.Open(p)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, f); err != nil {
		f.Close()
		return fmt.Errorf("failed to archive %s: %w", p, err)
	}
	return f.Close()
}
