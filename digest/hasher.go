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

package digest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/opencontainers/go-digest"
)

// WriteDirectoryDigests computes the digest of every regular file under
// dir for each of the given algorithms, and writes a sidecar file per
// (file, algorithm) pair containing the lowercase hex digest with no
// trailing newline. Files that are themselves digest sidecars are
// skipped, so repeated invocations never hash previously written
// digests. Any unreadable file or failed write aborts the whole
// operation.
func WriteDirectoryDigests(dir string, algos []digest.Algorithm) error {
	if len(algos) == 0 {
		algos = []digest.Algorithm{Canonical}
	}

	if f, err := os.Stat(dir); err != nil || !f.IsDir() {
		return fmt.Errorf("invalid dir path: %s", dir)
	}

	var files []string
	if err := filepath.Walk(dir, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.Mode().IsRegular() {
			return nil
		}
		if IsDigestFile(fi.Name()) {
			return nil
		}
		files = append(files, p)
		return nil
	}); err != nil {
		return fmt.Errorf("failed to enumerate files in %s: %w", dir, err)
	}
	sort.Strings(files)

	for _, p := range files {
		for _, algo := range algos {
			d, err := fileDigest(p, algo)
			if err != nil {
				return err
			}
			sidecar := SidecarName(p, algo)
			if err := os.WriteFile(sidecar, []byte(d.Encoded()), 0o644); err != nil {
				return fmt.Errorf("failed to write digest file %s: %w", sidecar, err)
			}
		}
	}
	return nil
}

// fileDigest computes the digest of the file at path under the given
// algorithm.
func fileDigest(path string, algo digest.Algorithm) (digest.Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for hashing: %w", path, err)
	}
	defer f.Close()

	d := algo.Digester()
	if _, err := io.Copy(d.Hash(), f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return d.Digest(), nil
}
