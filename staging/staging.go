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

// Package staging aggregates generated and signed build artifacts from
// their source directories into a single flat staging directory, applying
// the target repository's renaming rules on the way.
package staging

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// ErrRenameCollision is returned when two distinct source files resolve to
// the same staged name within a single aggregation run.
var ErrRenameCollision = errors.New("staged name collision")

// Source is one artifact source directory and the rename rule applied to
// its files.
type Source struct {
	// Dir is the source directory. A non-existing directory is silently
	// skipped; it represents an optional publication input.
	Dir string

	// Rule maps each file name in Dir to its staged name.
	Rule Rule
}

// Aggregate copies every file selected by the source rules into
// stagingDir under its staged name. Files are copied, never moved, so the
// source directories stay intact for re-runs. Files left in stagingDir by
// a previous run are overwritten; two distinct inputs resolving to the
// same staged name within this run fail with ErrRenameCollision.
func Aggregate(stagingDir, artifactID, version string, sources []Source) error {
	if err := os.MkdirAll(stagingDir, 0o750); err != nil {
		return fmt.Errorf("failed to create staging directory %s: %w", stagingDir, err)
	}

	staged := map[string]string{}
	for _, src := range sources {
		entries, err := os.ReadDir(src.Dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read source directory %s: %w", src.Dir, err)
		}

		for _, e := range entries {
			if !e.Type().IsRegular() {
				continue
			}
			name, ok := src.Rule.Rename(e.Name(), artifactID, version)
			if !ok {
				continue
			}

			origin := filepath.Join(src.Dir, e.Name())
			if prev, dup := staged[name]; dup {
				return fmt.Errorf("%s and %s both resolve to %q: %w", prev, origin, name, ErrRenameCollision)
			}
			staged[name] = origin

			dest, err := securejoin.SecureJoin(stagingDir, name)
			if err != nil {
				return fmt.Errorf("invalid staged name %q: %w", name, err)
			}
			if err := copyFile(origin, dest); err != nil {
				return err
			}
		}
	}
	return nil
}

// copyFile copies the contents of origin to dest, overwriting dest when
// it exists.
func copyFile(origin, dest string) (err error) {
	in, err := os.Open(origin)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", origin, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o640)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w", origin, dest, err)
	}
	return nil
}
