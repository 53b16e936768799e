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
	"crypto"
	_ "crypto/md5"
	_ "crypto/sha1"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/opencontainers/go-digest"
	_ "github.com/opencontainers/go-digest/blake3"
)

const (
	// SHA1 is generally considered weak for new cryptographic use, but
	// Maven-style repositories require a .sha1 sidecar for every
	// published file.
	SHA1 = digest.Algorithm("sha1")

	// MD5 is kept for the same repository compatibility reason as SHA1.
	MD5 = digest.Algorithm("md5")
)

// Canonical is the default digest algorithm used when none is configured.
const Canonical = digest.SHA256

func init() {
	digest.RegisterAlgorithm(SHA1, crypto.SHA1)
	digest.RegisterAlgorithm(MD5, crypto.MD5)
}

// AlgorithmForName returns the digest.Algorithm for the provided name, or
// an error of type digest.ErrDigestUnsupported when the algorithm is not
// available.
func AlgorithmForName(name string) (digest.Algorithm, error) {
	a := digest.Algorithm(strings.ToLower(name))
	if !a.Available() {
		return "", fmt.Errorf("unavailable digest algorithm %q: %w", name, digest.ErrDigestUnsupported)
	}
	return a, nil
}

// AlgorithmsForNames maps the provided names to their digest.Algorithm
// equivalents, failing on the first unavailable name.
func AlgorithmsForNames(names []string) ([]digest.Algorithm, error) {
	algos := make([]digest.Algorithm, 0, len(names))
	for _, name := range names {
		a, err := AlgorithmForName(name)
		if err != nil {
			return nil, err
		}
		algos = append(algos, a)
	}
	return algos, nil
}

// SidecarName returns the name of the digest sidecar file for the given
// file name and algorithm, e.g. "foo-1.0.pom" and sha256 yield
// "foo-1.0.pom.sha256".
func SidecarName(name string, algo digest.Algorithm) string {
	return name + "." + algo.String()
}

// IsDigestFile returns whether the file name identifies a digest sidecar,
// i.e. its extension names an available digest algorithm.
func IsDigestFile(name string) bool {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		return false
	}
	return digest.Algorithm(strings.ToLower(ext)).Available()
}
