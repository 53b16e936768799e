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

// Package signer provides concrete implementations of the pipeline's
// signing capability.
package signer

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// Func adapts a plain function to the signing capability.
type Func func(path string) (string, error)

// Sign calls f.
func (f Func) Sign(path string) (string, error) {
	return f(path)
}

// GPG signs files by shelling out to the gpg binary, producing detached
// armored signatures.
type GPG struct {
	// Bin is the gpg binary. Defaults to "gpg".
	Bin string

	// KeyID selects the signing key. Empty uses gpg's default key.
	KeyID string

	// HomeDir overrides the gpg home directory when set.
	HomeDir string
}

// Sign produces a detached armored signature for the file at path and
// returns the signature file's path.
func (g GPG) Sign(path string) (string, error) {
	bin := g.Bin
	if bin == "" {
		bin = "gpg"
	}

	sig := path + ".asc"
	args := []string{"--batch", "--yes", "--armor", "--detach-sign", "--output", sig}
	if g.KeyID != "" {
		args = append(args, "--local-user", g.KeyID)
	}
	if g.HomeDir != "" {
		args = append(args, "--homedir", g.HomeDir)
	}
	args = append(args, path)

	cmd := exec.Command(bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("gpg signing of %s failed: %s: %w", path, strings.TrimSpace(stderr.String()), err)
	}
	return sig, nil
}
