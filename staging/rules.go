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

package staging

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

const (
	// SignatureExt is the extension of detached signature files. A
	// signature always follows its base file's rename with the extension
	// re-appended.
	SignatureExt = ".asc"

	pomFileName    = "pom-default.xml"
	moduleFileName = "module.json"
	catalogSuffix  = "versions.toml"
)

// Rule maps an original artifact file name to its staged name. The second
// return value reports whether the file is published at all; excluded
// files return false. A Rule must be a pure function of the file name,
// artifactId and version.
type Rule interface {
	Rename(name, artifactID, version string) (string, bool)
}

// splitSignature strips the detached signature extension from the name,
// reporting whether it was present.
func splitSignature(name string) (string, bool) {
	if strings.HasSuffix(name, SignatureExt) {
		return strings.TrimSuffix(name, SignatureExt), true
	}
	return name, false
}

// LibsRule stages binary artifacts under their original names, filtering
// out files matching the configured exclusion patterns. The patterns use
// gitignore syntax and form an explicit exclusion list for intermediate
// build outputs that must never be published (e.g. "*-plain.jar").
type LibsRule struct {
	matcher gitignore.Matcher
}

// NewLibsRule returns a LibsRule excluding the given gitignore patterns.
func NewLibsRule(exclude []string) LibsRule {
	ps := make([]gitignore.Pattern, 0, len(exclude))
	for _, p := range exclude {
		ps = append(ps, gitignore.ParsePattern(p, nil))
	}
	return LibsRule{matcher: gitignore.NewMatcher(ps)}
}

// Rename implements Rule. Exclusion patterns are matched against the
// base file name, so a detached signature is excluded whenever its
// artifact is.
func (r LibsRule) Rename(name, _, _ string) (string, bool) {
	base, _ := splitSignature(name)
	if r.matcher != nil && r.matcher.Match([]string{base}, false) {
		return "", false
	}
	return name, true
}

// PomRule stages Maven metadata with the repository's fixed substitutions:
// "pom-default.xml" becomes "{artifactId}-{version}.pom" and "module.json"
// becomes "{artifactId}-{version}.module". Any other file keeps its
// original extension under the "{artifactId}-{version}" stem.
type PomRule struct{}

// Rename implements Rule.
func (PomRule) Rename(name, artifactID, version string) (string, bool) {
	base, sig := splitSignature(name)

	var staged string
	switch base {
	case pomFileName:
		staged = fmt.Sprintf("%s-%s.pom", artifactID, version)
	case moduleFileName:
		staged = fmt.Sprintf("%s-%s.module", artifactID, version)
	default:
		ext := strings.TrimPrefix(filepath.Ext(base), ".")
		if ext == "" {
			staged = fmt.Sprintf("%s-%s", artifactID, version)
		} else {
			staged = fmt.Sprintf("%s-%s.%s", artifactID, version, ext)
		}
	}

	if sig {
		staged += SignatureExt
	}
	return staged, true
}

// CatalogRule stages Gradle version catalogs: files ending in
// "versions.toml" become "{artifactId}-{version}.toml", other files pass
// through unchanged.
type CatalogRule struct{}

// Rename implements Rule.
func (CatalogRule) Rename(name, artifactID, version string) (string, bool) {
	base, sig := splitSignature(name)

	staged := base
	if strings.HasSuffix(base, catalogSuffix) {
		staged = fmt.Sprintf("%s-%s.toml", artifactID, version)
	}

	if sig {
		staged += SignatureExt
	}
	return staged, true
}
