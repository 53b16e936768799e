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

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/bundlekit/publisher/staging"
)

// StaticGenerator serves pre-built artifact directories produced by an
// external build. It performs no generation of its own: it validates that
// the directories mandatory for the publication kind exist and maps each
// one to its staging rule.
type StaticGenerator struct {
	// LibsDir holds the binary artifacts. Mandatory for library
	// publications; unused for version catalogs.
	LibsDir string

	// PomDir holds the POM and module metadata. Always mandatory.
	PomDir string

	// CatalogDir holds the version catalog files. Mandatory for version
	// catalog publications, optional otherwise.
	CatalogDir string

	// Exclude lists gitignore patterns for binary artifacts that must
	// never be published, e.g. "*-plain.jar".
	Exclude []string
}

// Generate implements Generator.
func (g StaticGenerator) Generate(_ context.Context, pub Publication) ([]staging.Source, error) {
	var sources []staging.Source

	if pub.Kind != KindVersionCatalog {
		if g.LibsDir == "" {
			return nil, errors.New("library publications require a libs directory")
		}
		if err := requireDir(g.LibsDir); err != nil {
			return nil, err
		}
		sources = append(sources, staging.Source{Dir: g.LibsDir, Rule: staging.NewLibsRule(g.Exclude)})
	}

	if g.PomDir == "" {
		return nil, errors.New("a pom directory is required")
	}
	if err := requireDir(g.PomDir); err != nil {
		return nil, err
	}
	sources = append(sources, staging.Source{Dir: g.PomDir, Rule: staging.PomRule{}})

	if pub.Kind == KindVersionCatalog && g.CatalogDir == "" {
		return nil, errors.New("version catalog publications require a catalog directory")
	}
	if g.CatalogDir != "" {
		sources = append(sources, staging.Source{Dir: g.CatalogDir, Rule: staging.CatalogRule{}})
	}

	return sources, nil
}

func requireDir(dir string) error {
	fi, err := os.Stat(dir)
	if err != nil || !fi.IsDir() {
		return fmt.Errorf("required artifact directory %s does not exist", dir)
	}
	return nil
}
