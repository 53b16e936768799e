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

// Package pipeline coordinates the strictly ordered publication sequence:
// generate artifacts, sign them, aggregate and rename into a staging
// directory, write digest sidecars, archive the staging directory, and
// upload the bundle to the publishing portal. Every stage reads the
// filesystem state left by its predecessor; a failing stage halts the
// run.
package pipeline

import (
	"context"

	"github.com/go-logr/logr"
	godigest "github.com/opencontainers/go-digest"

	"github.com/bundlekit/publisher/portal"
	"github.com/bundlekit/publisher/staging"
)

// Kind is the flavor of a publishable unit. It alters which generation
// inputs are mandatory, never the stage ordering.
type Kind string

const (
	// KindLibrary is an ordinary library publication with binary
	// artifacts.
	KindLibrary Kind = "library"
	// KindVersionCatalog is a dependency declaration publication; it has
	// no binary artifacts.
	KindVersionCatalog Kind = "version-catalog"
)

// Publication is the complete configuration of one pipeline run. It is
// passed by value into every stage; there is no shared mutable registry.
type Publication struct {
	// Coordinate identifies the publishable unit.
	Coordinate portal.Coordinate

	// Kind selects the publication flavor.
	Kind Kind

	// Algorithms are the digest algorithms applied to every staged file.
	// Empty means the canonical default.
	Algorithms []godigest.Algorithm

	// StagingDir is recreated fresh at aggregation time and owns the
	// renamed artifact copies, signatures and digest sidecars.
	StagingDir string

	// BundlePath is where the zip bundle is written.
	BundlePath string

	// PublishingType is the portal's post-upload release policy.
	PublishingType string

	// Credentials authenticate the upload.
	Credentials portal.Credentials
}

// Generator produces or locates the raw build artifacts and returns the
// source directories the later stages consume. Implementations typically
// wrap the host build's outputs.
type Generator interface {
	Generate(ctx context.Context, pub Publication) ([]staging.Source, error)
}

// Signer is the external signing capability: it produces a detached
// signature for the file at path and returns the signature file's path.
type Signer interface {
	Sign(path string) (string, error)
}

// Uploader publishes a bundle archive. *portal.Client satisfies it.
type Uploader interface {
	Upload(ctx context.Context, coord portal.Coordinate, publishingType, archivePath string, creds portal.Credentials) (*portal.Deployment, error)
}

// Deps are the capabilities injected into a pipeline run.
type Deps struct {
	Generator Generator
	Signer    Signer
	Uploader  Uploader
	Log       logr.Logger
}
