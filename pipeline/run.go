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
	"path/filepath"

	"github.com/bundlekit/publisher/bundle"
	"github.com/bundlekit/publisher/digest"
	"github.com/bundlekit/publisher/staging"
)

// Run executes the pipeline stages in their fixed order, gating each
// stage on the completion of its predecessor. The first stage error halts
// the run; the returned Result still carries the per-stage states.
func Run(ctx context.Context, pub Publication, deps Deps) (*Result, error) {
	res := newResult()

	// Preconditions fail before any I/O is performed.
	if err := validate(pub, deps); err != nil {
		return res, err
	}

	var sources []staging.Source
	steps := []struct {
		stage Stage
		fn    func(context.Context) error
	}{
		{StageGenerate, func(ctx context.Context) (err error) {
			sources, err = deps.Generator.Generate(ctx, pub)
			if err == nil && len(sources) == 0 {
				err = errors.New("generator returned no artifact sources")
			}
			return err
		}},
		{StageSign, func(_ context.Context) error {
			return signSources(deps.Signer, pub, sources)
		}},
		{StageAggregate, func(_ context.Context) error {
			// The staging directory is owned by this run: recreate it
			// so no file of a previous run leaks into the bundle.
			if err := os.RemoveAll(pub.StagingDir); err != nil {
				return err
			}
			return staging.Aggregate(pub.StagingDir, pub.Coordinate.ArtifactID, pub.Coordinate.Version, sources)
		}},
		{StageHash, func(_ context.Context) error {
			return digest.WriteDirectoryDigests(pub.StagingDir, pub.Algorithms)
		}},
		{StageArchive, func(_ context.Context) error {
			sum, err := bundle.Build(pub.StagingDir, pub.BundlePath)
			if err != nil {
				return err
			}
			deps.Log.Info("bundle archive created",
				"path", sum.Path, "entries", sum.Entries, "size", sum.Size, "digest", sum.Digest)
			return nil
		}},
		{StageUpload, func(ctx context.Context) error {
			dep, err := deps.Uploader.Upload(ctx, pub.Coordinate, pub.PublishingType, pub.BundlePath, pub.Credentials)
			if err != nil {
				return err
			}
			res.Deployment = dep
			return nil
		}},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := res.transition(step.stage, StatePending, StateRunning); err != nil {
			return res, err
		}
		deps.Log.V(1).Info("stage started", "stage", step.stage)

		if err := step.fn(ctx); err != nil {
			if terr := res.transition(step.stage, StateRunning, StateFailed); terr != nil {
				return res, terr
			}
			return res, fmt.Errorf("stage %s: %w", step.stage, err)
		}

		if err := res.transition(step.stage, StateRunning, StateCompleted); err != nil {
			return res, err
		}
		deps.Log.V(1).Info("stage completed", "stage", step.stage)
	}

	deps.Log.Info("publication uploaded",
		"name", pub.Coordinate.Name(), "deploymentID", res.Deployment.ID)
	return res, nil
}

// validate checks the run's preconditions: complete coordinate, non-blank
// credentials, staging and bundle paths, and all injected capabilities.
func validate(pub Publication, deps Deps) error {
	if err := pub.Coordinate.Validate(); err != nil {
		return err
	}
	if err := pub.Credentials.Validate(); err != nil {
		return err
	}
	if pub.StagingDir == "" {
		return errors.New("staging directory is required")
	}
	if pub.BundlePath == "" {
		return errors.New("bundle path is required")
	}
	if deps.Generator == nil || deps.Signer == nil || deps.Uploader == nil {
		return errors.New("generator, signer and uploader are all required")
	}
	return nil
}

// signSources produces a detached signature for every publishable
// artifact in the given sources, before aggregation renames them.
// Artifacts the source's rule excludes from staging are not signed, so
// no orphan signature for an unpublished file is ever produced. A
// signature file the signer claims to have written but which does not
// exist is an error.
func signSources(signer Signer, pub Publication, sources []staging.Source) error {
	for _, src := range sources {
		entries, err := os.ReadDir(src.Dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("failed to read source directory %s: %w", src.Dir, err)
		}
		for _, e := range entries {
			if !e.Type().IsRegular() {
				continue
			}
			name := e.Name()
			if filepath.Ext(name) == staging.SignatureExt || digest.IsDigestFile(name) {
				continue
			}
			if _, ok := src.Rule.Rename(name, pub.Coordinate.ArtifactID, pub.Coordinate.Version); !ok {
				continue
			}

			path := filepath.Join(src.Dir, name)
			sig, err := signer.Sign(path)
			if err != nil {
				return fmt.Errorf("failed to sign %s: %w", path, err)
			}
			if fi, err := os.Stat(sig); err != nil || !fi.Mode().IsRegular() {
				return fmt.Errorf("signer reported %s but no signature file exists", sig)
			}
		}
	}
	return nil
}
