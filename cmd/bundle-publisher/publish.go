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

package main

import (
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"

	"github.com/bundlekit/publisher/digest"
	"github.com/bundlekit/publisher/pipeline"
	"github.com/bundlekit/publisher/portal"
	"github.com/bundlekit/publisher/signer"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Sign, aggregate, checksum and archive the build artifacts, then upload the bundle",
	RunE:  runPublish,
}

var publishArgs struct {
	group      string
	artifact   string
	version    string
	kind       string
	libsDir    string
	pomDir     string
	catalogDir string
	exclude    []string
	gpgBin     string
	gpgKeyID   string
	gpgHomeDir string
}

func init() {
	publishCmd.Flags().StringVar(&publishArgs.group, "group", "", "The group ID of the publication.")
	publishCmd.Flags().StringVar(&publishArgs.artifact, "artifact", "", "The artifact ID of the publication.")
	publishCmd.Flags().StringVar(&publishArgs.version, "version", "", "The version of the publication.")
	publishCmd.Flags().StringVar(&publishArgs.kind, "kind", string(pipeline.KindLibrary),
		"The publication kind, 'library' or 'version-catalog'.")
	publishCmd.Flags().StringVar(&publishArgs.libsDir, "libs-dir", "",
		"The directory holding the binary artifacts. Required for library publications.")
	publishCmd.Flags().StringVar(&publishArgs.pomDir, "pom-dir", "",
		"The directory holding the POM and module metadata.")
	publishCmd.Flags().StringVar(&publishArgs.catalogDir, "catalog-dir", "",
		"The directory holding the version catalog files.")
	publishCmd.Flags().StringSliceVar(&publishArgs.exclude, "exclude", nil,
		"Gitignore patterns for binary artifacts that must never be published, e.g. '*-plain.jar'.")
	publishCmd.Flags().StringVar(&publishArgs.gpgBin, "gpg-bin", "", "The gpg binary used for signing.")
	publishCmd.Flags().StringVar(&publishArgs.gpgKeyID, "gpg-key-id", "", "The gpg key used for signing.")
	publishCmd.Flags().StringVar(&publishArgs.gpgHomeDir, "gpg-home-dir", "", "The gpg home directory.")

	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Credentials().Validate(); err != nil {
		return err
	}

	coord := portal.Coordinate{
		GroupID:    publishArgs.group,
		ArtifactID: publishArgs.artifact,
		Version:    publishArgs.version,
	}
	if err := coord.Validate(); err != nil {
		return err
	}
	if _, err := semver.NewVersion(coord.Version); err != nil {
		log.Info("version is not a semantic version, the portal may reject it", "version", coord.Version)
	}

	kind := pipeline.Kind(publishArgs.kind)
	switch kind {
	case pipeline.KindLibrary, pipeline.KindVersionCatalog:
	default:
		return fmt.Errorf("invalid publication kind %q, must be %q or %q",
			publishArgs.kind, pipeline.KindLibrary, pipeline.KindVersionCatalog)
	}

	algos, err := digest.AlgorithmsForNames(cfg.DigestAlgos)
	if err != nil {
		return err
	}

	stagingDir := cfg.StagingDir
	if stagingDir == "" {
		if stagingDir, err = os.MkdirTemp("", "bundle-staging-"); err != nil {
			return fmt.Errorf("failed to create staging directory: %w", err)
		}
		defer os.RemoveAll(stagingDir)
	}
	bundlePath := cfg.BundlePath
	if bundlePath == "" {
		bundlePath = fmt.Sprintf("%s-%s-bundle.zip", coord.ArtifactID, coord.Version)
	}

	pub := pipeline.Publication{
		Coordinate:     coord,
		Kind:           kind,
		Algorithms:     algos,
		StagingDir:     stagingDir,
		BundlePath:     bundlePath,
		PublishingType: cfg.PublishingType,
		Credentials:    cfg.Credentials(),
	}
	deps := pipeline.Deps{
		Generator: pipeline.StaticGenerator{
			LibsDir:    publishArgs.libsDir,
			PomDir:     publishArgs.pomDir,
			CatalogDir: publishArgs.catalogDir,
			Exclude:    publishArgs.exclude,
		},
		Signer: signer.GPG{
			Bin:     publishArgs.gpgBin,
			KeyID:   publishArgs.gpgKeyID,
			HomeDir: publishArgs.gpgHomeDir,
		},
		Uploader: portal.NewClient(cfg.ClientOptions(log)),
		Log:      log,
	}

	res, err := pipeline.Run(cmd.Context(), pub, deps)
	if err != nil {
		return err
	}

	fmt.Println(res.Deployment.Pretty())
	return nil
}
