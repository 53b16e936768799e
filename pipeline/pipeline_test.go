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

package pipeline_test

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/bundlekit/publisher/pipeline"
	"github.com/bundlekit/publisher/portal"
	"github.com/bundlekit/publisher/signer"
)

var testCoord = portal.Coordinate{GroupID: "com.example", ArtifactID: "foo", Version: "1.0"}

var testCreds = portal.Credentials{Username: "user", Password: "pass"}

// fakeUploader records the upload it received and returns a fixed
// deployment ID.
type fakeUploader struct {
	calls       int
	archivePath string
	coord       portal.Coordinate
	publishing  string
	err         error
}

func (u *fakeUploader) Upload(_ context.Context, coord portal.Coordinate, publishingType, archivePath string, _ portal.Credentials) (*portal.Deployment, error) {
	u.calls++
	u.coord = coord
	u.publishing = publishingType
	u.archivePath = archivePath
	if u.err != nil {
		return nil, u.err
	}
	return &portal.Deployment{ID: "dep-123", Raw: []byte(`{"deploymentId":"dep-123"}`)}, nil
}

// fakeSigner writes a dummy detached signature next to the artifact.
var fakeSigner = signer.Func(func(path string) (string, error) {
	sig := path + ".asc"
	return sig, os.WriteFile(sig, []byte("sig of "+filepath.Base(path)), 0o640)
})

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("content of "+name), 0o640); err != nil {
			t.Fatalf("could not write file %q: %v", name, err)
		}
	}
}

func archiveNames(t *testing.T, path string) []string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("failed to open archive %q: %v", path, err)
	}
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

func newPublication(t *testing.T) pipeline.Publication {
	t.Helper()
	work := t.TempDir()
	return pipeline.Publication{
		Coordinate:     testCoord,
		Kind:           pipeline.KindLibrary,
		StagingDir:     filepath.Join(work, "staging"),
		BundlePath:     filepath.Join(work, "upload.zip"),
		PublishingType: portal.PublishingTypeUserManaged,
		Credentials:    testCreds,
	}
}

func TestRun(t *testing.T) {
	g := NewWithT(t)

	libsDir := t.TempDir()
	writeFiles(t, libsDir, "a.jar")
	pomDir := t.TempDir()
	writeFiles(t, pomDir, "pom-default.xml")

	pub := newPublication(t)
	uploader := &fakeUploader{}
	res, err := pipeline.Run(context.Background(), pub, pipeline.Deps{
		Generator: pipeline.StaticGenerator{LibsDir: libsDir, PomDir: pomDir},
		Signer:    fakeSigner,
		Uploader:  uploader,
	})
	g.Expect(err).ToNot(HaveOccurred())

	for _, stage := range pipeline.Order {
		g.Expect(res.StateOf(stage)).To(Equal(pipeline.StateCompleted), string(stage))
	}
	g.Expect(res.Deployment).ToNot(BeNil())
	g.Expect(res.Deployment.ID).To(Equal("dep-123"))

	g.Expect(uploader.calls).To(Equal(1))
	g.Expect(uploader.coord).To(Equal(testCoord))
	g.Expect(uploader.publishing).To(Equal(portal.PublishingTypeUserManaged))
	g.Expect(uploader.archivePath).To(Equal(pub.BundlePath))

	// Every staged artifact and signature has a sha256 sidecar, and the
	// archive contains exactly the staging directory's file set.
	g.Expect(archiveNames(t, pub.BundlePath)).To(ConsistOf(
		"a.jar", "a.jar.asc", "a.jar.sha256", "a.jar.asc.sha256",
		"foo-1.0.pom", "foo-1.0.pom.asc", "foo-1.0.pom.sha256", "foo-1.0.pom.asc.sha256",
	))
}

func TestRun_endToEndScenario(t *testing.T) {
	// Staging {a.jar, a.jar.asc} with algorithms [sha256] must yield the
	// four-file staging set and a four-entry archive.
	g := NewWithT(t)

	libsDir := t.TempDir()
	writeFiles(t, libsDir, "a.jar")
	pomDir := t.TempDir()

	pub := newPublication(t)
	_, err := pipeline.Run(context.Background(), pub, pipeline.Deps{
		Generator: pipeline.StaticGenerator{LibsDir: libsDir, PomDir: pomDir},
		Signer:    fakeSigner,
		Uploader:  &fakeUploader{},
	})
	g.Expect(err).ToNot(HaveOccurred())

	entries, err := os.ReadDir(pub.StagingDir)
	g.Expect(err).ToNot(HaveOccurred())
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	g.Expect(names).To(ConsistOf("a.jar", "a.jar.asc", "a.jar.sha256", "a.jar.asc.sha256"))
	g.Expect(archiveNames(t, pub.BundlePath)).To(HaveLen(4))
}

func TestRun_excludedArtifactsAreNeverSigned(t *testing.T) {
	g := NewWithT(t)

	libsDir := t.TempDir()
	writeFiles(t, libsDir, "foo-1.0.jar", "foo-1.0-plain.jar")
	pomDir := t.TempDir()
	writeFiles(t, pomDir, "pom-default.xml")

	pub := newPublication(t)
	_, err := pipeline.Run(context.Background(), pub, pipeline.Deps{
		Generator: pipeline.StaticGenerator{
			LibsDir: libsDir,
			PomDir:  pomDir,
			Exclude: []string{"*-plain.jar"},
		},
		Signer:   fakeSigner,
		Uploader: &fakeUploader{},
	})
	g.Expect(err).ToNot(HaveOccurred())

	// The excluded jar must leave no trace: no signature in the source
	// directory, and nothing derived from it in the bundle.
	g.Expect(filepath.Join(libsDir, "foo-1.0-plain.jar.asc")).ToNot(BeAnExistingFile())
	g.Expect(archiveNames(t, pub.BundlePath)).To(ConsistOf(
		"foo-1.0.jar", "foo-1.0.jar.asc", "foo-1.0.jar.sha256", "foo-1.0.jar.asc.sha256",
		"foo-1.0.pom", "foo-1.0.pom.asc", "foo-1.0.pom.sha256", "foo-1.0.pom.asc.sha256",
	))
}

func TestRun_versionCatalog(t *testing.T) {
	g := NewWithT(t)

	pomDir := t.TempDir()
	writeFiles(t, pomDir, "pom-default.xml", "module.json")
	catalogDir := t.TempDir()
	writeFiles(t, catalogDir, "myfile.versions.toml")

	pub := newPublication(t)
	pub.Kind = pipeline.KindVersionCatalog
	res, err := pipeline.Run(context.Background(), pub, pipeline.Deps{
		// Catalog publications have no libs directory at all.
		Generator: pipeline.StaticGenerator{PomDir: pomDir, CatalogDir: catalogDir},
		Signer:    fakeSigner,
		Uploader:  &fakeUploader{},
	})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(res.Deployment).ToNot(BeNil())

	g.Expect(archiveNames(t, pub.BundlePath)).To(ContainElements(
		"foo-1.0.toml", "foo-1.0.toml.asc",
		"foo-1.0.pom", "foo-1.0.module",
	))
}

func TestRun_signingFailureHaltsPipeline(t *testing.T) {
	g := NewWithT(t)

	libsDir := t.TempDir()
	writeFiles(t, libsDir, "a.jar")
	pomDir := t.TempDir()

	pub := newPublication(t)
	uploader := &fakeUploader{}
	res, err := pipeline.Run(context.Background(), pub, pipeline.Deps{
		Generator: pipeline.StaticGenerator{LibsDir: libsDir, PomDir: pomDir},
		Signer: signer.Func(func(string) (string, error) {
			return "", errors.New("no key available")
		}),
		Uploader: uploader,
	})
	g.Expect(err).To(HaveOccurred())
	g.Expect(err.Error()).To(ContainSubstring("stage sign-artifacts"))
	g.Expect(err.Error()).To(ContainSubstring("no key available"))

	g.Expect(res.StateOf(pipeline.StageGenerate)).To(Equal(pipeline.StateCompleted))
	g.Expect(res.StateOf(pipeline.StageSign)).To(Equal(pipeline.StateFailed))
	// No later stage may have started.
	g.Expect(res.StateOf(pipeline.StageAggregate)).To(Equal(pipeline.StatePending))
	g.Expect(res.StateOf(pipeline.StageUpload)).To(Equal(pipeline.StatePending))
	g.Expect(uploader.calls).To(BeZero())
	g.Expect(pub.StagingDir).ToNot(BeADirectory())
}

func TestRun_blankCredentialsFailFast(t *testing.T) {
	g := NewWithT(t)

	pub := newPublication(t)
	pub.Credentials = portal.Credentials{}
	uploader := &fakeUploader{}
	res, err := pipeline.Run(context.Background(), pub, pipeline.Deps{
		Generator: pipeline.StaticGenerator{LibsDir: t.TempDir(), PomDir: t.TempDir()},
		Signer:    fakeSigner,
		Uploader:  uploader,
	})
	g.Expect(err).To(MatchError(portal.ErrBlankCredentials))
	g.Expect(res.StateOf(pipeline.StageGenerate)).To(Equal(pipeline.StatePending))
	g.Expect(uploader.calls).To(BeZero())
}

func TestRun_uploadFailure(t *testing.T) {
	g := NewWithT(t)

	libsDir := t.TempDir()
	writeFiles(t, libsDir, "a.jar")
	pomDir := t.TempDir()

	pub := newPublication(t)
	uploader := &fakeUploader{err: &portal.ResponseError{StatusCode: 400, Message: "bad bundle"}}
	res, err := pipeline.Run(context.Background(), pub, pipeline.Deps{
		Generator: pipeline.StaticGenerator{LibsDir: libsDir, PomDir: pomDir},
		Signer:    fakeSigner,
		Uploader:  uploader,
	})
	g.Expect(err).To(HaveOccurred())
	g.Expect(err.Error()).To(ContainSubstring("stage upload"))

	var respErr *portal.ResponseError
	g.Expect(errors.As(err, &respErr)).To(BeTrue())
	g.Expect(respErr.Message).To(Equal("bad bundle"))

	g.Expect(res.StateOf(pipeline.StageArchive)).To(Equal(pipeline.StateCompleted))
	g.Expect(res.StateOf(pipeline.StageUpload)).To(Equal(pipeline.StateFailed))
}

func TestRun_isIdempotent(t *testing.T) {
	g := NewWithT(t)

	libsDir := t.TempDir()
	writeFiles(t, libsDir, "a.jar")
	pomDir := t.TempDir()
	writeFiles(t, pomDir, "pom-default.xml")

	pub := newPublication(t)
	deps := pipeline.Deps{
		Generator: pipeline.StaticGenerator{LibsDir: libsDir, PomDir: pomDir},
		Signer:    fakeSigner,
		Uploader:  &fakeUploader{},
	}

	_, err := pipeline.Run(context.Background(), pub, deps)
	g.Expect(err).ToNot(HaveOccurred())
	first := archiveNames(t, pub.BundlePath)

	// Re-running overwrites every output; the second bundle must not
	// accumulate digests of digests or stale files.
	_, err = pipeline.Run(context.Background(), pub, deps)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(archiveNames(t, pub.BundlePath)).To(ConsistOf(first))
}

func TestStaticGenerator_missingMandatoryDir(t *testing.T) {
	g := NewWithT(t)

	pub := newPublication(t)
	_, err := pipeline.StaticGenerator{
		LibsDir: filepath.Join(t.TempDir(), "missing"),
		PomDir:  t.TempDir(),
	}.Generate(context.Background(), pub)
	g.Expect(err).To(HaveOccurred())
	g.Expect(err.Error()).To(ContainSubstring("does not exist"))
}
