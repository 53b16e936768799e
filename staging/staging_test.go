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

package staging_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/bundlekit/publisher/staging"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("content of "+name), 0o640); err != nil {
			t.Fatalf("could not write file %q: %v", name, err)
		}
	}
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("could not read dir %q: %v", dir, err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestPomRule_Rename(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "pom-default.xml", want: "foo-1.0.pom"},
		{name: "pom-default.xml.asc", want: "foo-1.0.pom.asc"},
		{name: "module.json", want: "foo-1.0.module"},
		{name: "module.json.asc", want: "foo-1.0.module.asc"},
		{name: "extra-metadata.xml", want: "foo-1.0.xml"},
		{name: "extra-metadata.xml.asc", want: "foo-1.0.xml.asc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			got, ok := staging.PomRule{}.Rename(tt.name, "foo", "1.0")
			g.Expect(ok).To(BeTrue())
			g.Expect(got).To(Equal(tt.want))
		})
	}
}

func TestCatalogRule_Rename(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "myfile.versions.toml", want: "foo-1.0.toml"},
		{name: "myfile.versions.toml.asc", want: "foo-1.0.toml.asc"},
		{name: "versions.toml", want: "foo-1.0.toml"},
		{name: "other.txt", want: "other.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			got, ok := staging.CatalogRule{}.Rename(tt.name, "foo", "1.0")
			g.Expect(ok).To(BeTrue())
			g.Expect(got).To(Equal(tt.want))
		})
	}
}

func TestLibsRule_Rename(t *testing.T) {
	tests := []struct {
		name    string
		exclude []string
		want    string
		wantOK  bool
	}{
		{name: "foo-1.0.jar", want: "foo-1.0.jar", wantOK: true},
		{name: "foo-1.0-plain.jar", exclude: []string{"*-plain.jar"}, wantOK: false},
		{name: "foo-1.0.jar", exclude: []string{"*-plain.jar"}, want: "foo-1.0.jar", wantOK: true},
		{name: "foo-1.0-plain.jar.asc", exclude: []string{"*-plain.jar*"}, wantOK: false},
		// A signature is excluded whenever its artifact is, without the
		// pattern having to cover the signature extension.
		{name: "foo-1.0-plain.jar.asc", exclude: []string{"*-plain.jar"}, wantOK: false},
		{name: "foo-1.0.jar.asc", exclude: []string{"*-plain.jar"}, want: "foo-1.0.jar.asc", wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			got, ok := staging.NewLibsRule(tt.exclude).Rename(tt.name, "foo", "1.0")
			g.Expect(ok).To(Equal(tt.wantOK))
			if tt.wantOK {
				g.Expect(got).To(Equal(tt.want))
			}
		})
	}
}

func TestAggregate(t *testing.T) {
	g := NewWithT(t)

	libsDir := t.TempDir()
	writeFiles(t, libsDir, "foo-1.0.jar", "foo-1.0.jar.asc", "foo-1.0-plain.jar", "foo-1.0-plain.jar.asc")

	pomDir := t.TempDir()
	writeFiles(t, pomDir, "pom-default.xml", "pom-default.xml.asc", "module.json", "module.json.asc")

	stagingDir := filepath.Join(t.TempDir(), "staging")
	sources := []staging.Source{
		{Dir: libsDir, Rule: staging.NewLibsRule([]string{"*-plain.jar"})},
		{Dir: pomDir, Rule: staging.PomRule{}},
		// Optional catalog source that does not exist.
		{Dir: filepath.Join(t.TempDir(), "missing"), Rule: staging.CatalogRule{}},
	}

	g.Expect(staging.Aggregate(stagingDir, "foo", "1.0", sources)).To(Succeed())
	g.Expect(dirNames(t, stagingDir)).To(ConsistOf(
		"foo-1.0.jar", "foo-1.0.jar.asc",
		"foo-1.0.pom", "foo-1.0.pom.asc",
		"foo-1.0.module", "foo-1.0.module.asc",
	))

	// Copies, not moves: the source files stay put.
	g.Expect(dirNames(t, libsDir)).To(HaveLen(3))
	g.Expect(dirNames(t, pomDir)).To(HaveLen(4))

	// Staged bytes are identical to the origin bytes.
	got, err := os.ReadFile(filepath.Join(stagingDir, "foo-1.0.pom"))
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(string(got)).To(Equal("content of pom-default.xml"))
}

func TestAggregate_renameCollision(t *testing.T) {
	g := NewWithT(t)

	pomDir := t.TempDir()
	// Two distinct files with the same extension both resolve to
	// "foo-1.0.xml".
	writeFiles(t, pomDir, "extra-one.xml", "extra-two.xml")

	stagingDir := filepath.Join(t.TempDir(), "staging")
	err := staging.Aggregate(stagingDir, "foo", "1.0", []staging.Source{
		{Dir: pomDir, Rule: staging.PomRule{}},
	})
	g.Expect(err).To(HaveOccurred())
	g.Expect(err).To(MatchError(staging.ErrRenameCollision))
}

func TestAggregate_overwritesStaleFiles(t *testing.T) {
	g := NewWithT(t)

	stagingDir := t.TempDir()
	g.Expect(os.WriteFile(filepath.Join(stagingDir, "foo-1.0.pom"), []byte("stale"), 0o640)).To(Succeed())

	pomDir := t.TempDir()
	writeFiles(t, pomDir, "pom-default.xml")

	g.Expect(staging.Aggregate(stagingDir, "foo", "1.0", []staging.Source{
		{Dir: pomDir, Rule: staging.PomRule{}},
	})).To(Succeed())

	got, err := os.ReadFile(filepath.Join(stagingDir, "foo-1.0.pom"))
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(string(got)).To(Equal("content of pom-default.xml"))
}

func TestAggregate_skipsDirectories(t *testing.T) {
	g := NewWithT(t)

	libsDir := t.TempDir()
	writeFiles(t, libsDir, "foo-1.0.jar")
	g.Expect(os.MkdirAll(filepath.Join(libsDir, "tmp"), 0o750)).To(Succeed())

	stagingDir := filepath.Join(t.TempDir(), "staging")
	g.Expect(staging.Aggregate(stagingDir, "foo", "1.0", []staging.Source{
		{Dir: libsDir, Rule: staging.NewLibsRule(nil)},
	})).To(Succeed())
	g.Expect(dirNames(t, stagingDir)).To(ConsistOf("foo-1.0.jar"))
}
