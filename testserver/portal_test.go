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

package testserver

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"testing"

	. "github.com/onsi/gomega"
)

func TestPortalServer_recordsMultipart(t *testing.T) {
	g := NewWithT(t)

	srv := NewPortalServer()
	srv.Start()
	defer srv.Stop()
	srv.RespondWith(http.StatusCreated, `{"deploymentId":"abc"}`)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("bundle", "upload.zip")
	g.Expect(err).ToNot(HaveOccurred())
	_, err = part.Write([]byte("zip bytes"))
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(mw.Close()).To(Succeed())

	req, err := http.NewRequest(http.MethodPost, srv.URL()+"/upload?name=g:a:v", &body)
	g.Expect(err).ToNot(HaveOccurred())
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "UserToken dXNlcjpwYXNz")

	resp, err := http.DefaultClient.Do(req)
	g.Expect(err).ToNot(HaveOccurred())
	defer resp.Body.Close()

	g.Expect(resp.StatusCode).To(Equal(http.StatusCreated))
	respBody, err := io.ReadAll(resp.Body)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(string(respBody)).To(Equal(`{"deploymentId":"abc"}`))

	reqs := srv.Requests()
	g.Expect(reqs).To(HaveLen(1))
	g.Expect(reqs[0].Method).To(Equal(http.MethodPost))
	g.Expect(reqs[0].Path).To(Equal("/upload"))
	g.Expect(reqs[0].Query.Get("name")).To(Equal("g:a:v"))
	g.Expect(reqs[0].Authorization).To(Equal("UserToken dXNlcjpwYXNz"))
	g.Expect(reqs[0].PartName).To(Equal("bundle"))
	g.Expect(reqs[0].PartFileName).To(Equal("upload.zip"))
	g.Expect(string(reqs[0].PartBody)).To(Equal("zip bytes"))
}
