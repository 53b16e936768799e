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

// Package testserver provides an HTTP test double for the publishing
// portal, recording every request it receives and answering with
// scripted responses.
package testserver

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
)

// Request is the recorded shape of a single request received by the
// PortalServer, including the first multipart part when present.
type Request struct {
	Method        string
	Path          string
	Query         url.Values
	Authorization string
	ContentType   string
	Body          []byte

	// Multipart part details; zero values when the request was not
	// multipart encoded.
	PartName        string
	PartFileName    string
	PartContentType string
	PartBody        []byte
}

// PortalServer is an HTTP test double for the publishing portal.
type PortalServer struct {
	server *httptest.Server

	mu       sync.Mutex
	requests []Request
	status   int
	body     []byte
}

// NewPortalServer returns an unstarted PortalServer answering every
// request with 200 and an empty JSON object until scripted otherwise.
func NewPortalServer() *PortalServer {
	return &PortalServer{
		status: http.StatusOK,
		body:   []byte(`{}`),
	}
}

// RespondWith scripts the status code and body of all subsequent
// responses.
func (s *PortalServer) RespondWith(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.body = []byte(body)
}

// Start starts the PortalServer.
func (s *PortalServer) Start() {
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
}

// Stop stops the PortalServer, if started.
func (s *PortalServer) Stop() {
	if s.server != nil {
		s.server.Close()
	}
}

// URL returns the address of the running server.
func (s *PortalServer) URL() string {
	return s.server.URL
}

// Requests returns a copy of all recorded requests.
func (s *PortalServer) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestCount returns the number of requests received so far.
func (s *PortalServer) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *PortalServer) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	rec := Request{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.Query(),
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
		Body:          body,
	}

	if mediaType, params, err := mime.ParseMediaType(rec.ContentType); err == nil && mediaType == "multipart/form-data" {
		mr := multipart.NewReader(bytes.NewReader(body), params["boundary"])
		if part, err := mr.NextPart(); err == nil {
			rec.PartName = part.FormName()
			rec.PartFileName = part.FileName()
			rec.PartContentType = part.Header.Get("Content-Type")
			rec.PartBody, _ = io.ReadAll(part)
		}
	}

	s.mu.Lock()
	s.requests = append(s.requests, rec)
	status := s.status
	respBody := s.body
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(respBody)
}
