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

// Package config carries the flag- and environment-backed configuration
// of the publisher.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/bundlekit/publisher/portal"
)

// Options contains configuration settings for the publisher.
type Options struct {
	// PortalURL is the base URL of the publishing portal; the upload,
	// status and deployment endpoints are derived from it.
	PortalURL string

	// PublishingType is the portal's post-upload release policy, one of
	// "AUTOMATIC" or "USER_MANAGED" (case-insensitive).
	PublishingType string

	// DigestAlgos are the digest algorithm names applied to every staged
	// file.
	DigestAlgos []string

	// StagingDir is the directory the renamed artifacts, signatures and
	// digests are staged in. Empty means a fresh temporary directory.
	StagingDir string

	// BundlePath is where the bundle archive is written. Empty derives
	// "{artifactId}-{version}-bundle.zip" in the working directory.
	BundlePath string

	// Retries is the number of times transport failures and 5xx
	// responses are retried. Zero means single-shot.
	Retries int

	// Timeout bounds each portal request.
	Timeout time.Duration

	// Username and Password authenticate against the portal. Usually
	// supplied through the environment; the values are never logged.
	Username string
	Password string
}

// Validate fails fast on settings that would otherwise only surface
// mid-pipeline.
func (o *Options) Validate() error {
	if strings.TrimSpace(o.PortalURL) == "" {
		return fmt.Errorf("a portal URL is required")
	}
	switch strings.ToUpper(o.PublishingType) {
	case portal.PublishingTypeAutomatic, portal.PublishingTypeUserManaged:
	default:
		return fmt.Errorf("invalid publishing type %q, must be one of %s or %s",
			o.PublishingType, portal.PublishingTypeAutomatic, portal.PublishingTypeUserManaged)
	}
	if len(o.DigestAlgos) == 0 {
		return fmt.Errorf("at least one digest algorithm is required")
	}
	return nil
}

// Credentials returns the configured portal credentials.
func (o *Options) Credentials() portal.Credentials {
	return portal.Credentials{Username: o.Username, Password: o.Password}
}

// UploadURL returns the derived bundle upload endpoint.
func (o *Options) UploadURL() string {
	return strings.TrimSuffix(o.PortalURL, "/") + "/api/v1/publisher/upload"
}

// StatusURL returns the derived deployment status endpoint.
func (o *Options) StatusURL() string {
	return strings.TrimSuffix(o.PortalURL, "/") + "/api/v1/publisher/status"
}

// DeploymentURL returns the derived deployment resource endpoint.
func (o *Options) DeploymentURL() string {
	return strings.TrimSuffix(o.PortalURL, "/") + "/api/v1/publisher/deployment"
}

// ClientOptions assembles the portal client configuration.
func (o *Options) ClientOptions(log logr.Logger) portal.Options {
	return portal.Options{
		UploadURL:     o.UploadURL(),
		StatusURL:     o.StatusURL(),
		DeploymentURL: o.DeploymentURL(),
		Retries:       o.Retries,
		Timeout:       o.Timeout,
		Logger:        log,
	}
}
