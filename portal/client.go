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

// Package portal implements the publishing portal's HTTP contract:
// bundle upload, deployment status lookup and deployment retraction.
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	// PublishingTypeAutomatic releases the deployment without further
	// interaction once validation passes.
	PublishingTypeAutomatic = "AUTOMATIC"
	// PublishingTypeUserManaged parks the deployment for manual release.
	PublishingTypeUserManaged = "USER_MANAGED"

	// bundleFieldName is the multipart form field carrying the archive.
	bundleFieldName = "bundle"
	// bundleFileName is the file name the portal expects for the
	// uploaded archive part.
	bundleFileName = "upload.zip"
	// bundleContentType is the content type of the archive part.
	bundleContentType = "application/zip"
)

// Options configures a portal Client.
type Options struct {
	// UploadURL is the bundle upload endpoint.
	UploadURL string

	// StatusURL is the deployment status endpoint.
	StatusURL string

	// DeploymentURL is the deployment resource endpoint; the deployment
	// ID is appended as a path element for retraction.
	DeploymentURL string

	// Retries is the number of times transport failures and 5xx
	// responses are retried. Zero means single-shot.
	Retries int

	// Timeout bounds each HTTP request. Zero keeps the transport
	// default.
	Timeout time.Duration

	// Logger receives error and debug traces. Credential values never
	// appear in the output.
	Logger logr.Logger
}

// Client talks to the publishing portal.
type Client struct {
	httpClient *retryablehttp.Client
	opts       Options
}

// NewClient configures the retryable HTTP client used for all portal
// operations.
func NewClient(opts Options) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryWaitMin = 5 * time.Second
	httpClient.RetryWaitMax = 30 * time.Second
	httpClient.RetryMax = opts.Retries
	httpClient.Logger = newRetryLogger(opts.Logger)
	// Hand back the final 5xx response instead of a "giving up" error, so
	// the portal's error envelope can still be decoded.
	httpClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if opts.Timeout > 0 {
		httpClient.HTTPClient.Timeout = opts.Timeout
	}

	return &Client{
		httpClient: httpClient,
		opts:       opts,
	}
}

// Deployment is the portal's response to a successful upload. The body is
// kept opaque; only the deployment ID is interpreted.
type Deployment struct {
	// ID is the opaque deployment identifier.
	ID string
	// Raw is the verbatim response body.
	Raw []byte
}

// Pretty returns the response body as indented JSON, or the raw body when
// it is not valid JSON.
func (d *Deployment) Pretty() string {
	return prettyJSON(d.Raw)
}

// Status is the portal's response to a deployment status request.
type Status struct {
	// DeploymentID is the identifier the status was requested for.
	DeploymentID string
	// State is the portal's deployment state when present in the
	// response, e.g. "VALIDATING" or "PUBLISHED".
	State string
	// Raw is the verbatim response body.
	Raw []byte
}

// Pretty returns the response body as indented JSON, or the raw body when
// it is not valid JSON.
func (s *Status) Pretty() string {
	return prettyJSON(s.Raw)
}

// Upload publishes the archive at archivePath under the given coordinate.
// The archive is sent as a single multipart part named "bundle" with file
// name "upload.zip". The publishing type is normalized to upper case. On
// success the portal's deployment record is returned.
func (c *Client) Upload(ctx context.Context, coord Coordinate, publishingType, archivePath string, creds Credentials) (*Deployment, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if err := coord.Validate(); err != nil {
		return nil, err
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle archive: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	partHeader := make(textproto.MIMEHeader)
	partHeader.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, bundleFieldName, bundleFileName))
	partHeader.Set("Content-Type", bundleContentType)
	part, err := mw.CreatePart(partHeader)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("failed to read bundle archive: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	u, err := url.Parse(c.opts.UploadURL)
	if err != nil {
		return nil, fmt.Errorf("invalid upload URL: %w", err)
	}
	q := u.Query()
	q.Set("publishingType", strings.ToUpper(publishingType))
	q.Set("name", coord.Name())
	u.RawQuery = q.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, u.String(), body.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	raw, err := c.do(req, creds)
	if err != nil {
		return nil, err
	}
	return &Deployment{ID: deploymentID(raw), Raw: raw}, nil
}

// GetStatus queries the portal for the state of the given deployment.
func (c *Client) GetStatus(ctx context.Context, deploymentID string, creds Credentials) (*Status, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(deploymentID) == "" {
		return nil, fmt.Errorf("deployment ID must not be blank")
	}

	u, err := url.Parse(c.opts.StatusURL)
	if err != nil {
		return nil, fmt.Errorf("invalid status URL: %w", err)
	}
	q := u.Query()
	q.Set("id", deploymentID)
	u.RawQuery = q.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create status request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.do(req, creds)
	if err != nil {
		return nil, err
	}

	status := &Status{DeploymentID: deploymentID, Raw: raw}
	var payload struct {
		State string `json:"deploymentState"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		status.State = payload.State
	}
	return status, nil
}

// DropDeployment retracts the given deployment from the portal.
func (c *Client) DropDeployment(ctx context.Context, deploymentID string, creds Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(deploymentID) == "" {
		return fmt.Errorf("deployment ID must not be blank")
	}

	u := strings.TrimSuffix(c.opts.DeploymentURL, "/") + "/" + url.PathEscape(deploymentID)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create drop request: %w", err)
	}

	_, err = c.do(req, creds)
	return err
}

// do executes the request with the UserToken authorization header set and
// interprets the response envelope: 2xx returns the raw body, anything
// else a *ResponseError.
func (c *Client) do(req *retryablehttp.Request, creds Credentials) ([]byte, error) {
	req.Header.Set("Authorization", "UserToken "+creds.token())
	logRequest(c.opts.Logger, req.Request)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", req.URL.Redacted(), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, decodeResponseError(resp.StatusCode, raw)
	}
	return raw, nil
}

// deploymentID extracts the deployment identifier from an upload response
// body: a "deploymentId" field of a JSON object, a bare JSON string, or
// as a last resort the trimmed raw body.
func deploymentID(raw []byte) string {
	var obj struct {
		DeploymentID string `json:"deploymentId"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.DeploymentID != "" {
		return obj.DeploymentID
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// prettyJSON indents the given JSON document, falling back to the input
// verbatim when it does not parse.
func prettyJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
