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

package portal

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrBlankCredentials is returned when a remote operation is attempted
// with an empty username or password.
var ErrBlankCredentials = errors.New("username and password must not be blank")

// Coordinate identifies a publishable unit by its group, artifact and
// version triple. It is immutable for the duration of a pipeline run.
type Coordinate struct {
	GroupID    string
	ArtifactID string
	Version    string
}

// Name returns the portal's "group:artifact:version" notation.
func (c Coordinate) Name() string {
	return fmt.Sprintf("%s:%s:%s", c.GroupID, c.ArtifactID, c.Version)
}

// Validate returns an error when any part of the coordinate is blank.
func (c Coordinate) Validate() error {
	if strings.TrimSpace(c.GroupID) == "" ||
		strings.TrimSpace(c.ArtifactID) == "" ||
		strings.TrimSpace(c.Version) == "" {
		return fmt.Errorf("incomplete coordinate %q: group, artifact and version are all required", c.Name())
	}
	return nil
}

// Credentials authenticate requests against the publishing portal. The
// values are never logged.
type Credentials struct {
	Username string
	Password string
}

// Validate fails fast on blank credentials, before any network call is
// made.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Username) == "" || strings.TrimSpace(c.Password) == "" {
		return ErrBlankCredentials
	}
	return nil
}

// token returns the UserToken header value for the credentials.
func (c Credentials) token() string {
	return base64.StdEncoding.EncodeToString([]byte(c.Username + ":" + c.Password))
}
