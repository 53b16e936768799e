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
	"bytes"
	"encoding/json"
	"fmt"
)

// ResponseError is the decoded failure response of a portal operation.
type ResponseError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int
	// Message is the error message from the portal's error envelope, or
	// a synthesized message embedding the raw body when the envelope
	// could not be decoded.
	Message string
	// Body is the raw response body.
	Body string
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

// errorEnvelope is the portal's structured error payload.
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// decodeResponseError interprets a non-2xx response body. A body that is
// not a valid error envelope never fails the decode; instead an Unknown
// Error message carrying the raw body is synthesized so callers always
// see a message.
func decodeResponseError(statusCode int, raw []byte) *ResponseError {
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Error.Message == "" {
		return &ResponseError{
			StatusCode: statusCode,
			Message:    fmt.Sprintf("Unknown Error: %s", bytes.TrimSpace(raw)),
			Body:       string(raw),
		}
	}
	return &ResponseError{
		StatusCode: statusCode,
		Message:    env.Error.Message,
		Body:       string(raw),
	}
}
