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
	"net/http"
	"sort"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-retryablehttp"
)

// newRetryLogger adapts log to the leveled interface the retrying HTTP
// client expects. Retry chatter below error level is discarded; only
// request failures surface, on the logger's info stream.
func newRetryLogger(log logr.Logger) retryablehttp.LeveledLogger {
	return retryLogger{log: log}
}

type retryLogger struct {
	log logr.Logger
}

func (l retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Info(msg, keysAndValues...)
}

// The lower levels are intentionally silent: per-attempt messages add
// nothing once the final response or error is reported by the caller.

func (l retryLogger) Warn(string, ...interface{}) {}

func (l retryLogger) Info(string, ...interface{}) {}

func (l retryLogger) Debug(string, ...interface{}) {}

// logRequest traces the outgoing request at debug verbosity. Only header
// names are recorded; header values can carry credentials and must never
// appear in diagnostic output.
func logRequest(log logr.Logger, req *http.Request) {
	if !log.V(1).Enabled() {
		return
	}
	headers := make([]string, 0, len(req.Header))
	for k := range req.Header {
		headers = append(headers, k)
	}
	sort.Strings(headers)
	log.V(1).Info("sending request", "method", req.Method, "url", req.URL.Redacted(), "headers", headers)
}
