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

package config

import (
	"os"
	"time"

	"github.com/spf13/pflag"
)

const (
	flagPortalURL    = "portal-url"
	envPortalURL     = "PUBLISHER_PORTAL_URL"
	defaultPortalURL = "https://central.sonatype.com"

	flagPublishingType    = "publishing-type"
	envPublishingType     = "PUBLISHER_PUBLISHING_TYPE"
	defaultPublishingType = "USER_MANAGED"

	flagDigestAlgos = "digest-algo"

	flagStagingDir = "staging-dir"
	flagBundlePath = "bundle-path"

	flagRetries = "retries"

	flagTimeout    = "timeout"
	defaultTimeout = 60 * time.Second

	flagUsername = "username"
	envUsername  = "PUBLISHER_USERNAME"
	flagPassword = "password"
	envPassword  = "PUBLISHER_PASSWORD"
)

// defaultDigestAlgos are the sidecar digests Maven-style repositories
// expect for every published file.
var defaultDigestAlgos = []string{"md5", "sha1", "sha256", "sha512"}

// BindFlags will parse the given pflag.FlagSet for the publisher and set
// the Options accordingly.
func (o *Options) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.PortalURL, flagPortalURL,
		envOrDefault(envPortalURL, defaultPortalURL),
		"The base URL of the publishing portal.")

	fs.StringVar(&o.PublishingType, flagPublishingType,
		envOrDefault(envPublishingType, defaultPublishingType),
		"The post-upload release policy, AUTOMATIC or USER_MANAGED.")

	fs.StringSliceVar(&o.DigestAlgos, flagDigestAlgos,
		defaultDigestAlgos,
		"The digest algorithms applied to every staged file. Repeatable.")

	fs.StringVar(&o.StagingDir, flagStagingDir, "",
		"The directory artifacts are staged in. Defaults to a fresh temporary directory.")

	fs.StringVar(&o.BundlePath, flagBundlePath, "",
		"The path the bundle archive is written to. Defaults to '{artifactId}-{version}-bundle.zip'.")

	fs.IntVar(&o.Retries, flagRetries, 0,
		"The number of times transport failures and 5xx responses are retried.")

	fs.DurationVar(&o.Timeout, flagTimeout, defaultTimeout,
		"The timeout of each portal request.")

	fs.StringVar(&o.Username, flagUsername,
		os.Getenv(envUsername),
		"The portal username. Prefer the "+envUsername+" environment variable.")

	fs.StringVar(&o.Password, flagPassword,
		os.Getenv(envPassword),
		"The portal password. Prefer the "+envPassword+" environment variable.")
}

// envOrDefault returns the value of the environment variable named by the
// key. If the variable is empty or not present, it returns the
// defaultValue instead.
func envOrDefault(envName, defaultValue string) string {
	ret := os.Getenv(envName)
	if ret != "" {
		return ret
	}

	return defaultValue
}
