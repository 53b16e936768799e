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

// bundle-publisher packages build artifacts into a signed, checksummed
// zip bundle and publishes it to a remote artifact portal.
package main

import (
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/bundlekit/publisher/config"
	"github.com/bundlekit/publisher/logger"
)

var rootCmd = &cobra.Command{
	Use:           "bundle-publisher",
	Short:         "Package build artifacts into a bundle and publish it to an artifact portal",
	SilenceUsage:  true,
	SilenceErrors: false,
}

var (
	cfg     config.Options
	logOpts logger.Options
	log     logr.Logger
)

func init() {
	cfg.BindFlags(rootCmd.PersistentFlags())
	logOpts.BindFlags(rootCmd.PersistentFlags())

	cobra.OnInitialize(func() {
		log = logger.NewLogger(logOpts)
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
