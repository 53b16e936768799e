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

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bundlekit/publisher/portal"
)

var dropCmd = &cobra.Command{
	Use:   "drop <deployment-id>",
	Short: "Retract a deployment from the portal",
	Args:  cobra.ExactArgs(1),
	RunE:  runDrop,
}

func init() {
	rootCmd.AddCommand(dropCmd)
}

func runDrop(cmd *cobra.Command, args []string) error {
	client := portal.NewClient(cfg.ClientOptions(log))
	if err := client.DropDeployment(cmd.Context(), args[0], cfg.Credentials()); err != nil {
		return err
	}

	fmt.Printf("deployment %s dropped\n", args[0])
	return nil
}
