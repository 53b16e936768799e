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

package pipeline

import (
	"fmt"

	"github.com/bundlekit/publisher/portal"
)

// Stage names one step of the publication pipeline.
type Stage string

const (
	StageGenerate  Stage = "generate-artifacts"
	StageSign      Stage = "sign-artifacts"
	StageAggregate Stage = "aggregate-files"
	StageHash      Stage = "compute-hash"
	StageArchive   Stage = "create-archive"
	StageUpload    Stage = "upload"
)

// Order is the fixed total order of the pipeline stages. A stage may only
// run once its predecessor has completed.
var Order = []Stage{
	StageGenerate,
	StageSign,
	StageAggregate,
	StageHash,
	StageArchive,
	StageUpload,
}

// State is the lifecycle state of a single stage.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// isAllowedTransition reports whether a stage may move between the two
// states.
func isAllowedTransition(from, to State) bool {
	switch from {
	case StatePending:
		return to == StateRunning
	case StateRunning:
		return to == StateCompleted || to == StateFailed
	default:
		return false
	}
}

// Result records the outcome of a pipeline run: the terminal state of
// every stage and, after a completed upload, the portal's deployment
// record.
type Result struct {
	// Deployment is the portal's record of the upload; nil until the
	// upload stage completed.
	Deployment *portal.Deployment

	states map[Stage]State
}

func newResult() *Result {
	states := make(map[Stage]State, len(Order))
	for _, s := range Order {
		states[s] = StatePending
	}
	return &Result{states: states}
}

// StateOf returns the recorded state of the given stage.
func (r *Result) StateOf(stage Stage) State {
	return r.states[stage]
}

// transition performs a validated state change for a single stage. The
// caller supplies the expected prior state to make ordering violations
// observable.
func (r *Result) transition(stage Stage, from, to State) error {
	cur, ok := r.states[stage]
	if !ok {
		return fmt.Errorf("unknown pipeline stage %q", stage)
	}
	if cur != from {
		return fmt.Errorf("invalid transition for stage %s: expected %s, got %s", stage, from, cur)
	}
	if !isAllowedTransition(from, to) {
		return fmt.Errorf("disallowed transition for stage %s: %s -> %s", stage, from, to)
	}
	r.states[stage] = to
	return nil
}
