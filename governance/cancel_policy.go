// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package governance

import (
	"slices"
)

// CancelPolicy decides who may cancel a proposal and in which states.
//
// A caller may cancel when any of these hold:
//   - the caller is the proposer
//   - the proposer's current weight is below the threshold stored on the
//     proposal at creation, in which case anyone may cancel
//   - the caller is the guardian, if one is configured
type CancelPolicy struct {
	// Guardian is an optional canceling authority
	Guardian string
	// States lists the states in which cancel is allowed
	States []ProposalState
	// DisableBelowThreshold turns off the open cancel rule for proposers whose
	// weight dropped below the threshold
	DisableBelowThreshold bool
}

// DefaultCancelPolicy allows cancel while a proposal is Pending, Active or Queued
func DefaultCancelPolicy() CancelPolicy {
	return CancelPolicy{
		States: []ProposalState{StatePending, StateActive, StateQueued},
	}
}

// AllowsState reports whether cancel is permitted in state
func (c CancelPolicy) AllowsState(state ProposalState) bool {
	return slices.Contains(c.States, state)
}

// Authorizes reports whether caller may cancel a proposal by proposer, given
// the proposer's current weight and the threshold stored on the proposal
func (c CancelPolicy) Authorizes(
	caller string,
	proposer string,
	proposerWeight uint64,
	threshold uint64,
) bool {
	if caller == proposer {
		return true
	}
	if c.Guardian != "" && caller == c.Guardian {
		return true
	}
	return !c.DisableBelowThreshold && proposerWeight < threshold
}
