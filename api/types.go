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

package api

import "github.com/blinklabs-io/governor/governance"

const DefaultListenAddress = ":8080"

// Config holds the API server settings
type Config struct {
	ListenAddress string
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
}

type StateResponse struct {
	State      governance.ProposalState `json:"state"`
	ProposalID uint                     `json:"proposal_id"`
}

// VetoerResponse reports the vetoer. Vetoer is empty once Burned.
type VetoerResponse struct {
	Vetoer string `json:"vetoer"`
	Burned bool   `json:"burned"`
}

type LatestProposalResponse struct {
	Proposer   string `json:"proposer"`
	ProposalID uint   `json:"proposal_id"`
}
