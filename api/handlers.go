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

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/blinklabs-io/governor/governance"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(
	w http.ResponseWriter,
	status int,
	v any,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

func writeError(
	w http.ResponseWriter,
	status int,
	message string,
) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
	})
}

// writeGovernanceError maps a governance failure onto an HTTP status
func (a *API) writeGovernanceError(
	w http.ResponseWriter,
	err error,
	what string,
) {
	switch governance.KindOf(err) {
	case governance.KindNotFound:
		writeError(w, http.StatusNotFound, err.Error())
	case governance.KindInputValidation:
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		a.logger.Error("failed to get "+what, "error", err)
		writeError(
			w,
			http.StatusInternalServerError,
			"failed to retrieve "+what,
		)
	}
}

// proposalID parses the {id} path value, writing a 400 on failure
func proposalID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		writeError(w, http.StatusBadRequest, "invalid proposal id")
		return 0, false
	}
	return uint(id), true
}

func (a *API) handleHealth(
	w http.ResponseWriter,
	_ *http.Request,
) {
	writeJSON(w, http.StatusOK, HealthResponse{IsHealthy: true})
}

// handleProposals handles GET /proposals
func (a *API) handleProposals(
	w http.ResponseWriter,
	r *http.Request,
) {
	params, err := ParsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	proposals, err := a.node.Proposals(r.Context())
	if err != nil {
		a.writeGovernanceError(w, err, "proposals")
		return
	}
	if proposals == nil {
		proposals = []*governance.ProposalView{}
	}
	SetPaginationHeaders(w, len(proposals), params)
	writeJSON(w, http.StatusOK, paginate(proposals, params))
}

// handleProposal handles GET /proposals/{id}
func (a *API) handleProposal(
	w http.ResponseWriter,
	r *http.Request,
) {
	id, ok := proposalID(w, r)
	if !ok {
		return
	}
	proposal, err := a.node.Proposal(r.Context(), id)
	if err != nil {
		a.writeGovernanceError(w, err, "proposal")
		return
	}
	writeJSON(w, http.StatusOK, proposal)
}

// handleProposalState handles GET /proposals/{id}/state
func (a *API) handleProposalState(
	w http.ResponseWriter,
	r *http.Request,
) {
	id, ok := proposalID(w, r)
	if !ok {
		return
	}
	state, err := a.node.State(r.Context(), id)
	if err != nil {
		a.writeGovernanceError(w, err, "proposal state")
		return
	}
	writeJSON(w, http.StatusOK, StateResponse{ProposalID: id, State: state})
}

// handleReceipt handles GET /proposals/{id}/receipts/{voter}
func (a *API) handleReceipt(
	w http.ResponseWriter,
	r *http.Request,
) {
	id, ok := proposalID(w, r)
	if !ok {
		return
	}
	receipt, err := a.node.GetReceipt(r.Context(), id, r.PathValue("voter"))
	if err != nil {
		a.writeGovernanceError(w, err, "receipt")
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// handleLatestProposal handles GET /proposers/{proposer}/latest
func (a *API) handleLatestProposal(
	w http.ResponseWriter,
	r *http.Request,
) {
	proposer := r.PathValue("proposer")
	id, err := a.node.LatestProposalID(r.Context(), proposer)
	if err != nil {
		a.writeGovernanceError(w, err, "latest proposal")
		return
	}
	writeJSON(w, http.StatusOK, LatestProposalResponse{
		Proposer:   proposer,
		ProposalID: id,
	})
}

// handleVetoer handles GET /vetoer
func (a *API) handleVetoer(
	w http.ResponseWriter,
	r *http.Request,
) {
	vetoer, ok, err := a.node.Vetoer(r.Context())
	if err != nil {
		a.writeGovernanceError(w, err, "vetoer")
		return
	}
	writeJSON(w, http.StatusOK, VetoerResponse{Vetoer: vetoer, Burned: !ok})
}
