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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/blinklabs-io/governor/governance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockNode implements GovernanceNode for testing
type mockNode struct {
	proposals map[uint]*governance.ProposalView
	receipts  map[string]governance.Receipt
	latest    map[string]uint
	vetoer    string
	err       error
}

func (m *mockNode) lookup(id uint) (*governance.ProposalView, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.proposals[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", governance.ErrProposalNotFound, id)
	}
	return p, nil
}

func (m *mockNode) Proposals(context.Context) ([]*governance.ProposalView, error) {
	if m.err != nil {
		return nil, m.err
	}
	ret := make([]*governance.ProposalView, 0, len(m.proposals))
	for i := uint(1); i <= uint(len(m.proposals)); i++ {
		ret = append(ret, m.proposals[i])
	}
	return ret, nil
}

func (m *mockNode) Proposal(_ context.Context, id uint) (*governance.ProposalView, error) {
	return m.lookup(id)
}

func (m *mockNode) State(_ context.Context, id uint) (governance.ProposalState, error) {
	p, err := m.lookup(id)
	if err != nil {
		return 0, err
	}
	return p.State, nil
}

func (m *mockNode) GetReceipt(
	_ context.Context,
	id uint,
	voter string,
) (governance.Receipt, error) {
	if _, err := m.lookup(id); err != nil {
		return governance.Receipt{}, err
	}
	return m.receipts[voter], nil
}

func (m *mockNode) Vetoer(context.Context) (string, bool, error) {
	return m.vetoer, m.vetoer != "", m.err
}

func (m *mockNode) LatestProposalID(_ context.Context, proposer string) (uint, error) {
	return m.latest[proposer], m.err
}

func newMockNode() *mockNode {
	return &mockNode{
		proposals: map[uint]*governance.ProposalView{
			1: {ID: 1, Proposer: "alice", State: governance.StateQueued, Eta: 1000},
			2: {ID: 2, Proposer: "bob", State: governance.StateVetoed, Vetoed: true},
		},
		receipts: map[string]governance.Receipt{
			"carol": {HasVoted: true, Support: 1, Votes: 90, Reason: "yes"},
		},
		latest: map[string]uint{"alice": 1},
		vetoer: "guardian",
	}
}

func get(t *testing.T, a *API, path string, out any) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

func TestProposalEndpoints(t *testing.T) {
	a := New(Config{}, newMockNode(), nil)

	var raw map[string]any
	require.Equal(t, http.StatusOK, get(t, a, "/proposals/1", &raw))
	assert.Equal(t, "Queued", raw["state"])
	assert.Equal(t, "alice", raw["proposer"])
	assert.InDelta(t, 1000, raw["eta"], 0)

	var state map[string]any
	require.Equal(t, http.StatusOK, get(t, a, "/proposals/2/state", &state))
	assert.Equal(t, "Vetoed", state["state"])

	var list []map[string]any
	require.Equal(t, http.StatusOK, get(t, a, "/proposals", &list))
	require.Len(t, list, 2)
	assert.Equal(t, "bob", list[1]["proposer"])

	list = nil
	require.Equal(t, http.StatusOK, get(t, a, "/proposals?count=1&order=desc", &list))
	require.Len(t, list, 1)
	assert.Equal(t, "bob", list[0]["proposer"])

	var errResp ErrorResponse
	require.Equal(t, http.StatusBadRequest, get(t, a, "/proposals?page=x", &errResp))
}

func TestReceiptEndpoint(t *testing.T) {
	a := New(Config{}, newMockNode(), nil)

	var receipt governance.Receipt
	require.Equal(t, http.StatusOK, get(t, a, "/proposals/1/receipts/carol", &receipt))
	assert.Equal(t, governance.Receipt{HasVoted: true, Support: 1, Votes: 90, Reason: "yes"}, receipt)

	receipt = governance.Receipt{}
	require.Equal(t, http.StatusOK, get(t, a, "/proposals/1/receipts/dave", &receipt))
	assert.False(t, receipt.HasVoted)
}

func TestVetoerAndLatestEndpoints(t *testing.T) {
	node := newMockNode()
	a := New(Config{}, node, nil)

	var vetoer VetoerResponse
	require.Equal(t, http.StatusOK, get(t, a, "/vetoer", &vetoer))
	assert.Equal(t, VetoerResponse{Vetoer: "guardian"}, vetoer)

	node.vetoer = ""
	require.Equal(t, http.StatusOK, get(t, a, "/vetoer", &vetoer))
	assert.True(t, vetoer.Burned)

	var latest LatestProposalResponse
	require.Equal(t, http.StatusOK, get(t, a, "/proposers/alice/latest", &latest))
	assert.Equal(t, LatestProposalResponse{Proposer: "alice", ProposalID: 1}, latest)
}

func TestErrorStatuses(t *testing.T) {
	node := newMockNode()
	a := New(Config{}, node, nil)

	var errResp ErrorResponse
	require.Equal(t, http.StatusNotFound, get(t, a, "/proposals/9", &errResp))
	assert.Equal(t, http.StatusNotFound, errResp.StatusCode)

	require.Equal(t, http.StatusBadRequest, get(t, a, "/proposals/abc", &errResp))
	require.Equal(t, http.StatusBadRequest, get(t, a, "/proposals/0/state", &errResp))
	require.Equal(t, http.StatusNotFound, get(t, a, "/proposals/9/receipts/carol", &errResp))

	node.err = errors.New("database unavailable")
	require.Equal(t, http.StatusInternalServerError, get(t, a, "/proposals", &errResp))
	assert.Equal(t, "failed to retrieve proposals", errResp.Message)
}

func TestStartStop(t *testing.T) {
	a := New(Config{ListenAddress: "127.0.0.1:0"}, newMockNode(), nil)
	require.NoError(t, a.Start(t.Context()))

	a.mu.Lock()
	assert.NotNil(t, a.httpServer)
	a.mu.Unlock()

	require.Error(t, a.Start(t.Context()))

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	require.NoError(t, a.Stop(stopCtx))

	a.mu.Lock()
	assert.Nil(t, a.httpServer)
	a.mu.Unlock()
}
