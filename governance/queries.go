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
	"context"

	"github.com/blinklabs-io/governor/database/models"
)

// ProposalView is the read-only projection of a proposal
type ProposalView struct {
	Proposer          string        `json:"proposer"`
	Description       string        `json:"description"`
	Actions           []ActionView  `json:"actions"`
	ID                uint          `json:"id"`
	StartBlock        uint64        `json:"startBlock"`
	EndBlock          uint64        `json:"endBlock"`
	CreatedBlock      uint64        `json:"createdBlock"`
	Eta               uint64        `json:"eta"`
	ForVotes          uint64        `json:"forVotes"`
	AgainstVotes      uint64        `json:"againstVotes"`
	AbstainVotes      uint64        `json:"abstainVotes"`
	QuorumVotes       uint64        `json:"quorumVotes"`
	ProposalThreshold uint64        `json:"proposalThreshold"`
	State             ProposalState `json:"state"`
	Canceled          bool          `json:"canceled"`
	Vetoed            bool          `json:"vetoed"`
	Executed          bool          `json:"executed"`
}

type ActionView struct {
	Target    string `json:"target"`
	Signature string `json:"signature"`
	Calldata  []byte `json:"calldata"`
	Value     uint64 `json:"value"`
}

// Receipt is a voter's ballot on a proposal. A zero Receipt with HasVoted
// false means the voter has not voted.
type Receipt struct {
	Reason   string `json:"reason"`
	Votes    uint64 `json:"votes"`
	HasVoted bool   `json:"hasVoted"`
	Support  uint8  `json:"support"`
}

// State returns the current lifecycle state of a proposal
func (g *Governor) State(ctx context.Context, proposalID uint) (ProposalState, error) {
	_, span := g.startOp(ctx, "state", proposalAttr(proposalID))
	var err error
	defer func() { g.finishOp(span, "state", err) }()
	g.mu.RLock()
	defer g.mu.RUnlock()
	var state ProposalState
	_, state, err = g.loadProposal(proposalID, nil)
	return state, err
}

// Proposal returns the stored facts of a proposal along with its state
func (g *Governor) Proposal(ctx context.Context, proposalID uint) (*ProposalView, error) {
	_, span := g.startOp(ctx, "proposal", proposalAttr(proposalID))
	var err error
	defer func() { g.finishOp(span, "proposal", err) }()
	g.mu.RLock()
	defer g.mu.RUnlock()
	var view *ProposalView
	view, err = g.proposalView(proposalID)
	return view, err
}

func (g *Governor) proposalView(proposalID uint) (*ProposalView, error) {
	proposal, state, err := g.loadProposal(proposalID, nil)
	if err != nil {
		return nil, err
	}
	actions, err := g.db.GetProposalActions(proposalID, nil)
	if err != nil {
		return nil, err
	}
	return newProposalView(proposal, state, actions), nil
}

func newProposalView(
	p *models.Proposal,
	state ProposalState,
	actions []models.ProposalAction,
) *ProposalView {
	view := &ProposalView{
		ID:                p.ID,
		Proposer:          p.Proposer,
		Description:       p.Description,
		StartBlock:        p.StartBlock,
		EndBlock:          p.EndBlock,
		CreatedBlock:      p.CreatedBlock,
		Eta:               p.Eta,
		ForVotes:          uint64(p.ForVotes),
		AgainstVotes:      uint64(p.AgainstVotes),
		AbstainVotes:      uint64(p.AbstainVotes),
		QuorumVotes:       uint64(p.QuorumVotes),
		ProposalThreshold: uint64(p.ProposalThreshold),
		State:             state,
		Canceled:          p.Canceled,
		Vetoed:            p.Vetoed,
		Executed:          p.Executed,
		Actions:           make([]ActionView, 0, len(actions)),
	}
	for _, a := range actions {
		view.Actions = append(view.Actions, ActionView{
			Target:    a.Target,
			Value:     uint64(a.Value),
			Signature: a.Signature,
			Calldata:  a.Calldata,
		})
	}
	return view
}

// Proposals returns every proposal in ID order
func (g *Governor) Proposals(ctx context.Context) ([]*ProposalView, error) {
	_, span := g.startOp(ctx, "proposals")
	var err error
	defer func() { g.finishOp(span, "proposals", err) }()
	g.mu.RLock()
	defer g.mu.RUnlock()
	var proposals []models.Proposal
	proposals, err = g.db.GetProposals(nil)
	if err != nil {
		return nil, err
	}
	ret := make([]*ProposalView, 0, len(proposals))
	for i := range proposals {
		var actions []models.ProposalAction
		actions, err = g.db.GetProposalActions(proposals[i].ID, nil)
		if err != nil {
			return nil, err
		}
		ret = append(
			ret,
			newProposalView(&proposals[i], g.stateOf(&proposals[i]), actions),
		)
	}
	return ret, nil
}

// GetReceipt returns the ballot of voter on a proposal
func (g *Governor) GetReceipt(
	ctx context.Context,
	proposalID uint,
	voter string,
) (Receipt, error) {
	_, span := g.startOp(ctx, "get_receipt", proposalAttr(proposalID))
	var err error
	defer func() { g.finishOp(span, "get_receipt", err) }()
	g.mu.RLock()
	defer g.mu.RUnlock()
	if _, _, err = g.loadProposal(proposalID, nil); err != nil {
		return Receipt{}, err
	}
	var receipt *models.Receipt
	receipt, err = g.db.GetReceipt(proposalID, voter, nil)
	if err != nil || receipt == nil {
		return Receipt{}, err
	}
	return Receipt{
		HasVoted: true,
		Support:  receipt.Support,
		Votes:    uint64(receipt.Votes),
		Reason:   receipt.Reason,
	}, nil
}

// Vetoer returns the current vetoer. ok is false once the power is burned.
func (g *Governor) Vetoer(ctx context.Context) (vetoer string, ok bool, err error) {
	_, span := g.startOp(ctx, "vetoer")
	defer func() { g.finishOp(span, "vetoer", err) }()
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.currentVetoer(nil)
}

// LatestProposalID returns the most recent proposal of proposer, or 0
func (g *Governor) LatestProposalID(ctx context.Context, proposer string) (uint, error) {
	_, span := g.startOp(ctx, "latest_proposal_id")
	var err error
	defer func() { g.finishOp(span, "latest_proposal_id", err) }()
	g.mu.RLock()
	defer g.mu.RUnlock()
	var id uint
	id, err = g.db.GetLatestProposalID(proposer, nil)
	return id, err
}

// ProposalCount returns the number of proposals ever created
func (g *Governor) ProposalCount(ctx context.Context) (uint, error) {
	_, span := g.startOp(ctx, "proposal_count")
	var err error
	defer func() { g.finishOp(span, "proposal_count", err) }()
	g.mu.RLock()
	defer g.mu.RUnlock()
	var count uint
	count, err = g.db.GetProposalCount(nil)
	return count, err
}

// ProposalThreshold returns the weight a proposer needs at the current block
func (g *Governor) ProposalThreshold() (uint64, error) {
	supply, err := g.votes.TotalSupply(g.clock.BlockNumber())
	if err != nil {
		return 0, err
	}
	return g.thresholds.ProposalThresholdFor(supply)
}

// QuorumVotes returns the for-votes a proposal created now would need
func (g *Governor) QuorumVotes() (uint64, error) {
	supply, err := g.votes.TotalSupply(g.clock.BlockNumber())
	if err != nil {
		return 0, err
	}
	return g.thresholds.QuorumFor(supply)
}
