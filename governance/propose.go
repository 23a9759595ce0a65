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
	"fmt"

	"github.com/blinklabs-io/governor/database"
	"github.com/blinklabs-io/governor/database/models"
	"github.com/blinklabs-io/governor/database/types"
	"github.com/blinklabs-io/governor/event"
	"go.opentelemetry.io/otel/attribute"
)

// ProposeRequest carries the parallel action arrays of a new proposal
type ProposeRequest struct {
	Targets     []string
	Values      []uint64
	Signatures  []string
	Calldatas   [][]byte
	Description string
}

// Propose creates a proposal and returns its ID. Voting starts after the
// voting delay and lasts for the voting period. The proposal threshold and
// quorum are fixed at creation from the current total supply.
func (g *Governor) Propose(
	ctx context.Context,
	proposer string,
	req ProposeRequest,
) (uint, error) {
	_, span := g.startOp(
		ctx,
		"propose",
		attribute.String("proposer", proposer),
		attribute.Int("actions", len(req.Targets)),
	)
	var id uint
	var err error
	defer func() { g.finishOp(span, "propose", err) }()

	if err = g.validateProposeRequest(proposer, req); err != nil {
		return 0, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	var created *models.Proposal
	err = g.update(func(txn *database.Txn) error {
		currentBlock := g.clock.BlockNumber()
		supply, err := g.votes.TotalSupply(currentBlock)
		if err != nil {
			return err
		}
		threshold, err := g.thresholds.ProposalThresholdFor(supply)
		if err != nil {
			return err
		}
		quorum, err := g.thresholds.QuorumFor(supply)
		if err != nil {
			return err
		}
		weight, err := g.votes.VotingWeightOf(proposer, currentBlock)
		if err != nil {
			return err
		}
		if weight < threshold {
			return fmt.Errorf(
				"%w: weight %d < threshold %d",
				ErrBelowThreshold,
				weight,
				threshold,
			)
		}
		if err := g.checkNoLiveProposal(proposer, txn); err != nil {
			return err
		}
		startBlock, err := checkedAdd(currentBlock, g.votingDelay)
		if err != nil {
			return err
		}
		endBlock, err := checkedAdd(startBlock, g.votingPeriod)
		if err != nil {
			return err
		}
		count, err := g.db.GetProposalCount(txn)
		if err != nil {
			return err
		}
		created = &models.Proposal{
			ID:                count + 1,
			Proposer:          proposer,
			Description:       req.Description,
			StartBlock:        startBlock,
			EndBlock:          endBlock,
			CreatedBlock:      currentBlock,
			QuorumVotes:       types.Uint64(quorum),
			ProposalThreshold: types.Uint64(threshold),
		}
		actions := make([]models.ProposalAction, len(req.Targets))
		for i := range req.Targets {
			actions[i] = models.ProposalAction{
				Target:    req.Targets[i],
				Value:     types.Uint64(req.Values[i]),
				Signature: req.Signatures[i],
				Calldata:  req.Calldatas[i],
			}
		}
		if err := g.db.AddProposal(created, actions, txn); err != nil {
			return err
		}
		g.publish(txn, event.ProposalCreatedEventType, event.ProposalCreatedEvent{
			ProposalID:  created.ID,
			Proposer:    proposer,
			Targets:     append([]string(nil), req.Targets...),
			StartBlock:  startBlock,
			EndBlock:    endBlock,
			Description: req.Description,
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	id = created.ID
	g.metrics.proposalsCreated.Inc()
	g.logger.Info(
		fmt.Sprintf("proposal %d created", id),
		"component", "governance",
		"proposer", proposer,
		"start_block", created.StartBlock,
		"end_block", created.EndBlock,
	)
	return id, nil
}

func (g *Governor) validateProposeRequest(proposer string, req ProposeRequest) error {
	if proposer == "" {
		return ErrEmptyIdentity
	}
	n := len(req.Targets)
	if len(req.Values) != n || len(req.Signatures) != n || len(req.Calldatas) != n {
		return fmt.Errorf(
			"%w: %d targets, %d values, %d signatures, %d calldatas",
			ErrActionMismatch,
			n,
			len(req.Values),
			len(req.Signatures),
			len(req.Calldatas),
		)
	}
	if n == 0 || n > g.maxActions {
		return fmt.Errorf(
			"%w: %d not in [1, %d]",
			ErrInvalidActionCount,
			n,
			g.maxActions,
		)
	}
	return nil
}

// checkNoLiveProposal rejects a proposer whose latest proposal is still
// Pending or Active
func (g *Governor) checkNoLiveProposal(proposer string, txn *database.Txn) error {
	latestID, err := g.db.GetLatestProposalID(proposer, txn)
	if err != nil {
		return err
	}
	if latestID == 0 {
		return nil
	}
	_, state, err := g.loadProposal(latestID, txn)
	if err != nil {
		return err
	}
	if state == StatePending || state == StateActive {
		return fmt.Errorf(
			"%w: proposal %d is %s",
			ErrAlreadyHasActiveProposal,
			latestID,
			state,
		)
	}
	return nil
}
