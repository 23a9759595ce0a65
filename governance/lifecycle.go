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
	"errors"
	"fmt"

	"github.com/blinklabs-io/governor/database"
	"github.com/blinklabs-io/governor/event"
	"github.com/blinklabs-io/governor/timelock"
	"go.opentelemetry.io/otel/attribute"
)

func proposalAttr(id uint) attribute.KeyValue {
	return attribute.Int64("proposal_id", int64(id)) // #nosec G115
}

// Cancel marks a proposal canceled. Any actions already queued in the
// timelock are withdrawn.
func (g *Governor) Cancel(ctx context.Context, caller string, proposalID uint) error {
	_, span := g.startOp(ctx, "cancel", proposalAttr(proposalID))
	var err error
	defer func() { g.finishOp(span, "cancel", err) }()

	g.mu.Lock()
	defer g.mu.Unlock()

	err = g.update(func(txn *database.Txn) error {
		proposal, state, err := g.loadProposal(proposalID, txn)
		if err != nil {
			return err
		}
		if !g.cancelPolicy.AllowsState(state) {
			return fmt.Errorf("%w: proposal %d is %s", ErrCannotCancel, proposalID, state)
		}
		weight, err := g.votes.VotingWeightOf(proposal.Proposer, g.clock.BlockNumber())
		if err != nil {
			return err
		}
		if !g.cancelPolicy.Authorizes(
			caller,
			proposal.Proposer,
			weight,
			uint64(proposal.ProposalThreshold),
		) {
			return fmt.Errorf(
				"%w: caller %s, proposer weight %d",
				ErrCancelUnauthorized,
				caller,
				weight,
			)
		}
		proposal.Canceled = true
		if err := g.withdrawQueued(txn, proposalID, proposal.Eta); err != nil {
			return err
		}
		if err := g.db.SetProposal(proposal, txn); err != nil {
			return err
		}
		g.publish(txn, event.ProposalCanceledEventType, event.ProposalCanceledEvent{
			ProposalID: proposalID,
		})
		return nil
	})
	if err != nil {
		return err
	}
	g.logger.Info(
		fmt.Sprintf("proposal %d canceled", proposalID),
		"component", "governance",
		"caller", caller,
	)
	return nil
}

// withdrawQueued cancels the timelock entries of a proposal queued at eta
func (g *Governor) withdrawQueued(txn *database.Txn, proposalID uint, eta uint64) error {
	if eta == 0 {
		return nil
	}
	actions, err := g.timelockActions(proposalID, eta, txn)
	if err != nil {
		return err
	}
	for _, action := range actions {
		if err := g.timelock.Cancel(txn, action); err != nil {
			return err
		}
	}
	return nil
}

// Queue hands the actions of a Succeeded proposal to the timelock. Queueing
// is all-or-nothing: if any action collides with an identical entry already
// queued at the same eta, nothing is queued.
func (g *Governor) Queue(ctx context.Context, proposalID uint) (uint64, error) {
	_, span := g.startOp(ctx, "queue", proposalAttr(proposalID))
	var eta uint64
	var err error
	defer func() { g.finishOp(span, "queue", err) }()

	g.mu.Lock()
	defer g.mu.Unlock()

	err = g.update(func(txn *database.Txn) error {
		proposal, state, err := g.loadProposal(proposalID, txn)
		if err != nil {
			return err
		}
		if state != StateSucceeded {
			return fmt.Errorf("%w: proposal %d is %s", ErrProposalNotSucceeded, proposalID, state)
		}
		now := g.clock.Timestamp()
		eta, err = checkedAdd(now, g.timelock.Delay())
		if err != nil {
			return err
		}
		actions, err := g.timelockActions(proposalID, eta, txn)
		if err != nil {
			return err
		}
		for i, action := range actions {
			if _, err := g.timelock.Queue(txn, action, now); err != nil {
				if errors.Is(err, timelock.ErrActionAlreadyQueued) {
					return fmt.Errorf("%w: action %d: %w", ErrActionAlreadyQueued, i, err)
				}
				return err
			}
		}
		proposal.Eta = eta
		if err := g.db.SetProposal(proposal, txn); err != nil {
			return err
		}
		g.publish(txn, event.ProposalQueuedEventType, event.ProposalQueuedEvent{
			ProposalID: proposalID,
			Eta:        eta,
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	g.logger.Info(
		fmt.Sprintf("proposal %d queued", proposalID),
		"component", "governance",
		"eta", eta,
	)
	return eta, nil
}

// Execute runs the queued actions of a proposal through the timelock
func (g *Governor) Execute(ctx context.Context, proposalID uint) error {
	ctx, span := g.startOp(ctx, "execute", proposalAttr(proposalID))
	var err error
	defer func() { g.finishOp(span, "execute", err) }()

	g.mu.Lock()
	defer g.mu.Unlock()

	err = g.update(func(txn *database.Txn) error {
		proposal, state, err := g.loadProposal(proposalID, txn)
		if err != nil {
			return err
		}
		if state != StateQueued {
			return fmt.Errorf("%w: proposal %d is %s", ErrProposalNotQueued, proposalID, state)
		}
		actions, err := g.timelockActions(proposalID, proposal.Eta, txn)
		if err != nil {
			return err
		}
		if err := g.timelock.Execute(ctx, txn, actions, g.clock.Timestamp()); err != nil {
			return err
		}
		proposal.Executed = true
		if err := g.db.SetProposal(proposal, txn); err != nil {
			return err
		}
		g.publish(txn, event.ProposalExecutedEventType, event.ProposalExecutedEvent{
			ProposalID: proposalID,
		})
		return nil
	})
	if err != nil {
		return err
	}
	g.logger.Info(
		fmt.Sprintf("proposal %d executed", proposalID),
		"component", "governance",
	)
	return nil
}
