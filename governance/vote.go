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
	"strconv"

	"github.com/blinklabs-io/governor/database"
	"github.com/blinklabs-io/governor/database/models"
	"github.com/blinklabs-io/governor/database/types"
	"github.com/blinklabs-io/governor/event"
	"go.opentelemetry.io/otel/attribute"
)

// CastVote records a ballot on an Active proposal. The voter's weight is read
// at the proposal's start block. support is 0 (against), 1 (for) or 2
// (abstain). It returns the weight counted.
func (g *Governor) CastVote(
	ctx context.Context,
	voter string,
	proposalID uint,
	support uint8,
	reason string,
) (uint64, error) {
	_, span := g.startOp(
		ctx,
		"cast_vote",
		attribute.String("voter", voter),
		attribute.Int64("proposal_id", int64(proposalID)), // #nosec G115
		attribute.Int("support", int(support)),
	)
	var weight uint64
	var err error
	defer func() { g.finishOp(span, "cast_vote", err) }()

	if voter == "" {
		err = ErrEmptyIdentity
		return 0, err
	}
	if support > models.SupportAbstain {
		err = fmt.Errorf("%w: %d", ErrInvalidSupport, support)
		return 0, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	err = g.update(func(txn *database.Txn) error {
		proposal, state, err := g.loadProposal(proposalID, txn)
		if err != nil {
			return err
		}
		if state != StateActive {
			return fmt.Errorf("%w: proposal %d is %s", ErrVotingClosed, proposalID, state)
		}
		existing, err := g.db.GetReceipt(proposalID, voter, txn)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: %s on proposal %d", ErrAlreadyVoted, voter, proposalID)
		}
		weight, err = g.votes.VotingWeightOf(voter, proposal.StartBlock)
		if err != nil {
			return err
		}
		if err := tally(proposal, support, weight); err != nil {
			return err
		}
		if err := g.db.AddReceipt(
			&models.Receipt{
				ProposalID: proposalID,
				Voter:      voter,
				Support:    support,
				Votes:      types.Uint64(weight),
				Reason:     reason,
				CastBlock:  g.clock.BlockNumber(),
			},
			txn,
		); err != nil {
			if errors.Is(err, models.ErrReceiptExists) {
				return fmt.Errorf("%w: %s on proposal %d", ErrAlreadyVoted, voter, proposalID)
			}
			return err
		}
		if err := g.db.SetProposal(proposal, txn); err != nil {
			return err
		}
		g.publish(txn, event.VoteCastEventType, event.VoteCastEvent{
			ProposalID: proposalID,
			Voter:      voter,
			Support:    support,
			Votes:      weight,
			Reason:     reason,
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	g.metrics.votesCast.WithLabelValues(supportLabel(support)).Inc()
	g.logger.Debug(
		"vote cast",
		"component", "governance",
		"proposal_id", proposalID,
		"voter", voter,
		"support", support,
		"votes", weight,
	)
	return weight, nil
}

// tally adds weight to the bucket selected by support
func tally(p *models.Proposal, support uint8, weight uint64) error {
	var bucket *types.Uint64
	switch support {
	case models.SupportAgainst:
		bucket = &p.AgainstVotes
	case models.SupportFor:
		bucket = &p.ForVotes
	case models.SupportAbstain:
		bucket = &p.AbstainVotes
	default:
		return fmt.Errorf("%w: %d", ErrInvalidSupport, support)
	}
	sum, err := checkedAdd(uint64(*bucket), weight)
	if err != nil {
		return err
	}
	*bucket = types.Uint64(sum)
	return nil
}

func supportLabel(support uint8) string {
	switch support {
	case models.SupportAgainst:
		return "against"
	case models.SupportFor:
		return "for"
	case models.SupportAbstain:
		return "abstain"
	default:
		return strconv.Itoa(int(support))
	}
}
