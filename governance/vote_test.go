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
	"testing"

	"github.com/blinklabs-io/governor/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCastVote(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, voteCh := env.bus.Subscribe(event.VoteCastEventType)
	id := env.propose(t, "alice")

	_, err := env.gov.CastVote(ctx, "bob", id, 1, "")
	require.ErrorIs(t, err, ErrVotingClosed)

	env.clock.AdvanceBlocks(2)
	weight, err := env.gov.CastVote(ctx, "bob", id, 1, "ship it")
	require.NoError(t, err)
	assert.Equal(t, uint64(300), weight)
	_, err = env.gov.CastVote(ctx, "carol", id, 0, "")
	require.NoError(t, err)
	_, err = env.gov.CastVote(ctx, "dave", id, 2, "")
	require.NoError(t, err)

	_, err = env.gov.CastVote(ctx, "bob", id, 0, "changed my mind")
	require.ErrorIs(t, err, ErrAlreadyVoted)
	assert.Equal(t, KindDuplicateAction, KindOf(err))

	view, err := env.gov.Proposal(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), view.ForVotes)
	assert.Equal(t, uint64(90), view.AgainstVotes)
	assert.Equal(t, uint64(10), view.AbstainVotes)

	receipt, err := env.gov.GetReceipt(ctx, id, "bob")
	require.NoError(t, err)
	assert.Equal(t, Receipt{HasVoted: true, Support: 1, Votes: 300, Reason: "ship it"}, receipt)

	receipt, err = env.gov.GetReceipt(ctx, id, "alice")
	require.NoError(t, err)
	assert.False(t, receipt.HasVoted)

	_, err = env.gov.GetReceipt(ctx, 42, "alice")
	require.ErrorIs(t, err, ErrProposalNotFound)

	assert.Len(t, voteCh, 3)
}

func TestCastVoteValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.propose(t, "alice")
	env.clock.AdvanceBlocks(2)

	_, err := env.gov.CastVote(ctx, "bob", id, 3, "")
	require.ErrorIs(t, err, ErrInvalidSupport)
	_, err = env.gov.CastVote(ctx, "", id, 1, "")
	require.ErrorIs(t, err, ErrEmptyIdentity)
	_, err = env.gov.CastVote(ctx, "bob", 7, 1, "")
	require.ErrorIs(t, err, ErrProposalNotFound)

	env.clock.AdvanceBlocks(testVotingPeriod)
	_, err = env.gov.CastVote(ctx, "bob", id, 1, "")
	require.ErrorIs(t, err, ErrVotingClosed)
}

func TestCastVoteUsesStartBlockWeight(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.propose(t, "alice")
	env.clock.AdvanceBlocks(3)

	// weight acquired after voting started does not count
	require.NoError(t, env.weights.SetWeight("bob", env.clock.BlockNumber(), 5000))
	weight, err := env.gov.CastVote(ctx, "bob", id, 1, "")
	require.NoError(t, err)
	assert.Equal(t, uint64(300), weight)

	// an account with no weight at the start block still gets a receipt
	require.NoError(t, env.weights.SetWeight("erin", env.clock.BlockNumber(), 70))
	weight, err = env.gov.CastVote(ctx, "erin", id, 1, "")
	require.NoError(t, err)
	assert.Zero(t, weight)
	receipt, err := env.gov.GetReceipt(ctx, id, "erin")
	require.NoError(t, err)
	assert.True(t, receipt.HasVoted)
}

func TestVoteOutcomes(t *testing.T) {
	testDefs := []struct {
		name     string
		ballots  map[string]uint8
		expected ProposalState
	}{
		{name: "majority for", ballots: map[string]uint8{"bob": 1, "carol": 0}, expected: StateSucceeded},
		{name: "majority against", ballots: map[string]uint8{"bob": 0, "carol": 1}, expected: StateDefeated},
		{name: "below quorum", ballots: map[string]uint8{"carol": 1}, expected: StateDefeated},
		{name: "abstain only", ballots: map[string]uint8{"bob": 2}, expected: StateDefeated},
		{name: "no votes", ballots: nil, expected: StateDefeated},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			env := newTestEnv(t)
			id := env.propose(t, "alice")
			env.clock.AdvanceBlocks(2)
			for voter, support := range testDef.ballots {
				_, err := env.gov.CastVote(context.Background(), voter, id, support, "")
				require.NoError(t, err)
			}
			env.clock.AdvanceBlocks(testVotingPeriod)
			env.requireState(t, id, testDef.expected)
		})
	}
}
