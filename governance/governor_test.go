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

	"github.com/blinklabs-io/governor/chain"
	"github.com/blinklabs-io/governor/database"
	"github.com/blinklabs-io/governor/event"
	"github.com/blinklabs-io/governor/timelock"
	"github.com/blinklabs-io/governor/votes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testVetoer       = "vetoer"
	testVotingPeriod = 10
	testStartTime    = 1_700_000_000
)

type testEnv struct {
	gov      *Governor
	db       *database.Database
	clock    *chain.Simulated
	weights  *votes.Checkpoints
	timelock *timelock.Timelock
	bus      *event.EventBus
}

// newTestEnv builds a governor over an in-memory database. Total supply is
// 1000, so the proposal threshold is 50 and the quorum is 100.
func newTestEnv(t *testing.T, opts ...GovernorOptionFunc) *testEnv {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close() //nolint:errcheck
	})
	weights := votes.NewCheckpoints()
	for account, weight := range map[string]uint64{
		"alice": 600,
		"bob":   300,
		"carol": 90,
		"dave":  10,
	} {
		require.NoError(t, weights.SetWeight(account, 0, weight))
	}
	tl, err := timelock.New(db)
	require.NoError(t, err)
	bus := event.NewEventBus(nil, nil)
	t.Cleanup(bus.Stop)
	clock := chain.NewSimulated(1, testStartTime, chain.DefaultBlockTime)
	allOpts := append(
		[]GovernorOptionFunc{
			WithDatabase(db),
			WithTimelock(tl),
			WithVotes(weights),
			WithClock(clock),
			WithEventBus(bus),
			WithVotingPeriod(testVotingPeriod),
			WithVetoer(testVetoer),
		},
		opts...,
	)
	gov, err := New(allOpts...)
	require.NoError(t, err)
	return &testEnv{
		gov:      gov,
		db:       db,
		clock:    clock,
		weights:  weights,
		timelock: tl,
		bus:      bus,
	}
}

func singleAction(target string) ProposeRequest {
	return ProposeRequest{
		Targets:     []string{target},
		Values:      []uint64{0},
		Signatures:  []string{"setValue(uint256)"},
		Calldatas:   [][]byte{{0x2a}},
		Description: "set value to 42",
	}
}

func (e *testEnv) propose(t *testing.T, proposer string) uint {
	t.Helper()
	id, err := e.gov.Propose(context.Background(), proposer, singleAction("registry"))
	require.NoError(t, err)
	return id
}

func (e *testEnv) requireState(t *testing.T, id uint, expected ProposalState) {
	t.Helper()
	state, err := e.gov.State(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, expected, state, "proposal %d", id)
}

// succeed votes a fresh proposal through to Succeeded
func (e *testEnv) succeed(t *testing.T, id uint) {
	t.Helper()
	e.clock.AdvanceBlocks(2)
	_, err := e.gov.CastVote(context.Background(), "bob", id, 1, "")
	require.NoError(t, err)
	_, err = e.gov.CastVote(context.Background(), "carol", id, 0, "")
	require.NoError(t, err)
	e.clock.AdvanceBlocks(testVotingPeriod)
	e.requireState(t, id, StateSucceeded)
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New()
	require.Error(t, err)

	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck
	tl, err := timelock.New(db)
	require.NoError(t, err)
	base := []GovernorOptionFunc{
		WithDatabase(db),
		WithTimelock(tl),
		WithVotes(votes.NewCheckpoints()),
		WithClock(chain.Fixed{Block: 1, Time: 1}),
	}
	_, err = New(append(base, WithThresholds(Thresholds{ProposalThresholdBPS: 0, QuorumVotesBPS: 1}))...)
	require.ErrorIs(t, err, ErrInvalidBPS)
	_, err = New(append(base, WithVotingPeriod(0))...)
	require.Error(t, err)
	_, err = New(append(base, WithMaxActions(0))...)
	require.ErrorIs(t, err, ErrInvalidActionCount)
	_, err = New(base...)
	require.NoError(t, err)
}

// Scenario: propose, then veto while Pending
func TestVetoPending(t *testing.T) {
	env := newTestEnv(t)
	id := env.propose(t, "alice")
	env.requireState(t, id, StatePending)
	require.NoError(t, env.gov.Veto(context.Background(), testVetoer, id))
	env.requireState(t, id, StateVetoed)
}

// Scenario: Active, canceled by proposer, then vetoed
func TestVetoAfterCancel(t *testing.T) {
	env := newTestEnv(t)
	id := env.propose(t, "alice")
	env.clock.AdvanceBlocks(2)
	env.requireState(t, id, StateActive)
	require.NoError(t, env.gov.Cancel(context.Background(), "alice", id))
	env.requireState(t, id, StateCanceled)
	require.NoError(t, env.gov.Veto(context.Background(), testVetoer, id))
	env.requireState(t, id, StateVetoed)

	view, err := env.gov.Proposal(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, view.Vetoed)
	assert.False(t, view.Canceled)
}

// Scenario: Succeeded, queued, left to expire, then vetoed
func TestVetoExpired(t *testing.T) {
	env := newTestEnv(t)
	id := env.propose(t, "alice")
	env.succeed(t, id)

	eta, err := env.gov.Queue(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, env.clock.Timestamp()+timelock.DefaultDelay, eta)
	env.requireState(t, id, StateQueued)

	require.NoError(t, env.clock.IncreaseTime(timelock.DefaultDelay+timelock.DefaultGracePeriod))
	env.requireState(t, id, StateExpired)

	require.NoError(t, env.gov.Veto(context.Background(), testVetoer, id))
	env.requireState(t, id, StateVetoed)

	// the timelock no longer holds the actions
	queued, err := env.timelock.Queued(nil)
	require.NoError(t, err)
	assert.Empty(t, queued)
}

// Scenario: executed proposals cannot be vetoed
func TestVetoExecutedFails(t *testing.T) {
	env := newTestEnv(t)
	id := env.propose(t, "alice")
	env.succeed(t, id)
	_, err := env.gov.Queue(context.Background(), id)
	require.NoError(t, err)
	require.NoError(t, env.clock.IncreaseTime(timelock.DefaultDelay))
	require.NoError(t, env.gov.Execute(context.Background(), id))
	env.requireState(t, id, StateExecuted)

	err = env.gov.Veto(context.Background(), testVetoer, id)
	require.ErrorIs(t, err, ErrCannotVetoExecuted)
	assert.Equal(t, KindStateConflict, KindOf(err))
	env.requireState(t, id, StateExecuted)

	// still Executed long after the grace period
	require.NoError(t, env.clock.IncreaseTime(2*timelock.DefaultGracePeriod))
	env.requireState(t, id, StateExecuted)
}

func TestVetoIdempotent(t *testing.T) {
	env := newTestEnv(t)
	_, vetoedCh := env.bus.Subscribe(event.ProposalVetoedEventType)
	id := env.propose(t, "alice")
	require.NoError(t, env.gov.Veto(context.Background(), testVetoer, id))
	require.NoError(t, env.gov.Veto(context.Background(), testVetoer, id))
	env.requireState(t, id, StateVetoed)
	assert.Len(t, vetoedCh, 1)
}

func TestVetoFromEveryState(t *testing.T) {
	ctx := context.Background()
	testDefs := []struct {
		name    string
		state   ProposalState
		setup   func(t *testing.T, env *testEnv, id uint)
		vetoErr error
		after   func(t *testing.T, env *testEnv, id uint)
	}{
		{
			name:  "pending",
			state: StatePending,
			setup: func(*testing.T, *testEnv, uint) {},
		},
		{
			name:  "active",
			state: StateActive,
			setup: func(_ *testing.T, env *testEnv, _ uint) {
				env.clock.AdvanceBlocks(2)
			},
			after: func(t *testing.T, env *testEnv, id uint) {
				_, err := env.gov.CastVote(ctx, "bob", id, 1, "")
				require.ErrorIs(t, err, ErrVotingClosed)
			},
		},
		{
			name:  "canceled",
			state: StateCanceled,
			setup: func(t *testing.T, env *testEnv, id uint) {
				require.NoError(t, env.gov.Cancel(ctx, "alice", id))
			},
		},
		{
			name:  "defeated",
			state: StateDefeated,
			setup: func(_ *testing.T, env *testEnv, _ uint) {
				env.clock.AdvanceBlocks(2 + testVotingPeriod)
			},
		},
		{
			name:  "succeeded",
			state: StateSucceeded,
			setup: func(t *testing.T, env *testEnv, id uint) {
				env.succeed(t, id)
			},
			after: func(t *testing.T, env *testEnv, id uint) {
				_, err := env.gov.Queue(ctx, id)
				require.ErrorIs(t, err, ErrProposalNotSucceeded)
			},
		},
		{
			name:  "queued",
			state: StateQueued,
			setup: func(t *testing.T, env *testEnv, id uint) {
				env.succeed(t, id)
				_, err := env.gov.Queue(ctx, id)
				require.NoError(t, err)
				queued, err := env.timelock.Queued(nil)
				require.NoError(t, err)
				require.Len(t, queued, 1)
			},
			after: func(t *testing.T, env *testEnv, id uint) {
				queued, err := env.timelock.Queued(nil)
				require.NoError(t, err)
				assert.Empty(t, queued)
				require.NoError(t, env.clock.IncreaseTime(timelock.DefaultDelay))
				err = env.gov.Execute(ctx, id)
				require.ErrorIs(t, err, ErrProposalNotQueued)
			},
		},
		{
			name:  "expired",
			state: StateExpired,
			setup: func(t *testing.T, env *testEnv, id uint) {
				env.succeed(t, id)
				_, err := env.gov.Queue(ctx, id)
				require.NoError(t, err)
				require.NoError(t, env.clock.IncreaseTime(timelock.DefaultDelay+timelock.DefaultGracePeriod))
			},
		},
		{
			name:  "executed",
			state: StateExecuted,
			setup: func(t *testing.T, env *testEnv, id uint) {
				env.succeed(t, id)
				_, err := env.gov.Queue(ctx, id)
				require.NoError(t, err)
				require.NoError(t, env.clock.IncreaseTime(timelock.DefaultDelay))
				require.NoError(t, env.gov.Execute(ctx, id))
			},
			vetoErr: ErrCannotVetoExecuted,
		},
		{
			name:  "vetoed",
			state: StateVetoed,
			setup: func(t *testing.T, env *testEnv, id uint) {
				require.NoError(t, env.gov.Veto(ctx, testVetoer, id))
			},
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			env := newTestEnv(t)
			id := env.propose(t, "alice")
			testDef.setup(t, env, id)
			env.requireState(t, id, testDef.state)

			err := env.gov.Veto(ctx, testVetoer, id)
			if testDef.vetoErr != nil {
				require.ErrorIs(t, err, testDef.vetoErr)
				env.requireState(t, id, testDef.state)
				return
			}
			require.NoError(t, err)
			env.requireState(t, id, StateVetoed)
			if testDef.after != nil {
				testDef.after(t, env, id)
			}
		})
	}
}

func TestVetoAuthorization(t *testing.T) {
	env := newTestEnv(t)
	id := env.propose(t, "alice")

	err := env.gov.Veto(context.Background(), "alice", id)
	require.ErrorIs(t, err, ErrNotVetoer)
	assert.Equal(t, KindAuthorization, KindOf(err))
	env.requireState(t, id, StatePending)

	err = env.gov.Veto(context.Background(), testVetoer, 99)
	require.ErrorIs(t, err, ErrProposalNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestBurnVetoPower(t *testing.T) {
	env := newTestEnv(t)
	_, vetoerCh := env.bus.Subscribe(event.NewVetoerEventType)
	id := env.propose(t, "alice")

	require.ErrorIs(t, env.gov.BurnVetoPower(context.Background(), "alice"), ErrNotVetoer)
	require.NoError(t, env.gov.BurnVetoPower(context.Background(), testVetoer))

	vetoer, ok, err := env.gov.Vetoer(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, vetoer)

	err = env.gov.Veto(context.Background(), testVetoer, id)
	require.ErrorIs(t, err, ErrVetoPowerBurned)
	assert.Equal(t, KindIrreversibleConfig, KindOf(err))

	require.ErrorIs(t, env.gov.SetVetoer(context.Background(), testVetoer, "new"), ErrNotVetoer)
	require.ErrorIs(t, env.gov.BurnVetoPower(context.Background(), testVetoer), ErrNotVetoer)

	require.Len(t, vetoerCh, 1)
	evt := <-vetoerCh
	data, ok := evt.Data.(event.NewVetoerEvent)
	require.True(t, ok)
	assert.Equal(t, testVetoer, data.OldVetoer)
	assert.Empty(t, data.NewVetoer)
}

func TestSetVetoer(t *testing.T) {
	env := newTestEnv(t)
	id := env.propose(t, "alice")

	require.ErrorIs(t, env.gov.SetVetoer(context.Background(), "alice", "alice"), ErrNotVetoer)
	require.ErrorIs(t, env.gov.SetVetoer(context.Background(), testVetoer, ""), ErrEmptyIdentity)
	require.NoError(t, env.gov.SetVetoer(context.Background(), testVetoer, "council"))

	vetoer, ok, err := env.gov.Vetoer(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "council", vetoer)

	require.ErrorIs(t, env.gov.Veto(context.Background(), testVetoer, id), ErrNotVetoer)
	require.NoError(t, env.gov.Veto(context.Background(), "council", id))
}

func TestInitialVetoer(t *testing.T) {
	env := newTestEnv(t, WithVetoer(""))
	_, ok, err := env.gov.Vetoer(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	// a stored authority outlives the configured initial vetoer
	env = newTestEnv(t)
	require.NoError(t, env.gov.SetVetoer(context.Background(), testVetoer, "council"))
	gov, err := New(
		WithDatabase(env.db),
		WithTimelock(env.timelock),
		WithVotes(env.weights),
		WithClock(env.clock),
		WithVetoer("someone-else"),
	)
	require.NoError(t, err)
	vetoer, ok, err := gov.Vetoer(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "council", vetoer)
}
