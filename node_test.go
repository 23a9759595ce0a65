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

package governor_test

import (
	"context"
	"testing"
	"time"

	"github.com/blinklabs-io/governor"
	"github.com/blinklabs-io/governor/chain"
	"github.com/blinklabs-io/governor/event"
	"github.com/blinklabs-io/governor/governance"
	"github.com/blinklabs-io/governor/votes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWeights(t *testing.T) *votes.Checkpoints {
	t.Helper()
	weights := votes.NewCheckpoints()
	require.NoError(t, weights.SetWeight("alice", 0, 600))
	require.NoError(t, weights.SetWeight("bob", 0, 400))
	return weights
}

func TestNewRequiresClockAndVotes(t *testing.T) {
	_, err := governor.New(governor.NewConfig())
	require.Error(t, err)

	_, err = governor.New(governor.NewConfig(
		governor.WithClock(chain.Fixed{Block: 1, Time: 1}),
	))
	require.Error(t, err)
}

func TestNodeStartAndStop(t *testing.T) {
	clock := chain.NewSimulated(1, 1_700_000_000, 12)
	n, err := governor.New(governor.NewConfig(
		governor.WithClock(clock),
		governor.WithVotes(testWeights(t)),
		governor.WithVotingPeriod(10),
		governor.WithVetoer("vetoer"),
	))
	require.NoError(t, err)
	require.NoError(t, n.Start())

	gov := n.Governance()
	require.NotNil(t, gov)
	assert.Equal(t, uint64(10), gov.VotingPeriod())

	_, created := n.EventBus().Subscribe(event.ProposalCreatedEventType)
	id, err := gov.Propose(context.Background(), "alice", governance.ProposeRequest{
		Targets:     []string{"treasury"},
		Values:      []uint64{0},
		Signatures:  []string{"pay()"},
		Calldatas:   [][]byte{{0x01}},
		Description: "first",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(1), id)

	select {
	case evt := <-created:
		data, ok := evt.Data.(event.ProposalCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, uint(1), data.ProposalID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for proposal created event")
	}

	vetoer, ok, err := gov.Vetoer(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "vetoer", vetoer)

	require.NoError(t, n.Stop())
	// Stop is idempotent
	require.NoError(t, n.Stop())
}

func TestNodeRunStopsOnContextCancel(t *testing.T) {
	n, err := governor.New(governor.NewConfig(
		governor.WithClock(chain.Fixed{Block: 1, Time: 1}),
		governor.WithVotes(testWeights(t)),
		governor.WithApiListenAddress("127.0.0.1:0"),
		governor.WithShutdownTimeout(5*time.Second),
	))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() {
		runErr <- n.Run(ctx)
	}()
	cancel()
	select {
	case err := <-runErr:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for Run to return")
	}
	require.NoError(t, n.Stop())
}
