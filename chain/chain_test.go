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

package chain_test

import (
	"testing"
	"time"

	"github.com/blinklabs-io/governor/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedMine(t *testing.T) {
	c := chain.NewSimulated(10, 1000, 0)
	assert.Equal(t, uint64(10), c.BlockNumber())
	assert.Equal(t, uint64(1000), c.Timestamp())

	c.Mine()
	assert.Equal(t, uint64(11), c.BlockNumber())
	assert.Equal(t, uint64(1000+chain.DefaultBlockTime), c.Timestamp())

	c.AdvanceBlocks(5)
	assert.Equal(t, uint64(16), c.BlockNumber())
	assert.Equal(t, uint64(1000+6*chain.DefaultBlockTime), c.Timestamp())
}

func TestSimulatedNextBlockTimestamp(t *testing.T) {
	c := chain.NewSimulated(1, 100, 1)

	err := c.SetNextBlockTimestamp(100)
	require.ErrorIs(t, err, chain.ErrTimestampNotIncreasing)

	require.NoError(t, c.SetNextBlockTimestamp(5000))
	// Not applied until a block is mined
	assert.Equal(t, uint64(100), c.Timestamp())
	c.Mine()
	assert.Equal(t, uint64(5000), c.Timestamp())
	assert.Equal(t, uint64(2), c.BlockNumber())

	// Override applies to a single block only
	c.Mine()
	assert.Equal(t, uint64(5001), c.Timestamp())
}

func TestSimulatedIncreaseTime(t *testing.T) {
	c := chain.NewSimulated(1, 100, 12)
	require.NoError(t, c.IncreaseTime(172800))
	assert.Equal(t, uint64(2), c.BlockNumber())
	assert.Equal(t, uint64(172900), c.Timestamp())
	require.ErrorIs(t, c.IncreaseTime(0), chain.ErrTimestampNotIncreasing)
}

func TestFixedClock(t *testing.T) {
	var c chain.Clock = chain.Fixed{Block: 42, Time: 1700000000}
	assert.Equal(t, uint64(42), c.BlockNumber())
	assert.Equal(t, uint64(1700000000), c.Timestamp())
}

func TestWallClock(t *testing.T) {
	now := time.Unix(1_000_120, 0)
	c := chain.Wall{
		GenesisTime: 1_000_000,
		BlockTime:   12,
		Now:         func() time.Time { return now },
	}
	assert.Equal(t, uint64(10), c.BlockNumber())
	assert.Equal(t, uint64(1_000_120), c.Timestamp())

	// before genesis
	c.GenesisTime = 2_000_000
	assert.Zero(t, c.BlockNumber())
}
