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

package chain

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultBlockTime is the number of seconds between simulated blocks
const DefaultBlockTime = 12

var ErrTimestampNotIncreasing = errors.New(
	"next block timestamp must be greater than the current block timestamp",
)

// Clock exposes the metadata of the block a governance operation runs in
type Clock interface {
	// BlockNumber returns the current block height
	BlockNumber() uint64
	// Timestamp returns the current block timestamp in seconds
	Timestamp() uint64
}

// Fixed is a Clock pinned to a single block, used by one-shot CLI commands
type Fixed struct {
	Block uint64
	Time  uint64
}

func (f Fixed) BlockNumber() uint64 {
	return f.Block
}

func (f Fixed) Timestamp() uint64 {
	return f.Time
}

// Simulated is a manually mined chain. Every Mine produces one block whose
// timestamp is the previous one plus the block time, unless a timestamp was
// set for it with SetNextBlockTimestamp.
type Simulated struct {
	nextTimestamp *uint64
	block         uint64
	timestamp     uint64
	blockTime     uint64
	mu            sync.RWMutex
}

// NewSimulated creates a simulated chain positioned at the given block
func NewSimulated(startBlock, startTime, blockTime uint64) *Simulated {
	if blockTime == 0 {
		blockTime = DefaultBlockTime
	}
	return &Simulated{
		block:     startBlock,
		timestamp: startTime,
		blockTime: blockTime,
	}
}

func (s *Simulated) BlockNumber() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.block
}

func (s *Simulated) Timestamp() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timestamp
}

// Mine produces a single block
func (s *Simulated) Mine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mine()
}

func (s *Simulated) mine() {
	s.block++
	if s.nextTimestamp != nil {
		s.timestamp = *s.nextTimestamp
		s.nextTimestamp = nil
		return
	}
	s.timestamp += s.blockTime
}

// AdvanceBlocks mines count blocks
func (s *Simulated) AdvanceBlocks(count uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for range count {
		s.mine()
	}
}

// SetNextBlockTimestamp fixes the timestamp of the next mined block
func (s *Simulated) SetNextBlockTimestamp(timestamp uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timestamp <= s.timestamp {
		return fmt.Errorf(
			"%w: %d <= %d",
			ErrTimestampNotIncreasing,
			timestamp,
			s.timestamp,
		)
	}
	s.nextTimestamp = &timestamp
	return nil
}

// IncreaseTime mines one block that lands the given number of seconds after
// the current block
func (s *Simulated) IncreaseTime(seconds uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seconds == 0 {
		return ErrTimestampNotIncreasing
	}
	next := s.timestamp + seconds
	s.nextTimestamp = &next
	s.mine()
	return nil
}

// Wall derives the block height from wall-clock time, assuming one block
// every BlockTime seconds since GenesisTime
type Wall struct {
	// Now defaults to time.Now
	Now         func() time.Time
	GenesisTime uint64
	BlockTime   uint64
}

func (w Wall) now() uint64 {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	ts := now().Unix()
	if ts < 0 {
		return 0
	}
	return uint64(ts)
}

// BlockNumber returns the number of whole blocks since genesis
func (w Wall) BlockNumber() uint64 {
	ts := w.now()
	if ts < w.GenesisTime {
		return 0
	}
	blockTime := w.BlockTime
	if blockTime == 0 {
		blockTime = DefaultBlockTime
	}
	return (ts - w.GenesisTime) / blockTime
}

// Timestamp returns the current wall-clock time in seconds
func (w Wall) Timestamp() uint64 {
	return w.now()
}
