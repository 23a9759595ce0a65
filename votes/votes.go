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

// Package votes provides historical voting weights. Weights are recorded as
// checkpoints so that a balance can be looked up as of any past block.
package votes

import (
	"errors"
	"fmt"
	"math/bits"
	"sort"
	"sync"
)

var (
	ErrCheckpointOrder = errors.New("checkpoint block precedes latest checkpoint")
	ErrSupplyOverflow  = errors.New("total supply overflows uint64")
	ErrEmptyAccount    = errors.New("account must not be empty")
)

// Source is the voting-weight collaborator of the governor
type Source interface {
	// VotingWeightOf returns the weight held by account as of atBlock
	VotingWeightOf(account string, atBlock uint64) (uint64, error)
	// TotalSupply returns the total weight in existence as of atBlock
	TotalSupply(atBlock uint64) (uint64, error)
}

type checkpoint struct {
	fromBlock uint64
	weight    uint64
}

type history []checkpoint

// at returns the weight of the last checkpoint at or before block
func (h history) at(block uint64) uint64 {
	idx := sort.Search(len(h), func(i int) bool {
		return h[i].fromBlock > block
	})
	if idx == 0 {
		return 0
	}
	return h[idx-1].weight
}

func (h history) latest() (checkpoint, bool) {
	if len(h) == 0 {
		return checkpoint{}, false
	}
	return h[len(h)-1], true
}

// record appends a checkpoint or overwrites the latest one when it is for the
// same block
func (h history) record(block, weight uint64) (history, error) {
	last, ok := h.latest()
	if !ok {
		return append(h, checkpoint{fromBlock: block, weight: weight}), nil
	}
	switch {
	case block < last.fromBlock:
		return h, fmt.Errorf(
			"%w: %d < %d",
			ErrCheckpointOrder,
			block,
			last.fromBlock,
		)
	case block == last.fromBlock:
		h[len(h)-1].weight = weight
		return h, nil
	default:
		return append(h, checkpoint{fromBlock: block, weight: weight}), nil
	}
}

// Checkpoints is an in-memory Source
type Checkpoints struct {
	accounts map[string]history
	supply   history
	mu       sync.RWMutex
}

func NewCheckpoints() *Checkpoints {
	return &Checkpoints{
		accounts: make(map[string]history),
	}
}

// SetWeight records that account holds weight from block onward. The total
// supply checkpoint at block is adjusted by the difference.
func (c *Checkpoints) SetWeight(account string, block, weight uint64) error {
	if account == "" {
		return ErrEmptyAccount
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	acct := c.accounts[account]
	if last, ok := acct.latest(); ok && block < last.fromBlock {
		return fmt.Errorf("%s: %w", account, ErrCheckpointOrder)
	}
	if last, ok := c.supply.latest(); ok && block < last.fromBlock {
		return fmt.Errorf("supply: %w", ErrCheckpointOrder)
	}
	prevWeight := acct.at(block)
	supply := c.supply.at(block)
	// prevWeight is part of supply, so the subtraction cannot underflow
	supply -= prevWeight
	newSupply, carry := bits.Add64(supply, weight, 0)
	if carry != 0 {
		return ErrSupplyOverflow
	}
	newSupplyHist, err := c.supply.record(block, newSupply)
	if err != nil {
		return err
	}
	newAcct, err := acct.record(block, weight)
	if err != nil {
		return err
	}
	c.supply = newSupplyHist
	c.accounts[account] = newAcct
	return nil
}

func (c *Checkpoints) VotingWeightOf(account string, atBlock uint64) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accounts[account].at(atBlock), nil
}

func (c *Checkpoints) TotalSupply(atBlock uint64) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.supply.at(atBlock), nil
}

// Accounts returns the accounts that ever held a checkpoint, sorted
func (c *Checkpoints) Accounts() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ret := make([]string, 0, len(c.accounts))
	for account := range c.accounts {
		ret = append(ret, account)
	}
	sort.Strings(ret)
	return ret
}
