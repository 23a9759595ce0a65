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
	"fmt"
	"strings"

	"github.com/blinklabs-io/governor/database/models"
)

// ProposalState is the lifecycle state of a proposal. It is never stored.
type ProposalState uint8

const (
	StatePending ProposalState = iota
	StateActive
	StateCanceled
	StateDefeated
	StateSucceeded
	StateQueued
	StateExpired
	StateExecuted
	StateVetoed
)

var proposalStateNames = [...]string{
	StatePending:   "Pending",
	StateActive:    "Active",
	StateCanceled:  "Canceled",
	StateDefeated:  "Defeated",
	StateSucceeded: "Succeeded",
	StateQueued:    "Queued",
	StateExpired:   "Expired",
	StateExecuted:  "Executed",
	StateVetoed:    "Vetoed",
}

func (s ProposalState) String() string {
	if int(s) < len(proposalStateNames) {
		return proposalStateNames[s]
	}
	return fmt.Sprintf("ProposalState(%d)", s)
}

func (s ProposalState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseProposalState is the inverse of String, case-insensitive
func ParseProposalState(name string) (ProposalState, error) {
	for i, n := range proposalStateNames {
		if strings.EqualFold(n, name) {
			return ProposalState(i), nil //nolint:gosec
		}
	}
	return 0, fmt.Errorf("unknown proposal state %q", name)
}

// DeriveState computes the state of a proposal from its stored fields, the
// current block height and timestamp, and the timelock grace period.
// Checks run in order and the first match wins. Executed is tested before
// Expired, so an executed proposal never reports Expired.
func DeriveState(
	p *models.Proposal,
	blockNumber uint64,
	timestamp uint64,
	gracePeriod uint64,
) ProposalState {
	switch {
	case p.Vetoed:
		return StateVetoed
	case p.Canceled:
		return StateCanceled
	case blockNumber <= p.StartBlock:
		return StatePending
	case blockNumber <= p.EndBlock:
		return StateActive
	case p.ForVotes <= p.AgainstVotes || p.ForVotes < p.QuorumVotes:
		return StateDefeated
	case p.Eta == 0:
		return StateSucceeded
	case p.Executed:
		return StateExecuted
	case timestamp >= p.Eta && timestamp-p.Eta >= gracePeriod:
		return StateExpired
	default:
		return StateQueued
	}
}
