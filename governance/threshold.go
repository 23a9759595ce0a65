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
	"math/bits"
)

// BPSDenominator is the number of basis points in a whole
const BPSDenominator = 10_000

// Thresholds converts basis-point fractions of a supply snapshot into
// absolute vote counts
type Thresholds struct {
	ProposalThresholdBPS uint64
	QuorumVotesBPS       uint64
}

// Validate checks that both fractions are non-zero and at most one whole
func (t Thresholds) Validate() error {
	if t.ProposalThresholdBPS == 0 || t.ProposalThresholdBPS > BPSDenominator {
		return fmt.Errorf(
			"%w: proposal threshold %d",
			ErrInvalidBPS,
			t.ProposalThresholdBPS,
		)
	}
	if t.QuorumVotesBPS == 0 || t.QuorumVotesBPS > BPSDenominator {
		return fmt.Errorf("%w: quorum %d", ErrInvalidBPS, t.QuorumVotesBPS)
	}
	return nil
}

// ProposalThresholdFor returns the weight a proposer needs against supply
func (t Thresholds) ProposalThresholdFor(supply uint64) (uint64, error) {
	return bpsOf(supply, t.ProposalThresholdBPS)
}

// QuorumFor returns the forVotes a proposal needs against supply
func (t Thresholds) QuorumFor(supply uint64) (uint64, error) {
	return bpsOf(supply, t.QuorumVotesBPS)
}

// bpsOf computes floor(supply * bps / 10000). The product is taken at 128 bits
// and the division fails if the quotient does not fit in 64 bits.
func bpsOf(supply, bps uint64) (uint64, error) {
	hi, lo := bits.Mul64(supply, bps)
	if hi >= BPSDenominator {
		return 0, fmt.Errorf(
			"%w: %d * %d / %d",
			ErrArithmeticOverflow,
			supply,
			bps,
			BPSDenominator,
		)
	}
	quo, _ := bits.Div64(hi, lo, BPSDenominator)
	return quo, nil
}

// checkedAdd returns a + b or ErrArithmeticOverflow
func checkedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, fmt.Errorf("%w: %d + %d", ErrArithmeticOverflow, a, b)
	}
	return sum, nil
}
