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

package api

import (
	"context"

	"github.com/blinklabs-io/governor/governance"
)

// GovernanceNode is the query surface the API server reads from.
// *governance.Governor implements it.
type GovernanceNode interface {
	Proposals(ctx context.Context) ([]*governance.ProposalView, error)
	Proposal(ctx context.Context, proposalID uint) (*governance.ProposalView, error)
	State(ctx context.Context, proposalID uint) (governance.ProposalState, error)
	GetReceipt(
		ctx context.Context,
		proposalID uint,
		voter string,
	) (governance.Receipt, error)
	Vetoer(ctx context.Context) (string, bool, error)
	LatestProposalID(ctx context.Context, proposer string) (uint, error)
}

var _ GovernanceNode = (*governance.Governor)(nil)
