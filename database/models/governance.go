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

package models

import (
	"errors"

	"github.com/blinklabs-io/governor/database/types"
)

var (
	ErrProposalNotFound = errors.New("proposal not found")
	ErrReceiptExists    = errors.New("receipt already exists")
)

// Support constants represent the vote choice recorded on a Receipt.
const (
	SupportAgainst = 0
	SupportFor     = 1
	SupportAbstain = 2
)

// Proposal is the persistent record of a governance proposal. The lifecycle
// state is never stored; it is derived from these fields plus the current
// block and timestamp.
type Proposal struct {
	ID                uint         `gorm:"primarykey;autoIncrement:false"`
	Proposer          string       `gorm:"index;size:64;not null"`
	Description       string       `gorm:"not null"`
	StartBlock        uint64       `gorm:"index;not null"`
	EndBlock          uint64       `gorm:"index;not null"`
	CreatedBlock      uint64       `gorm:"not null"`
	Eta               uint64       `gorm:"not null"`
	ForVotes          types.Uint64 `gorm:"type:text;not null"`
	AgainstVotes      types.Uint64 `gorm:"type:text;not null"`
	AbstainVotes      types.Uint64 `gorm:"type:text;not null"`
	QuorumVotes       types.Uint64 `gorm:"type:text;not null"`
	ProposalThreshold types.Uint64 `gorm:"type:text;not null"`
	Canceled          bool         `gorm:"not null"`
	Vetoed            bool         `gorm:"not null"`
	Executed          bool         `gorm:"not null"`
}

// TableName returns the table name
func (Proposal) TableName() string {
	return "proposal"
}

// ProposalAction is one call of a proposal's ordered action list.
type ProposalAction struct {
	ID          uint         `gorm:"primarykey"`
	ProposalID  uint         `gorm:"uniqueIndex:idx_action_proposal_index,priority:1;not null"`
	ActionIndex uint32       `gorm:"uniqueIndex:idx_action_proposal_index,priority:2;not null"`
	Target      string       `gorm:"size:64;not null"`
	Value       types.Uint64 `gorm:"type:text;not null"`
	Signature   string       `gorm:"not null"`
	Calldata    []byte
}

// TableName returns the table name
func (ProposalAction) TableName() string {
	return "proposal_action"
}

// Receipt records a single voter's ballot on a proposal. The unique index
// enforces one receipt per voter per proposal.
type Receipt struct {
	ID         uint         `gorm:"primarykey"`
	ProposalID uint         `gorm:"uniqueIndex:idx_receipt_unique,priority:1;not null"`
	Voter      string       `gorm:"uniqueIndex:idx_receipt_unique,priority:2;size:64;not null"`
	Support    uint8        `gorm:"not null"` // 0=Against, 1=For, 2=Abstain
	Votes      types.Uint64 `gorm:"type:text;not null"`
	Reason     string
	CastBlock  uint64 `gorm:"not null"`
}

// TableName returns the table name
func (Receipt) TableName() string {
	return "receipt"
}

// Authority holds the single vetoer slot. A NULL vetoer means the veto power
// has been burned.
type Authority struct {
	ID           uint    `gorm:"primarykey"`
	Vetoer       *string `gorm:"size:64"`
	UpdatedBlock uint64  `gorm:"not null"`
}

// TableName returns the table name
func (Authority) TableName() string {
	return "authority"
}
