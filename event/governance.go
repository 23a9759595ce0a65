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

package event

const (
	ProposalCreatedEventType  EventType = "governance.proposal_created"
	VoteCastEventType         EventType = "governance.vote_cast"
	ProposalCanceledEventType EventType = "governance.proposal_canceled"
	ProposalQueuedEventType   EventType = "governance.proposal_queued"
	ProposalExecutedEventType EventType = "governance.proposal_executed"
	ProposalVetoedEventType   EventType = "governance.proposal_vetoed"
	NewVetoerEventType        EventType = "governance.new_vetoer"
)

// ProposalCreatedEvent is published after a proposal is stored
type ProposalCreatedEvent struct {
	Proposer    string
	Description string
	Targets     []string
	ProposalID  uint
	StartBlock  uint64
	EndBlock    uint64
}

// VoteCastEvent is published after a ballot is recorded
type VoteCastEvent struct {
	Voter      string
	Reason     string
	ProposalID uint
	Votes      uint64
	Support    uint8
}

type ProposalCanceledEvent struct {
	ProposalID uint
}

type ProposalQueuedEvent struct {
	ProposalID uint
	Eta        uint64
}

type ProposalExecutedEvent struct {
	ProposalID uint
}

type ProposalVetoedEvent struct {
	ProposalID uint
}

// NewVetoerEvent is published when the vetoer changes. An empty NewVetoer
// means the veto power was burned.
type NewVetoerEvent struct {
	OldVetoer string
	NewVetoer string
}
