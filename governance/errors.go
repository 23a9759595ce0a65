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
	"errors"

	"github.com/blinklabs-io/governor/database/models"
	"github.com/blinklabs-io/governor/timelock"
)

var (
	// Authorization
	ErrNotVetoer          = errors.New("only vetoer")
	ErrCancelUnauthorized = errors.New("proposer above threshold")

	// State conflicts
	ErrCannotVetoExecuted       = errors.New("cannot veto executed proposal")
	ErrCannotCancel             = errors.New("proposal cannot be canceled in its current state")
	ErrVotingClosed             = errors.New("voting is closed")
	ErrProposalNotSucceeded     = errors.New("proposal can only be queued if it is succeeded")
	ErrProposalNotQueued        = errors.New("proposal can only be executed if it is queued")
	ErrAlreadyHasActiveProposal = errors.New(
		"one live proposal per proposer, found an already pending or active proposal",
	)

	// Thresholds
	ErrBelowThreshold = errors.New("proposer votes below proposal threshold")

	// Duplicate actions
	ErrAlreadyVoted        = errors.New("voter already voted")
	ErrActionAlreadyQueued = errors.New("identical proposal action already queued at eta")

	// Irreversible configuration
	ErrVetoPowerBurned = errors.New("veto power burned")

	// Input validation
	ErrInvalidActionCount = errors.New("invalid action count")
	ErrActionMismatch     = errors.New("proposal function information arity mismatch")
	ErrInvalidSupport     = errors.New("invalid vote type")
	ErrEmptyIdentity      = errors.New("identity must not be empty")
	ErrInvalidBPS         = errors.New("basis points out of range")

	// Arithmetic
	ErrArithmeticOverflow = errors.New("arithmetic overflow")

	// Not found
	ErrProposalNotFound = errors.New("invalid proposal id")
)

// Kind classifies governance failures
type Kind int

const (
	KindUnknown Kind = iota
	KindAuthorization
	KindStateConflict
	KindThreshold
	KindDuplicateAction
	KindIrreversibleConfig
	KindInputValidation
	KindArithmetic
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindStateConflict:
		return "state_conflict"
	case KindThreshold:
		return "threshold"
	case KindDuplicateAction:
		return "duplicate_action"
	case KindIrreversibleConfig:
		return "irreversible_config"
	case KindInputValidation:
		return "input_validation"
	case KindArithmetic:
		return "arithmetic"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

var errorKinds = []struct {
	err  error
	kind Kind
}{
	{ErrNotVetoer, KindAuthorization},
	{ErrCancelUnauthorized, KindAuthorization},
	{ErrCannotVetoExecuted, KindStateConflict},
	{ErrCannotCancel, KindStateConflict},
	{ErrVotingClosed, KindStateConflict},
	{ErrProposalNotSucceeded, KindStateConflict},
	{ErrProposalNotQueued, KindStateConflict},
	{ErrAlreadyHasActiveProposal, KindStateConflict},
	{timelock.ErrNotReady, KindStateConflict},
	{timelock.ErrStale, KindStateConflict},
	{timelock.ErrActionNotQueued, KindStateConflict},
	{ErrBelowThreshold, KindThreshold},
	{ErrAlreadyVoted, KindDuplicateAction},
	{ErrActionAlreadyQueued, KindDuplicateAction},
	{timelock.ErrActionAlreadyQueued, KindDuplicateAction},
	{ErrVetoPowerBurned, KindIrreversibleConfig},
	{ErrInvalidActionCount, KindInputValidation},
	{ErrActionMismatch, KindInputValidation},
	{ErrInvalidSupport, KindInputValidation},
	{ErrEmptyIdentity, KindInputValidation},
	{ErrInvalidBPS, KindInputValidation},
	{timelock.ErrUnknownTarget, KindInputValidation},
	{ErrArithmeticOverflow, KindArithmetic},
	{ErrProposalNotFound, KindNotFound},
	{models.ErrProposalNotFound, KindNotFound},
}

// KindOf returns the class of a governance error, or KindUnknown for nil and
// for failures outside the governance taxonomy
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	for _, ek := range errorKinds {
		if errors.Is(err, ek.err) {
			return ek.kind
		}
	}
	return KindUnknown
}
