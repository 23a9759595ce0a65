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
	"context"
	"fmt"

	"github.com/blinklabs-io/governor/database"
	"github.com/blinklabs-io/governor/database/models"
	"github.com/blinklabs-io/governor/event"
	"go.opentelemetry.io/otel/attribute"
)

// currentVetoer returns the vetoer, or "" with false when the power is burned
func (g *Governor) currentVetoer(txn *database.Txn) (string, bool, error) {
	authority, err := g.db.GetAuthority(txn)
	if err != nil {
		return "", false, err
	}
	if authority == nil || authority.Vetoer == nil {
		return "", false, nil
	}
	return *authority.Vetoer, true, nil
}

// requireVetoer checks that caller holds the veto power
func (g *Governor) requireVetoer(txn *database.Txn, caller string) (string, error) {
	vetoer, ok, err := g.currentVetoer(txn)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrVetoPowerBurned
	}
	if caller != vetoer {
		return "", fmt.Errorf("%w: caller %s", ErrNotVetoer, caller)
	}
	return vetoer, nil
}

// Veto permanently stops a proposal in any state except Executed. Vetoing an
// already vetoed proposal succeeds without effect.
func (g *Governor) Veto(ctx context.Context, caller string, proposalID uint) error {
	_, span := g.startOp(
		ctx,
		"veto",
		proposalAttr(proposalID),
		attribute.String("caller", caller),
	)
	var err error
	vetoed := false
	defer func() { g.finishOp(span, "veto", err) }()

	g.mu.Lock()
	defer g.mu.Unlock()

	err = g.update(func(txn *database.Txn) error {
		if _, err := g.requireVetoer(txn, caller); err != nil {
			return err
		}
		proposal, state, err := g.loadProposal(proposalID, txn)
		if err != nil {
			return err
		}
		if state == StateExecuted {
			return fmt.Errorf("%w: proposal %d", ErrCannotVetoExecuted, proposalID)
		}
		if proposal.Vetoed {
			return nil
		}
		if err := g.withdrawQueued(txn, proposalID, proposal.Eta); err != nil {
			return err
		}
		// Vetoed replaces Canceled; a proposal carries one terminal flag
		proposal.Vetoed = true
		proposal.Canceled = false
		if err := g.db.SetProposal(proposal, txn); err != nil {
			return err
		}
		g.publish(txn, event.ProposalVetoedEventType, event.ProposalVetoedEvent{
			ProposalID: proposalID,
		})
		vetoed = true
		return nil
	})
	if err != nil || !vetoed {
		return err
	}
	g.metrics.vetoes.Inc()
	g.logger.Info(
		fmt.Sprintf("proposal %d vetoed", proposalID),
		"component", "governance",
	)
	return nil
}

// SetVetoer hands the veto power to a new identity. Only the current vetoer
// may call it.
func (g *Governor) SetVetoer(ctx context.Context, caller string, newVetoer string) error {
	_, span := g.startOp(ctx, "set_vetoer", attribute.String("new_vetoer", newVetoer))
	var err error
	defer func() { g.finishOp(span, "set_vetoer", err) }()

	if newVetoer == "" {
		err = fmt.Errorf("%w: new vetoer", ErrEmptyIdentity)
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	err = g.update(func(txn *database.Txn) error {
		oldVetoer, ok, err := g.currentVetoer(txn)
		if err != nil {
			return err
		}
		// Once burned, nobody holds the power to hand over
		if !ok || caller != oldVetoer {
			return fmt.Errorf("%w: caller %s", ErrNotVetoer, caller)
		}
		return g.writeVetoer(txn, oldVetoer, &newVetoer)
	})
	if err != nil {
		return err
	}
	g.logger.Info(
		"vetoer changed",
		"component", "governance",
		"vetoer", newVetoer,
	)
	return nil
}

// BurnVetoPower renounces the veto power permanently
func (g *Governor) BurnVetoPower(ctx context.Context, caller string) error {
	_, span := g.startOp(ctx, "burn_veto_power", attribute.String("caller", caller))
	var err error
	defer func() { g.finishOp(span, "burn_veto_power", err) }()

	g.mu.Lock()
	defer g.mu.Unlock()

	err = g.update(func(txn *database.Txn) error {
		oldVetoer, ok, err := g.currentVetoer(txn)
		if err != nil {
			return err
		}
		if !ok || caller != oldVetoer {
			return fmt.Errorf("%w: caller %s", ErrNotVetoer, caller)
		}
		return g.writeVetoer(txn, oldVetoer, nil)
	})
	if err != nil {
		return err
	}
	g.logger.Warn(
		"veto power burned",
		"component", "governance",
		"caller", caller,
	)
	return nil
}

func (g *Governor) writeVetoer(txn *database.Txn, oldVetoer string, newVetoer *string) error {
	if err := g.db.SetAuthority(
		&models.Authority{
			Vetoer:       newVetoer,
			UpdatedBlock: g.clock.BlockNumber(),
		},
		txn,
	); err != nil {
		return err
	}
	evt := event.NewVetoerEvent{OldVetoer: oldVetoer}
	if newVetoer != nil {
		evt.NewVetoer = *newVetoer
	}
	g.publish(txn, event.NewVetoerEventType, evt)
	return nil
}
