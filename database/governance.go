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

package database

import (
	"fmt"

	"github.com/blinklabs-io/governor/database/models"
)

// metadataWrite runs fn in txn, or in a metadata-only transaction that is
// committed on success when txn is nil
func (d *Database) metadataWrite(txn *Txn, fn func(*Txn) error) error {
	if txn != nil {
		return fn(txn)
	}
	txn = d.MetadataTxn(true)
	owned := true
	defer func() {
		if owned {
			txn.Rollback() //nolint:errcheck
		}
	}()
	if err := fn(txn); err != nil {
		return err
	}
	owned = false
	if err := txn.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetProposal returns a proposal by ID
func (d *Database) GetProposal(
	id uint,
	txn *Txn,
) (*models.Proposal, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	proposal, err := d.metadata.GetProposal(id, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get proposal %d: %w", id, err)
	}
	if proposal == nil {
		return nil, models.ErrProposalNotFound
	}
	return proposal, nil
}

// GetProposals returns every proposal ordered by ID
func (d *Database) GetProposals(txn *Txn) ([]models.Proposal, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	proposals, err := d.metadata.GetProposals(txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get proposals: %w", err)
	}
	return proposals, nil
}

// AddProposal stores a new proposal and its actions
func (d *Database) AddProposal(
	proposal *models.Proposal,
	actions []models.ProposalAction,
	txn *Txn,
) error {
	return d.metadataWrite(txn, func(txn *Txn) error {
		if err := d.metadata.AddProposal(proposal, actions, txn.Metadata()); err != nil {
			return fmt.Errorf("failed to add proposal: %w", err)
		}
		return nil
	})
}

// SetProposal persists changes to an existing proposal
func (d *Database) SetProposal(proposal *models.Proposal, txn *Txn) error {
	return d.metadataWrite(txn, func(txn *Txn) error {
		if err := d.metadata.SetProposal(proposal, txn.Metadata()); err != nil {
			return fmt.Errorf("failed to update proposal %d: %w", proposal.ID, err)
		}
		return nil
	})
}

// GetProposalActions returns the ordered actions of a proposal
func (d *Database) GetProposalActions(
	proposalID uint,
	txn *Txn,
) ([]models.ProposalAction, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	actions, err := d.metadata.GetProposalActions(proposalID, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf(
			"failed to get actions for proposal %d: %w",
			proposalID,
			err,
		)
	}
	return actions, nil
}

// GetLatestProposalID returns the last proposal ID of a proposer, 0 if none
func (d *Database) GetLatestProposalID(
	proposer string,
	txn *Txn,
) (uint, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	id, err := d.metadata.GetLatestProposalID(proposer, txn.Metadata())
	if err != nil {
		return 0, fmt.Errorf("failed to get latest proposal: %w", err)
	}
	return id, nil
}

// GetProposalCount returns the number of proposals ever created
func (d *Database) GetProposalCount(txn *Txn) (uint, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	count, err := d.metadata.GetProposalCount(txn.Metadata())
	if err != nil {
		return 0, fmt.Errorf("failed to get proposal count: %w", err)
	}
	return count, nil
}

// GetReceipt returns the receipt of a voter, or nil if the voter has not voted
func (d *Database) GetReceipt(
	proposalID uint,
	voter string,
	txn *Txn,
) (*models.Receipt, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	receipt, err := d.metadata.GetReceipt(proposalID, voter, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	return receipt, nil
}

// GetReceipts returns all receipts of a proposal
func (d *Database) GetReceipts(
	proposalID uint,
	txn *Txn,
) ([]models.Receipt, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	receipts, err := d.metadata.GetReceipts(proposalID, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get receipts: %w", err)
	}
	return receipts, nil
}

// AddReceipt records a ballot. Returns models.ErrReceiptExists on a repeat vote.
func (d *Database) AddReceipt(receipt *models.Receipt, txn *Txn) error {
	return d.metadataWrite(txn, func(txn *Txn) error {
		if err := d.metadata.AddReceipt(receipt, txn.Metadata()); err != nil {
			return fmt.Errorf("failed to add receipt: %w", err)
		}
		return nil
	})
}

// GetAuthority returns the vetoer authority record, or nil if uninitialized
func (d *Database) GetAuthority(txn *Txn) (*models.Authority, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	authority, err := d.metadata.GetAuthority(txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get authority: %w", err)
	}
	return authority, nil
}

// SetAuthority replaces the vetoer authority record
func (d *Database) SetAuthority(authority *models.Authority, txn *Txn) error {
	return d.metadataWrite(txn, func(txn *Txn) error {
		if err := d.metadata.SetAuthority(authority, txn.Metadata()); err != nil {
			return fmt.Errorf("failed to set authority: %w", err)
		}
		return nil
	})
}
