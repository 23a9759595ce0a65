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

package sqlite

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/governor/database/models"
	"github.com/blinklabs-io/governor/database/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const authorityRowId = 1

// GetProposal retrieves a proposal by ID. Returns nil if no such proposal exists.
func (d *MetadataStoreSqlite) GetProposal(
	id uint,
	txn types.Txn,
) (*models.Proposal, error) {
	var proposal models.Proposal
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("id = ?", id).First(&proposal); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &proposal, nil
}

// GetProposals returns all proposals ordered by ID
func (d *MetadataStoreSqlite) GetProposals(
	txn types.Txn,
) ([]models.Proposal, error) {
	var proposals []models.Proposal
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Order("id ASC").Find(&proposals); result.Error != nil {
		return nil, result.Error
	}
	return proposals, nil
}

// AddProposal inserts a new proposal along with its ordered action list
func (d *MetadataStoreSqlite) AddProposal(
	proposal *models.Proposal,
	actions []models.ProposalAction,
	txn types.Txn,
) error {
	if proposal == nil {
		return errors.New("nil proposal")
	}
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Create(proposal); result.Error != nil {
		return fmt.Errorf("insert proposal %d: %w", proposal.ID, result.Error)
	}
	if len(actions) == 0 {
		return nil
	}
	for i := range actions {
		actions[i].ProposalID = proposal.ID
		// #nosec G115 -- action counts are bounded well below MaxUint32
		actions[i].ActionIndex = uint32(i)
	}
	if result := db.Create(&actions); result.Error != nil {
		return fmt.Errorf(
			"insert actions for proposal %d: %w",
			proposal.ID,
			result.Error,
		)
	}
	return nil
}

// SetProposal writes back every column of an existing proposal
func (d *MetadataStoreSqlite) SetProposal(
	proposal *models.Proposal,
	txn types.Txn,
) error {
	if proposal == nil {
		return errors.New("nil proposal")
	}
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Model(&models.Proposal{}).
		Where("id = ?", proposal.ID).
		Select("*").
		Updates(proposal)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrProposalNotFound
	}
	return nil
}

// GetProposalActions returns the actions of a proposal in submission order
func (d *MetadataStoreSqlite) GetProposalActions(
	proposalID uint,
	txn types.Txn,
) ([]models.ProposalAction, error) {
	var actions []models.ProposalAction
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("proposal_id = ?", proposalID).
		Order("action_index ASC").
		Find(&actions); result.Error != nil {
		return nil, result.Error
	}
	return actions, nil
}

// GetLatestProposalID returns the highest proposal ID created by the given
// proposer, or 0 if the proposer never proposed
func (d *MetadataStoreSqlite) GetLatestProposalID(
	proposer string,
	txn types.Txn,
) (uint, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	var maxId int64
	row := db.Model(&models.Proposal{}).
		Select("COALESCE(MAX(id), 0)").
		Where("proposer = ?", proposer).
		Row()
	if err := row.Scan(&maxId); err != nil {
		return 0, err
	}
	// #nosec G115 -- proposal IDs are positive
	return uint(maxId), nil
}

// GetProposalCount returns the highest assigned proposal ID. IDs are assigned
// sequentially starting at 1, so this is also the number of proposals.
func (d *MetadataStoreSqlite) GetProposalCount(txn types.Txn) (uint, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	var maxId int64
	row := db.Model(&models.Proposal{}).
		Select("COALESCE(MAX(id), 0)").
		Row()
	if err := row.Scan(&maxId); err != nil {
		return 0, err
	}
	// #nosec G115 -- proposal IDs are positive
	return uint(maxId), nil
}

// GetReceipt returns the receipt of a voter on a proposal, or nil if the
// voter has not voted
func (d *MetadataStoreSqlite) GetReceipt(
	proposalID uint,
	voter string,
	txn types.Txn,
) (*models.Receipt, error) {
	var receipt models.Receipt
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"proposal_id = ? AND voter = ?",
		proposalID,
		voter,
	).First(&receipt); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &receipt, nil
}

// GetReceipts returns all receipts recorded on a proposal
func (d *MetadataStoreSqlite) GetReceipts(
	proposalID uint,
	txn types.Txn,
) ([]models.Receipt, error) {
	var receipts []models.Receipt
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("proposal_id = ?", proposalID).
		Order("id ASC").
		Find(&receipts); result.Error != nil {
		return nil, result.Error
	}
	return receipts, nil
}

// AddReceipt records a ballot. Receipts are write-once.
func (d *MetadataStoreSqlite) AddReceipt(
	receipt *models.Receipt,
	txn types.Txn,
) error {
	if receipt == nil {
		return errors.New("nil receipt")
	}
	existing, err := d.GetReceipt(receipt.ProposalID, receipt.Voter, txn)
	if err != nil {
		return err
	}
	if existing != nil {
		return models.ErrReceiptExists
	}
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Create(receipt); result.Error != nil {
		return result.Error
	}
	return nil
}

// GetAuthority returns the vetoer authority record, or nil if it has never
// been initialized
func (d *MetadataStoreSqlite) GetAuthority(
	txn types.Txn,
) (*models.Authority, error) {
	var authority models.Authority
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("id = ?", authorityRowId).First(&authority); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &authority, nil
}

// SetAuthority creates or replaces the single authority record
func (d *MetadataStoreSqlite) SetAuthority(
	authority *models.Authority,
	txn types.Txn,
) error {
	if authority == nil {
		return errors.New("nil authority")
	}
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	authority.ID = authorityRowId
	result := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"vetoer",
			"updated_block",
		}),
	}).Create(authority)
	if result.Error != nil {
		return result.Error
	}
	return nil
}
