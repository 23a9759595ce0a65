// Copyright 2025 Blink Labs Software
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

package metadata

import (
	"log/slog"

	"github.com/blinklabs-io/governor/database/models"
	"github.com/blinklabs-io/governor/database/plugin/metadata/sqlite"
	"github.com/blinklabs-io/governor/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type MetadataStore interface {
	// Database
	Close() error
	DB() *gorm.DB
	GetCommitTimestamp(types.Txn) (int64, error)
	SetCommitTimestamp(int64, types.Txn) error
	Transaction() types.Txn

	// Proposals
	AddProposal(
		*models.Proposal,
		[]models.ProposalAction,
		types.Txn,
	) error
	GetProposal(
		uint, // id
		types.Txn,
	) (*models.Proposal, error)
	GetProposals(types.Txn) ([]models.Proposal, error)
	GetProposalActions(
		uint, // proposalId
		types.Txn,
	) ([]models.ProposalAction, error)
	GetLatestProposalID(
		string, // proposer
		types.Txn,
	) (uint, error)
	GetProposalCount(types.Txn) (uint, error)
	SetProposal(*models.Proposal, types.Txn) error

	// Receipts
	AddReceipt(*models.Receipt, types.Txn) error
	GetReceipt(
		uint, // proposalId
		string, // voter
		types.Txn,
	) (*models.Receipt, error)
	GetReceipts(
		uint, // proposalId
		types.Txn,
	) ([]models.Receipt, error)

	// Authority
	GetAuthority(types.Txn) (*models.Authority, error)
	SetAuthority(*models.Authority, types.Txn) error
}

// New creates a new metadata store backed by SQLite
func New(
	dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
	opts ...sqlite.SqliteOptionFunc,
) (MetadataStore, error) {
	return sqlite.NewWithOptions(
		append(
			[]sqlite.SqliteOptionFunc{
				sqlite.WithDataDir(dataDir),
				sqlite.WithLogger(logger),
				sqlite.WithPromRegistry(promRegistry),
			},
			opts...,
		)...,
	)
}
