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
	"math"
	"testing"
	"time"

	"github.com/blinklabs-io/governor/database/models"
	"github.com/blinklabs-io/governor/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *MetadataStoreSqlite {
	t.Helper()
	store, err := New("", nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close() //nolint:errcheck
	})
	return store
}

func testProposal(id uint, proposer string) *models.Proposal {
	return &models.Proposal{
		ID:                id,
		Proposer:          proposer,
		Description:       "test proposal",
		StartBlock:        11,
		EndBlock:          5771,
		CreatedBlock:      10,
		QuorumVotes:       100,
		ProposalThreshold: 50,
	}
}

func TestAddAndGetProposal(t *testing.T) {
	store := setupTestStore(t)

	// Initially no proposal
	proposal, err := store.GetProposal(1, nil)
	require.NoError(t, err)
	assert.Nil(t, proposal)

	actions := []models.ProposalAction{
		{Target: "treasury", Value: 0, Signature: "transfer(address,uint256)", Calldata: []byte{0x01}},
		{Target: "registry", Value: 5, Signature: "", Calldata: []byte{0x02, 0x03}},
	}
	require.NoError(t, store.AddProposal(testProposal(1, "alice"), actions, nil))

	proposal, err = store.GetProposal(1, nil)
	require.NoError(t, err)
	require.NotNil(t, proposal)
	assert.Equal(t, "alice", proposal.Proposer)
	assert.Equal(t, uint64(11), proposal.StartBlock)
	assert.Equal(t, uint64(5771), proposal.EndBlock)
	assert.Equal(t, types.Uint64(100), proposal.QuorumVotes)
	assert.Equal(t, types.Uint64(50), proposal.ProposalThreshold)
	assert.False(t, proposal.Canceled)
	assert.False(t, proposal.Vetoed)
	assert.False(t, proposal.Executed)

	stored, err := store.GetProposalActions(1, nil)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, uint32(0), stored[0].ActionIndex)
	assert.Equal(t, "treasury", stored[0].Target)
	assert.Equal(t, uint32(1), stored[1].ActionIndex)
	assert.Equal(t, "registry", stored[1].Target)
	assert.Equal(t, types.Uint64(5), stored[1].Value)
	assert.Equal(t, []byte{0x02, 0x03}, stored[1].Calldata)
}

func TestAddProposalDuplicateID(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.AddProposal(testProposal(1, "alice"), nil, nil))
	err := store.AddProposal(testProposal(1, "bob"), nil, nil)
	require.Error(t, err)
}

func TestSetProposal(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.AddProposal(testProposal(1, "alice"), nil, nil))

	proposal, err := store.GetProposal(1, nil)
	require.NoError(t, err)
	proposal.ForVotes = math.MaxUint64
	proposal.Eta = 172800
	proposal.Vetoed = true
	require.NoError(t, store.SetProposal(proposal, nil))

	updated, err := store.GetProposal(1, nil)
	require.NoError(t, err)
	assert.Equal(t, types.Uint64(math.MaxUint64), updated.ForVotes)
	assert.Equal(t, uint64(172800), updated.Eta)
	assert.True(t, updated.Vetoed)

	// Flags can be cleared again
	updated.Vetoed = false
	require.NoError(t, store.SetProposal(updated, nil))
	cleared, err := store.GetProposal(1, nil)
	require.NoError(t, err)
	assert.False(t, cleared.Vetoed)
}

func TestSetProposalMissing(t *testing.T) {
	store := setupTestStore(t)
	err := store.SetProposal(testProposal(7, "alice"), nil)
	require.ErrorIs(t, err, models.ErrProposalNotFound)
}

func TestProposalCountAndLatest(t *testing.T) {
	store := setupTestStore(t)

	count, err := store.GetProposalCount(nil)
	require.NoError(t, err)
	assert.Equal(t, uint(0), count)

	require.NoError(t, store.AddProposal(testProposal(1, "alice"), nil, nil))
	require.NoError(t, store.AddProposal(testProposal(2, "bob"), nil, nil))
	require.NoError(t, store.AddProposal(testProposal(3, "alice"), nil, nil))

	count, err = store.GetProposalCount(nil)
	require.NoError(t, err)
	assert.Equal(t, uint(3), count)

	latest, err := store.GetLatestProposalID("alice", nil)
	require.NoError(t, err)
	assert.Equal(t, uint(3), latest)

	latest, err = store.GetLatestProposalID("bob", nil)
	require.NoError(t, err)
	assert.Equal(t, uint(2), latest)

	latest, err = store.GetLatestProposalID("carol", nil)
	require.NoError(t, err)
	assert.Equal(t, uint(0), latest)

	proposals, err := store.GetProposals(nil)
	require.NoError(t, err)
	require.Len(t, proposals, 3)
	assert.Equal(t, uint(1), proposals[0].ID)
	assert.Equal(t, uint(3), proposals[2].ID)
}

func TestReceipts(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.AddProposal(testProposal(1, "alice"), nil, nil))

	receipt, err := store.GetReceipt(1, "bob", nil)
	require.NoError(t, err)
	assert.Nil(t, receipt)

	require.NoError(t, store.AddReceipt(&models.Receipt{
		ProposalID: 1,
		Voter:      "bob",
		Support:    models.SupportFor,
		Votes:      42,
		Reason:     "looks good",
		CastBlock:  12,
	}, nil))

	receipt, err = store.GetReceipt(1, "bob", nil)
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, uint8(models.SupportFor), receipt.Support)
	assert.Equal(t, types.Uint64(42), receipt.Votes)
	assert.Equal(t, "looks good", receipt.Reason)

	// Receipts are write-once
	err = store.AddReceipt(&models.Receipt{
		ProposalID: 1,
		Voter:      "bob",
		Support:    models.SupportAgainst,
		Votes:      42,
	}, nil)
	require.ErrorIs(t, err, models.ErrReceiptExists)

	require.NoError(t, store.AddReceipt(&models.Receipt{
		ProposalID: 1,
		Voter:      "carol",
		Support:    models.SupportAbstain,
		Votes:      7,
	}, nil))
	receipts, err := store.GetReceipts(1, nil)
	require.NoError(t, err)
	require.Len(t, receipts, 2)
	assert.Equal(t, "bob", receipts[0].Voter)
	assert.Equal(t, "carol", receipts[1].Voter)
}

func TestAuthority(t *testing.T) {
	store := setupTestStore(t)

	authority, err := store.GetAuthority(nil)
	require.NoError(t, err)
	assert.Nil(t, authority)

	vetoer := "guardian"
	require.NoError(t, store.SetAuthority(&models.Authority{
		Vetoer:       &vetoer,
		UpdatedBlock: 1,
	}, nil))
	authority, err = store.GetAuthority(nil)
	require.NoError(t, err)
	require.NotNil(t, authority)
	require.NotNil(t, authority.Vetoer)
	assert.Equal(t, "guardian", *authority.Vetoer)

	// Burning stores NULL
	require.NoError(t, store.SetAuthority(&models.Authority{
		Vetoer:       nil,
		UpdatedBlock: 9,
	}, nil))
	authority, err = store.GetAuthority(nil)
	require.NoError(t, err)
	require.NotNil(t, authority)
	assert.Nil(t, authority.Vetoer)
	assert.Equal(t, uint64(9), authority.UpdatedBlock)
}

func TestTransactionRollback(t *testing.T) {
	store := setupTestStore(t)

	txn := store.Transaction()
	require.NotNil(t, txn)
	require.NoError(t, store.AddProposal(testProposal(1, "alice"), nil, txn))

	// Visible inside the transaction
	proposal, err := store.GetProposal(1, txn)
	require.NoError(t, err)
	require.NotNil(t, proposal)

	require.NoError(t, txn.Rollback())

	proposal, err = store.GetProposal(1, nil)
	require.NoError(t, err)
	assert.Nil(t, proposal)

	// Finished transactions cannot be reused
	_, err = store.GetProposal(1, txn)
	require.ErrorIs(t, err, types.ErrTxnFinished)
}

func TestTransactionCommit(t *testing.T) {
	store := setupTestStore(t)

	txn := store.Transaction()
	require.NotNil(t, txn)
	require.NoError(t, store.AddProposal(testProposal(1, "alice"), nil, txn))
	require.NoError(t, store.SetCommitTimestamp(1234, txn))
	require.NoError(t, txn.Commit())

	proposal, err := store.GetProposal(1, nil)
	require.NoError(t, err)
	require.NotNil(t, proposal)

	ts, err := store.GetCommitTimestamp(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1234), ts)
}

func TestBusyTimeout(t *testing.T) {
	store, err := NewWithOptions(
		WithDataDir(t.TempDir()),
		WithBusyTimeout(250*time.Millisecond),
	)
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck
	assert.Equal(t, 250*time.Millisecond, store.BusyTimeout())

	var timeout int64
	require.NoError(t, store.DB().Raw("PRAGMA busy_timeout").Scan(&timeout).Error)
	assert.Equal(t, int64(250), timeout)

	// Zero keeps the default
	assert.Equal(t, DefaultBusyTimeout, setupTestStore(t).BusyTimeout())
}
