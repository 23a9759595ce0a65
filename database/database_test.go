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

package database_test

import (
	"errors"
	"testing"
	"time"

	"github.com/blinklabs-io/governor/database"
	"github.com/blinklabs-io/governor/database/models"
	"github.com/blinklabs-io/governor/database/plugin/blob/badger"
	"github.com/blinklabs-io/governor/database/plugin/metadata/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close() //nolint:errcheck
	})
	return db
}

func TestProposalRoundTripThroughDatabase(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetProposal(1, nil)
	require.ErrorIs(t, err, models.ErrProposalNotFound)

	require.NoError(t, db.AddProposal(
		&models.Proposal{ID: 1, Proposer: "alice", StartBlock: 2, EndBlock: 10},
		[]models.ProposalAction{{Target: "treasury", Signature: "pay()"}},
		nil,
	))
	proposal, err := db.GetProposal(1, nil)
	require.NoError(t, err)
	assert.Equal(t, "alice", proposal.Proposer)

	actions, err := db.GetProposalActions(1, nil)
	require.NoError(t, err)
	require.Len(t, actions, 1)

	count, err := db.GetProposalCount(nil)
	require.NoError(t, err)
	assert.Equal(t, uint(1), count)
}

func TestTxnDoRollsBackOnError(t *testing.T) {
	db := newTestDB(t)

	boom := errors.New("boom")
	txn := db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		if err := db.AddProposal(&models.Proposal{ID: 1, Proposer: "alice"}, nil, txn); err != nil {
			return err
		}
		if err := db.SetQueuedAction([]byte{0x01}, []byte("entry"), txn); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = db.GetProposal(1, nil)
	require.ErrorIs(t, err, models.ErrProposalNotFound)
	queued, err := db.HasQueuedAction([]byte{0x01}, nil)
	require.NoError(t, err)
	assert.False(t, queued)
}

func TestTxnCommitSpansBothStores(t *testing.T) {
	db := newTestDB(t)

	committed := false
	txn := db.Transaction(true)
	txn.OnCommit(func() { committed = true })
	err := txn.Do(func(txn *database.Txn) error {
		if err := db.AddProposal(&models.Proposal{ID: 1, Proposer: "alice"}, nil, txn); err != nil {
			return err
		}
		return db.SetQueuedAction([]byte{0x02}, []byte("entry"), txn)
	})
	require.NoError(t, err)
	assert.True(t, committed)

	_, err = db.GetProposal(1, nil)
	require.NoError(t, err)
	data, err := db.GetQueuedAction([]byte{0x02}, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("entry"), data)

	// Both stores carry the same commit timestamp
	metaTs, err := db.Metadata().GetCommitTimestamp(nil)
	require.NoError(t, err)
	blobTs, err := db.Blob().GetCommitTimestamp(nil)
	require.NoError(t, err)
	assert.Positive(t, metaTs)
	assert.Equal(t, metaTs, blobTs)
}

func TestOnCommitDroppedOnRollback(t *testing.T) {
	db := newTestDB(t)
	called := false
	txn := db.Transaction(true)
	txn.OnCommit(func() { called = true })
	require.NoError(t, txn.Rollback())
	require.NoError(t, txn.Commit())
	assert.False(t, called)
}

func TestQueuedActions(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.SetQueuedAction([]byte{0x02}, []byte("b"), nil))
	require.NoError(t, db.SetQueuedAction([]byte{0x01}, []byte("a"), nil))

	entries, err := db.QueuedActions(nil)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, []byte{0x01}, entries[0].Hash)
	assert.Equal(t, []byte("a"), entries[0].Data)
	assert.Equal(t, []byte{0x02}, entries[1].Hash)

	require.NoError(t, db.DeleteQueuedAction([]byte{0x01}, nil))
	queued, err := db.HasQueuedAction([]byte{0x01}, nil)
	require.NoError(t, err)
	assert.False(t, queued)
}

func TestAuthorityThroughDatabase(t *testing.T) {
	db := newTestDB(t)

	authority, err := db.GetAuthority(nil)
	require.NoError(t, err)
	assert.Nil(t, authority)

	vetoer := "guardian"
	require.NoError(t, db.SetAuthority(&models.Authority{Vetoer: &vetoer}, nil))
	authority, err = db.GetAuthority(nil)
	require.NoError(t, err)
	require.NotNil(t, authority.Vetoer)
	assert.Equal(t, vetoer, *authority.Vetoer)
}

func TestReopenOnDisk(t *testing.T) {
	dir := t.TempDir()
	db, err := database.New(&database.Config{DataDir: dir})
	require.NoError(t, err)
	txn := db.Transaction(true)
	require.NoError(t, txn.Do(func(txn *database.Txn) error {
		if err := db.AddProposal(&models.Proposal{ID: 1, Proposer: "alice"}, nil, txn); err != nil {
			return err
		}
		return db.SetQueuedAction([]byte{0x09}, []byte("x"), txn)
	}))
	require.NoError(t, db.Close())

	db, err = database.New(&database.Config{DataDir: dir})
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck
	assert.Equal(t, dir, db.DataDir())
	proposal, err := db.GetProposal(1, nil)
	require.NoError(t, err)
	assert.Equal(t, "alice", proposal.Proposer)
	queued, err := db.HasQueuedAction([]byte{0x09}, nil)
	require.NoError(t, err)
	assert.True(t, queued)
}

func TestStorageTuning(t *testing.T) {
	db, err := database.New(&database.Config{
		DataDir:             t.TempDir(),
		BlobBlockCacheSize:  8 << 20,
		BlobIndexCacheSize:  4 << 20,
		MetadataBusyTimeout: 750 * time.Millisecond,
	})
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	blobStore, ok := db.Blob().(*badger.BlobStoreBadger)
	require.True(t, ok)
	blockCache, indexCache := blobStore.CacheSizes()
	assert.Equal(t, uint64(8<<20), blockCache)
	assert.Equal(t, uint64(4<<20), indexCache)

	metaStore, ok := db.Metadata().(*sqlite.MetadataStoreSqlite)
	require.True(t, ok)
	assert.Equal(t, 750*time.Millisecond, metaStore.BusyTimeout())

	// Zero values keep the store defaults
	defaults := newTestDB(t)
	blockCache, indexCache = defaults.Blob().(*badger.BlobStoreBadger).CacheSizes()
	assert.Equal(t, uint64(badger.DefaultBlockCacheSize), blockCache)
	assert.Equal(t, uint64(badger.DefaultIndexCacheSize), indexCache)
	assert.Equal(
		t,
		sqlite.DefaultBusyTimeout,
		defaults.Metadata().(*sqlite.MetadataStoreSqlite).BusyTimeout(),
	)
}
