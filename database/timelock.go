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
	"bytes"
	"errors"
	"fmt"

	"github.com/blinklabs-io/governor/database/types"
)

const timelockQueueKeyPrefix = "tq_"

// QueuedEntry is a raw timelock queue entry
type QueuedEntry struct {
	Hash []byte
	Data []byte
}

func timelockQueueKey(hash []byte) []byte {
	key := make([]byte, 0, len(timelockQueueKeyPrefix)+len(hash))
	key = append(key, timelockQueueKeyPrefix...)
	return append(key, hash...)
}

// blobWrite runs fn in txn, or in a blob-only transaction that is committed
// on success when txn is nil
func (d *Database) blobWrite(txn *Txn, fn func(*Txn) error) error {
	if txn != nil {
		return fn(txn)
	}
	txn = d.BlobTxn(true)
	return txn.Do(fn)
}

// GetQueuedAction returns the encoded entry stored under hash. Returns
// types.ErrBlobKeyNotFound if nothing is queued under it.
func (d *Database) GetQueuedAction(hash []byte, txn *Txn) ([]byte, error) {
	if txn == nil {
		txn = d.BlobTxn(false)
		defer txn.Release()
	}
	if txn.Blob() == nil {
		return nil, types.ErrNoStoreAvailable
	}
	return d.blob.Get(txn.Blob(), timelockQueueKey(hash))
}

// HasQueuedAction reports whether an entry is queued under hash
func (d *Database) HasQueuedAction(hash []byte, txn *Txn) (bool, error) {
	_, err := d.GetQueuedAction(hash, txn)
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// SetQueuedAction stores an encoded entry under hash
func (d *Database) SetQueuedAction(hash, data []byte, txn *Txn) error {
	return d.blobWrite(txn, func(txn *Txn) error {
		if txn.Blob() == nil {
			return types.ErrNoStoreAvailable
		}
		if err := d.blob.Set(txn.Blob(), timelockQueueKey(hash), data); err != nil {
			return fmt.Errorf("failed to queue action %x: %w", hash, err)
		}
		return nil
	})
}

// DeleteQueuedAction removes the entry stored under hash
func (d *Database) DeleteQueuedAction(hash []byte, txn *Txn) error {
	return d.blobWrite(txn, func(txn *Txn) error {
		if txn.Blob() == nil {
			return types.ErrNoStoreAvailable
		}
		if err := d.blob.Delete(txn.Blob(), timelockQueueKey(hash)); err != nil {
			return fmt.Errorf("failed to dequeue action %x: %w", hash, err)
		}
		return nil
	})
}

// QueuedActions returns every timelock queue entry in key order
func (d *Database) QueuedActions(txn *Txn) ([]QueuedEntry, error) {
	if txn == nil {
		txn = d.BlobTxn(false)
		defer txn.Release()
	}
	if txn.Blob() == nil {
		return nil, types.ErrNoStoreAvailable
	}
	prefix := []byte(timelockQueueKeyPrefix)
	iter := d.blob.NewIterator(
		txn.Blob(),
		types.BlobIteratorOptions{Prefix: prefix},
	)
	defer iter.Close()
	var ret []QueuedEntry
	for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
		item := iter.Item()
		val, err := item.ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		ret = append(ret, QueuedEntry{
			Hash: bytes.TrimPrefix(item.Key(), prefix),
			Data: val,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}
