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

// Package timelock holds approved actions for a mandatory delay before they
// may be executed, and expires them after a grace period.
package timelock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/governor/database"
	"github.com/blinklabs-io/gouroboros/cbor"
	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
)

const (
	day = 24 * 60 * 60

	DefaultGracePeriod  = 14 * day
	DefaultMinimumDelay = 2 * day
	DefaultMaximumDelay = 30 * day
	DefaultDelay        = DefaultMinimumDelay
)

var (
	ErrDelayOutOfRange     = errors.New("delay must be within the minimum and maximum delay")
	ErrEtaTooEarly         = errors.New("estimated execution time must satisfy delay")
	ErrActionAlreadyQueued = errors.New("identical action already queued at eta")
	ErrActionNotQueued     = errors.New("transaction hasn't been queued")
	ErrNotReady            = errors.New("transaction hasn't surpassed time lock")
	ErrStale               = errors.New("transaction is stale")
	ErrUnknownTarget       = errors.New("no handler registered for target")
	ErrNoActions           = errors.New("no actions to execute")
)

// Action is a single call held by the timelock. Its identity is the hash of
// all fields including eta, so the same call queued at two different etas
// occupies two slots.
type Action struct {
	cbor.StructAsArray
	Target    string
	Value     uint64
	Signature string
	Data      []byte
	Eta       uint64
}

// Hash returns the queue slot identifier of the action
func (a Action) Hash() (lcommon.Blake2b256, error) {
	encoded, err := cbor.Encode(&a)
	if err != nil {
		return lcommon.Blake2b256{}, fmt.Errorf("encode action: %w", err)
	}
	return lcommon.Blake2b256Hash(encoded), nil
}

// Timelock is backed by the blob store of a database.Database
type Timelock struct {
	db           *database.Database
	logger       *slog.Logger
	metrics      *timelockMetrics
	dispatcher   *Dispatcher
	delay        uint64
	gracePeriod  uint64
	minimumDelay uint64
	maximumDelay uint64
	mu           sync.RWMutex
}

// New creates a timelock. The delay must lie within the configured bounds.
func New(db *database.Database, opts ...TimelockOptionFunc) (*Timelock, error) {
	t := &Timelock{
		db:           db,
		delay:        DefaultDelay,
		gracePeriod:  DefaultGracePeriod,
		minimumDelay: DefaultMinimumDelay,
		maximumDelay: DefaultMaximumDelay,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.db == nil {
		return nil, errors.New("timelock requires a database")
	}
	if t.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		t.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if t.dispatcher == nil {
		t.dispatcher = NewDispatcher()
	}
	if t.metrics == nil {
		t.metrics = newTimelockMetrics(nil)
	}
	if t.minimumDelay > t.maximumDelay {
		return nil, fmt.Errorf(
			"minimum delay %d exceeds maximum delay %d",
			t.minimumDelay,
			t.maximumDelay,
		)
	}
	if err := t.checkDelay(t.delay); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Timelock) checkDelay(delay uint64) error {
	if delay < t.minimumDelay || delay > t.maximumDelay {
		return fmt.Errorf(
			"%w: %d not in [%d, %d]",
			ErrDelayOutOfRange,
			delay,
			t.minimumDelay,
			t.maximumDelay,
		)
	}
	return nil
}

// Delay returns the mandatory wait in seconds between queue and execute
func (t *Timelock) Delay() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.delay
}

// GracePeriod returns how long in seconds a queued action stays executable
func (t *Timelock) GracePeriod() uint64 {
	return t.gracePeriod
}

func (t *Timelock) MinimumDelay() uint64 {
	return t.minimumDelay
}

func (t *Timelock) MaximumDelay() uint64 {
	return t.maximumDelay
}

// SetDelay changes the delay applied to future queue operations
func (t *Timelock) SetDelay(delay uint64) error {
	if err := t.checkDelay(delay); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.delay = delay
	t.logger.Info(
		fmt.Sprintf("timelock delay set to %d seconds", delay),
		"component", "timelock",
	)
	return nil
}

// Dispatcher returns the dispatcher used by Execute
func (t *Timelock) Dispatcher() *Dispatcher {
	return t.dispatcher
}

// withTxn runs fn in txn, or in an owned blob transaction when txn is nil
func (t *Timelock) withTxn(
	txn *database.Txn,
	readWrite bool,
	fn func(*database.Txn) error,
) error {
	if txn != nil {
		return fn(txn)
	}
	txn = t.db.BlobTxn(readWrite)
	return txn.Do(fn)
}

// Queue stores an action until its eta. now is the current block timestamp.
func (t *Timelock) Queue(
	txn *database.Txn,
	action Action,
	now uint64,
) (lcommon.Blake2b256, error) {
	var hash lcommon.Blake2b256
	err := t.withTxn(txn, true, func(txn *database.Txn) error {
		var err error
		hash, err = t.queue(txn, action, now)
		return err
	})
	return hash, err
}

func (t *Timelock) queue(
	txn *database.Txn,
	action Action,
	now uint64,
) (lcommon.Blake2b256, error) {
	if action.Eta < now+t.Delay() {
		return lcommon.Blake2b256{}, fmt.Errorf(
			"%w: eta %d < %d + %d",
			ErrEtaTooEarly,
			action.Eta,
			now,
			t.Delay(),
		)
	}
	hash, err := action.Hash()
	if err != nil {
		return hash, err
	}
	queued, err := t.db.HasQueuedAction(hash.Bytes(), txn)
	if err != nil {
		return hash, err
	}
	if queued {
		return hash, fmt.Errorf("%w: %s", ErrActionAlreadyQueued, hash.String())
	}
	encoded, err := cbor.Encode(&action)
	if err != nil {
		return hash, fmt.Errorf("encode action: %w", err)
	}
	if err := t.db.SetQueuedAction(hash.Bytes(), encoded, txn); err != nil {
		return hash, err
	}
	t.metrics.queued.Inc()
	t.logger.Debug(
		"queued action",
		"component", "timelock",
		"hash", hash.String(),
		"target", action.Target,
		"eta", action.Eta,
	)
	return hash, nil
}

// Cancel removes a queued action. Canceling an action that is not queued is
// not an error.
func (t *Timelock) Cancel(txn *database.Txn, action Action) error {
	return t.withTxn(txn, true, func(txn *database.Txn) error {
		hash, err := action.Hash()
		if err != nil {
			return err
		}
		if err := t.db.DeleteQueuedAction(hash.Bytes(), txn); err != nil {
			return err
		}
		t.metrics.canceled.Inc()
		t.logger.Debug(
			"canceled action",
			"component", "timelock",
			"hash", hash.String(),
		)
		return nil
	})
}

// IsQueued reports whether the action currently occupies a queue slot
func (t *Timelock) IsQueued(txn *database.Txn, action Action) (bool, error) {
	hash, err := action.Hash()
	if err != nil {
		return false, err
	}
	return t.db.HasQueuedAction(hash.Bytes(), txn)
}

// CheckExecutable verifies that the action is queued and that now lies in
// [eta, eta+gracePeriod]
func (t *Timelock) CheckExecutable(
	txn *database.Txn,
	action Action,
	now uint64,
) error {
	queued, err := t.IsQueued(txn, action)
	if err != nil {
		return err
	}
	if !queued {
		return ErrActionNotQueued
	}
	if now < action.Eta {
		return fmt.Errorf("%w: now %d < eta %d", ErrNotReady, now, action.Eta)
	}
	if now-action.Eta > t.gracePeriod {
		return fmt.Errorf(
			"%w: now %d > eta %d + grace %d",
			ErrStale,
			now,
			action.Eta,
			t.gracePeriod,
		)
	}
	return nil
}

// Execute runs all actions as one unit. Every action is checked before any
// handler runs; handler effects are staged and applied only after every
// handler succeeded and txn has committed.
func (t *Timelock) Execute(
	ctx context.Context,
	txn *database.Txn,
	actions []Action,
	now uint64,
) error {
	if len(actions) == 0 {
		return ErrNoActions
	}
	return t.withTxn(txn, true, func(txn *database.Txn) error {
		for i, action := range actions {
			if err := t.CheckExecutable(txn, action, now); err != nil {
				return fmt.Errorf("action %d: %w", i, err)
			}
		}
		effects, err := t.dispatcher.Dispatch(ctx, actions)
		if err != nil {
			t.metrics.executionFailures.Inc()
			return err
		}
		for _, action := range actions {
			hash, err := action.Hash()
			if err != nil {
				return err
			}
			if err := t.db.DeleteQueuedAction(hash.Bytes(), txn); err != nil {
				return err
			}
		}
		txn.OnCommit(func() {
			for _, apply := range effects {
				apply()
			}
		})
		t.metrics.executed.Add(float64(len(actions)))
		return nil
	})
}

// Queued returns every action currently held by the timelock
func (t *Timelock) Queued(txn *database.Txn) ([]Action, error) {
	entries, err := t.db.QueuedActions(txn)
	if err != nil {
		return nil, err
	}
	ret := make([]Action, 0, len(entries))
	for _, entry := range entries {
		var action Action
		if _, err := cbor.Decode(entry.Data, &action); err != nil {
			return nil, fmt.Errorf("decode queued action %x: %w", entry.Hash, err)
		}
		ret = append(ret, action)
	}
	return ret, nil
}
