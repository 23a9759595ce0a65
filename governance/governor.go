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

// Package governance implements a token-weighted governor with a vetoer.
//
// Proposals move through a lifecycle that is derived on every query from the
// stored proposal record and the current block height and timestamp. Every
// mutating operation runs under a single lock inside one database
// transaction, so an operation either commits all of its effects or none.
package governance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/governor/chain"
	"github.com/blinklabs-io/governor/database"
	"github.com/blinklabs-io/governor/database/models"
	"github.com/blinklabs-io/governor/event"
	"github.com/blinklabs-io/governor/timelock"
	"github.com/blinklabs-io/governor/votes"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultVotingDelay          = 1
	DefaultVotingPeriod         = 5760
	DefaultProposalThresholdBPS = 500
	DefaultQuorumVotesBPS       = 1000
	DefaultMaxActions           = 10

	tracerName = "github.com/blinklabs-io/governor/governance"
)

type Governor struct {
	db            *database.Database
	timelock      *timelock.Timelock
	votes         votes.Source
	clock         chain.Clock
	eventBus      *event.EventBus
	logger        *slog.Logger
	promRegistry  prometheus.Registerer
	traceProvider trace.TracerProvider
	tracer        trace.Tracer
	initialVetoer *string
	metrics       governorMetrics
	cancelPolicy  CancelPolicy
	thresholds    Thresholds
	votingDelay   uint64
	votingPeriod  uint64
	maxActions    int
	mu            sync.RWMutex
}

// New creates a governor. The database, timelock, voting-weight source and
// clock are required. The vetoer given with WithVetoer is stored only when
// the database holds no authority record yet.
func New(opts ...GovernorOptionFunc) (*Governor, error) {
	g := &Governor{
		votingDelay:  DefaultVotingDelay,
		votingPeriod: DefaultVotingPeriod,
		maxActions:   DefaultMaxActions,
		thresholds: Thresholds{
			ProposalThresholdBPS: DefaultProposalThresholdBPS,
			QuorumVotesBPS:       DefaultQuorumVotesBPS,
		},
		cancelPolicy: DefaultCancelPolicy(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		g.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	switch {
	case g.db == nil:
		return nil, errors.New("governor requires a database")
	case g.timelock == nil:
		return nil, errors.New("governor requires a timelock")
	case g.votes == nil:
		return nil, errors.New("governor requires a voting-weight source")
	case g.clock == nil:
		return nil, errors.New("governor requires a clock")
	}
	if err := g.thresholds.Validate(); err != nil {
		return nil, err
	}
	if g.votingPeriod == 0 {
		return nil, errors.New("voting period must be at least one block")
	}
	if g.maxActions <= 0 {
		return nil, fmt.Errorf("%w: max actions %d", ErrInvalidActionCount, g.maxActions)
	}
	if g.traceProvider == nil {
		g.traceProvider = otel.GetTracerProvider()
	}
	g.tracer = g.traceProvider.Tracer(tracerName)
	g.metrics.init(g.promRegistry)
	if err := g.initAuthority(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Governor) initAuthority() error {
	authority, err := g.db.GetAuthority(nil)
	if err != nil {
		return err
	}
	if authority != nil {
		return nil
	}
	if g.initialVetoer != nil && *g.initialVetoer == "" {
		g.initialVetoer = nil
	}
	if err := g.db.SetAuthority(
		&models.Authority{
			Vetoer:       g.initialVetoer,
			UpdatedBlock: g.clock.BlockNumber(),
		},
		nil,
	); err != nil {
		return err
	}
	vetoer := "none"
	if g.initialVetoer != nil {
		vetoer = *g.initialVetoer
	}
	g.logger.Info(
		"initialized vetoer authority",
		"component", "governance",
		"vetoer", vetoer,
	)
	return nil
}

// Thresholds returns the basis-point configuration
func (g *Governor) Thresholds() Thresholds {
	return g.thresholds
}

func (g *Governor) VotingDelay() uint64 {
	return g.votingDelay
}

func (g *Governor) VotingPeriod() uint64 {
	return g.votingPeriod
}

func (g *Governor) MaxActions() int {
	return g.maxActions
}

// Timelock returns the timelock collaborator
func (g *Governor) Timelock() *timelock.Timelock {
	return g.timelock
}

// startOp opens the tracing span of an operation
func (g *Governor) startOp(
	ctx context.Context,
	op string,
	attrs ...attribute.KeyValue,
) (context.Context, trace.Span) {
	return g.tracer.Start(
		ctx,
		"governance."+op,
		trace.WithAttributes(attrs...),
	)
}

// finishOp closes the span of an operation and records its outcome
func (g *Governor) finishOp(span trace.Span, op string, err error) {
	defer span.End()
	result := "ok"
	if err != nil {
		result = KindOf(err).String()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		g.logger.Debug(
			"operation failed",
			"component", "governance",
			"operation", op,
			"kind", result,
			"error", err,
		)
	}
	g.metrics.operations.WithLabelValues(op, result).Inc()
}

// update runs fn inside a read-write transaction over both stores
func (g *Governor) update(fn func(*database.Txn) error) error {
	return g.db.Transaction(true).Do(fn)
}

// publish sends an event once txn has committed
func (g *Governor) publish(txn *database.Txn, evtType event.EventType, data any) {
	if g.eventBus == nil {
		return
	}
	txn.OnCommit(func() {
		g.eventBus.Publish(evtType, event.NewEvent(evtType, data))
	})
}

// loadProposal returns a proposal with its current state
func (g *Governor) loadProposal(
	id uint,
	txn *database.Txn,
) (*models.Proposal, ProposalState, error) {
	proposal, err := g.db.GetProposal(id, txn)
	if err != nil {
		if errors.Is(err, models.ErrProposalNotFound) {
			return nil, 0, fmt.Errorf("%w: %d", ErrProposalNotFound, id)
		}
		return nil, 0, err
	}
	return proposal, g.stateOf(proposal), nil
}

func (g *Governor) stateOf(p *models.Proposal) ProposalState {
	return DeriveState(
		p,
		g.clock.BlockNumber(),
		g.clock.Timestamp(),
		g.timelock.GracePeriod(),
	)
}

// timelockActions returns the proposal's actions as timelock actions at eta
func (g *Governor) timelockActions(
	id uint,
	eta uint64,
	txn *database.Txn,
) ([]timelock.Action, error) {
	stored, err := g.db.GetProposalActions(id, txn)
	if err != nil {
		return nil, err
	}
	ret := make([]timelock.Action, 0, len(stored))
	for _, a := range stored {
		ret = append(ret, timelock.Action{
			Target:    a.Target,
			Value:     uint64(a.Value),
			Signature: a.Signature,
			Data:      a.Calldata,
			Eta:       eta,
		})
	}
	return ret, nil
}
