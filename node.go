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

// Package governor wires the governance engine to its storage, timelock,
// event bus and query API
package governor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blinklabs-io/governor/api"
	"github.com/blinklabs-io/governor/database"
	"github.com/blinklabs-io/governor/event"
	"github.com/blinklabs-io/governor/governance"
	"github.com/blinklabs-io/governor/timelock"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var governanceEventTypes = []event.EventType{
	event.ProposalCreatedEventType,
	event.VoteCastEventType,
	event.ProposalCanceledEventType,
	event.ProposalQueuedEventType,
	event.ProposalExecutedEventType,
	event.ProposalVetoedEventType,
	event.NewVetoerEventType,
}

type Node struct {
	db             *database.Database
	eventBus       *event.EventBus
	timelock       *timelock.Timelock
	governor       *governance.Governor
	api            *api.API
	tracerProvider *sdktrace.TracerProvider
	shutdownFuncs  []func(context.Context) error
	config         Config
	done           chan struct{}
	shutdownOnce   sync.Once
}

func New(cfg Config) (*Node, error) {
	eventBus := event.NewEventBus(cfg.promRegistry, cfg.logger)
	n := &Node{
		config:   cfg,
		eventBus: eventBus,
		done:     make(chan struct{}),
	}
	if err := n.configValidate(); err != nil {
		eventBus.Stop()
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return n, nil
}

func (n *Node) configValidate() error {
	if n.config.logger == nil {
		return errors.New("no logger configured")
	}
	if n.config.clock == nil {
		return errors.New("no clock configured")
	}
	if n.config.votes == nil {
		return errors.New("no voting-weight source configured")
	}
	return nil
}

// Start opens the database and builds the governor. It does not block.
func (n *Node) Start() error {
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(); err != nil {
			return err
		}
	}
	// Load database
	db, err := database.New(&database.Config{
		DataDir:             n.config.dataDir,
		Logger:              n.config.logger,
		PromRegistry:        n.config.promRegistry,
		BlobBlockCacheSize:  n.config.blockCacheSize,
		BlobIndexCacheSize:  n.config.indexCacheSize,
		MetadataBusyTimeout: n.config.busyTimeout,
	})
	if db == nil {
		if err == nil {
			err = errors.New("empty database returned")
		}
		n.config.logger.Error(
			"failed to create database",
			"error", err,
		)
		return fmt.Errorf("failed to open database: %w", err)
	}
	n.db = db
	n.shutdownFuncs = append(n.shutdownFuncs, func(context.Context) error {
		return n.db.Close()
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// Load timelock
	tlOpts := []timelock.TimelockOptionFunc{
		timelock.WithLogger(n.config.logger),
		timelock.WithPromRegistry(n.config.promRegistry),
		timelock.WithDelayBounds(n.config.minimumDelay, n.config.maximumDelay),
		timelock.WithDelay(n.config.timelockDelay),
		timelock.WithGracePeriod(n.config.gracePeriod),
	}
	if n.config.dispatcher != nil {
		tlOpts = append(tlOpts, timelock.WithDispatcher(n.config.dispatcher))
	}
	tl, err := timelock.New(n.db, tlOpts...)
	if err != nil {
		return fmt.Errorf("failed to load timelock: %w", err)
	}
	n.timelock = tl
	// Load governor
	cancelPolicy := governance.DefaultCancelPolicy()
	cancelPolicy.Guardian = n.config.guardian
	govOpts := []governance.GovernorOptionFunc{
		governance.WithDatabase(n.db),
		governance.WithTimelock(n.timelock),
		governance.WithVotes(n.config.votes),
		governance.WithClock(n.config.clock),
		governance.WithEventBus(n.eventBus),
		governance.WithLogger(n.config.logger),
		governance.WithPromRegistry(n.config.promRegistry),
		governance.WithVotingDelay(n.config.votingDelay),
		governance.WithVotingPeriod(n.config.votingPeriod),
		governance.WithThresholds(n.config.thresholds),
		governance.WithMaxActions(n.config.maxActions),
		governance.WithCancelPolicy(cancelPolicy),
	}
	if n.config.vetoer != nil {
		govOpts = append(govOpts, governance.WithVetoer(*n.config.vetoer))
	}
	if n.tracerProvider != nil {
		govOpts = append(govOpts, governance.WithTracerProvider(n.tracerProvider))
	}
	gov, err := governance.New(govOpts...)
	if err != nil {
		return fmt.Errorf("failed to load governor: %w", err)
	}
	n.governor = gov
	// Log lifecycle events
	for _, evtType := range governanceEventTypes {
		n.eventBus.SubscribeFunc(evtType, n.logEvent)
	}
	return nil
}

func (n *Node) logEvent(evt event.Event) {
	n.config.logger.Info(
		"governance event",
		"component", "governor",
		"type", string(evt.Type),
		"data", fmt.Sprintf("%+v", evt.Data),
	)
}

// Run starts the node and the query API, then blocks until ctx is done or
// the node is stopped
func (n *Node) Run(ctx context.Context) error {
	if err := n.Start(); err != nil {
		return err
	}
	if n.config.apiListenAddress != "" {
		n.api = api.New(
			api.Config{ListenAddress: n.config.apiListenAddress},
			n.governor,
			n.config.logger,
		)
		if err := n.api.Start(ctx); err != nil {
			return err
		}
	}
	select {
	case <-ctx.Done():
	case <-n.done:
	}
	return nil
}

// Governance returns the governor. It is nil until Start succeeds.
func (n *Node) Governance() *governance.Governor {
	return n.governor
}

func (n *Node) Timelock() *timelock.Timelock {
	return n.timelock
}

func (n *Node) EventBus() *event.EventBus {
	return n.eventBus
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	// Create shutdown context with timeout (default 30s if not configured)
	shutdownTimeout := 30 * time.Second
	if n.config.shutdownTimeout > 0 {
		shutdownTimeout = n.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	n.config.logger.Debug("starting graceful shutdown")

	// Stop accepting queries
	if n.api != nil {
		if stopErr := n.api.Stop(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("api shutdown: %w", stopErr))
		}
	}

	// Drain event handlers before closing the database
	if n.eventBus != nil {
		n.eventBus.Stop()
	}

	// Call registered shutdown functions in reverse order
	for i := len(n.shutdownFuncs) - 1; i >= 0; i-- {
		if fnErr := n.shutdownFuncs[i](ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	n.shutdownFuncs = nil

	n.config.logger.Debug("graceful shutdown complete")
	close(n.done)
	return err
}
