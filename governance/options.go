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
	"log/slog"

	"github.com/blinklabs-io/governor/chain"
	"github.com/blinklabs-io/governor/database"
	"github.com/blinklabs-io/governor/event"
	"github.com/blinklabs-io/governor/timelock"
	"github.com/blinklabs-io/governor/votes"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

type GovernorOptionFunc func(*Governor)

// WithDatabase specifies the database holding proposals, receipts and the vetoer
func WithDatabase(db *database.Database) GovernorOptionFunc {
	return func(g *Governor) {
		g.db = db
	}
}

// WithTimelock specifies the timelock that queues and executes actions
func WithTimelock(tl *timelock.Timelock) GovernorOptionFunc {
	return func(g *Governor) {
		g.timelock = tl
	}
}

// WithVotes specifies the voting-weight source
func WithVotes(source votes.Source) GovernorOptionFunc {
	return func(g *Governor) {
		g.votes = source
	}
}

// WithClock specifies the source of the current block height and timestamp
func WithClock(clock chain.Clock) GovernorOptionFunc {
	return func(g *Governor) {
		g.clock = clock
	}
}

// WithEventBus specifies the event bus to publish lifecycle events on
func WithEventBus(eventBus *event.EventBus) GovernorOptionFunc {
	return func(g *Governor) {
		g.eventBus = eventBus
	}
}

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) GovernorOptionFunc {
	return func(g *Governor) {
		g.logger = logger
	}
}

// WithPromRegistry specifies the prometheus registry to use for metrics
func WithPromRegistry(registry prometheus.Registerer) GovernorOptionFunc {
	return func(g *Governor) {
		g.promRegistry = registry
	}
}

// WithTracerProvider specifies the OpenTelemetry tracer provider
func WithTracerProvider(provider trace.TracerProvider) GovernorOptionFunc {
	return func(g *Governor) {
		g.traceProvider = provider
	}
}

// WithVotingDelay specifies the blocks between proposal and start of voting
func WithVotingDelay(blocks uint64) GovernorOptionFunc {
	return func(g *Governor) {
		g.votingDelay = blocks
	}
}

// WithVotingPeriod specifies the length of voting in blocks
func WithVotingPeriod(blocks uint64) GovernorOptionFunc {
	return func(g *Governor) {
		g.votingPeriod = blocks
	}
}

// WithThresholds specifies the proposal threshold and quorum in basis points
func WithThresholds(thresholds Thresholds) GovernorOptionFunc {
	return func(g *Governor) {
		g.thresholds = thresholds
	}
}

// WithMaxActions specifies the maximum number of actions per proposal
func WithMaxActions(maxActions int) GovernorOptionFunc {
	return func(g *Governor) {
		g.maxActions = maxActions
	}
}

// WithVetoer specifies the initial vetoer. An empty vetoer starts with the
// veto power burned.
func WithVetoer(vetoer string) GovernorOptionFunc {
	return func(g *Governor) {
		g.initialVetoer = &vetoer
	}
}

// WithCancelPolicy specifies who may cancel proposals and when
func WithCancelPolicy(policy CancelPolicy) GovernorOptionFunc {
	return func(g *Governor) {
		g.cancelPolicy = policy
	}
}
