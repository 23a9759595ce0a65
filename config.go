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

package governor

import (
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/governor/chain"
	"github.com/blinklabs-io/governor/governance"
	"github.com/blinklabs-io/governor/timelock"
	"github.com/blinklabs-io/governor/votes"
	"github.com/prometheus/client_golang/prometheus"
)

type Config struct {
	promRegistry     prometheus.Registerer
	logger           *slog.Logger
	clock            chain.Clock
	votes            votes.Source
	dispatcher       *timelock.Dispatcher
	vetoer           *string
	dataDir          string
	guardian         string
	apiListenAddress string
	thresholds       governance.Thresholds
	votingDelay      uint64
	votingPeriod     uint64
	timelockDelay    uint64
	gracePeriod      uint64
	minimumDelay     uint64
	maximumDelay     uint64
	maxActions       int
	shutdownTimeout  time.Duration
	busyTimeout      time.Duration
	blockCacheSize   uint64
	indexCacheSize   uint64
	tracing          bool
	tracingStdout    bool
}

// ConfigOptionFunc is a type that represents functions that modify the governor config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new governor config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger:       slog.New(slog.NewJSONHandler(io.Discard, nil)),
		votingDelay:  governance.DefaultVotingDelay,
		votingPeriod: governance.DefaultVotingPeriod,
		thresholds: governance.Thresholds{
			ProposalThresholdBPS: governance.DefaultProposalThresholdBPS,
			QuorumVotesBPS:       governance.DefaultQuorumVotesBPS,
		},
		maxActions:    governance.DefaultMaxActions,
		timelockDelay: timelock.DefaultDelay,
		gracePeriod:   timelock.DefaultGracePeriod,
		minimumDelay:  timelock.DefaultMinimumDelay,
		maximumDelay:  timelock.DefaultMaximumDelay,
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithBlobCacheSizes sets the badger block and index cache sizes, in bytes,
// of the timelock queue store. Zero keeps the store default.
func WithBlobCacheSizes(blockCache, indexCache uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.blockCacheSize = blockCache
		c.indexCacheSize = indexCache
	}
}

// WithDatabaseBusyTimeout sets the SQLite lock wait for on-disk databases
func WithDatabaseBusyTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.busyTimeout = timeout
	}
}

// WithDatabasePath specifies the persistent data directory to use. The default is to store everything in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer instance to add metrics to. In most cases, prometheus.DefaultRegistry would be
// a good choice to get metrics working
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) endpoint using OTLP. This can be configured
// using the OTEL_EXPORTER_OTLP_* env vars documented in the README for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires tracing to enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown. The default is 30 seconds
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}

// WithClock specifies the source of block height and timestamp
func WithClock(clock chain.Clock) ConfigOptionFunc {
	return func(c *Config) {
		c.clock = clock
	}
}

// WithVotes specifies the voting-weight source
func WithVotes(source votes.Source) ConfigOptionFunc {
	return func(c *Config) {
		c.votes = source
	}
}

// WithDispatcher specifies the dispatcher that runs executed actions
func WithDispatcher(dispatcher *timelock.Dispatcher) ConfigOptionFunc {
	return func(c *Config) {
		c.dispatcher = dispatcher
	}
}

// WithApiListenAddress enables the read-only query API on the given address
func WithApiListenAddress(address string) ConfigOptionFunc {
	return func(c *Config) {
		c.apiListenAddress = address
	}
}

func WithVotingDelay(blocks uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.votingDelay = blocks
	}
}

func WithVotingPeriod(blocks uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.votingPeriod = blocks
	}
}

// WithThresholds specifies the proposal threshold and quorum in basis points
func WithThresholds(proposalThresholdBPS, quorumVotesBPS uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.thresholds = governance.Thresholds{
			ProposalThresholdBPS: proposalThresholdBPS,
			QuorumVotesBPS:       quorumVotesBPS,
		}
	}
}

func WithMaxActions(maxActions int) ConfigOptionFunc {
	return func(c *Config) {
		c.maxActions = maxActions
	}
}

// WithTimelockDelay specifies the wait in seconds between queue and execute
func WithTimelockDelay(delay uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.timelockDelay = delay
	}
}

// WithGracePeriod specifies how long in seconds a queued proposal stays executable
func WithGracePeriod(gracePeriod uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.gracePeriod = gracePeriod
	}
}

// WithDelayBounds specifies the allowed range of the timelock delay
func WithDelayBounds(minimum, maximum uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.minimumDelay = minimum
		c.maximumDelay = maximum
	}
}

// WithVetoer specifies the vetoer used when the database holds none yet. An
// empty vetoer starts with the veto power burned.
func WithVetoer(vetoer string) ConfigOptionFunc {
	return func(c *Config) {
		c.vetoer = &vetoer
	}
}

// WithGuardian specifies an identity allowed to cancel any proposal
func WithGuardian(guardian string) ConfigOptionFunc {
	return func(c *Config) {
		c.guardian = guardian
	}
}
