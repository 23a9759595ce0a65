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

package node

import (
	"fmt"
	"log/slog"

	"github.com/blinklabs-io/governor"
	"github.com/blinklabs-io/governor/internal/config"
	"github.com/blinklabs-io/governor/votes"
)

// Options translates the loaded configuration into governor node options.
// The clock and voting-weight source are left to the caller.
func Options(
	cfg *config.Config,
	logger *slog.Logger,
) ([]governor.ConfigOptionFunc, error) {
	shutdownTimeout, err := cfg.ShutdownTimeoutDuration()
	if err != nil {
		return nil, err
	}
	busyTimeout, err := cfg.DatabaseBusyTimeoutDuration()
	if err != nil {
		return nil, err
	}
	minDelay, maxDelay := cfg.DelayBounds()
	opts := []governor.ConfigOptionFunc{
		governor.WithDatabasePath(cfg.DatabasePath),
		governor.WithDatabaseBusyTimeout(busyTimeout),
		governor.WithBlobCacheSizes(cfg.BlobBlockCacheSize, cfg.BlobIndexCacheSize),
		governor.WithVotingDelay(cfg.VotingDelay),
		governor.WithVotingPeriod(cfg.VotingPeriod),
		governor.WithThresholds(cfg.ProposalThresholdBps, cfg.QuorumVotesBps),
		governor.WithMaxActions(cfg.MaxActions),
		governor.WithDelayBounds(minDelay, maxDelay),
		governor.WithTimelockDelay(cfg.TimelockDelay),
		governor.WithGracePeriod(cfg.GracePeriod),
		governor.WithGuardian(cfg.Guardian),
		governor.WithShutdownTimeout(shutdownTimeout),
		governor.WithTracing(cfg.Tracing),
		governor.WithTracingStdout(cfg.TracingStdout),
	}
	if logger != nil {
		opts = append(opts, governor.WithLogger(logger))
	}
	if cfg.Vetoer != nil {
		opts = append(opts, governor.WithVetoer(*cfg.Vetoer))
	}
	return opts, nil
}

// LoadWeights reads the voting-weight snapshot. An empty path yields a source
// where every account has zero weight.
func LoadWeights(path string) (*votes.Checkpoints, error) {
	if path == "" {
		return votes.NewCheckpoints(), nil
	}
	weights, err := votes.LoadSnapshotFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load weights: %w", err)
	}
	return weights, nil
}
