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

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "governor.config"

const DefaultShutdownTimeout = "30s"

// DefaultDatabaseBusyTimeout is the SQLite lock wait for on-disk databases
const DefaultDatabaseBusyTimeout = "5s"

const day = 24 * 60 * 60

// Parameter bounds
const (
	MinProposalThresholdBps = 1
	MaxProposalThresholdBps = 1000
	MinQuorumVotesBps       = 200
	MaxQuorumVotesBps       = 2000
	MinVotingPeriod         = 5760
	MaxVotingPeriod         = 80640
	MinVotingDelay          = 1
	MaxVotingDelay          = 40320
	MinTimelockDelay        = 2 * day
	MaxTimelockDelay        = 30 * day
	MaxActions              = 10
)

var ErrInvalidConfig = errors.New("invalid config")

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

// RunMode represents the operational mode of the governor
type RunMode string

const (
	RunModeServe RunMode = "serve" // Bounded governance parameters (default)
	RunModeDev   RunMode = "dev"   // Relaxed lower bounds for local testing
)

// Valid returns true if the RunMode is a known valid mode
func (m RunMode) Valid() bool {
	switch m {
	case RunModeServe, RunModeDev, "":
		return true
	default:
		return false
	}
}

// IsDevMode returns true if the mode relaxes parameter minimums
func (m RunMode) IsDevMode() bool {
	return m == RunModeDev
}

type Config struct {
	DatabasePath         string  `yaml:"databasePath"         split_words:"true"`
	BindAddr             string  `yaml:"bindAddr"             split_words:"true"`
	ShutdownTimeout      string  `yaml:"shutdownTimeout"      split_words:"true"`
	Vetoer               *string `yaml:"vetoer"`
	Guardian             string  `yaml:"guardian"`
	WeightsFile          string  `yaml:"weightsFile"          split_words:"true"`
	RunMode              RunMode `yaml:"runMode"              split_words:"true"`
	MetricsPort          uint    `yaml:"metricsPort"          split_words:"true"`
	ApiPort              uint    `yaml:"apiPort"              split_words:"true"`
	VotingDelay          uint64  `yaml:"votingDelay"          split_words:"true"`
	VotingPeriod         uint64  `yaml:"votingPeriod"         split_words:"true"`
	ProposalThresholdBps uint64  `yaml:"proposalThresholdBps" split_words:"true"`
	QuorumVotesBps       uint64  `yaml:"quorumVotesBps"       split_words:"true"`
	MaxActions           int     `yaml:"maxActions"           split_words:"true"`
	// Timelock timings are in seconds
	TimelockDelay uint64 `yaml:"timelockDelay" split_words:"true"`
	GracePeriod   uint64 `yaml:"gracePeriod"   split_words:"true"`
	// Wall clock chain used by serve: block 0 is at GenesisTime
	GenesisTime   uint64 `yaml:"genesisTime"   split_words:"true"`
	BlockTime     uint64 `yaml:"blockTime"     split_words:"true"`
	Tracing       bool   `yaml:"tracing"`
	TracingStdout bool   `yaml:"tracingStdout" split_words:"true"`
	// Storage tuning. Cache sizes are in bytes, zero keeps the store default.
	BlobBlockCacheSize  uint64 `yaml:"blobBlockCacheSize"  split_words:"true"`
	BlobIndexCacheSize  uint64 `yaml:"blobIndexCacheSize"  split_words:"true"`
	DatabaseBusyTimeout string `yaml:"databaseBusyTimeout" split_words:"true"`
}

var globalConfig = defaultConfig()

func defaultConfig() *Config {
	return &Config{
		DatabasePath:         ".governor",
		BindAddr:             "0.0.0.0",
		ShutdownTimeout:      DefaultShutdownTimeout,
		DatabaseBusyTimeout:  DefaultDatabaseBusyTimeout,
		RunMode:              RunModeServe,
		MetricsPort:          12799,
		ApiPort:              8080,
		VotingDelay:          1,
		VotingPeriod:         MinVotingPeriod,
		ProposalThresholdBps: 500,
		QuorumVotesBps:       1000,
		MaxActions:           MaxActions,
		TimelockDelay:        MinTimelockDelay,
		GracePeriod:          14 * day,
		BlockTime:            12,
	}
}

func LoadConfig(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.governor/governor.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".governor", "governor.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		// Try to check for /etc/governor/governor.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/governor/governor.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, globalConfig); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// Process environment variables
	err := envconfig.Process("governor", globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %+w", err)
	}

	// Validate and default RunMode
	if !globalConfig.RunMode.Valid() {
		return nil, fmt.Errorf(
			"invalid runMode: %q (must be 'serve' or 'dev')",
			globalConfig.RunMode,
		)
	}
	if globalConfig.RunMode == "" {
		globalConfig.RunMode = RunModeServe
	}
	if err := globalConfig.Validate(); err != nil {
		return nil, err
	}
	return globalConfig, nil
}

func GetConfig() *Config {
	return globalConfig
}

// Validate checks the governance parameters against their bounds. Dev mode
// only keeps the upper bounds and requires non-zero periods.
func (c *Config) Validate() error {
	dev := c.RunMode.IsDevMode()
	minThreshold := uint64(MinProposalThresholdBps)
	minQuorum := uint64(MinQuorumVotesBps)
	minPeriod := uint64(MinVotingPeriod)
	minDelay := uint64(MinVotingDelay)
	minTimelockDelay := uint64(MinTimelockDelay)
	if dev {
		minQuorum = 1
		minPeriod = 1
		minDelay = 0
		minTimelockDelay = 0
	}
	if err := checkRange("proposalThresholdBps", c.ProposalThresholdBps, minThreshold, MaxProposalThresholdBps); err != nil {
		return err
	}
	if err := checkRange("quorumVotesBps", c.QuorumVotesBps, minQuorum, MaxQuorumVotesBps); err != nil {
		return err
	}
	if err := checkRange("votingPeriod", c.VotingPeriod, minPeriod, MaxVotingPeriod); err != nil {
		return err
	}
	if err := checkRange("votingDelay", c.VotingDelay, minDelay, MaxVotingDelay); err != nil {
		return err
	}
	if err := checkRange("timelockDelay", c.TimelockDelay, minTimelockDelay, MaxTimelockDelay); err != nil {
		return err
	}
	if c.MaxActions < 1 || c.MaxActions > MaxActions {
		return fmt.Errorf(
			"%w: maxActions %d outside [1, %d]",
			ErrInvalidConfig,
			c.MaxActions,
			MaxActions,
		)
	}
	if c.GracePeriod == 0 {
		return fmt.Errorf("%w: gracePeriod must be positive", ErrInvalidConfig)
	}
	if _, err := c.ShutdownTimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.DatabaseBusyTimeoutDuration(); err != nil {
		return err
	}
	return nil
}

// DelayBounds returns the allowed timelock delay range for the run mode
func (c *Config) DelayBounds() (uint64, uint64) {
	if c.RunMode.IsDevMode() {
		return 0, MaxTimelockDelay
	}
	return MinTimelockDelay, MaxTimelockDelay
}

// ShutdownTimeoutDuration parses ShutdownTimeout, falling back to the default
// when it is empty
func (c *Config) ShutdownTimeoutDuration() (time.Duration, error) {
	val := c.ShutdownTimeout
	if val == "" {
		val = DefaultShutdownTimeout
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf(
			"%w: shutdownTimeout %q: %w",
			ErrInvalidConfig,
			c.ShutdownTimeout,
			err,
		)
	}
	return d, nil
}

// DatabaseBusyTimeoutDuration parses DatabaseBusyTimeout, falling back to
// the default when it is empty
func (c *Config) DatabaseBusyTimeoutDuration() (time.Duration, error) {
	val := c.DatabaseBusyTimeout
	if val == "" {
		val = DefaultDatabaseBusyTimeout
	}
	d, err := time.ParseDuration(val)
	if err != nil || d < 0 {
		return 0, fmt.Errorf(
			"%w: databaseBusyTimeout %q",
			ErrInvalidConfig,
			c.DatabaseBusyTimeout,
		)
	}
	return d, nil
}

func checkRange(name string, val, minimum, maximum uint64) error {
	if val < minimum || val > maximum {
		return fmt.Errorf(
			"%w: %s %d outside [%d, %d]",
			ErrInvalidConfig,
			name,
			val,
			minimum,
			maximum,
		)
	}
	return nil
}
