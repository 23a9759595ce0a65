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

package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/blinklabs-io/governor"
	"github.com/blinklabs-io/governor/chain"
	"github.com/blinklabs-io/governor/database/models"
	"github.com/blinklabs-io/governor/governance"
	"github.com/blinklabs-io/governor/internal/config"
	"github.com/blinklabs-io/governor/internal/node"
	"github.com/spf13/cobra"
)

type governorFunc func(ctx context.Context, gov *governance.Governor) (any, error)

// runGovernor opens the governor for a single command, runs fn and prints its
// result as JSON
func runGovernor(cmd *cobra.Command, fn governorFunc) error {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return errors.New("no config found in context")
	}
	logger := commonRun(os.Stderr)
	weights, err := node.LoadWeights(cfg.WeightsFile)
	if err != nil {
		return err
	}
	opts, err := node.Options(cfg, logger)
	if err != nil {
		return err
	}
	opts = append(
		opts,
		governor.WithClock(commandClock(cmd, cfg)),
		governor.WithVotes(weights),
	)
	n, err := governor.New(governor.NewConfig(opts...))
	if err != nil {
		return err
	}
	defer func() {
		if err := n.Stop(); err != nil {
			logger.Error("shutdown errors occurred", "error", err)
		}
	}()
	if err := n.Start(); err != nil {
		return err
	}
	result, err := fn(cmd.Context(), n.Governance())
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}

// commandClock pins the chain to --block/--timestamp when either is given and
// follows the wall clock otherwise
func commandClock(cmd *cobra.Command, cfg *config.Config) chain.Clock {
	wall := chain.Wall{
		GenesisTime: cfg.GenesisTime,
		BlockTime:   cfg.BlockTime,
	}
	blockSet := cmd.Flags().Changed("block")
	timestampSet := cmd.Flags().Changed("timestamp")
	if !blockSet && !timestampSet {
		return wall
	}
	fixed := chain.Fixed{
		Block: wall.BlockNumber(),
		Time:  wall.Timestamp(),
	}
	if blockSet {
		fixed.Block = globalFlags.block
	}
	if timestampSet {
		fixed.Time = globalFlags.timestamp
	}
	return fixed
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func caller() (string, error) {
	if globalFlags.from == "" {
		return "", errors.New("--from is required")
	}
	return globalFlags.from, nil
}

func parseProposalID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid proposal ID: %q", arg)
	}
	return uint(id), nil
}

func parseSupport(arg string) (uint8, error) {
	switch strings.ToLower(arg) {
	case "against", "0":
		return models.SupportAgainst, nil
	case "for", "1":
		return models.SupportFor, nil
	case "abstain", "2":
		return models.SupportAbstain, nil
	}
	return 0, fmt.Errorf("invalid support %q: expected for, against or abstain", arg)
}

func parseCalldata(arg string) ([]byte, error) {
	arg = strings.TrimPrefix(strings.TrimPrefix(arg, "0x"), "0X")
	data, err := hex.DecodeString(arg)
	if err != nil {
		return nil, fmt.Errorf("invalid calldata %q: %w", arg, err)
	}
	return data, nil
}
