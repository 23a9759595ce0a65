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
	"fmt"
	"strconv"

	"github.com/blinklabs-io/governor/governance"
	"github.com/spf13/cobra"
)

type proposeFlags struct {
	targets     []string
	values      []string
	signatures  []string
	calldatas   []string
	description string
}

// request builds a ProposeRequest. Omitted values, signatures and calldatas
// default to zero/empty for every target.
func (f *proposeFlags) request() (governance.ProposeRequest, error) {
	req := governance.ProposeRequest{
		Targets:     f.targets,
		Description: f.description,
	}
	if len(f.values) == 0 {
		req.Values = make([]uint64, len(f.targets))
	}
	for _, v := range f.values {
		val, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return req, fmt.Errorf("invalid value %q: %w", v, err)
		}
		req.Values = append(req.Values, val)
	}
	req.Signatures = f.signatures
	if len(f.signatures) == 0 {
		req.Signatures = make([]string, len(f.targets))
	}
	if len(f.calldatas) == 0 {
		req.Calldatas = make([][]byte, len(f.targets))
	}
	for _, c := range f.calldatas {
		data, err := parseCalldata(c)
		if err != nil {
			return req, err
		}
		req.Calldatas = append(req.Calldatas, data)
	}
	return req, nil
}

func proposeCommand() *cobra.Command {
	var flags proposeFlags
	cmd := &cobra.Command{
		Use:   "propose",
		Short: "Create a proposal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, err := caller()
			if err != nil {
				return err
			}
			req, err := flags.request()
			if err != nil {
				return err
			}
			return runGovernor(cmd, func(ctx context.Context, gov *governance.Governor) (any, error) {
				id, err := gov.Propose(ctx, from, req)
				if err != nil {
					return nil, err
				}
				return map[string]uint{"proposalId": id}, nil
			})
		},
	}
	cmd.Flags().StringArrayVar(&flags.targets, "target", nil, "action target (repeatable)")
	cmd.Flags().StringArrayVar(&flags.values, "value", nil, "action value (repeatable)")
	cmd.Flags().StringArrayVar(&flags.signatures, "signature", nil, "action signature (repeatable)")
	cmd.Flags().StringArrayVar(&flags.calldatas, "calldata", nil, "hex-encoded action calldata (repeatable)")
	cmd.Flags().StringVar(&flags.description, "description", "", "proposal description")
	return cmd
}

func voteCommand() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "vote <proposal-id> <for|against|abstain>",
		Short: "Cast a vote",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := caller()
			if err != nil {
				return err
			}
			id, err := parseProposalID(args[0])
			if err != nil {
				return err
			}
			support, err := parseSupport(args[1])
			if err != nil {
				return err
			}
			return runGovernor(cmd, func(ctx context.Context, gov *governance.Governor) (any, error) {
				weight, err := gov.CastVote(ctx, from, id, support, reason)
				if err != nil {
					return nil, err
				}
				return map[string]uint64{"votes": weight}, nil
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "reason recorded with the vote")
	return cmd
}

// proposalActionCommand builds a command that takes a single proposal ID
func proposalActionCommand(
	use string,
	short string,
	needsCaller bool,
	fn func(ctx context.Context, gov *governance.Governor, from string, id uint) (any, error),
) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <proposal-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var from string
			if needsCaller {
				var err error
				if from, err = caller(); err != nil {
					return err
				}
			}
			id, err := parseProposalID(args[0])
			if err != nil {
				return err
			}
			return runGovernor(cmd, func(ctx context.Context, gov *governance.Governor) (any, error) {
				return fn(ctx, gov, from, id)
			})
		},
	}
}

func cancelCommand() *cobra.Command {
	return proposalActionCommand(
		"cancel",
		"Cancel a proposal",
		true,
		func(ctx context.Context, gov *governance.Governor, from string, id uint) (any, error) {
			if err := gov.Cancel(ctx, from, id); err != nil {
				return nil, err
			}
			return stateResult(ctx, gov, id)
		},
	)
}

func queueCommand() *cobra.Command {
	return proposalActionCommand(
		"queue",
		"Queue a succeeded proposal in the timelock",
		false,
		func(ctx context.Context, gov *governance.Governor, _ string, id uint) (any, error) {
			eta, err := gov.Queue(ctx, id)
			if err != nil {
				return nil, err
			}
			return map[string]uint64{"eta": eta}, nil
		},
	)
}

func executeCommand() *cobra.Command {
	return proposalActionCommand(
		"execute",
		"Execute a queued proposal",
		false,
		func(ctx context.Context, gov *governance.Governor, _ string, id uint) (any, error) {
			if err := gov.Execute(ctx, id); err != nil {
				return nil, err
			}
			return stateResult(ctx, gov, id)
		},
	)
}

func vetoCommand() *cobra.Command {
	return proposalActionCommand(
		"veto",
		"Veto a proposal",
		true,
		func(ctx context.Context, gov *governance.Governor, from string, id uint) (any, error) {
			if err := gov.Veto(ctx, from, id); err != nil {
				return nil, err
			}
			return stateResult(ctx, gov, id)
		},
	)
}

func setVetoerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-vetoer <new-vetoer>",
		Short: "Transfer the veto power",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := caller()
			if err != nil {
				return err
			}
			return runGovernor(cmd, func(ctx context.Context, gov *governance.Governor) (any, error) {
				if err := gov.SetVetoer(ctx, from, args[0]); err != nil {
					return nil, err
				}
				return vetoerResult(ctx, gov)
			})
		},
	}
}

func burnVetoPowerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "burn-veto-power",
		Short: "Permanently renounce the veto power",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, err := caller()
			if err != nil {
				return err
			}
			return runGovernor(cmd, func(ctx context.Context, gov *governance.Governor) (any, error) {
				if err := gov.BurnVetoPower(ctx, from); err != nil {
					return nil, err
				}
				return vetoerResult(ctx, gov)
			})
		},
	}
}
