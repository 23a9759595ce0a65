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

	"github.com/blinklabs-io/governor/governance"
	"github.com/spf13/cobra"
)

type stateOutput struct {
	State governance.ProposalState `json:"state"`
	ID    uint                     `json:"id"`
}

type vetoerOutput struct {
	Vetoer string `json:"vetoer,omitempty"`
	Burned bool   `json:"burned"`
}

func stateResult(ctx context.Context, gov *governance.Governor, id uint) (any, error) {
	state, err := gov.State(ctx, id)
	if err != nil {
		return nil, err
	}
	return stateOutput{ID: id, State: state}, nil
}

func vetoerResult(ctx context.Context, gov *governance.Governor) (any, error) {
	vetoer, ok, err := gov.Vetoer(ctx)
	if err != nil {
		return nil, err
	}
	return vetoerOutput{Vetoer: vetoer, Burned: !ok}, nil
}

func stateCommand() *cobra.Command {
	return proposalActionCommand(
		"state",
		"Show the state of a proposal",
		false,
		func(ctx context.Context, gov *governance.Governor, _ string, id uint) (any, error) {
			return stateResult(ctx, gov, id)
		},
	)
}

func proposalCommand() *cobra.Command {
	return proposalActionCommand(
		"proposal",
		"Show a proposal",
		false,
		func(ctx context.Context, gov *governance.Governor, _ string, id uint) (any, error) {
			return gov.Proposal(ctx, id)
		},
	)
}

func proposalsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "proposals",
		Short: "List all proposals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGovernor(cmd, func(ctx context.Context, gov *governance.Governor) (any, error) {
				return gov.Proposals(ctx)
			})
		},
	}
}

func receiptCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "receipt <proposal-id> <voter>",
		Short: "Show the ballot of a voter on a proposal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProposalID(args[0])
			if err != nil {
				return err
			}
			return runGovernor(cmd, func(ctx context.Context, gov *governance.Governor) (any, error) {
				return gov.GetReceipt(ctx, id, args[1])
			})
		},
	}
}

func vetoerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "vetoer",
		Short: "Show the current vetoer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGovernor(cmd, vetoerResult)
		},
	}
}

func latestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "latest <proposer>",
		Short: "Show the most recent proposal of a proposer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGovernor(cmd, func(ctx context.Context, gov *governance.Governor) (any, error) {
				id, err := gov.LatestProposalID(ctx, args[0])
				if err != nil {
					return nil, err
				}
				return map[string]uint{"proposalId": id}, nil
			})
		},
	}
}
