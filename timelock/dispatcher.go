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

package timelock

import (
	"context"
	"fmt"
	"sync"
)

// Handler validates an action for its target and returns the effect to apply
// once the whole batch has succeeded. A nil effect is allowed.
type Handler func(ctx context.Context, action Action) (apply func(), err error)

// Dispatcher routes executed actions to per-target handlers. Targets without
// a handler succeed without effect unless the dispatcher is strict.
type Dispatcher struct {
	handlers map[string]Handler
	mu       sync.RWMutex
	strict   bool
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]Handler),
	}
}

// Register sets the handler for target, replacing any previous one
func (d *Dispatcher) Register(target string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[target] = handler
}

// SetStrict makes actions for unregistered targets fail with ErrUnknownTarget
func (d *Dispatcher) SetStrict(strict bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.strict = strict
}

// Dispatch runs the handler of every action in order and collects their
// effects. On the first failure nothing is returned, so no effect is applied.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	actions []Action,
) ([]func(), error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	effects := make([]func(), 0, len(actions))
	for i, action := range actions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		handler, ok := d.handlers[action.Target]
		if !ok {
			if d.strict {
				return nil, fmt.Errorf(
					"action %d: %w: %s",
					i,
					ErrUnknownTarget,
					action.Target,
				)
			}
			continue
		}
		apply, err := handler(ctx, action)
		if err != nil {
			return nil, fmt.Errorf(
				"action %d (%s): %w",
				i,
				action.Target,
				err,
			)
		}
		if apply != nil {
			effects = append(effects, apply)
		}
	}
	return effects, nil
}
