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
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

type TimelockOptionFunc func(*Timelock)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) TimelockOptionFunc {
	return func(t *Timelock) {
		t.logger = logger
	}
}

// WithPromRegistry specifies the prometheus registry to use for metrics
func WithPromRegistry(registry prometheus.Registerer) TimelockOptionFunc {
	return func(t *Timelock) {
		t.metrics = newTimelockMetrics(registry)
	}
}

// WithDelay specifies the delay in seconds between queue and execute
func WithDelay(delay uint64) TimelockOptionFunc {
	return func(t *Timelock) {
		t.delay = delay
	}
}

// WithGracePeriod specifies how long in seconds a queued action stays executable
func WithGracePeriod(gracePeriod uint64) TimelockOptionFunc {
	return func(t *Timelock) {
		t.gracePeriod = gracePeriod
	}
}

// WithDelayBounds specifies the allowed range of the delay
func WithDelayBounds(minimum, maximum uint64) TimelockOptionFunc {
	return func(t *Timelock) {
		t.minimumDelay = minimum
		t.maximumDelay = maximum
	}
}

// WithDispatcher specifies the dispatcher that executes actions
func WithDispatcher(dispatcher *Dispatcher) TimelockOptionFunc {
	return func(t *Timelock) {
		t.dispatcher = dispatcher
	}
}
