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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type timelockMetrics struct {
	queued            prometheus.Counter
	canceled          prometheus.Counter
	executed          prometheus.Counter
	executionFailures prometheus.Counter
}

func newTimelockMetrics(registry prometheus.Registerer) *timelockMetrics {
	factory := promauto.With(registry)
	return &timelockMetrics{
		queued: factory.NewCounter(prometheus.CounterOpts{
			Name: "governor_timelock_queued_total",
			Help: "Total number of actions queued in the timelock",
		}),
		canceled: factory.NewCounter(prometheus.CounterOpts{
			Name: "governor_timelock_canceled_total",
			Help: "Total number of timelock cancel calls",
		}),
		executed: factory.NewCounter(prometheus.CounterOpts{
			Name: "governor_timelock_executed_total",
			Help: "Total number of actions executed by the timelock",
		}),
		executionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "governor_timelock_execution_failures_total",
			Help: "Total number of action batches rejected by a handler",
		}),
	}
}
