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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type governorMetrics struct {
	operations       *prometheus.CounterVec
	proposalsCreated prometheus.Counter
	votesCast        *prometheus.CounterVec
	vetoes           prometheus.Counter
}

func (m *governorMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.operations = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "governor_operations_total",
			Help: "governance operations by outcome",
		},
		[]string{"operation", "result"},
	)
	m.proposalsCreated = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "governor_proposals_created_total",
		Help: "total number of proposals created",
	})
	m.votesCast = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "governor_votes_cast_total",
			Help: "ballots recorded by support",
		},
		[]string{"support"},
	)
	m.vetoes = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "governor_vetoes_total",
		Help: "total number of proposals vetoed",
	})
}
