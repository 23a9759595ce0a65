// Copyright 2025 Blink Labs Software
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

package badger

import (
	"errors"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type blobMetrics struct {
	commits   prometheus.Counter
	conflicts prometheus.Counter
}

// newBlobMetrics registers the blob store counters. Without a registry the
// counters still work but are never exported.
func newBlobMetrics(registry prometheus.Registerer) *blobMetrics {
	factory := promauto.With(registry)
	return &blobMetrics{
		commits: factory.NewCounter(prometheus.CounterOpts{
			Name: "governor_blob_commits_total",
			Help: "Total number of committed blob transactions",
		}),
		conflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "governor_blob_conflicts_total",
			Help: "Total number of blob transactions aborted by a write conflict",
		}),
	}
}

func (m *blobMetrics) observeConflict(err error) {
	if errors.Is(err, badger.ErrConflict) {
		m.conflicts.Inc()
	}
}
