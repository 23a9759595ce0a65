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

package votes

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// SnapshotEntry is one weight checkpoint in a YAML snapshot file
type SnapshotEntry struct {
	Account string `yaml:"account"`
	Block   uint64 `yaml:"block"`
	Weight  uint64 `yaml:"weight"`
}

// Snapshot is the on-disk layout of a weight snapshot:
//
//	checkpoints:
//	  - account: alice
//	    block: 1
//	    weight: 1000
type Snapshot struct {
	Checkpoints []SnapshotEntry `yaml:"checkpoints"`
}

// LoadSnapshot reads checkpoints from YAML. Entries may appear in any order.
func LoadSnapshot(r io.Reader) (*Checkpoints, error) {
	var snap Snapshot
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&snap); err != nil {
		if errors.Is(err, io.EOF) {
			return NewCheckpoints(), nil
		}
		return nil, fmt.Errorf("decode weight snapshot: %w", err)
	}
	entries := snap.Checkpoints
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Block < entries[j].Block
	})
	ret := NewCheckpoints()
	for i, entry := range entries {
		if err := ret.SetWeight(entry.Account, entry.Block, entry.Weight); err != nil {
			return nil, fmt.Errorf("weight snapshot entry %d: %w", i, err)
		}
	}
	return ret, nil
}

// LoadSnapshotFile reads checkpoints from a YAML file
func LoadSnapshotFile(path string) (*Checkpoints, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadSnapshot(f)
}
