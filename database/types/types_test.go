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

package types_test

import (
	"math"
	"testing"

	"github.com/blinklabs-io/governor/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint64ValueScan(t *testing.T) {
	testDefs := []struct {
		name     string
		value    types.Uint64
		expected string
	}{
		{name: "zero", value: 0, expected: "0"},
		{name: "small", value: 123, expected: "123"},
		{name: "max", value: math.MaxUint64, expected: "18446744073709551615"},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			out, err := testDef.value.Value()
			require.NoError(t, err)
			assert.Equal(t, testDef.expected, out)
			var scanned types.Uint64
			require.NoError(t, scanned.Scan(out))
			assert.Equal(t, testDef.value, scanned)
		})
	}
}

func TestUint64ScanAlternateTypes(t *testing.T) {
	var u types.Uint64
	require.NoError(t, u.Scan([]byte("42")))
	assert.Equal(t, types.Uint64(42), u)
	require.NoError(t, u.Scan(int64(7)))
	assert.Equal(t, types.Uint64(7), u)
	require.NoError(t, u.Scan(nil))
	assert.Equal(t, types.Uint64(0), u)
	assert.Error(t, u.Scan(int64(-1)))
	assert.Error(t, u.Scan(3.5))
	assert.Error(t, u.Scan("not-a-number"))
}
