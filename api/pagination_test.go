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

package api

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaginationDefaultValues(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/proposals", nil)
	params, err := ParsePagination(req)
	require.NoError(t, err)

	assert.Equal(t, DefaultPaginationCount, params.Count)
	assert.Equal(t, DefaultPaginationPage, params.Page)
	assert.Equal(t, PaginationOrderAsc, params.Order)
}

func TestParsePaginationValid(t *testing.T) {
	req := httptest.NewRequest(
		http.MethodGet,
		"/proposals?count=25&page=3&order=DESC",
		nil,
	)
	params, err := ParsePagination(req)
	require.NoError(t, err)

	assert.Equal(t, 25, params.Count)
	assert.Equal(t, 3, params.Page)
	assert.Equal(t, PaginationOrderDesc, params.Order)
}

func TestParsePaginationClampBounds(t *testing.T) {
	req := httptest.NewRequest(
		http.MethodGet,
		"/proposals?count=999&page=0",
		nil,
	)
	params, err := ParsePagination(req)
	require.NoError(t, err)

	assert.Equal(t, MaxPaginationCount, params.Count)
	assert.Equal(t, 1, params.Page)
}

func TestParsePaginationInvalid(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "non-numeric count", url: "/proposals?count=abc"},
		{name: "non-numeric page", url: "/proposals?page=abc"},
		{name: "invalid order", url: "/proposals?order=sideways"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, test.url, nil)
			_, err := ParsePagination(req)
			require.ErrorIs(t, err, ErrInvalidPaginationParameters)
		})
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	tests := []struct {
		name     string
		params   PaginationParams
		expected []int
	}{
		{"first page", PaginationParams{Count: 2, Page: 1, Order: PaginationOrderAsc}, []int{1, 2}},
		{"last partial page", PaginationParams{Count: 2, Page: 3, Order: PaginationOrderAsc}, []int{5}},
		{"past the end", PaginationParams{Count: 2, Page: 4, Order: PaginationOrderAsc}, []int{}},
		{"descending", PaginationParams{Count: 2, Page: 1, Order: PaginationOrderDesc}, []int{5, 4}},
		{"huge page", PaginationParams{Count: 100, Page: 184467440737095518, Order: PaginationOrderAsc}, []int{}},
		{"max page", PaginationParams{Count: 100, Page: math.MaxInt, Order: PaginationOrderAsc}, []int{}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, paginate(items, test.params))
		})
	}
	// The input is left in ascending order
	assert.Equal(t, []int{1, 2, 3, 4, 5}, items)
}

func TestSetPaginationHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SetPaginationHeaders(rec, 5, PaginationParams{Count: 2, Page: 1})
	assert.Equal(t, "5", rec.Header().Get("X-Pagination-Count-Total"))
	assert.Equal(t, "3", rec.Header().Get("X-Pagination-Page-Total"))

	rec = httptest.NewRecorder()
	SetPaginationHeaders(rec, 0, PaginationParams{Count: 2, Page: 1})
	assert.Equal(t, "0", rec.Header().Get("X-Pagination-Page-Total"))
}
