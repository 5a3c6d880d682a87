// Copyright 2020 CUE Authors
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

package isl

import "github.com/Meinersbur/islgo/internal/core/num"

// pointRow builds a ContainsPoint-shaped row ([1, coord...]) from plain
// int64 coordinates.
func pointRow(coords []int64) num.Row {
	row := make(num.Row, 1+len(coords))
	row[0] = num.One
	for i, v := range coords {
		row[1+i] = num.FromInt64(v)
	}
	return row
}

// coordsFrom strips the leading constant column off a ContainsPoint- or
// sample-shaped row, returning plain int64 coordinates. It panics if any
// coordinate does not fit in an int64 — acceptable for a convenience API
// whose whole point is small, human-sized examples; callers working with
// arbitrarily large coefficients should use internal/core/num directly.
func coordsFrom(row num.Row) []int64 {
	out := make([]int64, len(row)-1)
	for i, v := range row[1:] {
		n, ok := v.Int64()
		if !ok {
			panic("isl: coordinate does not fit in an int64")
		}
		out[i] = n
	}
	return out
}

func objRow(width int, coeffs []int64) num.Row {
	row := make(num.Row, width)
	for i, v := range coeffs {
		row[1+i] = num.FromInt64(v)
	}
	return row
}
