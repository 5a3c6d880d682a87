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

package polylib_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Meinersbur/islgo/internal/core/num"
	"github.com/Meinersbur/islgo/internal/encoding/polylib"
)

// { [x] : 0 <= x <= 3 }, a basic set with no params and no divs: two
// inequalities, tag 1, columns [tag, x, const].
const box1D = `2 3
1 1 0
1 -1 3
`

func TestReadMatrixParsesHeaderAndRows(t *testing.T) {
	m, err := polylib.ReadMatrix(strings.NewReader(box1D), 0, 1, 0)
	require.NoError(t, err)
	require.Len(t, m.Rows, 2)
	require.False(t, m.Rows[0].Eq)
	require.Equal(t, int64(0), toInt64(t, m.Rows[0].Const))
	require.Equal(t, int64(1), toInt64(t, m.Rows[0].Tuple[0]))
}

func TestToBasicMapRoundTripsThroughFromBasicMap(t *testing.T) {
	m, err := polylib.ReadMatrix(strings.NewReader(box1D), 0, 1, 0)
	require.NoError(t, err)

	b := m.ToBasicSet()
	require.Equal(t, 0, b.NEq())
	require.Equal(t, 2, b.NIneq())
	require.True(t, b.ContainsPoint(num.Row{num.FromInt64(1), num.FromInt64(0)}))
	require.True(t, b.ContainsPoint(num.Row{num.FromInt64(1), num.FromInt64(3)}))
	require.False(t, b.ContainsPoint(num.Row{num.FromInt64(1), num.FromInt64(4)}))

	back := polylib.FromBasicMap(b)
	require.Equal(t, m.NIn, back.NIn)
	require.Equal(t, m.NOut, back.NOut)
	require.Len(t, back.Rows, 2)

	var sb strings.Builder
	require.NoError(t, polylib.WriteMatrix(&sb, back))
	require.True(t, strings.HasPrefix(sb.String(), "2 3\n"))
}

func TestReadMatrixRejectsShortHeader(t *testing.T) {
	_, err := polylib.ReadMatrix(strings.NewReader("2\n1 1 0\n1 -1 3\n"), 0, 1, 0)
	require.Error(t, err)
}

func TestReadMatrixRejectsWrongColumnCount(t *testing.T) {
	_, err := polylib.ReadMatrix(strings.NewReader("1 3\n1 1\n"), 0, 1, 0)
	require.Error(t, err)
}

func TestReadMatrixComputesExistCountFromHeader(t *testing.T) {
	// One equality over one param, one tuple dim, one exist column:
	// [tag, tuple, exist, param, const] = 5 columns.
	doc := "1 5\n0 1 1 0 0\n"
	m, err := polylib.ReadMatrix(strings.NewReader(doc), 1, 1, 0)
	require.NoError(t, err)
	require.Equal(t, 1, m.NExist)
	require.True(t, m.Rows[0].Eq)
}

func TestReadMatrixInfersOutputWidthWhenNOutNegative(t *testing.T) {
	m, err := polylib.ReadMatrix(strings.NewReader(box1D), 0, 0, -1)
	require.NoError(t, err)
	require.Equal(t, 1, m.NOut)
	require.Equal(t, 0, m.NExist)
}

func toInt64(t *testing.T, n num.Int) int64 {
	t.Helper()
	v, ok := n.Int64()
	require.True(t, ok)
	return v
}
