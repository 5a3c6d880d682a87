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

// Package polylib reads and writes the PolyLib constraint-matrix text
// format described in spec §6: one matrix per basic set or basic map, a
// header line giving the row and column counts, then one row per
// constraint. A row's leading column is the constraint tag (0 for an
// equality, 1 for an inequality) and its trailing column is the constant
// term; the columns in between hold, in order, the tuple's input and
// output coefficients, the existentially quantified ("exist") div
// coefficients, and the parameter coefficients.
//
// This mirrors isl_map_polylib.c's copy_constraint_to/copy_constraint_from
// column shuffle, adapted from PolyLib's Matrix/Value vocabulary to
// islgo's own row layout (const, params, in, out, divs — see
// internal/core/adt).
package polylib

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/Meinersbur/islgo/internal/core/adt"
	"github.com/Meinersbur/islgo/internal/core/num"
	"github.com/Meinersbur/islgo/internal/core/space"
)

// Matrix is one parsed PolyLib constraint matrix, unshuffled into the
// shape isl_map_polylib.c calls it with: NIn/NOut are the tuple's input
// and output dimension counts, NExist the number of existentially
// quantified (div) columns and NParam the number of parameter columns.
// Callers that only know the total tuple width may set NOut to it and
// NIn to 0 (a basic set), per spec §3's convention that a basic set is
// the i=0 special case of a basic map.
type Matrix struct {
	NParam, NIn, NOut, NExist int
	Rows                      []Row
}

// Row is one parsed PolyLib constraint row: Eq is true for an equality
// (tag 0), false for an inequality (tag 1). Tuple, Exist and Param are
// this row's coefficients in each column group, in PolyLib's column
// order; Const is the trailing constant term.
type Row struct {
	Eq    bool
	Tuple num.Row // length NIn+NOut
	Exist num.Row // length NExist
	Param num.Row // length NParam
	Const num.Int
}

// Reader parses a stream holding more than one PolyLib artifact one after
// another — pip.c's "context matrix, -1 sentinel, problem matrix, keyword
// lines" grammar, for instance — where a fresh bufio.Scanner per matrix
// would lose whatever the previous one had already buffered past the
// matrix's own lines.
type Reader struct {
	sc *bufio.Scanner
}

// NewReader wraps r for a sequence of ReadMatrix/ReadLine calls.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &Reader{sc: sc}
}

// ReadLine returns the next non-blank, non-comment line, with surrounding
// whitespace trimmed.
func (rd *Reader) ReadLine() (string, error) {
	for rd.sc.Scan() {
		line := strings.TrimSpace(rd.sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line, nil
	}
	if err := rd.sc.Err(); err != nil {
		return "", err
	}
	return "", io.ErrUnexpectedEOF
}

// ReadMatrix parses a single PolyLib matrix. See the package-level
// ReadMatrix for the column-group convention.
func (rd *Reader) ReadMatrix(nParam, nIn, nOut int) (*Matrix, error) {
	sc := rd.sc

	header, err := nextTokenLine(sc)
	if err != nil {
		return nil, errors.Wrap(err, "polylib: reading header")
	}
	if len(header) < 2 {
		return nil, errors.Errorf("polylib: malformed header %q", strings.Join(header, " "))
	}
	nRows, err := parseUint(header[0])
	if err != nil {
		return nil, errors.Wrap(err, "polylib: header row count")
	}
	nCols, err := parseUint(header[1])
	if err != nil {
		return nil, errors.Wrap(err, "polylib: header column count")
	}

	if nOut < 0 {
		nOut = nCols - 2 - nIn - nParam
	}
	nExist := nCols - 2 - nIn - nOut - nParam
	if nExist < 0 || nOut < 0 {
		return nil, errors.Errorf("polylib: %d columns too few for %d tuple + %d param dims", nCols, nIn+nOut, nParam)
	}

	m := &Matrix{NParam: nParam, NIn: nIn, NOut: nOut, NExist: nExist}
	for i := 0; i < nRows; i++ {
		fields, err := nextTokenLine(sc)
		if err != nil {
			return nil, errors.Wrapf(err, "polylib: reading row %d", i)
		}
		if len(fields) != nCols {
			return nil, errors.Errorf("polylib: row %d has %d columns, want %d", i, len(fields), nCols)
		}
		row, err := parseRow(fields, nIn+nOut, nExist, nParam)
		if err != nil {
			return nil, errors.Wrapf(err, "polylib: row %d", i)
		}
		m.Rows = append(m.Rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "polylib: scanning input")
	}
	return m, nil
}

// ReadMatrix parses a single PolyLib matrix from r. The header line gives
// the row and column count; any further tokens on the header line (the
// "[out in exist params]" column-group annotation PolyLib writers
// sometimes emit) are ignored. nParam, nIn and nOut tell ReadMatrix how
// to split the column groups apart, since the matrix text itself only
// carries a total column count. A negative nOut means "infer the tuple's
// output width from the header, assuming no exist columns" — the
// convention pip.c's reader uses for a basic set's own constraint
// matrix, where the column split is not known ahead of the header.
//
// ReadMatrix is a convenience for the common one-matrix-per-stream case;
// a stream holding several matrices back to back (pip.c's context +
// problem pair) should share a single Reader instead, via NewReader.
func ReadMatrix(r io.Reader, nParam, nIn, nOut int) (*Matrix, error) {
	return NewReader(r).ReadMatrix(nParam, nIn, nOut)
}

func parseRow(fields []string, nTuple, nExist, nParam int) (Row, error) {
	vals := make([]num.Int, len(fields))
	for i, f := range fields {
		v, err := num.FromString(f)
		if err != nil {
			return Row{}, errors.Wrapf(err, "column %d %q", i, f)
		}
		vals[i] = v
	}
	r := Row{
		Eq:    vals[0].IsZero(),
		Tuple: append(num.Row(nil), vals[1:1+nTuple]...),
		Exist: append(num.Row(nil), vals[1+nTuple:1+nTuple+nExist]...),
		Param: append(num.Row(nil), vals[1+nTuple+nExist:1+nTuple+nExist+nParam]...),
		Const: vals[len(vals)-1],
	}
	return r, nil
}

func nextTokenLine(sc *bufio.Scanner) ([]string, error) {
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return strings.Fields(line), nil
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return nil, io.ErrUnexpectedEOF
}

func parseUint(s string) (int, error) {
	n, err := num.FromString(s)
	if err != nil {
		return 0, err
	}
	v, ok := n.Int64()
	if !ok || v < 0 {
		return 0, errors.Errorf("not a non-negative integer: %q", s)
	}
	return int(v), nil
}

// WriteMatrix writes m in PolyLib's constraint-matrix text format.
func WriteMatrix(w io.Writer, m *Matrix) error {
	nCols := 2 + m.NIn + m.NOut + m.NExist + m.NParam
	if _, err := fmt.Fprintf(w, "%d %d\n", len(m.Rows), nCols); err != nil {
		return err
	}
	for _, row := range m.Rows {
		tag := 1
		if row.Eq {
			tag = 0
		}
		fields := make([]string, 0, nCols)
		fields = append(fields, fmt.Sprint(tag))
		for _, v := range row.Tuple {
			fields = append(fields, v.String())
		}
		for _, v := range row.Exist {
			fields = append(fields, v.String())
		}
		for _, v := range row.Param {
			fields = append(fields, v.String())
		}
		fields = append(fields, row.Const.String())
		if _, err := fmt.Fprintln(w, strings.Join(fields, " ")); err != nil {
			return err
		}
	}
	return nil
}

// ToBasicMap converts m into a basic map over a space with the given
// parameter, input and output dimension counts (m.NIn/m.NOut must match).
// Each exist column becomes an "unknown" div: an extra existentially
// quantified dimension with no recorded definition, mirroring
// isl_basic_map_new_from_polylib's copy_constraints, which leaves every
// div's definition cleared.
func (m *Matrix) ToBasicMap() *adt.BasicMap {
	sp := space.New(m.NParam, m.NIn, m.NOut)
	b := adt.Alloc(sp, len(m.Rows), len(m.Rows))
	for i := 0; i < m.NExist; i++ {
		b, _ = b.AddDiv()
	}
	for _, row := range m.Rows {
		full := m.toInternalRow(row)
		var idx int
		if row.Eq {
			b, idx = b.AddEquality()
			for c, v := range full {
				b.SetEqCoeff(idx, c, v)
			}
		} else {
			b, idx = b.AddInequality()
			for c, v := range full {
				b.SetIneqCoeff(idx, c, v)
			}
		}
	}
	return b
}

// toInternalRow reorders a PolyLib row (tag, tuple, exist, params, const)
// into islgo's own row layout (const, params, in, out, divs).
func (m *Matrix) toInternalRow(row Row) num.Row {
	width := 1 + m.NParam + m.NIn + m.NOut + m.NExist
	out := make(num.Row, width)
	out[0] = row.Const
	off := 1
	copy(out[off:], row.Param)
	off += m.NParam
	copy(out[off:], row.Tuple)
	off += m.NIn + m.NOut
	copy(out[off:], row.Exist)
	return out
}

// ToBasicSet is ToBasicMap for a basic set matrix (m.NOut is the set's
// dimension count and m.NIn must be 0), per spec §3's "a basic set is the
// i=0 special case of a basic map" convention.
func (m *Matrix) ToBasicSet() *adt.BasicMap {
	return m.ToBasicMap()
}

// FromBasicMap converts b into a PolyLib matrix, the reverse of
// ToBasicMap, mirroring isl_basic_map_to_polylib.
func FromBasicMap(b *adt.BasicMap) *Matrix {
	sp := b.Space()
	nParam, nIn, nOut, nDiv := sp.NParam(), sp.NIn(), sp.NOut(), b.NDiv()
	m := &Matrix{NParam: nParam, NIn: nIn, NOut: nOut, NExist: nDiv}
	for i := 0; i < b.NEq(); i++ {
		m.Rows = append(m.Rows, fromInternalRow(b.Eq(i), true, nParam, nIn, nOut, nDiv))
	}
	for i := 0; i < b.NIneq(); i++ {
		m.Rows = append(m.Rows, fromInternalRow(b.Ineq(i), false, nParam, nIn, nOut, nDiv))
	}
	return m
}

func fromInternalRow(row num.Row, eq bool, nParam, nIn, nOut, nDiv int) Row {
	off := 1
	param := append(num.Row(nil), row[off:off+nParam]...)
	off += nParam
	tuple := append(num.Row(nil), row[off:off+nIn+nOut]...)
	off += nIn + nOut
	exist := append(num.Row(nil), row[off:off+nDiv]...)
	return Row{
		Eq:    eq,
		Tuple: tuple,
		Exist: exist,
		Param: param,
		Const: row[0],
	}
}
