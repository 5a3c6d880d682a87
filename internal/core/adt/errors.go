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

package adt

// This file contains the error/fault split of spec §7.
//
// *Fault:
//    - an invariant violation (stale dimension index, ragged rows, a
//      missing div)
//    - always indicates a caller bug, not a property of the data
//    - panics rather than returning an error, matching "fatal abort" in
//      spec §7; nothing in this package recovers a Fault
//
// LP/sampling outcomes (tab.Outcome, ilp's ok|empty|unbounded|error) are
// ordinary return values and are NOT Faults: spec §7 is explicit that
// emptiness and unboundedness are first-class results, not failures.

import "fmt"

// Fault is the panic value used for invariant violations within this
// package (spec §7: "Invariant violation ... fatal abort — these indicate
// a caller bug"). It is not wrapped as a Go error because it is never
// meant to be handled; it is meant to be read from a crash report.
type Fault struct {
	Op  string
	Msg string
}

func (f *Fault) Error() string { return fmt.Sprintf("adt: %s: %s", f.Op, f.Msg) }

func fault(op, format string, args ...interface{}) {
	panic(&Fault{Op: op, Msg: fmt.Sprintf(format, args...)})
}
