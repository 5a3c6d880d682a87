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

package tab

import "golang.org/x/xerrors"

// ErrNoConvergence wraps the diagnostic attached to an ErrorResult
// outcome: Bland's rule guarantees the simplex method terminates, so
// reaching the iteration cap (maxPivots) means a row/column bookkeeping
// bug broke that guarantee, not that the LP itself is hard. Callers that
// only care about the Outcome taxonomy can ignore the error value; it
// exists for diagnostics (cmd/isl surfaces it via %+v).
var ErrNoConvergence = xerrors.New("tab: simplex did not converge within the iteration bound")

func convergenceError(phase string, iterations int) error {
	return xerrors.Errorf("%s after %d iterations: %w", phase, iterations, ErrNoConvergence)
}
