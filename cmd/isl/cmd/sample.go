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

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Meinersbur/islgo/internal/core/sample"
	"github.com/Meinersbur/islgo/internal/encoding/polylib"
)

func newSampleCmd(c *Command) *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "find one integer point of a basic set read from stdin",
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			m, err := polylib.ReadMatrix(cobraCmd.InOrStdin(), 0, 0, -1)
			if err != nil {
				return fmt.Errorf("sample: %w", err)
			}
			_, pt, ok := sample.Basic(m.ToBasicSet())

			w := cobraCmd.OutOrStdout()
			if !ok {
				fmt.Fprintln(w, "no integer points")
				return nil
			}
			// pt's leading entry is the constant column (always 1); only
			// the coordinates after it are the sample point.
			coords := pt[1:]
			terms := make([]string, len(coords))
			for i, v := range coords {
				terms[i] = v.String()
			}
			fmt.Fprintln(w, strings.Join(terms, " "))
			return nil
		},
	}
}
