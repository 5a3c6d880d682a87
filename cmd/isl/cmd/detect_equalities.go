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

	"github.com/spf13/cobra"

	"github.com/Meinersbur/islgo/internal/core/tab"
	"github.com/Meinersbur/islgo/internal/encoding/polylib"
)

func newDetectEqualitiesCmd(c *Command) *cobra.Command {
	return &cobra.Command{
		Use:   "detect-equalities",
		Short: "tighten a basic set's inequalities that happen to hold with equality into explicit equalities",
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			m, err := polylib.ReadMatrix(cobraCmd.InOrStdin(), 0, 0, -1)
			if err != nil {
				return fmt.Errorf("detect-equalities: %w", err)
			}
			b := tab.DetectImplicitEqualities(m.ToBasicSet())
			return polylib.WriteMatrix(cobraCmd.OutOrStdout(), polylib.FromBasicMap(b))
		},
	}
}
