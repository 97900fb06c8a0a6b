// Copyright 2025 walteh LLC
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

package commands

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/selector-rewrite/cmd/selector-rewrite/opts"
	"gitlab.com/tozd/go/errors"
)

// NewRulesCmd creates a command that prints the active rules in order
func NewRulesCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the substitution rules in the order they run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			replacementRules, err := o.Config.ReplacementRules()
			if err != nil {
				return errors.Errorf("resolving rules: %w", err)
			}

			data := pterm.TableData{{"#", "Pattern", "Replacement", "Files"}}
			for i, r := range replacementRules {
				pattern := r.Pattern
				if r.Literal {
					pattern = strconv.Quote(pattern)
				}
				files := r.FileFilterGlob
				if files == "" {
					files = "*"
				}
				data = append(data, []string{strconv.Itoa(i + 1), pattern, r.Replacement, files})
			}

			table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
			if err != nil {
				return errors.Errorf("rendering rules: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), table)
			return err
		},
	}

	return cmd
}
