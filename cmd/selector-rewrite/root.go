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

package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/selector-rewrite/cmd/selector-rewrite/commands"
	"github.com/walteh/selector-rewrite/cmd/selector-rewrite/opts"
)

// NewCommand builds the root command. Run with no arguments it rewrites
// src/utils/themes.ts with the XYChart rules.
func NewCommand() *cobra.Command {
	o := &opts.RootOpts{}

	cmd := &cobra.Command{
		Use:   "selector-rewrite [files...]",
		Short: "Rename legacy XYChart selectors in stylesheet sources",
		Long: `selector-rewrite reads each target file, applies an ordered list of
regular expression substitutions and writes the result back in place.

Without arguments it rewrites src/utils/themes.ts using the xychart rule set.
Targets may be plain paths or doublestar globs relative to --root.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if o.Debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			ctx, err := o.Init(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			cmd.SetContext(ctx)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.Rewrite(cmd.Context(), o, args)
		},
	}

	addRootFlags(cmd, o)

	cmd.AddCommand(
		commands.NewRulesCmd(o),
		commands.NewWatchCmd(o),
		newVersionCmd(),
	)

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&o.ConfigFile, "config", "c", "", "config file path (.yaml, .json, .hcl or .selectorrc)")
	cmd.PersistentFlags().StringVar(&o.Root, "root", "", "directory targets are resolved against")
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&o.Verbose, "verbose", "v", false, "print a line per file")
	cmd.PersistentFlags().BoolVar(&o.DryRun, "dry-run", false, "show the changes without writing them")
	cmd.PersistentFlags().BoolVar(&o.Check, "check", false, "exit non-zero if any file still needs rewriting")
}
