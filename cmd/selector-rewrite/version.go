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
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/selector-rewrite/pkg/rules"
	"gitlab.com/tozd/go/errors"
)

// 🏷️ Build describes the binary and the rule sets compiled into it
type Build struct {
	Version  string         `json:"version"`
	Commit   string         `json:"commit,omitempty"`
	Date     string         `json:"date,omitempty"`
	Dirty    bool           `json:"dirty"`
	Go       string         `json:"go"`
	Platform string         `json:"platform"`
	RuleSets map[string]int `json:"rule_sets"`
}

func currentBuild() Build {
	bi, _ := debug.ReadBuildInfo()
	return buildFrom(bi)
}

// buildFrom reads vcs stamps from bi, which may be nil for test binaries
func buildFrom(bi *debug.BuildInfo) Build {
	b := Build{
		Version:  "dev",
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
		RuleSets: map[string]int{},
	}
	for _, name := range rules.Names() {
		set, err := rules.Lookup(name)
		if err == nil {
			b.RuleSets[name] = len(set)
		}
	}

	if bi == nil {
		return b
	}
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		b.Version = v
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			b.Commit = s.Value
		case "vcs.time":
			b.Date = s.Value
		case "vcs.modified":
			b.Dirty, _ = strconv.ParseBool(s.Value)
		}
	}
	return b
}

// Short is the version plus an abbreviated commit
func (b Build) Short() string {
	out := b.Version
	if b.Commit != "" {
		commit := b.Commit
		if len(commit) > 12 {
			commit = commit[:12]
		}
		out += " (" + commit
		if b.Dirty {
			out += "-dirty"
		}
		out += ")"
	}
	return out
}

func (b Build) table() (string, error) {
	sets := make([]string, 0, len(b.RuleSets))
	for _, name := range rules.Names() {
		if n, ok := b.RuleSets[name]; ok {
			sets = append(sets, fmt.Sprintf("%s (%d rules)", name, n))
		}
	}

	data := pterm.TableData{
		{"version", b.Short()},
		{"built", orUnknown(b.Date)},
		{"go", b.Go},
		{"platform", b.Platform},
		{"rule sets", strings.Join(sets, ", ")},
	}
	return pterm.DefaultTable.WithData(data).Srender()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func newVersionCmd() *cobra.Command {
	var short, asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		// no config needed to report the build
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			b := currentBuild()
			out := cmd.OutOrStdout()

			switch {
			case asJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(b); err != nil {
					return errors.Errorf("encoding build info: %w", err)
				}
				return nil
			case short:
				_, err := fmt.Fprintln(out, b.Short())
				return err
			}

			table, err := b.table()
			if err != nil {
				return errors.Errorf("rendering build info: %w", err)
			}
			_, err = fmt.Fprintf(out, "🚀 selector-rewrite\n%s\n", table)
			return err
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Print only the version")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print build information as JSON")
	cmd.MarkFlagsMutuallyExclusive("short", "json")

	return cmd
}
