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

// Package rules holds the built-in selector rename tables.
package rules

import (
	"sort"

	"github.com/walteh/selector-rewrite/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// XYChartName is the name of the default rule set
const XYChartName = "xychart"

// xychartScope prefixes every legacy XYChart selector
const xychartScope = `svg\[aria-roledescription="xychart"\] `

// 📊 XYChart returns the ordered rules that move legacy XYChart selectors
// onto the new chart markup. The ".tick text" rule must stay ahead of ".tick".
func XYChart() []text.ReplacementRule {
	return []text.ReplacementRule{
		{Pattern: xychartScope + `\.plot-line-0`, Replacement: ".line-plot-0 path"},
		{Pattern: xychartScope + `\.plot-line-1`, Replacement: ".line-plot-1 path"},
		{Pattern: xychartScope + `\.plot-line-2`, Replacement: ".line-plot-2 path"},
		{Pattern: xychartScope + `\.plot-bar-0`, Replacement: ".bar-plot-0 rect"},
		{Pattern: xychartScope + `\.plot-bar-1`, Replacement: ".bar-plot-1 rect"},
		{Pattern: xychartScope + `\.plot-bar-2`, Replacement: ".bar-plot-2 rect"},
		{Pattern: xychartScope + `\.chart-title`, Replacement: ".chart-title text"},
		{Pattern: xychartScope + `\.axis-label`, Replacement: ".left-axis .title text, .bottom-axis .title text"},
		{Pattern: xychartScope + `\.legend text`, Replacement: ".legend text"},
		{Pattern: xychartScope + `\.tick text`, Replacement: ".left-axis .label text, .bottom-axis .label text"},
		{Pattern: xychartScope + `\.tick`, Replacement: ".ticks path"},
	}
}

var registry = map[string]func() []text.ReplacementRule{
	XYChartName: XYChart,
}

// 🎯 Lookup returns a fresh copy of the named rule set
func Lookup(name string) ([]text.ReplacementRule, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, errors.Errorf("unknown rule set %q", name)
	}
	return fn(), nil
}

// Names lists the registered rule sets in sorted order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
