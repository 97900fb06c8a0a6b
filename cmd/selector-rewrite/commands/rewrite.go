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
	"context"

	"github.com/walteh/selector-rewrite/cmd/selector-rewrite/opts"
	"github.com/walteh/selector-rewrite/pkg/log"
	"github.com/walteh/selector-rewrite/pkg/rewrite"
	"github.com/walteh/selector-rewrite/pkg/rules"
	"gitlab.com/tozd/go/errors"
)

// XYChartDoneMessage is printed after a successful XYChart rewrite
const XYChartDoneMessage = "Updated all XYChart selectors!"

// Rewrite applies the configured rules to every target and reports the outcome.
// In check mode it returns an error wrapping rewrite.ErrNeedsRewrite when
// anything is out of date.
func Rewrite(ctx context.Context, o *opts.RootOpts, targets []string) error {
	cfg := o.Config
	if len(targets) > 0 {
		cfg.Targets = targets
	}

	replacementRules, err := cfg.ReplacementRules()
	if err != nil {
		return errors.Errorf("resolving rules: %w", err)
	}

	results, err := o.Rewriter().RewriteAll(ctx, cfg.Root, cfg.Targets, replacementRules)
	if err != nil && !errors.Is(err, rewrite.ErrNeedsRewrite) {
		return errors.Errorf("rewriting files: %w", err)
	}
	needsRewrite := err
	logger := log.FromContext(ctx)

	modified, replacements := 0, 0
	for _, res := range results {
		if res.Modified {
			modified++
		}
		replacements += res.Replacements
	}

	if o.ShowFiles() {
		logger.Header(header(o))
		for _, res := range results {
			report(ctx, res)
		}
		logger.LogNewline()
		logger.Summary()
	}

	switch {
	case o.Check:
		if needsRewrite != nil {
			logger.Errorf("%d file(s) still use legacy selectors", modified)
			return needsRewrite
		}
		logger.Success("all selectors up to date")
	case o.DryRun:
		logger.Infof("dry run: %d replacement(s) in %d file(s), nothing written", replacements, modified)
	case cfg.RuleSet == rules.XYChartName:
		logger.Plain(XYChartDoneMessage)
	default:
		logger.Plain("Updated selectors!")
	}

	return nil
}

func header(o *opts.RootOpts) string {
	switch {
	case o.Check:
		return "checking selectors"
	case o.DryRun:
		return "previewing selector rewrite"
	default:
		return "rewriting selectors"
	}
}

func report(ctx context.Context, res *rewrite.Result) {
	logger := log.FromContext(ctx)
	op := log.FileOperation{
		Path:         res.Path,
		IsModified:   res.Modified,
		IsWritten:    res.Written && res.Modified,
		Replacements: res.Replacements,
	}
	switch {
	case res.Written && res.Modified:
		op.Status = "UPDATED"
	case res.Modified:
		op.Status = "WOULD UPDATE"
	default:
		op.Status = "no change"
	}

	logger.LogFileOperation(ctx, op)
	if res.Diff != "" {
		logger.LogDiff(res.Diff)
	}
}
