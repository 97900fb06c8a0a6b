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

// Package rewrite runs substitution rules over files on disk.
//
// A rewrite reads the whole file, applies every rule in order and overwrites
// the file in place. There is no temp-file swap: a failed write can leave the
// target truncated.
package rewrite

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/selector-rewrite/pkg/text"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// ErrNeedsRewrite is returned in check mode when a file would change
var ErrNeedsRewrite = errors.Base("file needs rewrite")

const defaultConcurrency = 4

// 🔧 Options controls how files are written
type Options struct {
	// DryRun computes the result and a diff without touching the file
	DryRun bool
	// Check is DryRun that fails with ErrNeedsRewrite when anything would change
	Check bool
	// SkipUnchanged leaves files with no matches untouched instead of
	// writing them back. Watchers set it so their own writes settle.
	SkipUnchanged bool
	// Concurrency bounds RewriteAll, defaults to 4
	Concurrency int
	// Fs is where files are read and written, defaults to the OS filesystem
	Fs afero.Fs
}

// RuleHit pairs an applied rule with its match count
type RuleHit struct {
	Rule  text.ReplacementRule
	Count int
}

// 📄 Result describes what happened to one file
type Result struct {
	Path         string
	Hits         []RuleHit
	Replacements int
	Modified     bool
	Written      bool
	Diff         string
}

// 🏭 Rewriter applies rules to files
type Rewriter struct {
	replacer text.TextReplacer
	fs       afero.Fs
	opts     Options
}

// New creates a rewriter. A nil replacer uses text.NewRegexpTextReplacer.
func New(replacer text.TextReplacer, opts Options) *Rewriter {
	if replacer == nil {
		replacer = text.NewRegexpTextReplacer()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Rewriter{replacer: replacer, fs: fs, opts: opts}
}

func (r *Rewriter) writes() bool {
	return !r.opts.DryRun && !r.opts.Check
}

// 📝 RewriteFile applies rules to the file at path and writes it back.
// Rule file globs are matched against path as given.
// A missing file is an error and is never created.
func (r *Rewriter) RewriteFile(ctx context.Context, path string, rules []text.ReplacementRule) (*Result, error) {
	return r.rewrite(ctx, path, path, rules)
}

// 📝 RewriteFileIn is RewriteFile for a file under root; rule file globs
// are matched against the path relative to root.
func (r *Rewriter) RewriteFileIn(ctx context.Context, root, path string, rules []text.ReplacementRule) (*Result, error) {
	return r.rewrite(ctx, path, RelativeTo(root, path), rules)
}

func (r *Rewriter) rewrite(ctx context.Context, path, matchPath string, rules []text.ReplacementRule) (*Result, error) {
	logger := zerolog.Ctx(ctx).With().Str("file", path).Logger()

	info, err := r.fs.Stat(path)
	if err != nil {
		return nil, errors.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, errors.Errorf("%s is a directory", path)
	}

	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", path, err)
	}

	applicable := text.FilterRules(rules, matchPath)
	logger.Debug().Str("match_path", matchPath).Int("rules", len(applicable)).Msg("rewriting file")

	replaced, err := r.replacer.ReplaceText(ctx, bytes.NewReader(data), applicable)
	if err != nil {
		return nil, errors.Errorf("replacing text in %s: %w", path, err)
	}

	result := &Result{
		Path:         path,
		Replacements: replaced.ReplacementCount,
		Modified:     replaced.WasModified,
		Hits:         make([]RuleHit, len(applicable)),
	}
	for i, rule := range applicable {
		result.Hits[i] = RuleHit{Rule: rule, Count: replaced.RuleCounts[i]}
	}

	if !r.writes() {
		if result.Modified {
			result.Diff = LineDiff(string(replaced.OriginalContent), string(replaced.ModifiedContent))
		}
		return result, nil
	}

	if !result.Modified && r.opts.SkipUnchanged {
		logger.Debug().Msg("no changes")
		return result, nil
	}

	if err := afero.WriteFile(r.fs, path, replaced.ModifiedContent, info.Mode().Perm()); err != nil {
		return nil, errors.Errorf("writing %s: %w", path, err)
	}
	result.Written = true

	logger.Debug().Int("replacements", result.Replacements).Msg("file written")
	return result, nil
}

// 🗂️ RewriteAll expands patterns under root and rewrites every match.
// Patterns without glob syntax are taken as plain paths so a missing file
// still fails. Results are sorted by path.
func (r *Rewriter) RewriteAll(ctx context.Context, root string, patterns []string, rules []text.ReplacementRule) ([]*Result, error) {
	paths, err := Expand(root, patterns)
	if err != nil {
		return nil, err
	}

	results := make([]*Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for i, path := range paths {
		g.Go(func() error {
			res, err := r.RewriteFileIn(gctx, root, path, rules)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if r.opts.Check {
		pending := 0
		for _, res := range results {
			if res.Modified {
				pending++
			}
		}
		if pending > 0 {
			return results, errors.Errorf("%d of %d files: %w", pending, len(results), ErrNeedsRewrite)
		}
	}

	return results, nil
}

// RelativeTo returns path relative to root in slash form. Paths outside
// root, or that cannot be related to it, are returned unchanged.
func RelativeTo(root, path string) string {
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return path
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return filepath.ToSlash(rel)
}

// Expand resolves patterns relative to root into a sorted, de-duplicated path list.
func Expand(root string, patterns []string) ([]string, error) {
	if root == "" {
		root = "."
	}

	seen := map[string]bool{}
	var paths []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, pattern := range patterns {
		plain := pattern
		if !filepath.IsAbs(plain) {
			plain = filepath.Join(root, plain)
		}
		plain = filepath.Clean(plain)

		// names like src/[id].ts are real files first, globs second
		if !hasMeta(pattern) || exists(plain) || !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			add(plain)
			continue
		}

		matches, err := doublestar.Glob(os.DirFS(root), filepath.ToSlash(pattern), doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Errorf("expanding %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, errors.Errorf("no files match %q: %w", pattern, os.ErrNotExist)
		}
		for _, m := range matches {
			add(filepath.Join(root, filepath.FromSlash(m)))
		}
	}

	sort.Strings(paths)
	return paths, nil
}

func hasMeta(pattern string) bool {
	for _, c := range pattern {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
