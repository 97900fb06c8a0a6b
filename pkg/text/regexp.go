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

package text

import (
	"context"
	"io"
	"path/filepath"
	"regexp"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// RegexpTextReplacer implements TextReplacer with RE2 regular expressions
type RegexpTextReplacer struct{}

// NewRegexpTextReplacer creates a new RegexpTextReplacer
func NewRegexpTextReplacer() *RegexpTextReplacer {
	return &RegexpTextReplacer{}
}

// Compile returns the expression a rule matches with.
func Compile(rule ReplacementRule) (*regexp.Regexp, error) {
	pattern := rule.Pattern
	if rule.Literal {
		pattern = regexp.QuoteMeta(pattern)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Errorf("compiling pattern %q: %w", rule.Pattern, err)
	}
	return re, nil
}

// ReplaceText implements TextReplacer.ReplaceText
func (r *RegexpTextReplacer) ReplaceText(ctx context.Context, content io.Reader, rules []ReplacementRule) (*ReplacementResult, error) {
	originalContent, err := io.ReadAll(content)
	if err != nil {
		return nil, errors.Errorf("reading content: %w", err)
	}

	if err := r.ValidateRules(rules); err != nil {
		return nil, err
	}

	result := &ReplacementResult{
		OriginalContent: originalContent,
		ModifiedContent: originalContent,
		RuleCounts:      make([]int, len(rules)),
	}

	current := originalContent
	for i, rule := range rules {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("applying rule %d: %w", i, err)
		}

		re, err := Compile(rule)
		if err != nil {
			return nil, errors.Errorf("rule %d: %w", i, err)
		}

		matches := len(re.FindAllIndex(current, -1))
		if matches == 0 {
			continue
		}

		current = re.ReplaceAllLiteral(current, []byte(rule.Replacement))
		result.RuleCounts[i] = matches
		result.ReplacementCount += matches

		zerolog.Ctx(ctx).Trace().
			Int("rule", i).
			Str("pattern", rule.Pattern).
			Int("matches", matches).
			Msg("applied rule")
	}

	result.ModifiedContent = current
	// a replacement can rewrite a match to identical bytes
	result.WasModified = string(current) != string(originalContent)
	return result, nil
}

// ValidateRules implements TextReplacer.ValidateRules
func (r *RegexpTextReplacer) ValidateRules(rules []ReplacementRule) error {
	for i, rule := range rules {
		if rule.Pattern == "" {
			return errors.Errorf("rule %d: pattern is required", i)
		}
		if _, err := Compile(rule); err != nil {
			return errors.Errorf("rule %d: %w", i, err)
		}
		if rule.FileFilterGlob != "" && !doublestar.ValidatePattern(rule.FileFilterGlob) {
			return errors.Errorf("rule %d: invalid file glob %q", i, rule.FileFilterGlob)
		}
	}
	return nil
}

// Applies reports whether rule should run against the file at path.
func Applies(rule ReplacementRule, path string) bool {
	if rule.FileFilterGlob == "" {
		return true
	}
	matched, err := doublestar.Match(rule.FileFilterGlob, filepath.ToSlash(path))
	if err != nil {
		return false
	}
	if matched {
		return true
	}
	// bare globs like "*.ts" match on the file name alone
	matched, _ = doublestar.Match(rule.FileFilterGlob, filepath.Base(path))
	return matched
}

// FilterRules keeps the rules that apply to path, preserving order.
func FilterRules(rules []ReplacementRule, path string) []ReplacementRule {
	out := make([]ReplacementRule, 0, len(rules))
	for _, rule := range rules {
		if Applies(rule, path) {
			out = append(out, rule)
		}
	}
	return out
}
