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

package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/selector-rewrite/pkg/rules"
	"github.com/walteh/selector-rewrite/pkg/text"
	"gitlab.com/tozd/go/errors"
)

const (
	// DefaultTarget is the stylesheet rewritten when nothing else is configured
	DefaultTarget = "src/utils/themes.ts"

	// NoRuleSet disables the built-in rules so only custom rules run
	NoRuleSet = "none"
)

// 🔄 Rule is a custom substitution declared in a config file
type Rule struct {
	Pattern     string `json:"pattern" yaml:"pattern" hcl:"pattern"`
	Replacement string `json:"replacement" yaml:"replacement" hcl:"replacement"`
	Literal     bool   `json:"literal,omitempty" yaml:"literal,omitempty" hcl:"literal,optional"`
	Files       string `json:"files,omitempty" yaml:"files,omitempty" hcl:"files,optional"`
}

// 📚 Config represents the complete configuration
type Config struct {
	// Root is the directory targets are resolved against.
	// Defaults to the directory holding the config file.
	Root string `json:"root,omitempty" yaml:"root,omitempty" hcl:"root,optional"`

	// Targets are file paths or doublestar globs
	Targets []string `json:"targets,omitempty" yaml:"targets,omitempty" hcl:"targets,optional"`

	// RuleSet names a built-in rule table, "none" to skip it
	RuleSet string `json:"rule_set,omitempty" yaml:"rule_set,omitempty" hcl:"rule_set,optional"`

	// Rules run after the built-in set, in order
	Rules []Rule `json:"rules,omitempty" yaml:"rules,omitempty" hcl:"rule,block"`

	location string
}

// 🏭 Default returns the configuration used when no config file exists
func Default() *Config {
	return &Config{
		Root:    ".",
		Targets: []string{DefaultTarget},
		RuleSet: rules.XYChartName,
	}
}

// Location is the file the config was loaded from, empty for Default
func (cfg *Config) Location() string {
	return cfg.location
}

// 🎯 LoadConfig loads a configuration file from the given path.
// The format is determined by the file name:
// - .json for JSON
// - .yaml or .yml for YAML
// - .hcl for HCL
// - .selectorrc will try both YAML and HCL formats
func LoadConfig(ctx context.Context, path string) (*Config, error) {
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	cfg.location = path
	if cfg.Root == "" {
		cfg.Root = filepath.Dir(path)
	} else if !filepath.IsAbs(cfg.Root) {
		cfg.Root = filepath.Join(filepath.Dir(path), cfg.Root)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks the configuration and fills defaults
func (cfg *Config) Validate() error {
	if cfg.Root == "" {
		cfg.Root = "."
	}
	if len(cfg.Targets) == 0 {
		cfg.Targets = []string{DefaultTarget}
	}
	if cfg.RuleSet == "" {
		cfg.RuleSet = rules.XYChartName
	}

	if cfg.RuleSet == NoRuleSet && len(cfg.Rules) == 0 {
		return errors.Errorf("rule_set is %q but no rules are defined", NoRuleSet)
	}

	if _, err := cfg.ReplacementRules(); err != nil {
		return err
	}

	return nil
}

// ReplacementRules resolves the built-in set followed by the custom rules
func (cfg *Config) ReplacementRules() ([]text.ReplacementRule, error) {
	var out []text.ReplacementRule
	if cfg.RuleSet != NoRuleSet {
		builtin, err := rules.Lookup(cfg.RuleSet)
		if err != nil {
			return nil, err
		}
		out = append(out, builtin...)
	}

	for _, r := range cfg.Rules {
		out = append(out, text.ReplacementRule{
			Pattern:        r.Pattern,
			Replacement:    r.Replacement,
			Literal:        r.Literal,
			FileFilterGlob: r.Files,
		})
	}

	if err := text.NewRegexpTextReplacer().ValidateRules(out); err != nil {
		return nil, errors.Errorf("invalid rules: %w", err)
	}
	return out, nil
}
