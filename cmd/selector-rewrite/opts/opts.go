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

package opts

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/selector-rewrite/pkg/config"
	"github.com/walteh/selector-rewrite/pkg/log"
	"github.com/walteh/selector-rewrite/pkg/rewrite"
	"gitlab.com/tozd/go/errors"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	ConfigFile string
	Root       string
	Debug      bool
	Verbose    bool
	DryRun     bool
	Check      bool

	Config *config.Config

	// Fs backs every rewrite, nil means the OS filesystem
	Fs afero.Fs
}

// Init resolves the configuration once flags are parsed and returns ctx
// carrying a console logger writing to console.
// Without --config a .selectorrc in the root directory is used when present,
// otherwise the built-in defaults apply.
func (o *RootOpts) Init(ctx context.Context, console io.Writer) (context.Context, error) {
	ctx = log.NewContext(ctx, log.New(console, *zerolog.Ctx(ctx)))

	cfg, err := o.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	if o.Root != "" {
		cfg.Root = o.Root
	}
	o.Config = cfg

	zerolog.Ctx(ctx).Debug().
		Str("config", cfg.Location()).
		Str("root", cfg.Root).
		Strs("targets", cfg.Targets).
		Str("rule_set", cfg.RuleSet).
		Msg("configuration resolved")

	return ctx, nil
}

func (o *RootOpts) loadConfig(ctx context.Context) (*config.Config, error) {
	if o.ConfigFile != "" {
		cfg, err := config.LoadConfig(ctx, o.ConfigFile)
		if err != nil {
			return nil, errors.Errorf("loading config: %w", err)
		}
		return cfg, nil
	}

	root := o.Root
	if root == "" {
		root = "."
	}
	rc := filepath.Join(root, config.RCFile)
	if _, err := os.Stat(rc); err == nil {
		cfg, err := config.LoadConfig(ctx, rc)
		if err != nil {
			return nil, errors.Errorf("loading config: %w", err)
		}
		return cfg, nil
	}

	cfg := config.Default()
	cfg.Root = root
	return cfg, nil
}

// RewriteOptions maps the dry-run and check flags onto rewrite options
func (o *RootOpts) RewriteOptions() rewrite.Options {
	return rewrite.Options{
		DryRun: o.DryRun,
		Check:  o.Check,
		Fs:     o.Fs,
	}
}

// Rewriter builds a rewriter from RewriteOptions
func (o *RootOpts) Rewriter() *rewrite.Rewriter {
	return rewrite.New(nil, o.RewriteOptions())
}

// ShowFiles reports whether per-file rows should be printed
func (o *RootOpts) ShowFiles() bool {
	return o.Verbose || o.DryRun || o.Check
}
