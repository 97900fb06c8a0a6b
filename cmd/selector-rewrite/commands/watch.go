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
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/selector-rewrite/cmd/selector-rewrite/opts"
	"github.com/walteh/selector-rewrite/pkg/log"
	"github.com/walteh/selector-rewrite/pkg/rewrite"
	"gitlab.com/tozd/go/errors"
)

// NewWatchCmd creates a command that rewrites targets whenever they change
func NewWatchCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [files...]",
		Short: "Rewrite targets again whenever they change on disk",
		Long: `Watch runs one rewrite, then watches the target files and reapplies
the rules each time one is written. Rewritten files produce no further
changes, so the watcher settles after its own writes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.Check {
				return errors.Errorf("--check cannot be combined with watch")
			}
			if err := Rewrite(cmd.Context(), o, args); err != nil {
				return err
			}
			return Watch(cmd.Context(), o, nil)
		},
	}

	return cmd
}

// Watch blocks until ctx is done, rewriting any target that is created or
// written. ready, when non-nil, is closed once the watcher is registered.
func Watch(ctx context.Context, o *opts.RootOpts, ready chan<- struct{}) error {
	logger := zerolog.Ctx(ctx)
	console := log.FromContext(ctx)

	replacementRules, err := o.Config.ReplacementRules()
	if err != nil {
		return errors.Errorf("resolving rules: %w", err)
	}

	paths, err := rewrite.Expand(o.Config.Root, o.Config.Targets)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// editors often replace files by rename, so watch the parent directories
	targets := map[string]bool{}
	dirs := map[string]bool{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return errors.Errorf("resolving %s: %w", p, err)
		}
		targets[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return errors.Errorf("watching %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	console.Infof("watching %d file(s)", len(targets))
	if ready != nil {
		close(ready)
	}

	// unchanged files are not written back, so our own writes settle
	watchOpts := o.RewriteOptions()
	watchOpts.SkipUnchanged = true
	rw := rewrite.New(nil, watchOpts)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !targets[abs] {
				continue
			}

			res, err := rw.RewriteFileIn(ctx, o.Config.Root, abs, replacementRules)
			if err != nil {
				// the file may be mid-save; the next event retries
				console.Warningf("rewriting %s: %v", abs, err)
				continue
			}
			if res.Modified {
				report(ctx, res)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error().Err(err).Msg("watcher error")
		}
	}
}
