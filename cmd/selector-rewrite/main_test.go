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
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/selector-rewrite/pkg/rewrite"
)

const legacyThemes = "export const themes = {\n" +
	"  dark: `\n" +
	"    svg[aria-roledescription=\"xychart\"] .plot-line-0 { stroke: #f00; }\n" +
	"    svg[aria-roledescription=\"xychart\"] .plot-bar-1 { fill: #0f0; }\n" +
	"    svg[aria-roledescription=\"xychart\"] .chart-title { fill: #fff; }\n" +
	"    svg[aria-roledescription=\"xychart\"] .axis-label { fill: #aaa; }\n" +
	"    svg[aria-roledescription=\"xychart\"] .tick text { fill: #888; }\n" +
	"    svg[aria-roledescription=\"xychart\"] .tick { stroke: #444; }\n" +
	"  `,\n" +
	"};\n"

const modernThemes = "export const themes = {\n" +
	"  dark: `\n" +
	"    .line-plot-0 path { stroke: #f00; }\n" +
	"    .bar-plot-1 rect { fill: #0f0; }\n" +
	"    .chart-title text { fill: #fff; }\n" +
	"    .left-axis .title text, .bottom-axis .title text { fill: #aaa; }\n" +
	"    .left-axis .label text, .bottom-axis .label text { fill: #888; }\n" +
	"    .ticks path { stroke: #444; }\n" +
	"  `,\n" +
	"};\n"

func setupProject(t *testing.T, content string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "src", "utils", "themes.ts")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return dir, path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	buf := &bytes.Buffer{}
	cmd := NewCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
	err := cmd.ExecuteContext(ctx)
	return buf.String(), err
}

func TestNewCommand(t *testing.T) {
	cmd := NewCommand()
	require.NotNil(t, cmd, "command should not be nil")
	assert.Equal(t, "selector-rewrite", cmd.Name(), "command name should match")
	assert.NotEmpty(t, cmd.Short, "should have short description")

	for _, name := range []string{"rules", "watch", "version"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
}

func TestRun_Default(t *testing.T) {
	dir, path := setupProject(t, legacyThemes)

	out, err := execute(t, "--root", dir)
	require.NoError(t, err)
	assert.Equal(t, "Updated all XYChart selectors!\n", out)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, modernThemes, string(got))

	// second run is a no-op
	_, err = execute(t, "--root", dir)
	require.NoError(t, err)
	again, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestRun_MissingFile(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "--root", dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, statErr := os.Stat(filepath.Join(dir, "src", "utils", "themes.ts"))
	assert.True(t, os.IsNotExist(statErr), "file must not be created")
}

func TestRun_ReadOnlyTarget(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	dir, path := setupProject(t, legacyThemes)
	require.NoError(t, os.Chmod(path, 0o444))
	t.Cleanup(func() { _ = os.Chmod(path, 0o644) })

	out, err := execute(t, "--root", dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.Contains(t, err.Error(), "writing "+path)
	assert.NotContains(t, out, "Updated all XYChart selectors!")

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, legacyThemes, string(got))
}

func TestRun_DryRun(t *testing.T) {
	dir, path := setupProject(t, legacyThemes)

	out, err := execute(t, "--root", dir, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "selector-rewrite • previewing selector rewrite")
	assert.Contains(t, out, "WOULD UPDATE")
	assert.Contains(t, out, "+    .ticks path { stroke: #444; }")
	assert.Contains(t, out, "dry run: 6 replacement(s) in 1 file(s), nothing written")

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, legacyThemes, string(got))
}

func TestRun_Check(t *testing.T) {
	dir, path := setupProject(t, legacyThemes)

	out, err := execute(t, "--root", dir, "--check")
	require.Error(t, err)
	assert.Contains(t, out, "selector-rewrite • checking selectors")
	assert.ErrorIs(t, err, rewrite.ErrNeedsRewrite)
	assert.Contains(t, out, "1 file(s) still use legacy selectors")

	require.NoError(t, os.WriteFile(path, []byte(modernThemes), 0o644))
	out, err = execute(t, "--root", dir, "--check")
	require.NoError(t, err)
	assert.Contains(t, out, "all selectors up to date")
}

func TestRun_ExplicitTargetsAndConfig(t *testing.T) {
	dir := t.TempDir()
	css := filepath.Join(dir, "chart.css")
	require.NoError(t, os.WriteFile(css, []byte("OLD svg[aria-roledescription=\"xychart\"] .legend text {}\n"), 0o644))

	cfgPath := filepath.Join(dir, "selectors.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
rules:
  - pattern: OLD
    replacement: NEW
    literal: true
`), 0o644))

	out, err := execute(t, "--config", cfgPath, "-v", "chart.css")
	require.NoError(t, err)
	assert.Contains(t, out, "UPDATED")
	assert.Contains(t, out, "2 replaced")

	got, err := os.ReadFile(css)
	require.NoError(t, err)
	assert.Equal(t, "NEW .legend text {}\n", string(got))
}

func TestRun_SelectorRCInRoot(t *testing.T) {
	dir, path := setupProject(t, "foo\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".selectorrc"), []byte("rule_set = none\n\nrule {\n  pattern     = \"foo\"\n  replacement = \"bar\"\n}\n"), 0o644))

	out, err := execute(t, "--root", dir)
	require.NoError(t, err)
	assert.Equal(t, "Updated selectors!\n", out)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "bar\n", string(got))
}

func TestRulesCommand(t *testing.T) {
	out, err := execute(t, "--root", t.TempDir(), "rules")
	require.NoError(t, err)

	assert.Contains(t, out, "Pattern")
	assert.Contains(t, out, ".line-plot-0 path")
	assert.Contains(t, out, ".ticks path")
	assert.Less(t, strings.Index(out, ".left-axis .label text"), strings.Index(out, ".ticks path"), "tick text rule runs first")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "🚀 selector-rewrite")
	assert.Contains(t, out, "platform")
	assert.Contains(t, out, "xychart (11 rules)")
}
