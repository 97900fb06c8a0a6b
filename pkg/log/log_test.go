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

package log

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// line builds the expected file row once trailing padding is trimmed
func line(symbol, path, count, status string) string {
	return symbol + " " + path + strings.Repeat(" ", nameWidth-len(path)+1) +
		count + strings.Repeat(" ", countWidth-len(count)+1) + status
}

func TestLogger(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		op       func(t *testing.T, logger *Logger)
		wantLogs []string
	}{
		{
			name: "log_file_operation",
			op: func(t *testing.T, logger *Logger) {
				logger.LogFileOperation(context.Background(), FileOperation{
					Path:         "src/utils/themes.ts",
					Status:       "UPDATED",
					IsModified:   true,
					IsWritten:    true,
					Replacements: 2,
				})
			},
			wantLogs: []string{
				line("✓", "src/utils/themes.ts", "2 replaced", "UPDATED"),
			},
		},
		{
			name: "log_diff",
			op: func(t *testing.T, logger *Logger) {
				logger.LogDiff("-old\n+new\n")
			},
			wantLogs: []string{
				"-old",
				"+new",
			},
		},
		{
			name: "log_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("info message")
				logger.Warning("warning message")
				logger.Error("error message")
				logger.Success("success message")
				logger.Plain("plain message")
			},
			wantLogs: []string{
				"ℹ️  info message",
				"⚠️  warning message",
				"❌ error message",
				"✅ success message",
				"plain message",
			},
		},
		{
			name: "log_formatted_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Infof("info %s", "test")
				logger.Warningf("warning %s", "test")
				logger.Errorf("error %s", "test")
			},
			wantLogs: []string{
				"ℹ️  info test",
				"⚠️  warning test",
				"❌ error test",
			},
		},
		{
			name: "log_header",
			op: func(t *testing.T, logger *Logger) {
				logger.Header("rewriting selectors")
			},
			wantLogs: []string{
				"selector-rewrite • rewriting selectors",
			},
		},
		{
			name: "log_newline",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("first")
				logger.LogNewline()
				logger.Info("second")
			},
			wantLogs: []string{
				"ℹ️  first",
				"",
				"ℹ️  second",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.Nop())

			tt.op(t, logger)

			output := strings.TrimSpace(buf.String())
			lines := strings.Split(output, "\n")

			require.Equal(t, len(tt.wantLogs), len(lines), "number of log lines should match")
			for i, want := range tt.wantLogs {
				assert.Equal(t, want, strings.TrimSpace(lines[i]), "log line %d should match", i)
			}
		})
	}
}

func TestLoggerContext(t *testing.T) {
	logger := New(io.Discard, zerolog.Nop())

	ctx := NewContext(context.Background(), logger)

	got := FromContext(ctx)
	assert.Same(t, logger, got, "logger from context should be the same instance")

	assert.Panics(t, func() {
		FromContext(context.Background())
	}, "FromContext should panic when logger is missing")
}

func TestFileOperationFormatting(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name string
		op   FileOperation
		want string
	}{
		{
			name: "written_file",
			op:   FileOperation{Path: "a.ts", Status: "UPDATED", IsModified: true, IsWritten: true, Replacements: 11},
			want: line("✓", "a.ts", "11 replaced", "UPDATED"),
		},
		{
			name: "dry_run_file",
			op:   FileOperation{Path: "a.ts", Status: "WOULD UPDATE", IsModified: true, Replacements: 3},
			want: line("⟳", "a.ts", "3 replaced", "WOULD UPDATE"),
		},
		{
			name: "failed_file",
			op:   FileOperation{Path: "a.ts", Status: "FAILED", IsFailed: true},
			want: line("✗", "a.ts", "0 replaced", "FAILED"),
		},
		{
			name: "unchanged_file",
			op:   FileOperation{Path: "a.ts", Status: "no change"},
			want: line("•", "a.ts", "0 replaced", "no change"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.Nop())

			logger.LogFileOperation(context.Background(), tt.op)

			assert.Equal(t, tt.want, strings.TrimSpace(buf.String()), "formatted output should match")
		})
	}
}

func TestSummary(t *testing.T) {
	logger := New(io.Discard, zerolog.Nop())
	ctx := context.Background()

	logger.LogFileOperation(ctx, FileOperation{Path: "a", IsModified: true, Replacements: 4})
	logger.LogFileOperation(ctx, FileOperation{Path: "b"})
	logger.LogFileOperation(ctx, FileOperation{Path: "c", IsModified: true, Replacements: 7})

	files, modified, replacements := logger.Summary()
	assert.Equal(t, 3, files)
	assert.Equal(t, 2, modified)
	assert.Equal(t, 11, replacements)

	files, _, _ = logger.Summary()
	assert.Zero(t, files, "summary resets")
}
