// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package errutil_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/metaprop/pkg/errutil"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogError_WithOopsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := oops.In("lua").Code("PATH_NOT_FOUND").
		With("path", "vec4.q").
		Errorf("no property vec4.q")

	errutil.LogError(logger, "command failed", err)

	entry := decode(t, &buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "command failed", entry["msg"])
	assert.Equal(t, "PATH_NOT_FOUND", entry["code"])
	assert.Equal(t, "lua", entry["domain"])
	assert.Equal(t, map[string]any{"path": "vec4.q"}, entry["context"])
}

func TestLogError_WithStandardError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	errutil.LogError(logger, "command failed", errors.New("standard error"))

	entry := decode(t, &buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Contains(t, entry["error"], "standard error")
	assert.NotContains(t, entry, "code")
}

func TestCode(t *testing.T) {
	base := oops.Code("READ_ONLY").Errorf("property serial is read-only")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain", errors.New("x"), ""},
		{"oops without code", oops.Errorf("x"), ""},
		{"direct", base, "READ_ONLY"},
		{"wrapped by oops", oops.With("script", "a.mp").Wrap(base), "READ_ONLY"},
		{"wrapped by fmt", fmt.Errorf("set: %w", base), "READ_ONLY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errutil.Code(tt.err))
		})
	}

	assert.True(t, errutil.HasCode(base, "READ_ONLY"))
	assert.False(t, errutil.HasCode(base, "SET_FAILED"))
	assert.False(t, errutil.HasCode(errors.New("x"), ""))
}
