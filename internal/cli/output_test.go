package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrewRidley/surreal-codegen/internal/kind"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Success(map[string]string{"result": "success"})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Error("UNKNOWN_TABLE", "unknown table ghost", map[string]string{"table": "ghost"})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UNKNOWN_TABLE", resp.Error.Code)
	assert.Equal(t, "unknown table ghost", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_JSONNoHTMLEscape(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success(map[string]string{"type": "record<user>"}))
	assert.Contains(t, buf.String(), `"record<user>"`)
	assert.NotContains(t, buf.String(), `\u003c`)
}

func TestOutputFormatter_Text(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success("All documents valid"))
	require.NoError(t, formatter.Error("E005", "path not found: x.cue", nil))

	assert.Equal(t, "All documents valid\nError [E005]: path not found: x.cue\n", buf.String())
}

func TestFormatKinds(t *testing.T) {
	got := formatKinds(
		[]kind.Kind{kind.ArrayOf(kind.Rec("user")), kind.Null},
		map[string]kind.Kind{"name": kind.String, "limit": kind.Int},
	)
	assert.Equal(t, "[0] array<record<user>>\n[1] null\n$limit: int\n$name: string", got)
	assert.Empty(t, formatKinds(nil, nil))
}

func TestExitError(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"nil", nil, ExitSuccess, ""},
		{"plain error", base, ExitFailure, "boom"},
		{"exit error", NewExitError(ExitCommandError, "bad flags"), ExitCommandError, "bad flags"},
		{"wrapped", WrapExitError(ExitFailure, "inference failed", base), ExitFailure, "inference failed: boom"},
		{"nested", fmt.Errorf("outer: %w", NewExitError(ExitCommandError, "inner")), ExitCommandError, "outer: inner"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, GetExitCode(tt.err))
			if tt.err != nil {
				assert.Equal(t, tt.msg, tt.err.Error())
			}
		})
	}

	assert.ErrorIs(t, WrapExitError(ExitFailure, "x", base), base)
}

func TestCLIResponse_OmitsEmpty(t *testing.T) {
	data, err := json.Marshal(CLIResponse{Status: "ok"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, string(data))
}

func TestOutputFormatter_FailureKeepsData(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Failure("E001", "1 of 2 scenarios failed", map[string]int{"failed": 1}))

	var resp struct {
		Status string         `json:"status"`
		Data   map[string]int `json:"data"`
		Error  *CLIError      `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 1, resp.Data["failed"])
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E001", resp.Error.Code)
}
