package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("E003", "suite file could not be loaded", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, "E003", resp.Error.Code)
	assert.Equal(t, "suite file could not be loaded", resp.Error.Message)
}

func TestOutputFormatter_JSONErrorWithDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	details := map[string]string{"file": "math.test.cue", "line": "42"}
	err := formatter.Error("E002", "expected '}'", details)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success("3 units")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "3 units")
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error("E003", "suite file could not be loaded", nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E003]")
	assert.Contains(t, buf.String(), "suite file could not be loaded")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	details := map[string]string{"file": "math.test.cue"}
	err := formatter.Error("E003", "suite file could not be loaded", details)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E003]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestCLIResponse_JSON(t *testing.T) {
	resp := CLIResponse{
		Status: "ok",
		Data:   map[string]int{"count": 42},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded CLIResponse
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "ok", decoded.Status)
}

func TestCLIError_JSON(t *testing.T) {
	cliErr := CLIError{
		Code:    "E003",
		Message: "unknown assertion",
		Details: []string{"a.test.yaml:3:13"},
	}

	data, err := json.Marshal(cliErr)
	require.NoError(t, err)

	var decoded CLIError
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "E003", decoded.Code)
	assert.Equal(t, "unknown assertion", decoded.Message)
}

func TestCLIResponse_RunIDOmittedWhenEmpty(t *testing.T) {
	data, err := json.Marshal(CLIResponse{Status: "ok"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, string(data))

	data, err = json.Marshal(CLIResponse{Status: "ok", RunID: "r1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok","run_id":"r1"}`, string(data))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("wrapped: %w", NewExitError(ExitCommandError, "bad"))))
}

func TestExitError_Message(t *testing.T) {
	assert.Equal(t, "bad", NewExitError(ExitCommandError, "bad").Error())

	cause := errors.New("cause")
	err := WrapExitError(ExitCommandError, "bad", cause)
	assert.Equal(t, "bad: cause", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeTestsFailed, errorCode(NewExitError(ExitFailure, "1 unit(s) failed")))
	assert.Equal(t, ErrCodeGeneric, errorCode(errors.New("x")))
	assert.Equal(t, ErrCodeLoadFailed, errorCode(commandError(ErrCodeLoadFailed, "load", errors.New("x"))))
}
