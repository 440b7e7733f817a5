package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/entail/internal/store"
)

func TestTestCommand_AllPass(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "suites/a.test.yaml", passingSuite)

	code, stdout, stderr := execute(t, "test", "-C", dir, "--color=false")
	assert.Equal(t, ExitSuccess, code, stderr)
	assert.NotContains(t, stderr, "Error")

	assert.Contains(t, stdout, "\n\nsuites/a.test.yaml ⦿ ")
	assert.Contains(t, stdout, "Total:     2\nPassed:    2\nFailed:    0\nSkipped:   0\n")
}

func TestTestCommand_Failure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.test.yaml", failingSuite)

	code, stdout, stderr := execute(t, "test", "-C", dir)
	assert.Equal(t, ExitFailure, code)
	assert.NotContains(t, stderr, "Error", "failures are reported on stdout only")

	assert.Contains(t, stdout, ` FAIL  b.test.yaml ⏵ "test broken" `)
	assert.Contains(t, stdout, "++2    (Expected)\n--1    (Actual)\n")
	assert.Contains(t, stdout, "Failed:    1")
}

func TestTestCommand_Bail(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.test.yaml", failingSuite)

	code, stdout, _ := execute(t, "test", "-C", dir, "--bail")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "Total:     1\n")
}

func TestTestCommand_BailFromConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.test.yaml", failingSuite)
	writeFile(t, dir, ".entail.yaml", "bail: true\n")

	code, stdout, _ := execute(t, "test", "-C", dir)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "Total:     1\n")

	code, stdout, _ = execute(t, "test", "-C", dir, "--bail=false")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "Total:     2\n", "flag overrides config")
}

func TestTestCommand_Patterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.test.yaml", passingSuite)
	writeFile(t, dir, "other/b.yaml", failingSuite)

	code, _, _ := execute(t, "test", "-C", dir)
	assert.Equal(t, ExitSuccess, code, "b.yaml is not matched by the default pattern")

	code, _, _ = execute(t, "test", "-C", dir, "other/*.yaml")
	assert.Equal(t, ExitFailure, code)
}

func TestTestCommand_Extensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.test.yaml", passingSuite)
	writeFile(t, dir, "b.test.cue", `"test cue": [{assert: "fail"}]`)

	code, _, _ := execute(t, "test", "-C", dir)
	assert.Equal(t, ExitFailure, code)

	code, _, _ = execute(t, "test", "-C", dir, "--extensions", "yaml")
	assert.Equal(t, ExitSuccess, code)
}

func TestTestCommand_NoFiles(t *testing.T) {
	code, stdout, _ := execute(t, "test", "-C", t.TempDir())
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "No suite files found.")
}

func TestTestCommand_NoFilesJSON(t *testing.T) {
	code, stdout, _ := execute(t, "test", "-C", t.TempDir(), "--format", "json")
	assert.Equal(t, ExitSuccess, code)

	resp := decodeResponse(t, stdout)
	assert.Equal(t, "ok", resp.Status)
}

func TestTestCommand_LoadError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.test.yaml", "test x:\n  - {assert: same}\n")

	code, stdout, stderr := execute(t, "test", "-C", dir)
	assert.Equal(t, ExitCommandError, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Error [E003]: failed to load suite: a.test.yaml:2:")
	assert.Contains(t, stderr, `unknown assertion "same"`)
}

func TestTestCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.test.yaml", failingSuite)

	code, stdout, _ := execute(t, "test", "-C", dir, "--format", "json")
	assert.Equal(t, ExitFailure, code)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp), stdout)

	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeTestsFailed, resp.Error.Code)
	assert.Equal(t, "1 unit(s) failed", resp.Error.Message)

	assert.Equal(t, 1, resp.Data.Files)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Failed)
	require.Len(t, resp.Data.Failures, 1)
	assert.Equal(t, "test broken", resp.Data.Failures[0].Name)
	assert.Equal(t, "strictEqual", resp.Data.Failures[0].Operator)
	assert.NotContains(t, stdout, "Total:")
}

func TestTestCommand_Record(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(t.TempDir(), "runs.db")
	writeFile(t, dir, "b.test.yaml", failingSuite)

	code, stdout, _ := execute(t, "test", "-C", dir, "--format", "json", "--record", db)
	assert.Equal(t, ExitFailure, code)

	resp := decodeResponse(t, stdout)
	require.NotEmpty(t, resp.RunID)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	run, err := st.ReadRun(context.Background(), resp.RunID)
	require.NoError(t, err)
	assert.Equal(t, 2, run.Total)
	assert.Equal(t, 1, run.Failed)
	require.Len(t, run.Results, 2)
	assert.Equal(t, store.OutcomeFail, run.Results[0].Outcome)
	assert.Equal(t, "b.test.yaml", run.Results[0].Module)
	assert.Equal(t, store.OutcomePass, run.Results[1].Outcome)
}

func TestTestCommand_RecordBadPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.test.yaml", passingSuite)

	code, _, stderr := execute(t, "test", "-C", dir, "--record", filepath.Join(dir, "missing", "x", "runs.db"))
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "Error [E005]: failed to open run database")
}
