package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const passingSuite = `test math:
  - assert: strictEqual
    actual: 2
    expected: 2
test strings:
  prefix:
    - assert: match
      actual: hello world
      pattern: /^hello/
`

const failingSuite = `test broken:
  - assert: strictEqual
    actual: 1
    expected: 2
test fine:
  - assert: ok
    actual: true
`

// writeFile creates name under dir, including parent directories.
func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// execute runs the CLI and returns exit code, stdout and stderr.
func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func decodeResponse(t *testing.T, out string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}
