package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	root := NewRootCmd()
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	_, err := root.ExecuteC()
	return out.String(), err
}

func TestValidateAcceptsWorkflow(t *testing.T) {
	// when
	out, err := executeRoot(t, "validate", filepath.Join("..", "..", "..", "pkg", "bpmn", "model", "testdata", "order.yaml"))

	// then
	require.NoError(t, err)
	assert.Contains(t, out, "order.yaml: ok, workflow order")
}

func TestValidateRejectsBrokenWorkflow(t *testing.T) {
	// setup
	file := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
id: broken
activities:
  - id: s
    kind: startEvent
transitions:
  - id: s-missing
    from: s
    to: missing
`), 0o600))

	// when
	out, err := executeRoot(t, "validate", file, filepath.Join(t.TempDir(), "missing.yaml"))

	// then
	assert.ErrorIs(t, err, errInvalidWorkflows)
	assert.Contains(t, out, "broken.yaml")
	assert.Contains(t, out, "missing.yaml")
	assert.NotContains(t, out, ": ok")
}

func TestValidateNeedsAFile(t *testing.T) {
	// when
	_, err := executeRoot(t, "validate")

	// then
	assert.Error(t, err)
}
