package main

import (
	"bytes"
	"strings"
	"testing"

	"pdfchat-be/pkg/vectorindex"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNamespaceCommand(t *testing.T) {
	out, err := run(t, "namespace", "uploads/1700000000000Café Menu.pdf")
	require.NoError(t, err)
	assert.Equal(t, vectorindex.Namespace("uploads/1700000000000Café Menu.pdf"), strings.TrimSpace(out))
}

func TestAskRequiresSource(t *testing.T) {
	_, err := run(t, "ask", "what is this?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--key or --ingest")
}

func TestIngestRequiresPath(t *testing.T) {
	_, err := run(t, "ingest")
	assert.Error(t, err)
}
