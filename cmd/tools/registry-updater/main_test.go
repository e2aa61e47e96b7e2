package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qris-workers/pkg/registry"
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

func TestAddUpdateValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity-registry.json")

	out, err := run(t, "add", "--path", path,
		"--id", "refund-qris", "--display-name", "Refund QRIS",
		"--description", "Refunds a paid order", "--category", "payment", "--task-type", "refund-qris")
	require.NoError(t, err)
	assert.Contains(t, out, "Added activity: refund-qris")

	_, err = run(t, "add", "--path", path,
		"--id", "refund-qris", "--display-name", "Again",
		"--description", "d", "--category", "payment", "--task-type", "refund-qris-2")
	assert.ErrorIs(t, err, registry.ErrDuplicateID)

	_, err = run(t, "update", "--path", path, "--id", "refund-qris", "--field", "status", "--value", "completed")
	require.NoError(t, err)

	out, err = run(t, "validate", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 activities")

	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	a, ok := reg.Find("refund-qris")
	require.True(t, ok)
	assert.Equal(t, "completed", a.ImplementationStatus)
}

func TestAdd_RequiresFlags(t *testing.T) {
	_, err := run(t, "add", "--path", filepath.Join(t.TempDir(), "r.json"), "--id", "x")
	assert.Error(t, err)
}
