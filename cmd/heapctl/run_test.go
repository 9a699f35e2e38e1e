package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunScript_Table(t *testing.T) {
	resetFlags(t)
	var out bytes.Buffer
	ok, err := runScript(&out, writeScript(t, passingScript), false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, out.String(), "scenario.hujson")
	assert.Contains(t, out.String(), "all 3 steps passed")
}

func TestRunScript_Failed(t *testing.T) {
	resetFlags(t)
	var out bytes.Buffer
	ok, err := runScript(&out, writeScript(t, failingScript), false)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, out.String(), "FAIL")
	assert.Contains(t, out.String(), "1 of 3 steps failed")
}

func TestRunScript_JSONAndOut(t *testing.T) {
	resetFlags(t)
	jsonOut = true
	runOut = filepath.Join(t.TempDir(), "report.json")

	var out bytes.Buffer
	ok, err := runScript(&out, writeScript(t, passingScript), false)
	require.NoError(t, err)
	require.True(t, ok)

	var stdout map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &stdout))
	assert.InDelta(t, 0.0, stdout["failed"], 0)

	data, err := os.ReadFile(runOut)
	require.NoError(t, err)
	assert.JSONEq(t, out.String(), string(data))
}

func TestRunScript_RegionOverride(t *testing.T) {
	resetFlags(t)
	regionLimit = 64
	var out bytes.Buffer
	ok, err := runScript(&out, writeScript(t, passingScript), true)
	require.NoError(t, err)
	// 100 bytes plus overhead does not fit in 64.
	assert.False(t, ok)
}

func TestRunScript_BadFile(t *testing.T) {
	resetFlags(t)
	_, err := runScript(&bytes.Buffer{}, writeScript(t, `{"version": "3.0.0"}`), false)
	require.Error(t, err)
}

func TestWatchScript_StopsWithContext(t *testing.T) {
	resetFlags(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	require.NoError(t, watchScript(ctx, &out, writeScript(t, passingScript), false))
	assert.Contains(t, out.String(), "all 3 steps passed")
}

func TestRootCommand_Demo(t *testing.T) {
	resetFlags(t)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"demo"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	for _, name := range []string{"fence_overrun", "first_fit_reuse", "free_unowned", "lifecycle", "resize_same"} {
		assert.Contains(t, out.String(), name)
	}
	assert.NotContains(t, out.String(), "FAIL")
}
