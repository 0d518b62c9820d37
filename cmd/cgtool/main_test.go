// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes cgtool with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDot(t *testing.T) {
	out, err := run(t, "dot", "testdata/mutual.yaml")
	require.NoError(t, err)
	assert.Equal(t, "strict digraph ObjectGraph {\n"+
		"\t\"<app.Main: void main(java.lang.String[])>\" -> \"<app.Worker: void a()>\";\n"+
		"\t\"<app.Worker: void a()>\" -> \"<app.Worker: void b()>\";\n"+
		"\t\"<app.Worker: void b()>\" -> \"<app.Worker: void a()>\";\n"+
		"}\n", out)
}

func TestDump(t *testing.T) {
	out, err := run(t, "dump", "testdata/mutual.yaml")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "GraphBasedCallGraph(3):\n"))
	assert.Contains(t, out, "<app.Worker: void a()>:\n\tto <app.Worker: void b()>\n")
}

func TestStats(t *testing.T) {
	out, err := run(t, "stats", "testdata/mutual.yaml")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, float64(3), got["methods"])
	assert.Equal(t, float64(3), got["calls"])
	assert.NotEmpty(t, got["fingerprint"])
}

func TestCalls(t *testing.T) {
	out, err := run(t, "calls", "testdata/mutual.yaml", "<app.Worker: void a()>", "--in")
	require.NoError(t, err)
	assert.Equal(t, "<app.Main: void main(java.lang.String[])>\n<app.Worker: void b()>\n", out)

	out, err = run(t, "calls", "testdata/mutual.yaml", "<app.Main: void main(java.lang.String[])>", "--in")
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = run(t, "calls", "testdata/mutual.yaml", "<app.Worker: void a()>")
	require.NoError(t, err)
	assert.Equal(t, "<app.Worker: void b()>\n", out)

	_, err = run(t, "calls", "testdata/mutual.yaml", "<app.Worker: void z()>")
	assert.Error(t, err)

	_, err = run(t, "calls", "testdata/mutual.yaml", "<app.Worker: void z()>", "--in")
	assert.Error(t, err)
}

func TestProgramFile(t *testing.T) {
	out, err := run(t, "calls", "testdata/shapes.yaml", "<shapes.Main: void main(java.lang.String[])>")
	require.NoError(t, err)
	// The call to java.lang.Object leaves the program's scope.
	assert.Equal(t, "<shapes.Circle: double area()>\n", out)
}

func TestHierarchy(t *testing.T) {
	out, err := run(t, "hierarchy", "testdata/shapes.yaml", "shapes.Shape")
	require.NoError(t, err)
	assert.Contains(t, out, "shapes.Shape\n")
	assert.Contains(t, out, "  subtype shapes.Circle\n")

	_, err = run(t, "hierarchy", "testdata/shapes.yaml", "shapes.Missing")
	assert.Error(t, err)
}

func TestLattice(t *testing.T) {
	out, err := run(t, "lattice", "ancestor", "int", "byte")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	out, err = run(t, "lattice", "lca", "char", "short")
	require.NoError(t, err)
	assert.Equal(t, "[int]\n", out)

	_, err = run(t, "lattice", "lca", "int", "?")
	assert.Error(t, err)
}

func TestStore(t *testing.T) {
	t.Setenv("SOOTUP_STORAGE_PATH", filepath.Join(t.TempDir(), "db"))

	out, err := run(t, "store", "put", "mutual", "testdata/mutual.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "stored mutual (3 methods, 3 calls")

	out, err = run(t, "store", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "mutual")

	dot, err := run(t, "dot", "testdata/mutual.yaml")
	require.NoError(t, err)
	out, err = run(t, "store", "get", "mutual")
	require.NoError(t, err)
	assert.Equal(t, dot, out)

	out, err = run(t, "store", "get", "mutual", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"methods"`)

	_, err = run(t, "store", "get", "mutual", "--format", "svg")
	assert.Error(t, err)

	require.NoError(t, func() error { _, err := run(t, "store", "delete", "mutual"); return err }())
	_, err = run(t, "store", "get", "mutual")
	assert.Error(t, err)
}

func TestConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("telemetry:\n  log_level: loud\n"), 0o600))

	_, err := run(t, "--config", path, "lattice", "lca", "int", "int")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestMissingInput(t *testing.T) {
	_, err := run(t, "dot", "testdata/absent.yaml")
	assert.Error(t, err)
}
