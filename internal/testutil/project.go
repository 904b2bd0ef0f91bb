// Package testutil provides an on-disk extension project fixture with
// fluent assertions over the build output.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Project is a temporary project: Src holds fragments, Build receives the artifact.
type Project struct {
	t     *testing.T
	Root  string
	Src   string
	Build string
}

// NewProject creates an empty src/ under a fresh temp dir. build/ is left
// for the builder to create.
func NewProject(t *testing.T) *Project {
	t.Helper()
	root := t.TempDir()
	p := &Project{
		t:     t,
		Root:  root,
		Src:   filepath.Join(root, "src"),
		Build: filepath.Join(root, "build"),
	}
	require.NoError(t, os.MkdirAll(p.Src, 0o750))
	return p
}

// WriteSource writes a file into the source dir and returns its path.
func (p *Project) WriteSource(name, content string) string {
	p.t.Helper()
	path := filepath.Join(p.Src, name)
	require.NoError(p.t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// Output is the artifact path.
func (p *Project) Output() string {
	return filepath.Join(p.Build, "extension.js")
}

// ReadOutput returns the artifact content and fails the test if it is missing.
func (p *Project) ReadOutput() string {
	p.t.Helper()
	data, err := os.ReadFile(p.Output())
	require.NoError(p.t, err, "read build output")
	return string(data)
}

// AssertOutputContains checks each fragment of text is present.
func (p *Project) AssertOutputContains(parts ...string) *Project {
	p.t.Helper()
	out := p.ReadOutput()
	for _, s := range parts {
		assert.Contains(p.t, out, s)
	}
	return p
}

// AssertInOrder checks the parts appear in the output in the given order.
func (p *Project) AssertInOrder(parts ...string) *Project {
	p.t.Helper()
	out := p.ReadOutput()
	prev := -1
	for _, s := range parts {
		idx := strings.Index(out, s)
		if !assert.GreaterOrEqual(p.t, idx, 0, "missing %q", s) {
			return p
		}
		assert.Greater(p.t, idx, prev, "%q out of order", s)
		prev = idx
	}
	return p
}

// AssertBuildDirFiles checks the build dir holds exactly the named files, so
// leftover temp files are caught.
func (p *Project) AssertBuildDirFiles(names ...string) *Project {
	p.t.Helper()
	entries, err := os.ReadDir(p.Build)
	require.NoError(p.t, err)
	got := make([]string, 0, len(entries))
	for _, e := range entries {
		got = append(got, e.Name())
	}
	assert.ElementsMatch(p.t, names, got)
	return p
}
