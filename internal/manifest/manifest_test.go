package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	foundationerrors "git.home.luguber.info/inful/twbuild/internal/foundation/errors"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o600))
	return dir
}

func TestRead_Missing(t *testing.T) {
	m, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestRead_Valid(t *testing.T) {
	dir := writeManifest(t, `{"name":"Foo","version":"2.0.0","homepage":"https://example.com"}`)

	m, err := Read(dir)
	require.NoError(t, err)

	assert.Equal(t, "Foo", m.Get(KeyName))
	assert.Equal(t, "2.0.0", m.Get(KeyVersion))
	assert.Equal(t, "", m.Get(KeyAuthor))
	assert.Equal(t, "https://example.com", m.Get("homepage"), "unknown keys are kept as-is")
}

func TestRead_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "invalid syntax", content: `{"name": "Foo",`},
		{name: "array", content: `["name"]`},
		{name: "null", content: `null`},
		{name: "trailing data", content: `{"name":"Foo"} {}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Read(writeManifest(t, tt.content))
			require.Error(t, err)
			assert.Empty(t, m)

			classified, ok := foundationerrors.AsClassified(err)
			require.True(t, ok)
			assert.Equal(t, foundationerrors.CategoryManifest, classified.Category())
			assert.True(t, classified.IsWarning())
		})
	}
}

func TestRead_Unreadable(t *testing.T) {
	dir := t.TempDir()
	// a directory in place of the file cannot be read
	require.NoError(t, os.Mkdir(filepath.Join(dir, FileName), 0o755))

	m, err := Read(dir)
	require.Error(t, err)
	assert.Empty(t, m)
	assert.True(t, foundationerrors.HasSeverity(err, foundationerrors.SeverityWarning))
}

func TestManifest_Get(t *testing.T) {
	m, err := Parse([]byte(`{
		"name": "",
		"id": 42,
		"version": 1.5,
		"description": true,
		"license": false,
		"author": null,
		"zero": 0,
		"list": ["a"],
		"obj": {"a": 1}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "", m.Get(KeyName))
	assert.Equal(t, "42", m.Get(KeyID))
	assert.Equal(t, "1.5", m.Get(KeyVersion))
	assert.Equal(t, "true", m.Get(KeyDescription))
	assert.Equal(t, "", m.Get(KeyLicense))
	assert.Equal(t, "", m.Get(KeyAuthor))
	assert.Equal(t, "", m.Get("zero"))
	assert.Equal(t, "", m.Get("list"))
	assert.Equal(t, "", m.Get("obj"))
	assert.Equal(t, "", m.Get("missing"))
}
