// Package manifest reads the optional extension manifest that feeds the
// generated metadata header.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	foundationerrors "git.home.luguber.info/inful/twbuild/internal/foundation/errors"
)

// FileName is the manifest location inside the source directory.
const FileName = "manifest.json"

// Known manifest keys.
const (
	KeyName        = "name"
	KeyID          = "id"
	KeyDescription = "description"
	KeyAuthor      = "author"
	KeyVersion     = "version"
	KeyLicense     = "license"
)

// Manifest is the parsed key-value document. It is never validated against
// a schema; unknown keys are carried but ignored by the header.
type Manifest map[string]any

// Path returns the manifest path for a source directory.
func Path(srcDir string) string {
	return filepath.Join(srcDir, FileName)
}

// Read loads the manifest from srcDir. A missing manifest yields an empty
// document and no error. An unreadable or malformed manifest yields an empty
// document together with a warning-severity error; callers log it and keep
// building.
func Read(srcDir string) (Manifest, error) {
	path := Path(srcDir)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Manifest{}, nil
	}
	if err != nil {
		return Manifest{}, foundationerrors.WrapError(err, foundationerrors.CategoryManifest, "Could not read "+FileName).
			Warning().
			WithContext("path", path).
			Build()
	}

	m, err := Parse(data)
	if err != nil {
		return Manifest{}, foundationerrors.WrapError(err, foundationerrors.CategoryManifest, "Could not parse "+FileName).
			Warning().
			WithContext("path", path).
			Build()
	}
	return m, nil
}

// Parse decodes a manifest document. The top level must be a JSON object.
func Parse(data []byte) (Manifest, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after manifest object")
	}
	if m == nil {
		// a literal null decodes without error
		return nil, errors.New("manifest must be a JSON object")
	}
	return m, nil
}

// Get returns the string form of key, or "" when the key is absent or holds
// a value that counts as empty: "", false, 0, null, objects and arrays.
func (m Manifest) Get(key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case json.Number:
		if f, err := v.Float64(); err == nil && f == 0 {
			return ""
		}
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return ""
	default:
		return ""
	}
}
