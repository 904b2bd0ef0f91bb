// Package header renders the metadata comment block that the host's
// packaging tooling reads from the top of a built extension.
package header

import (
	"strings"

	"git.home.luguber.info/inful/twbuild/internal/manifest"
)

// Defaults used when the manifest leaves a field empty.
const (
	DefaultName        = "My Extension"
	DefaultID          = "myExtension"
	DefaultDescription = "A TurboWarp extension"
	DefaultBy          = "Anonymous"
	DefaultVersion     = "1.0.0"
	DefaultLicense     = "MIT"
)

// Metadata is a manifest with every field resolved.
type Metadata struct {
	Name        string
	ID          string
	Description string
	By          string
	Version     string
	License     string
}

// Resolve substitutes defaults for every missing manifest field. The By
// field comes from the manifest's author key.
func Resolve(m manifest.Manifest) Metadata {
	return Metadata{
		Name:        or(m.Get(manifest.KeyName), DefaultName),
		ID:          or(m.Get(manifest.KeyID), DefaultID),
		Description: or(m.Get(manifest.KeyDescription), DefaultDescription),
		By:          or(m.Get(manifest.KeyAuthor), DefaultBy),
		Version:     or(m.Get(manifest.KeyVersion), DefaultVersion),
		License:     or(m.Get(manifest.KeyLicense), DefaultLicense),
	}
}

// Render produces the header block. Field order, prefixes and blank lines
// are parsed by prefix downstream and must not change.
func Render(md Metadata) string {
	md = md.withDefaults()

	var b strings.Builder
	b.WriteString("// Name: " + md.Name + "\n")
	b.WriteString("// ID: " + md.ID + "\n")
	b.WriteString("// Description: " + md.Description + "\n")
	b.WriteString("// By: " + md.By + "\n")
	b.WriteString("// License: " + md.License + "\n")
	b.WriteString("\n")
	b.WriteString("// Version " + md.Version + "\n")
	b.WriteString("\n")
	return b.String()
}

// Generate is Render(Resolve(m)).
func Generate(m manifest.Manifest) string {
	return Render(Resolve(m))
}

func (md Metadata) withDefaults() Metadata {
	md.Name = or(md.Name, DefaultName)
	md.ID = or(md.ID, DefaultID)
	md.Description = or(md.Description, DefaultDescription)
	md.By = or(md.By, DefaultBy)
	md.Version = or(md.Version, DefaultVersion)
	md.License = or(md.License, DefaultLicense)
	return md
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
