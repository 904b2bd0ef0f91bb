// Package scaffold writes the starter files of a new extension project.
package scaffold

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"text/template"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/twbuild/internal/config"
	foundationerrors "git.home.luguber.info/inful/twbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/twbuild/internal/header"
	"git.home.luguber.info/inful/twbuild/internal/manifest"
)

// CoreFileName is the first fragment of a new project.
const CoreFileName = "01-core.js"

//go:embed templates/*.tmpl
var templateFS embed.FS

var coreTemplate = template.Must(template.ParseFS(templateFS, "templates/01-core.js.tmpl"))

// Extension IDs become JavaScript identifiers in the host.
var idPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)

// Options describes the project to create.
type Options struct {
	// SrcDir receives the fragment and manifest.
	SrcDir string
	// ConfigPath, when set, receives a twbuild.yaml with the defaults.
	ConfigPath string

	Name   string
	ID     string
	Author string

	// Force overwrites existing files.
	Force bool
}

// manifestDoc fixes the key order of the generated manifest.
type manifestDoc struct {
	Name        string `json:"name"`
	ID          string `json:"id"`
	Description string `json:"description"`
	Author      string `json:"author"`
	Version     string `json:"version"`
	License     string `json:"license"`
}

type file struct {
	path string
	data []byte
}

// Init renders every starter file and writes them. Nothing is written when
// a target already exists and Force is false. It returns the written paths.
func Init(opts Options) ([]string, error) {
	if opts.SrcDir == "" {
		opts.SrcDir = config.DefaultSourceDir
	}
	if opts.Name == "" {
		opts.Name = header.DefaultName
	}
	if opts.ID == "" {
		opts.ID = header.DefaultID
	}
	if opts.Author == "" {
		opts.Author = header.DefaultBy
	}
	if !idPattern.MatchString(opts.ID) {
		return nil, foundationerrors.ValidationError("extension id must start with a letter and contain only letters and digits").
			WithContext("id", opts.ID).
			Build()
	}

	files, err := render(opts)
	if err != nil {
		return nil, err
	}

	if !opts.Force {
		for _, f := range files {
			if _, err := os.Stat(f.path); err == nil {
				return nil, foundationerrors.ValidationError("file already exists (use --force to overwrite)").
					WithContext("path", f.path).
					Build()
			} else if !errors.Is(err, fs.ErrNotExist) {
				return nil, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "check existing file").
					WithContext("path", f.path).
					Build()
			}
		}
	}

	written := make([]string, 0, len(files))
	for _, f := range files {
		if err := os.MkdirAll(filepath.Dir(f.path), 0o750); err != nil {
			return written, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "create directory").
				WithContext("path", filepath.Dir(f.path)).
				Build()
		}
		// #nosec G306 -- project sources are meant to be world-readable
		if err := os.WriteFile(f.path, f.data, 0o644); err != nil {
			return written, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "write file").
				WithContext("path", f.path).
				Build()
		}
		written = append(written, f.path)
	}
	return written, nil
}

func render(opts Options) ([]file, error) {
	var core bytes.Buffer
	if err := coreTemplate.Execute(&core, opts); err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryInternal, "render starter fragment").Build()
	}

	doc, err := json.MarshalIndent(manifestDoc{
		Name:        opts.Name,
		ID:          opts.ID,
		Description: header.DefaultDescription,
		Author:      opts.Author,
		Version:     header.DefaultVersion,
		License:     header.DefaultLicense,
	}, "", "  ")
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryInternal, "render manifest").Build()
	}

	files := []file{
		{path: filepath.Join(opts.SrcDir, CoreFileName), data: core.Bytes()},
		{path: manifest.Path(opts.SrcDir), data: append(doc, '\n')},
	}

	if opts.ConfigPath != "" {
		cfg := config.Default()
		cfg.Source.Directory = opts.SrcDir
		cfg.Watch.Debounce = config.DefaultDebounce.String()
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, foundationerrors.WrapError(err, foundationerrors.CategoryInternal, "render configuration").Build()
		}
		files = append(files, file{path: opts.ConfigPath, data: data})
	}
	return files, nil
}
