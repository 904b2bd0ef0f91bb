package assemble

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	foundationerrors "git.home.luguber.info/inful/twbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/twbuild/internal/manifest"
)

const coreJS = `class TurboWarpExtension {
  getInfo() {
    return {
      id: 'myTurboWarpExtension',
      blocks: [
        { opcode: 'helloWorld', blockType: 'reporter', text: 'hello world' },
        { opcode: 'add', blockType: 'reporter', text: '[A] + [B]' },
      ],
    };
  }

  helloWorld() {
    return 'hello world!';
  }

  add(args) {
    return Number(args.A) + Number(args.B);
  }
}

Scratch.extensions.register(new TurboWarpExtension());
`

type project struct {
	src string
	out string
}

func newProject(t *testing.T) project {
	t.Helper()
	root := t.TempDir()
	p := project{src: filepath.Join(root, "src"), out: filepath.Join(root, "build", "extension.js")}
	require.NoError(t, os.Mkdir(p.src, 0o755))
	return p
}

func (p project) write(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(p.src, name), []byte(content), 0o600))
}

func (p project) builder(logs *bytes.Buffer) *Builder {
	b := NewBuilder(p.src, p.out)
	b.Logger = slog.New(slog.NewTextHandler(logs, nil))
	return b
}

func (p project) artifact(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(p.out)
	require.NoError(t, err)
	return string(data)
}

func TestBuild_SingleCoreFileNoManifest(t *testing.T) {
	p := newProject(t)
	p.write(t, "01-core.js", coreJS)

	var logs bytes.Buffer
	res, err := p.builder(&logs).Build(context.Background())
	require.NoError(t, err)

	got := p.artifact(t)
	wantHeader := "// Name: My Extension\n// ID: myExtension\n// Description: A TurboWarp extension\n" +
		"// By: Anonymous\n// License: MIT\n\n// Version 1.0.0\n\n"
	assert.True(t, strings.HasPrefix(got, wantHeader+"(function (Scratch) {\n  \"use strict\";\n\n"))
	assert.Equal(t, 1, strings.Count(got, "// ===== "))
	assert.Contains(t, got, "  // ===== 01-core.js =====\n"+Indent(coreJS)+"\n\n")
	assert.True(t, strings.HasSuffix(got, "})(Scratch);\n"))

	assert.Equal(t, []string{"01-core.js"}, res.Files)
	assert.Equal(t, len(got), res.Bytes)
	assert.NotEmpty(t, res.ID)
	assert.NoError(t, res.ManifestWarning)
	assert.Contains(t, logs.String(), "Extension build successful")
	assert.Contains(t, logs.String(), "files=1")
	assert.Contains(t, logs.String(), "size_kib="+res.SizeKiB())
}

func TestBuild_PartialManifest(t *testing.T) {
	p := newProject(t)
	p.write(t, "01-core.js", coreJS)
	p.write(t, manifest.FileName, `{"name":"Foo","version":"2.0.0"}`)

	res, err := p.builder(&bytes.Buffer{}).Build(context.Background())
	require.NoError(t, err)

	got := p.artifact(t)
	assert.True(t, strings.HasPrefix(got, "// Name: Foo\n// ID: myExtension\n"))
	assert.Contains(t, got, "// Version 2.0.0\n")
	assert.Equal(t, "Foo", res.Metadata.Name)
	assert.NotContains(t, got, "manifest", "the manifest is not a source fragment")
}

func TestBuild_MalformedManifestWarns(t *testing.T) {
	p := newProject(t)
	p.write(t, "01-core.js", coreJS)
	p.write(t, manifest.FileName, `{"name": "Foo",`)

	var logs bytes.Buffer
	res, err := p.builder(&logs).Build(context.Background())
	require.NoError(t, err)

	require.Error(t, res.ManifestWarning)
	assert.Contains(t, logs.String(), "level=WARN")
	assert.True(t, strings.HasPrefix(p.artifact(t), "// Name: My Extension\n"))
}

func TestBuild_Deterministic(t *testing.T) {
	p := newProject(t)
	p.write(t, "02-extra.js", "extra();\n")
	p.write(t, "01-core.js", coreJS)
	b := p.builder(&bytes.Buffer{})

	_, err := b.Build(context.Background())
	require.NoError(t, err)
	first := p.artifact(t)

	_, err = b.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, p.artifact(t))
}

func TestBuild_AddingFileInsertsOneBlock(t *testing.T) {
	p := newProject(t)
	p.write(t, "01-core.js", coreJS)
	p.write(t, "03-late.js", "late();\n")
	b := p.builder(&bytes.Buffer{})

	_, err := b.Build(context.Background())
	require.NoError(t, err)
	before := p.artifact(t)

	extra := Fragment{Name: "02-extra.js", Content: "extra();\n"}
	p.write(t, extra.Name, extra.Content)
	_, err = b.Build(context.Background())
	require.NoError(t, err)
	after := p.artifact(t)

	idx := strings.Index(after, Marker(extra.Name))
	require.Positive(t, idx)
	assert.Less(t, strings.Index(after, Marker("01-core.js")), idx)
	assert.Less(t, idx, strings.Index(after, Marker("03-late.js")))
	assert.Equal(t, before, after[:idx]+after[idx+len(Block(extra)):])
}

func TestBuild_OverwritesExistingArtifact(t *testing.T) {
	p := newProject(t)
	p.write(t, "01-core.js", "a();\n")
	require.NoError(t, os.MkdirAll(filepath.Dir(p.out), 0o755))
	require.NoError(t, os.WriteFile(p.out, []byte(strings.Repeat("stale\n", 1000)), 0o644))

	_, err := p.builder(&bytes.Buffer{}).Build(context.Background())
	require.NoError(t, err)

	assert.NotContains(t, p.artifact(t), "stale")
	entries, err := os.ReadDir(filepath.Dir(p.out))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left behind")
}

func TestBuild_MissingSourceDirectory(t *testing.T) {
	p := newProject(t)
	b := p.builder(&bytes.Buffer{})
	b.SrcDir = filepath.Join(p.src, "missing")

	res, err := b.Build(context.Background())
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryFileSystem))
	assert.NoFileExists(t, p.out)
}

func TestBuild_UnwritableOutput(t *testing.T) {
	p := newProject(t)
	p.write(t, "01-core.js", "a();\n")
	// a regular file where the build directory should be
	buildDir := filepath.Dir(p.out)
	require.NoError(t, os.WriteFile(buildDir, []byte("x"), 0o600))

	var logs bytes.Buffer
	_, err := p.builder(&logs).Build(context.Background())
	require.Error(t, err)
	assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryBuild))
	assert.Contains(t, logs.String(), "Build failed")
}

func TestBuild_CanceledContext(t *testing.T) {
	p := newProject(t)
	p.write(t, "01-core.js", "a();\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.builder(&bytes.Buffer{}).Build(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestResult_SizeKiB(t *testing.T) {
	assert.Equal(t, "0.00", (&Result{}).SizeKiB())
	assert.Equal(t, "1.50", (&Result{Bytes: 1536}).SizeKiB())
	assert.Equal(t, "0.01", (&Result{Bytes: 10}).SizeKiB())
}
