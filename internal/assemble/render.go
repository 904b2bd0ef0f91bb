package assemble

import (
	"strings"
)

// Wrapper lines around the concatenated fragments. Scratch is the host
// handle injected by the extension loader.
const (
	HostHandle      = "Scratch"
	IndentUnit      = "  "
	wrapperOpen     = "(function (" + HostHandle + ") {\n"
	strictDirective = IndentUnit + "\"use strict\";\n"
	wrapperClose    = "})(" + HostHandle + ");\n"
)

// Fragment is one source file's name and text.
type Fragment struct {
	Name    string
	Content string
}

// Marker returns the section marker line for a fragment, without newline.
func Marker(name string) string {
	return IndentUnit + "// ===== " + name + " ====="
}

// Indent prefixes every non-empty line of content with IndentUnit. Lines are
// split on "\n" only; empty lines stay empty.
func Indent(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = IndentUnit + line
		}
	}
	return strings.Join(lines, "\n")
}

// Render assembles the full artifact text: header, wrapper open, strict
// directive, one block per fragment in the given order, wrapper close.
func Render(header string, fragments []Fragment) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString(wrapperOpen)
	b.WriteString(strictDirective)
	b.WriteString("\n")
	for _, f := range fragments {
		writeBlock(&b, f)
	}
	b.WriteString(wrapperClose)
	return b.String()
}

// Block renders the marker, indented content and separator for one fragment.
func Block(f Fragment) string {
	var b strings.Builder
	writeBlock(&b, f)
	return b.String()
}

func writeBlock(b *strings.Builder, f Fragment) {
	b.WriteString(Marker(f.Name))
	b.WriteString("\n")
	b.WriteString(Indent(f.Content))
	b.WriteString("\n\n")
}
