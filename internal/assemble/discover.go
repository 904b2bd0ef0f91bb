package assemble

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	foundationerrors "git.home.luguber.info/inful/twbuild/internal/foundation/errors"
)

// SourceExtension is the recognized source fragment extension.
const SourceExtension = ".js"

// SourceSet is the ordered list of fragment paths. Its order is the
// concatenation order and therefore the runtime initialization order.
type SourceSet []string

// Names returns the base names in order.
func (s SourceSet) Names() []string {
	names := make([]string, len(s))
	for i, p := range s {
		names[i] = filepath.Base(p)
	}
	return names
}

// IsSource reports whether a directory entry name is a source fragment.
func IsSource(name string) bool {
	return strings.HasSuffix(name, SourceExtension) && !strings.HasPrefix(name, ".")
}

// Discover lists the direct children of srcDir that are source fragments,
// sorted ascending by byte-wise name comparison. The result depends only on
// the file names present, never on directory iteration order.
func Discover(srcDir string) (SourceSet, error) {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "failed to list source directory").
			WithContext("dir", srcDir).
			Build()
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !IsSource(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	set := make(SourceSet, len(names))
	for i, n := range names {
		set[i] = filepath.Join(srcDir, n)
	}
	return set, nil
}
