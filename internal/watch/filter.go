package watch

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ShouldIgnore reports whether a file name in the source directory must not
// trigger rebuilds: dotfiles, editor swap/backup files and OS metadata.
func ShouldIgnore(name string) bool {
	// Ignore hidden files (also covers .#lock, .DS_Store and .swp siblings)
	if strings.HasPrefix(name, ".") {
		return true
	}

	// Ignore editor temp/swap files
	if strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".swp") ||
		strings.HasSuffix(name, ".swx") ||
		strings.HasPrefix(name, "#") && strings.HasSuffix(name, "#") {
		return true
	}

	return name == "Thumbs.db"
}

func validatePatterns(patterns []string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("invalid ignore pattern %q", pat)
		}
	}
	return nil
}

func matchesAny(patterns []string, name string) bool {
	for _, pat := range patterns {
		if matched, err := doublestar.Match(pat, name); err == nil && matched {
			return true
		}
	}
	return false
}
