package repository

import "strings"

// substituteChar replaces every character that is illegal in file names
// on at least one supported platform. One fixed substitute keeps the
// transform deterministic.
const substituteChar = '_'

// SanitizeName derives a file- and directory-safe name from an
// interaction name. Characters illegal on common filesystems (path
// separators, Windows reserved punctuation, control characters) become
// the substitute character; leading/trailing dots and spaces, which
// Windows strips silently, are substituted too. The transform is
// deterministic; the exact original name is preserved inside the archive
// itself, so sanitization only needs to avoid collisions for realistic
// names.
func SanitizeName(name string) string {
	if name == "" {
		return string(substituteChar)
	}

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r < 0x20 || r == 0x7f:
			b.WriteByte(substituteChar)
		case strings.ContainsRune(`/\:*?"<>|`, r):
			b.WriteByte(substituteChar)
		default:
			b.WriteRune(r)
		}
	}

	out := []byte(b.String())
	if out[0] == '.' || out[0] == ' ' {
		out[0] = substituteChar
	}
	last := len(out) - 1
	if out[last] == '.' || out[last] == ' ' {
		out[last] = substituteChar
	}
	return string(out)
}
