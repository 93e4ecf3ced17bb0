package vfs

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// splitPath breaks an absolute or relative path into its normalized,
// non-empty components, resolving "." and ".." segments in place.
// Every component is run through NFC so two paths that differ only in
// Unicode normalization form land on the same tree node.
func splitPath(path string) []string {
	raw := strings.Split(path, "/")
	out := make([]string, 0, len(raw))
	for _, part := range raw {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, norm.NFC.String(part))
		}
	}
	return out
}
