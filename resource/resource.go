// Package resource resolves client data names to byte streams. Names
// use '/' or '\' separators and match path segments case-insensitively,
// the way the game client treats its data tree.
package resource

import (
	"io"
)

// Handle is one open resource. It must only be used by the caller that
// opened it; the Opener itself may be shared.
type Handle interface {
	io.ReadSeekCloser
}

// Opener is the capability the decoders consume.
type Opener interface {
	// Exists reports whether name resolves to a resource.
	Exists(name string) (bool, error)
	// Open returns a stream over the named resource. It fails with a
	// not-found error when any path segment has no case-insensitive
	// match.
	Open(name string) (Handle, error)
}

func isSep(c byte) bool {
	return c == '/' || c == '\\'
}

// Split splits a resource name into directory (including the trailing
// separator), stem and extension. The extension starts at the first '.'
// of the final segment, so "a/b.wmo.xml" yields ext ".wmo.xml". Missing
// parts are empty strings.
func Split(name string) (dir, stem, ext string) {
	filePos := 0
	for i := len(name) - 1; i >= 0; i-- {
		if isSep(name[i]) {
			filePos = i + 1
			break
		}
	}
	extPos := len(name)
	for i := filePos; i < len(name); i++ {
		if name[i] == '.' {
			extPos = i
			break
		}
	}
	return name[:filePos], name[filePos:extPos], name[extPos:]
}

func segments(name string) []string {
	var segs []string
	start := 0
	for i := 0; i <= len(name); i++ {
		if i == len(name) || isSep(name[i]) {
			if i > start {
				segs = append(segs, name[start:i])
			}
			start = i + 1
		}
	}
	return segs
}
