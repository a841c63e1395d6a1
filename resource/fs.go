package resource

import (
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Dir is the listing capability the resolver walks. Paths handed to a
// Dir are '/'-joined sequences of entry names it returned earlier, ""
// being the root. Keeping this an interface lets tests resolve against
// a virtual tree.
type Dir interface {
	// List returns the entry names of one directory.
	List(path string) ([]string, error)
	// Open opens a file below the root.
	Open(path string) (Handle, error)
}

// FS resolves names against a Dir, matching every segment
// case-insensitively.
type FS struct {
	dir Dir
}

var _ Opener = (*FS)(nil)

// NewFS returns an Opener over the OS directory root.
func NewFS(root string) *FS {
	return &FS{dir: osDir{root: root}}
}

// NewDirFS returns an Opener over an arbitrary Dir.
func NewDirFS(dir Dir) *FS {
	return &FS{dir: dir}
}

func (f *FS) resolve(name string) (string, error) {
	resolved := ""
	for _, seg := range segments(name) {
		entries, err := f.dir.List(resolved)
		if err != nil {
			return "", err
		}
		match := ""
		for _, e := range entries {
			if strings.EqualFold(e, seg) {
				match = e
				break
			}
		}
		if match == "" {
			return "", errors.Wrapf(os.ErrNotExist, "no entry matching %q in %q", seg, resolved)
		}
		if resolved == "" {
			resolved = match
		} else {
			resolved = resolved + "/" + match
		}
	}
	return resolved, nil
}

func (f *FS) Exists(name string) (bool, error) {
	_, err := f.resolve(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (f *FS) Open(name string) (Handle, error) {
	target, err := f.resolve(name)
	if err != nil {
		return nil, err
	}
	return f.dir.Open(target)
}

type osDir struct {
	root string
}

func (d osDir) List(path string) ([]string, error) {
	entries, err := os.ReadDir(d.join(path))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

func (d osDir) Open(path string) (Handle, error) {
	return os.Open(d.join(path))
}

func (d osDir) join(path string) string {
	if path == "" {
		return d.root
	}
	return d.root + string(os.PathSeparator) + strings.ReplaceAll(path, "/", string(os.PathSeparator))
}
