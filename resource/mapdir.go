package resource

import (
	"bytes"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// MapDir is an in-memory Dir keyed by '/'-separated file paths. It
// backs decoder tests and anything else that wants a virtual data tree.
type MapDir map[string][]byte

var _ Dir = MapDir(nil)

func (m MapDir) List(path string) ([]string, error) {
	prefix := ""
	if path != "" {
		prefix = path + "/"
	}
	seen := make(map[string]bool)
	var names []string
	for key := range m {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := key[len(prefix):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			rest = rest[:i]
		}
		if rest != "" && !seen[rest] {
			seen[rest] = true
			names = append(names, rest)
		}
	}
	if len(names) == 0 {
		if _, ok := m[path]; !ok && path != "" {
			return nil, errors.Wrapf(os.ErrNotExist, "no directory %q", path)
		}
	}
	return names, nil
}

func (m MapDir) Open(path string) (Handle, error) {
	data, ok := m[path]
	if !ok {
		return nil, errors.Wrapf(os.ErrNotExist, "no file %q", path)
	}
	return &memHandle{Reader: bytes.NewReader(data)}, nil
}

type memHandle struct {
	*bytes.Reader
}

func (*memHandle) Close() error {
	return nil
}
