// Package alphamap decodes the 64x64 opacity grids that blend adjacent
// terrain texture layers. A map is stored as one byte per sample, two
// samples per byte, or a run-length compressed byte stream.
package alphamap

import (
	"io"

	"github.com/pkg/errors"
)

const (
	// Side is the sample count along one edge.
	Side = 64
	// Size is the total sample count.
	Size = Side * Side
)

// AlphaMap is one decoded opacity grid.
type AlphaMap struct {
	fourBit bool
	data    []byte
}

// ReadRaw consumes exactly 2048 (four-bit) or 4096 (eight-bit) bytes.
func ReadRaw(r io.Reader, fourBit bool) (*AlphaMap, error) {
	n := Size
	if fourBit {
		n = Size / 2
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, errors.Wrap(err, "short raw alpha map")
	}
	return &AlphaMap{fourBit: fourBit, data: data}, nil
}

// ReadCompressed decodes the run-length encoding: a control byte with
// the high bit set fills (control & 0x7f) copies of the next literal
// byte, with the high bit clear it copies that many raw bytes. The
// output must come out at exactly 4096 bytes.
func ReadCompressed(r io.Reader) (*AlphaMap, error) {
	data := make([]byte, 0, Size)
	for len(data) < Size {
		var control [1]byte
		if _, err := io.ReadFull(r, control[:]); err != nil {
			return nil, errors.Wrap(err, "compressed alpha map ends short")
		}
		count := int(control[0] & 0x7f)
		if control[0]&0x80 != 0 {
			var literal [1]byte
			if _, err := io.ReadFull(r, literal[:]); err != nil {
				return nil, errors.Wrap(err, "compressed alpha map ends short")
			}
			for i := 0; i < count; i++ {
				data = append(data, literal[0])
			}
		} else {
			raw := make([]byte, count)
			if _, err := io.ReadFull(r, raw); err != nil {
				return nil, errors.Wrap(err, "compressed alpha map ends short")
			}
			data = append(data, raw...)
		}
	}
	if len(data) != Size {
		return nil, errors.Errorf("compressed alpha map overruns: %d samples", len(data))
	}
	return &AlphaMap{fourBit: false, data: data}, nil
}

// FourBit reports whether samples are stored as nibbles.
func (m *AlphaMap) FourBit() bool {
	return m.fourBit
}

// Bytes returns the backing storage.
func (m *AlphaMap) Bytes() []byte {
	return m.data
}

// Get returns sample i. In four-bit maps the low nibble holds the even
// index.
func (m *AlphaMap) Get(i int) uint8 {
	if m.fourBit {
		b := m.data[i/2]
		if i%2 == 0 {
			return b & 0x0f
		}
		return b >> 4
	}
	return m.data[i]
}

// GetFloat returns sample i scaled to [0,1); four-bit samples divide by
// 16, eight-bit by 256.
func (m *AlphaMap) GetFloat(i int) float32 {
	v := float32(m.Get(i))
	if m.fourBit {
		return v / 16
	}
	return v / 256
}

// EachValue walks the grid row-major.
func (m *AlphaMap) EachValue(f func(row, column int, value float32)) {
	for i := 0; i < Size; i++ {
		f(i/Side, i%Side, m.GetFloat(i))
	}
}
