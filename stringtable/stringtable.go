// Package stringtable reads the offset-addressed string blocks the
// terrain and world-model formats share: a contiguous run of
// null-terminated strings, referenced by later chunks through each
// string's starting byte offset.
package stringtable

import (
	"encoding/binary"
	"sort"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Read scans one block left to right and keys every string by the
// offset of its first byte. Leading and repeated null bytes are
// padding.
func Read(data []byte) (map[uint32]string, error) {
	table := make(map[uint32]string)
	start := -1
	for i, b := range data {
		if b != 0 {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			if err := insert(table, uint32(start), data[start:i]); err != nil {
				return nil, err
			}
			start = -1
		}
	}
	if start >= 0 {
		// block ends without a terminator; keep the tail
		if err := insert(table, uint32(start), data[start:]); err != nil {
			return nil, err
		}
	}
	return table, nil
}

func insert(table map[uint32]string, offset uint32, raw []byte) error {
	if !utf8.Valid(raw) {
		return errors.Errorf("invalid string at offset %d", offset)
	}
	table[offset] = string(raw)
	return nil
}

// List returns the block's strings in order of appearance.
func List(data []byte) ([]string, error) {
	table, err := Read(data)
	if err != nil {
		return nil, err
	}
	return Densify(table), nil
}

// Densify orders a table's strings by offset.
func Densify(table map[uint32]string) []string {
	offsets := make([]uint32, 0, len(table))
	for off := range table {
		offsets = append(offsets, off)
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })
	names := make([]string, 0, len(offsets))
	for _, off := range offsets {
		names = append(names, table[off])
	}
	return names
}

// Drain translates a little-endian u32 offset list into an ordered name
// list, removing each matched entry from table. Unmatched offsets and
// leftover names are reported through warn and do not fail the call.
func Drain(table map[uint32]string, ids []byte, warn func(format string, args ...interface{})) []string {
	names := make([]string, 0, len(table))
	for i := 0; i+4 <= len(ids); i += 4 {
		offset := binary.LittleEndian.Uint32(ids[i:])
		name, ok := table[offset]
		if !ok {
			warn("no table entry for offset %d", offset)
			continue
		}
		delete(table, offset)
		names = append(names, name)
	}
	for _, name := range table {
		warn("unreferenced table entry %q", name)
	}
	for off := range table {
		delete(table, off)
	}
	return names
}
