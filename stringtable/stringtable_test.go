package stringtable

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"testing"
)

func TestRead(t *testing.T) {
	data := []byte("abc\x00\x00de\x00")
	table, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := map[uint32]string{0: "abc", 5: "de"}
	if !reflect.DeepEqual(table, want) {
		t.Errorf("got %v want %v", table, want)
	}
}

func TestReadUnterminatedTail(t *testing.T) {
	table, err := Read([]byte("abc\x00de"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if table[4] != "de" {
		t.Errorf("tail entry: got %v", table)
	}
}

func TestReadInvalidUTF8(t *testing.T) {
	if _, err := Read([]byte{0xff, 0xfe, 0x00}); err == nil {
		t.Error("expected invalid-encoding error")
	}
}

func TestList(t *testing.T) {
	names, err := List([]byte("b\x00a\x00"))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"b", "a"}) {
		t.Errorf("got %v", names)
	}
}

func ids(offsets ...uint32) []byte {
	b := make([]byte, 4*len(offsets))
	for i, off := range offsets {
		binary.LittleEndian.PutUint32(b[4*i:], off)
	}
	return b
}

func TestDrain(t *testing.T) {
	table := map[uint32]string{0: "first", 6: "second", 13: "third"}
	var warnings []string
	warn := func(format string, args ...interface{}) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	names := Drain(table, ids(6, 0, 99), warn)

	if !reflect.DeepEqual(names, []string{"second", "first"}) {
		t.Errorf("names: got %v", names)
	}
	// one unmatched offset, one undrained name
	if len(warnings) != 2 {
		t.Errorf("warnings: got %v", warnings)
	}
	if len(table) != 0 {
		t.Errorf("table not cleared: %v", table)
	}
}
