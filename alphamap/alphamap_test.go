package alphamap

import (
	"bytes"
	"testing"
)

func TestReadRawEightBit(t *testing.T) {
	src := make([]byte, Size)
	for i := range src {
		src[i] = byte(i)
	}
	m, err := ReadRaw(bytes.NewReader(src), false)
	if err != nil {
		t.Fatalf("ReadRaw: %v", err)
	}
	if m.FourBit() {
		t.Error("expected eight-bit map")
	}
	if got := m.Get(300); got != byte(300%256) {
		t.Errorf("Get(300): got %d want %d", got, byte(300%256))
	}
	if got := m.GetFloat(0); got != 0 {
		t.Errorf("GetFloat(0): got %v", got)
	}
	if got := m.GetFloat(128); got != 0.5 {
		t.Errorf("GetFloat(128): got %v want 0.5", got)
	}
}

func TestReadRawFourBit(t *testing.T) {
	src := make([]byte, Size/2)
	src[0] = 0x2f // sample 0 = 0xf, sample 1 = 0x2
	m, err := ReadRaw(bytes.NewReader(src), true)
	if err != nil {
		t.Fatalf("ReadRaw: %v", err)
	}
	if got := m.Get(0); got != 0x0f {
		t.Errorf("Get(0): got %#x want 0x0f", got)
	}
	if got := m.Get(1); got != 0x02 {
		t.Errorf("Get(1): got %#x want 0x02", got)
	}
	if got := m.GetFloat(1); got != 2.0/16 {
		t.Errorf("GetFloat(1): got %v want %v", got, 2.0/16)
	}
}

func TestReadRawShort(t *testing.T) {
	if _, err := ReadRaw(bytes.NewReader(make([]byte, 100)), false); err == nil {
		t.Error("expected truncation error")
	}
	if _, err := ReadRaw(bytes.NewReader(make([]byte, Size/2-1)), true); err == nil {
		t.Error("expected truncation error")
	}
}

func TestReadCompressedFill(t *testing.T) {
	// 4096 samples of 0x30 via fill runs of 64
	var buf bytes.Buffer
	for i := 0; i < Size/64; i++ {
		buf.WriteByte(0x80 | 64)
		buf.WriteByte(0x30)
	}
	m, err := ReadCompressed(&buf)
	if err != nil {
		t.Fatalf("ReadCompressed: %v", err)
	}
	if len(m.Bytes()) != Size {
		t.Fatalf("size: got %d want %d", len(m.Bytes()), Size)
	}
	if m.Get(4095) != 0x30 {
		t.Errorf("last sample: got %#x", m.Get(4095))
	}
}

func TestReadCompressedCopy(t *testing.T) {
	var buf bytes.Buffer
	// one copy run of 96 distinct bytes, then fill runs to the end
	buf.WriteByte(96)
	for i := 0; i < 96; i++ {
		buf.WriteByte(byte(i))
	}
	for written := 96; written < Size; written += 100 {
		buf.WriteByte(0x80 | 100)
		buf.WriteByte(0xff)
	}
	m, err := ReadCompressed(&buf)
	if err != nil {
		t.Fatalf("ReadCompressed: %v", err)
	}
	if m.Get(95) != 95 {
		t.Errorf("copied sample: got %d want 95", m.Get(95))
	}
	if m.Get(96) != 0xff {
		t.Errorf("filled sample: got %#x want 0xff", m.Get(96))
	}
}

func TestReadCompressedShort(t *testing.T) {
	if _, err := ReadCompressed(bytes.NewReader([]byte{0x80 | 10, 0x01, 0x05})); err == nil {
		t.Error("expected error for stream ending short")
	}
}

func TestReadCompressedOverrun(t *testing.T) {
	// fill runs of 127 never land exactly on 4096 (4096 = 32*127 + 32)
	var buf bytes.Buffer
	for i := 0; i < 33; i++ {
		buf.WriteByte(0x80 | 127)
		buf.WriteByte(0x00)
	}
	if _, err := ReadCompressed(&buf); err == nil {
		t.Error("expected overrun error")
	}
}

func TestEachValue(t *testing.T) {
	src := make([]byte, Size)
	src[65] = 128 // row 1, column 1
	m, err := ReadRaw(bytes.NewReader(src), false)
	if err != nil {
		t.Fatalf("ReadRaw: %v", err)
	}
	count := 0
	m.EachValue(func(row, column int, value float32) {
		if row == 1 && column == 1 && value != 0.5 {
			t.Errorf("value at (1,1): got %v want 0.5", value)
		}
		count++
	})
	if count != Size {
		t.Errorf("visited %d samples, want %d", count, Size)
	}
}
