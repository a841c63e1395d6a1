// Package chunk reads the token+length+payload container shared by the
// client's file formats. A chunk is fully materialized once read and
// owned by the caller.
package chunk

import (
	"encoding/binary"
	"io"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// TokenOrder selects how the four token bytes are stored on disk.
type TokenOrder int

const (
	// Mirrored is the default dialect: tokens are stored byte-reversed
	// relative to their textual form.
	Mirrored TokenOrder = iota
	// Literal stores tokens in textual order.
	Literal
)

// ErrTruncated reports a stream that ends in the middle of a record.
var ErrTruncated = errors.New("truncated chunk stream")

// Chunk is one container record.
type Chunk struct {
	Token string
	Data  []byte
}

// Stream reads chunks one at a time from a byte source.
type Stream struct {
	r     io.Reader
	order TokenOrder
}

// NewStream returns a Stream over r using the default mirrored token
// dialect.
func NewStream(r io.Reader) *Stream {
	return &Stream{r: r, order: Mirrored}
}

// NewStreamOrder returns a Stream with an explicit token dialect.
func NewStreamOrder(r io.Reader, order TokenOrder) *Stream {
	return &Stream{r: r, order: order}
}

// Next returns the next chunk. It returns io.EOF once the stream ends
// cleanly on a record boundary and ErrTruncated when it ends inside
// one.
func (s *Stream) Next() (*Chunk, error) {
	var token [4]byte
	n, err := io.ReadFull(s.r, token[:])
	if err == io.EOF {
		return nil, io.EOF
	}
	if err == io.ErrUnexpectedEOF {
		return nil, errors.Wrapf(ErrTruncated, "incomplete chunk token (%d of 4 bytes)", n)
	}
	if err != nil {
		return nil, err
	}

	if s.order == Mirrored {
		token[0], token[1], token[2], token[3] = token[3], token[2], token[1], token[0]
	}
	if !utf8.Valid(token[:]) {
		return nil, errors.Errorf("invalid chunk token % x", token[:])
	}

	var size uint32
	if err := binary.Read(s.r, binary.LittleEndian, &size); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, errors.Wrapf(ErrTruncated, "missing length for chunk %q", token[:])
		}
		return nil, err
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(s.r, data); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, errors.Wrapf(ErrTruncated, "short payload for chunk %q", token[:])
		}
		return nil, err
	}

	return &Chunk{Token: string(token[:]), Data: data}, nil
}
