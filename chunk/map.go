package chunk

import (
	"io"

	"github.com/pkg/errors"
)

// Map holds every payload of a stream keyed by token, in stream order.
// Formats that look chunks up repeatedly or out of order pre-scan into
// a Map instead of walking a Stream.
type Map map[string][][]byte

// ReadMap drains a stream into a Map.
func ReadMap(r io.Reader, order TokenOrder) (Map, error) {
	m := make(Map)
	s := NewStreamOrder(r, order)
	for {
		c, err := s.Next()
		if err == io.EOF {
			return m, nil
		}
		if err != nil {
			return nil, err
		}
		m[c.Token] = append(m[c.Token], c.Data)
	}
}

// First returns the first payload recorded for token.
func (m Map) First(token string) ([]byte, error) {
	all, ok := m[token]
	if !ok || len(all) == 0 {
		return nil, errors.Errorf("chunk not found: %s", token)
	}
	return all[0], nil
}

// All returns every payload recorded for token.
func (m Map) All(token string) ([][]byte, error) {
	all, ok := m[token]
	if !ok {
		return nil, errors.Errorf("chunk not found: %s", token)
	}
	return all, nil
}
