package wmo

import (
	"bytes"
	"encoding/binary"
	"io"
	"log"

	"github.com/pkg/errors"

	"wowdata/chunk"
	"wowdata/math/vec"
	"wowdata/resource"
)

// RenderBatch is a contiguous index/vertex sub-range sharing one
// material.
type RenderBatch struct {
	MaterialID  uint16
	IndexStart  uint32
	IndexCount  uint16
	VertexStart uint16
	VertexEnd   uint16
}

// Texcoord is one texture coordinate pair.
type Texcoord struct {
	U, V float32
}

// MeshGroup is one group's geometry. Coordinates keep the file's axis
// convention; remapping to another up axis is the caller's concern.
type MeshGroup struct {
	Indexes   []uint16
	Vertices  []vec.Vec3
	Normals   []vec.Vec3
	Texcoords []Texcoord
	Batches   []RenderBatch
}

// groupHeader is the fixed part of the group wrapper chunk; sub-chunks
// follow it inside the same payload.
type groupHeader struct {
	NameOffset      uint32
	DescriptiveName uint32
	Flags           uint32
	BoundsMin       [3]float32
	BoundsMax       [3]float32
	PortalStart     uint16
	PortalCount     uint16
	TransBatches    uint16
	IntBatches      uint16
	ExtBatches      uint16
	BatchTypeOrPad  uint16
	FogIDs          [4]uint8
	LiquidType      uint32
	GroupID         uint32
	Flags2          uint32
	Unknown         uint32
}

type batchRecord struct {
	Bounds      [6]int16
	IndexStart  uint32
	IndexCount  uint16
	VertexStart uint16
	VertexEnd   uint16
	Flags       uint8
	MaterialID  uint8
}

const batchRecordSize = 24

// LoadGroup opens and decodes one group's companion file. Calls share
// no state, so groups load safely in parallel.
func LoadGroup(op resource.Opener, info MeshGroupInfo) (*MeshGroup, error) {
	f, err := op.Open(info.ResourceKey)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g := &MeshGroup{}
	s := chunk.NewStream(f)
	for {
		c, err := s.Next()
		if err == io.EOF {
			return g, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "wmo group %q", info.ResourceKey)
		}

		switch c.Token {
		case "MVER":
			if err := checkVersion(c.Data); err != nil {
				return nil, errors.Wrapf(err, "wmo group %q", info.ResourceKey)
			}
		case "MOGP":
			if err := g.readWrapper(c.Data); err != nil {
				return nil, errors.Wrapf(err, "wmo group %q", info.ResourceKey)
			}
		}
	}
}

// LoadAllGroups loads every group of a root model, skipping groups that
// fail with a logged error; one broken companion file does not
// invalidate the rest.
func LoadAllGroups(op resource.Opener, w *WorldModel) []*MeshGroup {
	groups := make([]*MeshGroup, 0, len(w.Groups))
	for _, info := range w.Groups {
		g, err := LoadGroup(op, info)
		if err != nil {
			log.Printf("wmo: unable to load mesh group: %v", err)
			continue
		}
		groups = append(groups, g)
	}
	return groups
}

func (g *MeshGroup) readWrapper(data []byte) error {
	r := bytes.NewReader(data)
	var h groupHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return errors.Wrap(err, "short wrapper header")
	}

	s := chunk.NewStream(r)
	for {
		c, err := s.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		switch c.Token {
		case "MOVI":
			g.Indexes = make([]uint16, len(c.Data)/2)
			if err := binary.Read(bytes.NewReader(c.Data), binary.LittleEndian, g.Indexes); err != nil {
				return errors.Wrap(err, "MOVI")
			}
		case "MOVT":
			if g.Vertices, err = readVec3s(c.Data); err != nil {
				return errors.Wrap(err, "MOVT")
			}
		case "MONR":
			if g.Normals, err = readVec3s(c.Data); err != nil {
				return errors.Wrap(err, "MONR")
			}
		case "MOTV":
			g.Texcoords = make([]Texcoord, len(c.Data)/8)
			if err := binary.Read(bytes.NewReader(c.Data), binary.LittleEndian, g.Texcoords); err != nil {
				return errors.Wrap(err, "MOTV")
			}
		case "MOBA":
			br := bytes.NewReader(c.Data)
			for i := 0; i < len(c.Data)/batchRecordSize; i++ {
				var rec batchRecord
				if err := binary.Read(br, binary.LittleEndian, &rec); err != nil {
					return errors.Wrap(err, "MOBA")
				}
				g.Batches = append(g.Batches, RenderBatch{
					MaterialID:  uint16(rec.MaterialID),
					IndexStart:  rec.IndexStart,
					IndexCount:  rec.IndexCount,
					VertexStart: rec.VertexStart,
					VertexEnd:   rec.VertexEnd,
				})
			}
		}
	}
}

func readVec3s(data []byte) ([]vec.Vec3, error) {
	raw := make([][3]float32, len(data)/12)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, raw); err != nil {
		return nil, err
	}
	out := make([]vec.Vec3, len(raw))
	for i, a := range raw {
		out[i] = vec.VFromA(a)
	}
	return out, nil
}
