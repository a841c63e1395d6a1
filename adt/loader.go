package adt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"wowdata/alphamap"
	"wowdata/chunk"
	"wowdata/math/vec"
	"wowdata/resource"
	"wowdata/stringtable"
)

// Load decodes the named tile. The root file is mandatory; "_tex0" and
// "_obj0" companions are included when they exist. rawAlpha tells the
// decoder how to read uncompressed alpha maps (the format itself does
// not say).
func Load(op resource.Opener, name string, rawAlpha RawAlphaSize) (*MapTile, error) {
	type target struct {
		name string
		root bool
	}
	targets := []target{{name, true}}

	dir, stem, ext := resource.Split(name)
	for _, split := range []string{"tex", "obj"} {
		splitName := fmt.Sprintf("%s%s_%s0%s", dir, stem, split, ext)
		ok, err := op.Exists(splitName)
		if err != nil {
			return nil, err
		}
		if ok {
			targets = append(targets, target{splitName, false})
		}
	}

	tile := &MapTile{Chunks: make([]MapChunk, ChunkCount)}

	for _, tg := range targets {
		f, err := op.Open(tg.name)
		if err != nil {
			return nil, err
		}
		err = tile.readFile(f, tg.root, rawAlpha)
		f.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "adt %q", tg.name)
		}
	}
	return tile, nil
}

type doodadRecord struct {
	NameID   uint32
	UniqueID uint32
	Position [3]float32
	Rotation [3]float32
	Scale    uint16
	Flags    uint16
}

type objectRecord struct {
	NameID    uint32
	UniqueID  uint32
	Position  [3]float32
	Rotation  [3]float32
	BoundsMin [3]float32
	BoundsMax [3]float32
	Flags     uint16
	DoodadSet uint16
	NameSet   uint16
	Unknown   uint16
}

const (
	doodadRecordSize = 36
	objectRecordSize = 64
)

// tokens we know and deliberately skip; anything else is reported
var skippedTokens = map[string]bool{
	"MVER": true, "MHDR": true, "MCIN": true, "MH2O": true,
	"MFBO": true, "MTXF": true, "MAMP": true, "MTXP": true,
}

func (t *MapTile) readFile(r io.Reader, isRoot bool, rawAlpha RawAlphaSize) error {
	modelNames := make(map[uint32]string)
	objectNames := make(map[uint32]string)
	chunkIndex := 0

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
		case "MTEX":
			names, err := stringtable.List(c.Data)
			if err != nil {
				return errors.Wrap(err, "MTEX")
			}
			t.Textures = append(t.Textures, names...)
		case "MMDX":
			if modelNames, err = stringtable.Read(c.Data); err != nil {
				return errors.Wrap(err, "MMDX")
			}
		case "MMID":
			t.Models = append(t.Models, stringtable.Drain(modelNames, c.Data, t.warnf)...)
		case "MWMO":
			if objectNames, err = stringtable.Read(c.Data); err != nil {
				return errors.Wrap(err, "MWMO")
			}
		case "MWID":
			t.WorldModels = append(t.WorldModels, stringtable.Drain(objectNames, c.Data, t.warnf)...)
		case "MDDF":
			if err := t.readDoodadPlacements(c.Data); err != nil {
				return errors.Wrap(err, "MDDF")
			}
		case "MODF":
			if err := t.readObjectPlacements(c.Data); err != nil {
				return errors.Wrap(err, "MODF")
			}
		case "MCNK":
			if chunkIndex >= ChunkCount {
				t.warnf("more than %d terrain chunks, ignoring the rest", ChunkCount)
				continue
			}
			if err := t.readMapChunk(&t.Chunks[chunkIndex], c.Data, isRoot, rawAlpha); err != nil {
				return errors.Wrapf(err, "MCNK %d", chunkIndex)
			}
			chunkIndex++
		default:
			if !skippedTokens[c.Token] {
				t.warnf("unknown chunk token %q", c.Token)
			}
		}
	}
}

func (t *MapTile) readDoodadPlacements(data []byte) error {
	if len(data)%doodadRecordSize != 0 {
		t.warnf("placement list has %d stray bytes", len(data)%doodadRecordSize)
	}
	r := bytes.NewReader(data)
	for i := 0; i < len(data)/doodadRecordSize; i++ {
		var rec doodadRecord
		if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
			return err
		}
		t.Doodads = append(t.Doodads, DoodadPlacement{
			NameID:   rec.NameID,
			UniqueID: rec.UniqueID,
			Position: vec.VFromA(rec.Position),
			Rotation: vec.VFromA(rec.Rotation),
			Scale:    rec.Scale,
			Flags:    rec.Flags,
		})
	}
	return nil
}

func (t *MapTile) readObjectPlacements(data []byte) error {
	if len(data)%objectRecordSize != 0 {
		t.warnf("placement list has %d stray bytes", len(data)%objectRecordSize)
	}
	r := bytes.NewReader(data)
	for i := 0; i < len(data)/objectRecordSize; i++ {
		var rec objectRecord
		if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
			return err
		}
		t.Objects = append(t.Objects, ObjectPlacement{
			NameID:    rec.NameID,
			UniqueID:  rec.UniqueID,
			Position:  vec.VFromA(rec.Position),
			Rotation:  vec.VFromA(rec.Rotation),
			BoundsMin: vec.VFromA(rec.BoundsMin),
			BoundsMax: vec.VFromA(rec.BoundsMax),
			Flags:     rec.Flags,
			DoodadSet: rec.DoodadSet,
			NameSet:   rec.NameSet,
		})
	}
	return nil
}

// mcnkHeader is the 128-byte terrain chunk header, present only in the
// root file.
type mcnkHeader struct {
	Flags           uint32
	IndexX          uint32
	IndexY          uint32
	NLayers         uint32
	NDoodadRefs     uint32
	HolesHighRes    uint64
	OfsLayer        uint32
	OfsRefs         uint32
	OfsAlpha        uint32
	SizeAlpha       uint32
	OfsShadow       uint32
	SizeShadow      uint32
	AreaID          uint32
	NMapObjRefs     uint32
	HolesLowRes     uint16
	Unknown1        uint16
	Texmap1         uint64
	Texmap2         uint64
	NoEffectDoodad  uint64
	OfsSoundEmitter uint32
	NSoundEmitters  uint32
	OfsLiquid       uint32
	SizeLiquid      uint32
	Position        [3]float32
	OfsVertexColors uint32
	OfsVertexLight  uint32
	Unknown2        uint32
}

func (t *MapTile) readMapChunk(mc *MapChunk, data []byte, isRoot bool, rawAlpha RawAlphaSize) error {
	r := bytes.NewReader(data)

	if isRoot {
		var h mcnkHeader
		if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
			return errors.Wrap(err, "short chunk header")
		}
		mc.Flags = ChunkFlags(h.Flags)
		mc.IndexX = h.IndexX
		mc.IndexY = h.IndexY
		mc.Position = vec.VFromA(h.Position)
		if mc.Flags&ChunkHighResHoles != 0 {
			mc.Holes = Holes{HighRes: true, Mask: h.HolesHighRes}
		} else {
			mc.Holes = Holes{Mask: uint64(h.HolesLowRes)}
		}
	}

	return t.readSubChunks(mc, r, rawAlpha)
}

type layerRecord struct {
	TextureID      uint32
	Flags          uint32
	AlphaOffset    uint32
	GroundEffectID uint32
}

const layerRecordSize = 16

func (t *MapTile) readSubChunks(mc *MapChunk, r io.Reader, rawAlpha RawAlphaSize) error {
	// layers accumulate across the root and split files; this file's
	// alpha offsets only describe the layers it appends itself
	layerBase := len(mc.Layers)
	var alphaOffsets []uint32

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
		case "MCVT":
			heights := make([]float32, ChunkVertexCount)
			if err := binary.Read(bytes.NewReader(c.Data), binary.LittleEndian, heights); err != nil {
				return errors.Wrap(err, "MCVT")
			}
			mc.Heights = heights
		case "MCNR":
			if len(c.Data) < ChunkVertexCount*3 {
				return errors.Errorf("MCNR holds %d bytes, want %d", len(c.Data), ChunkVertexCount*3)
			}
			mc.Normals = make([]vec.Vec3, ChunkVertexCount)
			for i := 0; i < ChunkVertexCount; i++ {
				n := vec.Vec3{
					X: float32(int8(c.Data[i*3])) / -127,
					Y: float32(int8(c.Data[i*3+1])) / -127,
					Z: float32(int8(c.Data[i*3+2])) / 127,
				}
				mc.Normals[i] = n.Normalize()
			}
		case "MCLY":
			br := bytes.NewReader(c.Data)
			for i := 0; i < len(c.Data)/layerRecordSize; i++ {
				var rec layerRecord
				if err := binary.Read(br, binary.LittleEndian, &rec); err != nil {
					return errors.Wrap(err, "MCLY")
				}
				mc.Layers = append(mc.Layers, TextureLayer{
					TextureID:      rec.TextureID,
					Flags:          LayerFlags(rec.Flags),
					GroundEffectID: rec.GroundEffectID,
				})
				alphaOffsets = append(alphaOffsets, rec.AlphaOffset)
			}
		case "MCAL":
			if err := t.readAlphaMaps(mc, c.Data, layerBase, alphaOffsets, rawAlpha); err != nil {
				return errors.Wrap(err, "MCAL")
			}
		}
	}
}

// readAlphaMaps slices the raw alpha payload at each layer's recorded
// offset and decodes layers that want an alpha map.
func (t *MapTile) readAlphaMaps(mc *MapChunk, data []byte, base int, offsets []uint32, rawAlpha RawAlphaSize) error {
	for i, start := range offsets {
		if base+i >= len(mc.Layers) {
			break
		}
		layer := &mc.Layers[base+i]
		if layer.Flags&LayerUseAlphaMap == 0 {
			continue
		}
		if int(start) > len(data) {
			t.warnf("alpha offset %d outside %d-byte payload", start, len(data))
			continue
		}
		r := bytes.NewReader(data[start:])

		switch {
		case layer.Flags&LayerAlphaCompressed != 0:
			m, err := alphamap.ReadCompressed(r)
			if err != nil {
				return err
			}
			layer.AlphaMap = m
		case rawAlpha == RawAlphaUnknown:
			t.warnf("skipping uncompressed alpha map for layer %d (no size hint)", base+i)
		default:
			m, err := alphamap.ReadRaw(r, rawAlpha == RawAlphaNibble)
			if err != nil {
				return err
			}
			layer.AlphaMap = m
		}
	}
	return nil
}
