// Package adt decodes one terrain map tile: a 16x16 grid of terrain
// chunks with heightfields, normals, texture layers and alpha maps,
// plus the tile's texture and model path tables. A tile may be backed
// by up to three files; later content generations split texture and
// object data into "_tex0"/"_obj0" companions.
package adt

import (
	"log"

	"github.com/pkg/errors"

	"wowdata/alphamap"
	"wowdata/math/vec"
)

// Every map is 64x64 tiles; a tile is 16x16 chunks of 8x8 quads.
const (
	TileSize  = 533.0 + 1.0/3.0
	ChunkSize = TileSize / 16
	UnitSize  = ChunkSize / 8
	MapCenter = TileSize * 32
)

const (
	// ChunkCount is the fixed grid size of a tile.
	ChunkCount = 16 * 16
	// ChunkVertexCount is the interleaved 9,8,9,...,8,9 sample count.
	ChunkVertexCount = 9*9 + 8*8
)

// RawAlphaSize tells the decoder how uncompressed alpha maps are
// stored; the tile format does not describe this itself.
type RawAlphaSize int

const (
	// RawAlphaUnknown means the caller has no hint. Uncompressed alpha
	// maps are skipped with a warning.
	RawAlphaUnknown RawAlphaSize = iota
	// RawAlphaNibble marks 2048-byte maps with two samples per byte.
	RawAlphaNibble
	// RawAlphaByte marks 4096-byte maps with one sample per byte.
	RawAlphaByte
)

// ChunkFlags is the raw MCNK header flag word.
type ChunkFlags uint32

const (
	ChunkHasShadowMap    ChunkFlags = 1 << 0
	ChunkImpassable      ChunkFlags = 1 << 1
	ChunkLiquidRiver     ChunkFlags = 1 << 2
	ChunkLiquidOcean     ChunkFlags = 1 << 3
	ChunkLiquidMagma     ChunkFlags = 1 << 4
	ChunkLiquidSlime     ChunkFlags = 1 << 5
	ChunkHasVertexColors ChunkFlags = 1 << 6
	ChunkDontFixAlpha    ChunkFlags = 1 << 15
	ChunkHighResHoles    ChunkFlags = 1 << 16
)

// LayerFlags is the raw texture-layer flag word.
type LayerFlags uint32

const (
	LayerAnimRotation1   LayerFlags = 1 << 0
	LayerAnimRotation2   LayerFlags = 1 << 1
	LayerAnimRotation3   LayerFlags = 1 << 2
	LayerAnimSpeed1      LayerFlags = 1 << 3
	LayerAnimSpeed2      LayerFlags = 1 << 4
	LayerAnimSpeed3      LayerFlags = 1 << 5
	LayerAnimEnabled     LayerFlags = 1 << 6
	LayerOverbright      LayerFlags = 1 << 7
	LayerUseAlphaMap     LayerFlags = 1 << 8
	LayerAlphaCompressed LayerFlags = 1 << 9
	LayerUseCubeMap      LayerFlags = 1 << 10
)

// Holes marks terrain sub-quads rendered as absent. The header flag
// word selects between the 16-bit and 64-bit encoding.
type Holes struct {
	HighRes bool
	// Mask holds the low 16 bits in the low-res encoding.
	Mask uint64
}

// TextureLayer is one of up to four blended surface textures.
type TextureLayer struct {
	// TextureID indexes the tile's texture path list.
	TextureID      uint32
	Flags          LayerFlags
	GroundEffectID uint32
	// AlphaMap is present iff the layer's use-alpha-map flag is set and
	// the map could be decoded.
	AlphaMap *alphamap.AlphaMap
}

// MapChunk is one cell of the tile grid. Every cell exists even when
// the source files carry no record for it.
type MapChunk struct {
	IndexX, IndexY uint32
	Flags          ChunkFlags
	Position       vec.Vec3
	Heights        []float32
	Normals        []vec.Vec3
	Holes          Holes
	Layers         []TextureLayer
}

// DoodadPlacement is one M2 placement record.
type DoodadPlacement struct {
	NameID   uint32
	UniqueID uint32
	Position vec.Vec3
	Rotation vec.Vec3
	Scale    uint16
	Flags    uint16
}

// ObjectPlacement is one world-model placement record.
type ObjectPlacement struct {
	NameID    uint32
	UniqueID  uint32
	Position  vec.Vec3
	Rotation  vec.Vec3
	BoundsMin vec.Vec3
	BoundsMax vec.Vec3
	Flags     uint16
	DoodadSet uint16
	NameSet   uint16
}

// MapTile is one fully decoded tile.
type MapTile struct {
	Textures    []string
	Models      []string
	WorldModels []string
	Doodads     []DoodadPlacement
	Objects     []ObjectPlacement
	// Chunks always has exactly ChunkCount entries.
	Chunks   []MapChunk
	Warnings []string
}

func (t *MapTile) warnf(format string, args ...interface{}) {
	log.Printf("adt: "+format, args...)
	t.Warnings = append(t.Warnings, errors.Errorf(format, args...).Error())
}
