// Package wmo decodes world-model files: a root descriptor naming
// materials, textures and mesh groups, with each group's geometry in
// its own companion file.
package wmo

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"sort"

	"github.com/pkg/errors"

	"wowdata/chunk"
	"wowdata/math/vec"
	"wowdata/resource"
	"wowdata/stringtable"
)

// Version is the only supported root and group file version.
const Version = 17

const (
	materialRecordSize  = 64
	groupInfoRecordSize = 32
)

// Material is one surface description. TextureIndex points into the
// model's texture list, -1 when the record's diffuse offset resolved to
// nothing.
type Material struct {
	Flags        uint32
	ShaderID     uint32
	BlendMode    uint32
	TextureIndex int
	GroundType   uint32
}

// MeshGroupInfo describes one mesh group without loading its geometry.
type MeshGroupInfo struct {
	// ResourceKey names the companion file holding the group's
	// geometry, synthesized as stem_NNN + the root's extension.
	ResourceKey string
	Flags       uint32
	BoundsMin   vec.Vec3
	BoundsMax   vec.Vec3
	// Name is empty when the group info carries no name offset.
	Name string
}

// WorldModel is a decoded root file.
type WorldModel struct {
	Textures  []string
	Models    []string
	Materials []Material
	Groups    []MeshGroupInfo
	Warnings  []string
}

func (w *WorldModel) warnf(format string, args ...interface{}) {
	log.Printf("wmo: "+format, args...)
	w.Warnings = append(w.Warnings, errors.Errorf(format, args...).Error())
}

type headerRecord struct {
	NMaterials   uint32
	NGroups      uint32
	NPortals     uint32
	NLights      uint32
	NDoodadNames uint32
	NDoodadDefs  uint32
	NDoodadSets  uint32
	AmbientColor [4]uint8
	ModelID      uint32
	BoundsMin    [3]float32
	BoundsMax    [3]float32
	Flags        uint16
	NLod         uint16
}

type materialRecord struct {
	Flags            uint32
	ShaderID         uint32
	BlendMode        uint32
	DiffuseOffset    uint32
	EmissiveColor    [4]uint8
	FrameSidnColor   [4]uint8
	EnvOffset        uint32
	DiffColor        uint32
	GroundType       uint32
	Texture2         uint32
	Color2           uint32
	Flags2           uint32
	// runtime scratch space in the file
	Runtime [4]uint32
}

type groupInfoRecord struct {
	Flags      uint32
	BoundsMin  [3]float32
	BoundsMax  [3]float32
	NameOffset int32
}

// Load decodes the named root file. Group geometry is not loaded here;
// see LoadGroup.
func Load(op resource.Opener, name string) (*WorldModel, error) {
	f, err := op.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	w := &WorldModel{}
	textureIndex := make(map[uint32]int)
	groupNames := make(map[uint32]string)
	modelNames := make(map[uint32]string)
	var header headerRecord
	groupIndex := 0

	dir, stem, ext := resource.Split(name)

	s := chunk.NewStream(f)
	for {
		c, err := s.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "wmo %q", name)
		}

		switch c.Token {
		case "MVER":
			if err := checkVersion(c.Data); err != nil {
				return nil, errors.Wrapf(err, "wmo %q", name)
			}
		case "MOHD":
			if err := binary.Read(bytes.NewReader(c.Data), binary.LittleEndian, &header); err != nil {
				return nil, errors.Wrapf(err, "wmo %q: short header", name)
			}
		case "MOTX":
			table, err := stringtable.Read(c.Data)
			if err != nil {
				return nil, errors.Wrapf(err, "wmo %q: MOTX", name)
			}
			for _, off := range sortedOffsets(table) {
				textureIndex[off] = len(w.Textures)
				w.Textures = append(w.Textures, table[off])
			}
		case "MOMT":
			if err := w.readMaterials(c.Data, int(header.NMaterials), textureIndex); err != nil {
				return nil, errors.Wrapf(err, "wmo %q: MOMT", name)
			}
		case "MOGN":
			if groupNames, err = stringtable.Read(c.Data); err != nil {
				return nil, errors.Wrapf(err, "wmo %q: MOGN", name)
			}
		case "MOGI":
			remaining := int(header.NGroups) - groupIndex
			if remaining < 0 {
				remaining = 0
			}
			n, err := w.readGroupInfos(c.Data, remaining, groupIndex, groupNames, dir, stem, ext)
			if err != nil {
				return nil, errors.Wrapf(err, "wmo %q: MOGI", name)
			}
			groupIndex += n
		case "MODN":
			if modelNames, err = stringtable.Read(c.Data); err != nil {
				return nil, errors.Wrapf(err, "wmo %q: MODN", name)
			}
			w.Models = stringtable.Densify(modelNames)
		case "MODS", "MODD", "MOSB", "MOPV", "MOPT", "MOPR", "MOLT", "MFOG":
			// placement and lighting data, nothing the model needs
		default:
			w.warnf("unknown chunk token %q", c.Token)
		}
	}
	return w, nil
}

func checkVersion(data []byte) error {
	if len(data) < 4 {
		return errors.Errorf("short version chunk")
	}
	if v := binary.LittleEndian.Uint32(data); v != Version {
		return errors.Errorf("unsupported version: %d", v)
	}
	return nil
}

func sortedOffsets(table map[uint32]string) []uint32 {
	offsets := make([]uint32, 0, len(table))
	for off := range table {
		offsets = append(offsets, off)
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })
	return offsets
}

func (w *WorldModel) readMaterials(data []byte, count int, textureIndex map[uint32]int) error {
	if max := len(data) / materialRecordSize; count > max {
		w.warnf("header names %d materials, chunk holds %d", count, max)
		count = max
	}
	r := bytes.NewReader(data)
	for i := 0; i < count; i++ {
		if _, err := r.Seek(int64(i*materialRecordSize), io.SeekStart); err != nil {
			return err
		}
		var rec materialRecord
		if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
			return err
		}
		texture := -1
		if idx, ok := textureIndex[rec.DiffuseOffset]; ok {
			texture = idx
		} else {
			w.warnf("material %d references unknown texture offset %d", i, rec.DiffuseOffset)
		}
		w.Materials = append(w.Materials, Material{
			Flags:        rec.Flags,
			ShaderID:     rec.ShaderID,
			BlendMode:    rec.BlendMode,
			TextureIndex: texture,
			GroundType:   rec.GroundType,
		})
	}
	return nil
}

func (w *WorldModel) readGroupInfos(data []byte, count, firstIndex int, names map[uint32]string, dir, stem, ext string) (int, error) {
	if max := len(data) / groupInfoRecordSize; count > max {
		w.warnf("header names %d groups, chunk holds %d", count, max)
		count = max
	}
	r := bytes.NewReader(data)
	for i := 0; i < count; i++ {
		var rec groupInfoRecord
		if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
			return i, err
		}

		name := ""
		if rec.NameOffset >= 0 {
			if s, ok := names[uint32(rec.NameOffset)]; ok {
				name = s
			} else {
				w.warnf("group %d references unknown name offset %d", firstIndex+i, rec.NameOffset)
			}
		}

		w.Groups = append(w.Groups, MeshGroupInfo{
			ResourceKey: GroupKey(dir, stem, ext, firstIndex+i),
			Flags:       rec.Flags,
			BoundsMin:   vec.VFromA(rec.BoundsMin),
			BoundsMax:   vec.VFromA(rec.BoundsMax),
			Name:        name,
		})
	}
	return count, nil
}

// GroupKey synthesizes the companion resource name of one mesh group.
func GroupKey(dir, stem, ext string, index int) string {
	return fmt.Sprintf("%s%s_%03d%s", dir, stem, index, ext)
}
