// Package blp decodes BLP2 texture files: an uncompressed
// palette-indexed, DXT-compressed or truecolor payload with up to 16
// mipmap levels.
package blp

import (
	"encoding/binary"
	"image/color"
	"io"
	"log"

	"github.com/pkg/errors"

	"wowdata/resource"
)

var magic = [4]byte{'B', 'L', 'P', '2'}

const (
	paletteSize = 256
	mipmapSlots = 16

	encodingIndexed   = 1
	encodingDXT       = 2
	encodingTrueColor = 3
)

// Compression identifies the block-compression kind of a Compressed
// payload. The blocks themselves stay opaque byte ranges.
type Compression int

const (
	DXT1 Compression = iota
	DXT3
	DXT5
)

func (c Compression) String() string {
	switch c {
	case DXT1:
		return "DXT1"
	case DXT3:
		return "DXT3"
	default:
		return "DXT5"
	}
}

// ImageData is one of Indexed, Compressed or TrueColor.
type ImageData interface {
	imageData()
}

// IndexedMipmap is one mipmap level of an Indexed payload.
type IndexedMipmap struct {
	// Indexes holds one palette index per pixel.
	Indexes []byte
	// Alpha holds one byte per pixel, or nil when the image carries no
	// alpha band. Packed 1-bit masks are expanded to 0x00/0xFF here.
	Alpha []byte
}

type Indexed struct {
	Palette [paletteSize]color.NRGBA
	// FullAlpha is set when the alpha band has eight bits per pixel.
	FullAlpha bool
	Mipmaps   []IndexedMipmap
}

type Compressed struct {
	Compression Compression
	Mipmaps     [][]byte
}

type TrueColor struct {
	Mipmaps [][]color.NRGBA
}

func (Indexed) imageData()    {}
func (Compressed) imageData() {}
func (TrueColor) imageData()  {}

// Image is one decoded texture.
type Image struct {
	Width    uint32
	Height   uint32
	Data     ImageData
	Warnings []string
}

func (img *Image) warnf(format string, args ...interface{}) {
	log.Printf("blp: "+format, args...)
	img.Warnings = append(img.Warnings, errors.Errorf(format, args...).Error())
}

type header struct {
	Version         uint32
	Encoding        uint8
	AlphaDepth      uint8
	PreferredFormat uint8
	HasMipmaps      uint8
	Width           uint32
	Height          uint32
	Offsets         [mipmapSlots]uint32
	Sizes           [mipmapSlots]uint32
}

// Load opens and decodes the named texture.
func Load(op resource.Opener, name string) (*Image, error) {
	f, err := op.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := Decode(f)
	return img, errors.Wrapf(err, "blp %q", name)
}

// Decode reads one texture from r.
func Decode(r io.ReadSeeker) (*Image, error) {
	var m [4]byte
	if _, err := io.ReadFull(r, m[:]); err != nil {
		return nil, errors.Wrap(err, "missing magic")
	}
	if m != magic {
		return nil, errors.Errorf("file header isn't BLP2")
	}

	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, errors.Wrap(err, "short header")
	}
	if h.Version != 1 {
		// version 0 stored a JPEG payload; not supported
		return nil, errors.Errorf("unsupported BLP version: %d", h.Version)
	}

	img := &Image{Width: h.Width, Height: h.Height}
	if h.AlphaDepth != 0 && h.AlphaDepth != 1 && h.AlphaDepth != 8 {
		img.warnf("unsupported alpha depth %d", h.AlphaDepth)
	}

	count := mipmapSlots
	for i, off := range h.Offsets {
		if off == 0 {
			count = i
			break
		}
	}

	var err error
	switch h.Encoding {
	case encodingIndexed:
		img.Data, err = readIndexed(r, &h, count)
	case encodingDXT:
		img.Data, err = readCompressed(r, &h, count)
	case encodingTrueColor:
		img.Data, err = readTrueColor(r, &h, count)
	default:
		return nil, errors.Errorf("unsupported encoding id: %d", h.Encoding)
	}
	if err != nil {
		return nil, err
	}
	return img, nil
}

// MipmapCount returns the number of populated mipmap levels.
func (img *Image) MipmapCount() int {
	switch d := img.Data.(type) {
	case Indexed:
		return len(d.Mipmaps)
	case Compressed:
		return len(d.Mipmaps)
	case TrueColor:
		return len(d.Mipmaps)
	}
	return 0
}

func readIndexed(r io.ReadSeeker, h *header, count int) (ImageData, error) {
	data := Indexed{FullAlpha: h.AlphaDepth > 1}

	var raw [paletteSize * 4]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return nil, errors.Wrap(err, "short palette")
	}
	for i := 0; i < paletteSize; i++ {
		// entries are stored b, g, r, unused
		data.Palette[i] = color.NRGBA{
			R: raw[i*4+2],
			G: raw[i*4+1],
			B: raw[i*4],
			A: 0xff,
		}
	}

	pixels := int(h.Width) * int(h.Height)
	for level := 0; level < count; level++ {
		if _, err := r.Seek(int64(h.Offsets[level]), io.SeekStart); err != nil {
			return nil, err
		}
		block := io.LimitReader(r, int64(h.Sizes[level]))

		mip := IndexedMipmap{Indexes: make([]byte, pixels)}
		if _, err := io.ReadFull(block, mip.Indexes); err != nil {
			return nil, errors.Wrapf(err, "short index data in mipmap %d", level)
		}

		switch h.AlphaDepth {
		case 8:
			mip.Alpha = make([]byte, pixels)
			if _, err := io.ReadFull(block, mip.Alpha); err != nil {
				return nil, errors.Wrapf(err, "short alpha data in mipmap %d", level)
			}
		case 1:
			alpha, err := readPackedAlpha(block, pixels)
			if err != nil {
				return nil, errors.Wrapf(err, "short alpha data in mipmap %d", level)
			}
			mip.Alpha = alpha
		}

		data.Mipmaps = append(data.Mipmaps, mip)
	}
	return data, nil
}

// readPackedAlpha expands a 1-bit mask, lowest bit first, to one
// 0x00/0xFF byte per pixel.
func readPackedAlpha(r io.Reader, pixels int) ([]byte, error) {
	packed := make([]byte, (pixels+7)/8)
	if _, err := io.ReadFull(r, packed); err != nil {
		return nil, err
	}
	alpha := make([]byte, 0, pixels)
	for _, b := range packed {
		for bit := 0; bit < 8 && len(alpha) < pixels; bit++ {
			if b&(1<<bit) != 0 {
				alpha = append(alpha, 0xff)
			} else {
				alpha = append(alpha, 0x00)
			}
		}
	}
	return alpha, nil
}

func readCompressed(r io.ReadSeeker, h *header, count int) (ImageData, error) {
	data := Compressed{Compression: pickCompression(h.AlphaDepth, h.PreferredFormat)}
	for level := 0; level < count; level++ {
		if _, err := r.Seek(int64(h.Offsets[level]), io.SeekStart); err != nil {
			return nil, err
		}
		block := make([]byte, h.Sizes[level])
		if _, err := io.ReadFull(r, block); err != nil {
			return nil, errors.Wrapf(err, "short block data in mipmap %d", level)
		}
		data.Mipmaps = append(data.Mipmaps, block)
	}
	return data, nil
}

func pickCompression(alphaDepth, preferredFormat uint8) Compression {
	switch {
	case alphaDepth == 8 && preferredFormat == 7:
		return DXT5
	case alphaDepth == 8 || alphaDepth == 4:
		return DXT3
	default:
		return DXT1
	}
}

func readTrueColor(r io.ReadSeeker, h *header, count int) (ImageData, error) {
	var data TrueColor
	pixels := int(h.Width) * int(h.Height)
	for level := 0; level < count; level++ {
		if _, err := r.Seek(int64(h.Offsets[level]), io.SeekStart); err != nil {
			return nil, err
		}
		raw := make([]byte, pixels*4)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, errors.Wrapf(err, "short pixel data in mipmap %d", level)
		}
		mip := make([]color.NRGBA, pixels)
		for i := range mip {
			// samples are stored b, g, r, a
			mip[i] = color.NRGBA{
				R: raw[i*4+2],
				G: raw[i*4+1],
				B: raw[i*4],
				A: raw[i*4+3],
			}
		}
		data.Mipmaps = append(data.Mipmaps, mip)
	}
	return data, nil
}
