package blp

import (
	"image"

	"github.com/pkg/errors"
	"github.com/woozymasta/bcn"
)

// Mipmap expands one mipmap level into a stdlib image for converters
// and viewers. Indexed and truecolor payloads expand directly; DXT
// blocks go through the bcn decoder.
func (img *Image) Mipmap(level int) (*image.NRGBA, error) {
	if level < 0 || level >= img.MipmapCount() {
		return nil, errors.Errorf("no mipmap level %d", level)
	}
	w, h := int(img.Width), int(img.Height)

	switch d := img.Data.(type) {
	case Indexed:
		mip := d.Mipmaps[level]
		out := image.NewNRGBA(image.Rect(0, 0, w, h))
		for i, idx := range mip.Indexes {
			c := d.Palette[idx]
			if mip.Alpha != nil {
				c.A = mip.Alpha[i]
			}
			out.SetNRGBA(i%w, i/w, c)
		}
		return out, nil

	case TrueColor:
		mip := d.Mipmaps[level]
		out := image.NewNRGBA(image.Rect(0, 0, w, h))
		for i, c := range mip {
			out.SetNRGBA(i%w, i/w, c)
		}
		return out, nil

	case Compressed:
		format := bcn.FormatDXT1
		switch d.Compression {
		case DXT3:
			format = bcn.FormatDXT3
		case DXT5:
			format = bcn.FormatDXT5
		}
		decoded, err := bcn.DecodeImageWithOptions(d.Mipmaps[level], w, h, format, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "decode %s mipmap %d", d.Compression, level)
		}
		return decoded, nil
	}
	return nil, errors.Errorf("unknown image payload %T", img.Data)
}
