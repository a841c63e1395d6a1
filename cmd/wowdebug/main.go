// Command wowdebug decodes game asset files and reports what it found.
// It exists to exercise the decoders against real data trees:
//
//	wowdebug -root /data/extracted World/maps/Azeroth/Azeroth_32_48.adt
package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"
	"strings"

	"wowdata/adt"
	"wowdata/blp"
	"wowdata/resource"
	"wowdata/wmo"
)

var (
	root     = flag.String("root", ".", "data tree to resolve asset names against")
	pngOut   = flag.String("png", "", "write the top mipmap of each texture as PNG into this directory")
	rawAlpha = flag.String("alpha", "nibble", "raw alpha map size: nibble, byte or unknown")
)

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	op := resource.NewFS(*root)
	failed := 0
	for _, name := range flag.Args() {
		if err := dump(op, name); err != nil {
			log.Printf("%s: %v", name, err)
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func dump(op resource.Opener, name string) error {
	_, _, ext := resource.Split(name)
	switch strings.ToLower(ext) {
	case ".blp":
		return dumpTexture(op, name)
	case ".adt":
		return dumpTile(op, name)
	case ".wmo":
		return dumpModel(op, name)
	}
	return fmt.Errorf("no decoder for %q", ext)
}

func alphaSize() adt.RawAlphaSize {
	switch *rawAlpha {
	case "byte":
		return adt.RawAlphaByte
	case "unknown":
		return adt.RawAlphaUnknown
	}
	return adt.RawAlphaNibble
}

func dumpTexture(op resource.Opener, name string) error {
	img, err := blp.Load(op, name)
	if err != nil {
		return err
	}
	fmt.Printf("%s: texture %dx%d %s, %d warnings\n",
		name, img.Width, img.Height, describe(img.Data), len(img.Warnings))

	if *pngOut == "" {
		return nil
	}
	m, err := img.Mipmap(0)
	if err != nil {
		return err
	}
	_, stem, _ := resource.Split(name)
	out := fmt.Sprintf("%s/%s.png", *pngOut, stem)
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, m)
}

func describe(data blp.ImageData) string {
	switch d := data.(type) {
	case blp.Indexed:
		return fmt.Sprintf("indexed (%d mipmaps)", len(d.Mipmaps))
	case blp.Compressed:
		return fmt.Sprintf("%s (%d mipmaps)", d.Compression, len(d.Mipmaps))
	case blp.TrueColor:
		return fmt.Sprintf("truecolor (%d mipmaps)", len(d.Mipmaps))
	}
	return "unknown"
}

func dumpTile(op resource.Opener, name string) error {
	tile, err := adt.Load(op, name, alphaSize())
	if err != nil {
		return err
	}
	chunks := 0
	for i := range tile.Chunks {
		if tile.Chunks[i].Heights != nil {
			chunks++
		}
	}
	fmt.Printf("%s: tile with %d chunks, %d textures, %d doodads, %d objects, %d warnings\n",
		name, chunks, len(tile.Textures), len(tile.Doodads), len(tile.Objects), len(tile.Warnings))
	return nil
}

func dumpModel(op resource.Opener, name string) error {
	w, err := wmo.Load(op, name)
	if err != nil {
		return err
	}
	groups := wmo.LoadAllGroups(op, w)
	triangles := 0
	for _, g := range groups {
		triangles += len(g.Indexes) / 3
	}
	fmt.Printf("%s: model with %d materials, %d/%d groups (%d triangles), %d warnings\n",
		name, len(w.Materials), len(groups), len(w.Groups), triangles, len(w.Warnings))
	return nil
}
