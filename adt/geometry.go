package adt

import (
	"wowdata/math/vec"
)

// EachTriangle emits index triples over the 145-sample vertex layout,
// one 8x8 quad grid per chunk. High detail fans every quad through its
// shared center vertex (four triangles); low detail splits it
// corner-to-corner (two).
func EachTriangle(highDetail bool, f func(a, b, c uint16)) {
	for row := uint16(0); row < 8; row++ {
		rowOffset := row * (9 + 8)
		for column := uint16(0); column < 8; column++ {
			topLeft := rowOffset + column
			topRight := topLeft + 1
			center := rowOffset + 9 + column
			botLeft := rowOffset + 9 + 8 + column
			botRight := botLeft + 1

			if highDetail {
				f(topLeft, topRight, center)
				f(topRight, botRight, center)
				f(botRight, botLeft, center)
				f(botLeft, topLeft, center)
			} else {
				f(topLeft, topRight, botLeft)
				f(topRight, botRight, botLeft)
			}
		}
	}
}

// Vertex is one interleaved heightfield sample. Inner vertices sit at
// quad centers, offset by +9 within their row span.
type Vertex struct {
	Inner       bool
	Row, Column int
	Height      float32
	Normal      vec.Vec3
}

// EachVertex walks the chunk's samples in storage order. Chunks without
// height data emit nothing; a missing normal defaults to straight up.
func (mc *MapChunk) EachVertex(f func(Vertex)) {
	for i, height := range mc.Heights {
		normal := vec.Vec3{Z: 1}
		if i < len(mc.Normals) {
			normal = mc.Normals[i]
		}

		rowOffset := i % (9 + 8)
		inner := rowOffset >= 9
		column := rowOffset
		if inner {
			column = rowOffset - 9
		}

		f(Vertex{
			Inner:  inner,
			Row:    i / (9 + 8),
			Column: column,
			Height: height,
			Normal: normal,
		})
	}
}
