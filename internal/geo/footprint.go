package geo

import (
	geom "github.com/peterstace/simplefeatures/geom"
)

// FootprintLine builds a 3857 line string through the origin translated by
// each offset in order. Fewer than two points yields an empty line string.
func FootprintLine(origin Coordinate, offsets []Vector2) geom.LineString {
	if len(offsets) < 2 {
		return geom.LineString{}
	}
	coords := make([]float64, 0, len(offsets)*2)
	for _, offset := range offsets {
		x, y := origin.Translate(offset).to3857()
		coords = append(coords, x, y)
	}
	seq := geom.NewSequence(coords, geom.DimXY)
	return geom.NewLineString(seq)
}

// PathLength sums the ground length in meters of the line through the given
// coordinates. The 3857 length is corrected back to ground meters at the
// first coordinate's latitude.
func PathLength(coords []Coordinate) float64 {
	if len(coords) < 2 {
		return 0
	}
	raw := make([]float64, 0, len(coords)*2)
	for _, c := range coords {
		x, y := c.to3857()
		raw = append(raw, x, y)
	}
	line := geom.NewLineString(geom.NewSequence(raw, geom.DimXY))
	return line.Length() / coords[0].mercatorScale()
}
