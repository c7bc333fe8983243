package particle

import "image/color"

// Palette is the set of colors a particle may be born with.
type Palette []color.NRGBA

// DefaultPalette is cyan and magenta.
var DefaultPalette = Palette{
	{R: 0x00, G: 0xd4, B: 0xff, A: 0xff},
	{R: 0xff, G: 0x00, B: 0x6e, A: 0xff},
}

// Construction ranges.
const (
	MinSpeed   = -1.0
	MaxSpeed   = 1.0
	MinRadius  = 1.0
	MaxRadius  = 3.0
	MinOpacity = 0.2
	MaxOpacity = 0.7
)

// Params tunes the pointer force and the proximity edges.
type Params struct {
	// RepelRadius is the distance within which the pointer pushes particles away.
	RepelRadius float64
	// RepelStrength is the velocity added per frame inside RepelRadius.
	RepelStrength float64

	// LinkRadius is the distance below which two particles are joined.
	LinkRadius float64
	// LinkAlpha is the edge alpha at zero distance; it fades linearly to 0 at LinkRadius.
	LinkAlpha float64
	LinkWidth float64
	LinkColor color.NRGBA
}

// DefaultParams returns the reference tuning.
func DefaultParams() Params {
	return Params{
		RepelRadius:   150,
		RepelStrength: 0.5,
		LinkRadius:    100,
		LinkAlpha:     0.2,
		LinkWidth:     1,
		LinkColor:     color.NRGBA{R: 0, G: 212, B: 255, A: 255},
	}
}
