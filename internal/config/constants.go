package config

const (
	WindowWidth  = 1280
	WindowHeight = 720
	WindowTitle  = "particle-field"

	// Field
	ParticleCount = 100

	// Pointer repulsion
	RepelRadius   = 150.0
	RepelStrength = 0.5

	// Proximity edges
	LinkRadius = 100.0
	LinkAlpha  = 0.2
	LinkWidth  = 1.0
	LinkColor  = "#00d4ff"

	// Trail fade overlay
	FadeColor = "#050812"
	FadeAlpha = 0.1

	// Terminal cell size in surface units
	CellWidth  = 8
	CellHeight = 16
)

// Palette is the default particle palette.
var Palette = []string{"#00d4ff", "#ff006e"}
