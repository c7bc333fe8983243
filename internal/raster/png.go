package raster

import (
	"fmt"
	"image/png"
	"io"
)

// EncodePNG writes the current pixels as a PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, c.img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
