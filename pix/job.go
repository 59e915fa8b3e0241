package pix

import (
	"errors"
	"fmt"
	"image"
)

// Job describes one encode task. A Job must pass Validate before it is
// handed to Encode.
type Job struct {
	Format       Format
	Transparency Transparency
	Dither       Dither
	InvertAlpha  bool
	ByteOrder    ByteOrder
	Animated     bool

	// MaxWidth and MaxHeight bound an aspect-ratio-preserving resize.
	// Zero means the source's native size is used.
	MaxWidth  int
	MaxHeight int
}

// Validate reports whether the job's format, transparency, byte order and
// invert_alpha settings form a legal combination.
func (j Job) Validate() error {
	if int(j.Format) >= len(formats) {
		return fmt.Errorf("unknown image type %d", j.Format)
	}
	if j.Transparency > AlphaChannel {
		return fmt.Errorf("unknown transparency %d", j.Transparency)
	}
	info := formats[j.Format]
	if !info.transparency[j.Transparency] {
		return fmt.Errorf("image format %q cannot have transparency: %s", j.Format, j.Transparency)
	}
	if j.InvertAlpha && j.Transparency != AlphaChannel && !info.invertColor {
		return errors.New("no alpha channel to invert")
	}
	if j.ByteOrder != ByteOrderDefault && !info.byteOrder {
		return fmt.Errorf("image format %q does not support byte order configuration", j.Format)
	}
	if (j.MaxWidth > 0) != (j.MaxHeight > 0) || j.MaxWidth < 0 || j.MaxHeight < 0 {
		return errors.New("resize requires both a width and a height")
	}
	return nil
}

// Source is a raster image that can be read one frame at a time. Stills
// have a frame count of one.
type Source interface {
	FrameCount() int
	Frame(i int) (image.Image, error)
}

// Result is an encoded image buffer with the metadata needed to interpret
// it on the device.
type Result struct {
	Data         []byte
	Width        int
	Height       int
	Format       Format
	Transparency Transparency
	FrameCount   int
}
