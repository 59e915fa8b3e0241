package pix

import (
	"fmt"
	"image"
	"image/color"
)

// Image reads a packed buffer back as an image.Image, mirroring how the
// firmware resolves pixels at draw time. RGB565 data is interpreted
// big-endian, as the device does.
type Image struct {
	data         []byte
	width        int
	height       int
	format       Format
	transparency Transparency
	stride       int
	pixel        int
}

// NewImage wraps an encoded buffer. The buffer length must match the
// storage width for the format exactly.
func NewImage(data []byte, width, height int, f Format, t Transparency) (*Image, error) {
	stride := StorageWidth(f, t, width)
	if want := stride * height; len(data) != want {
		return nil, fmt.Errorf("buffer is %d bytes, want %d", len(data), want)
	}
	return &Image{
		data:         data,
		width:        width,
		height:       height,
		format:       f,
		transparency: t,
		stride:       stride,
		pixel:        StorageWidth(f, t, 1),
	}, nil
}

func (p *Image) ColorModel() color.Model { return color.NRGBAModel }

func (p *Image) Bounds() image.Rectangle { return image.Rect(0, 0, p.width, p.height) }

// Stride returns the distance in bytes between two consecutive rows.
func (p *Image) Stride() int { return p.stride }

func (p *Image) At(x, y int) color.Color {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return color.NRGBA{}
	}
	switch p.format {
	case Binary:
		if p.data[y*p.stride+x/8]&(0x80>>(x%8)) != 0 {
			return color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF}
		}
		if p.transparency != Opaque {
			return color.NRGBA{}
		}
		return color.NRGBA{A: 0xFF}
	case Grayscale:
		g := p.data[y*p.stride+x]
		switch p.transparency {
		case ChromaKey:
			if g == 1 {
				return color.NRGBA{}
			}
		case AlphaChannel:
			return color.NRGBA{A: g}
		}
		return color.NRGBA{g, g, g, 0xFF}
	case RGB565:
		pos := y*p.stride + x*p.pixel
		rgb := uint16(p.data[pos])<<8 | uint16(p.data[pos+1])
		r := uint8(rgb >> 11)
		g := uint8(rgb >> 5 & 0x3F)
		b := uint8(rgb & 0x1F)
		a := uint8(0xFF)
		switch p.transparency {
		case AlphaChannel:
			a = p.data[pos+2]
		case ChromaKey:
			if rgb == 0x0020 {
				a = 0
			}
		}
		return color.NRGBA{r<<3 | r>>2, g<<2 | g>>4, b<<3 | b>>2, a}
	case RGB:
		pos := y*p.stride + x*p.pixel
		r, g, b := p.data[pos], p.data[pos+1], p.data[pos+2]
		a := uint8(0xFF)
		switch p.transparency {
		case AlphaChannel:
			a = p.data[pos+3]
		case ChromaKey:
			if r == 0 && g == 1 && b == 0 {
				a = 0
			}
		}
		return color.NRGBA{r, g, b, a}
	}
	return color.NRGBA{}
}
