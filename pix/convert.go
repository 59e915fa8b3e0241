package pix

import (
	"image"
	"image/color"
	"image/draw"
)

func toNRGBA(m image.Image) *image.NRGBA {
	if p, ok := m.(*image.NRGBA); ok && p.Rect.Min == (image.Point{}) {
		return p
	}
	b := m.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, m, b.Min, draw.Src)
	return dst
}

// isAlphaOnly reports whether the color channels carry no information, so
// that only the alpha channel is meaningful.
func isAlphaOnly(m *image.NRGBA) bool {
	translucent := false
	for y := 0; y < m.Rect.Dy(); y++ {
		row := m.Pix[y*m.Stride : y*m.Stride+m.Rect.Dx()*4]
		for x := 0; x < len(row); x += 4 {
			if row[x] != 0 || row[x+1] != 0 || row[x+2] != 0 {
				return false
			}
			if row[x+3] != 0xFF {
				translucent = true
			}
		}
	}
	return translucent
}

// alphaChannel extracts the alpha channel as a grayscale image.
func alphaChannel(m *image.NRGBA) *image.Gray {
	dst := image.NewGray(m.Rect)
	for y := 0; y < m.Rect.Dy(); y++ {
		for x := 0; x < m.Rect.Dx(); x++ {
			dst.Pix[y*dst.Stride+x] = m.Pix[y*m.Stride+x*4+3]
		}
	}
	return dst
}

// luma converts to grayscale using the ITU-R 601-2 weights, rounded.
func luma(r, g, b uint8) uint8 {
	return uint8((19595*uint32(r) + 38470*uint32(g) + 7471*uint32(b) + 1<<15) >> 16)
}

// grayscale reduces the color channels to luma, dropping the alpha channel.
// A translucent white pixel stays white.
func grayscale(m *image.NRGBA) *image.Gray {
	dst := image.NewGray(m.Rect)
	for y := 0; y < m.Rect.Dy(); y++ {
		for x := 0; x < m.Rect.Dx(); x++ {
			p := m.Pix[y*m.Stride+x*4:]
			dst.Pix[y*dst.Stride+x] = luma(p[0], p[1], p[2])
		}
	}
	return dst
}

var monoPalette = color.Palette{color.Gray{0x00}, color.Gray{0xFF}}

// monochrome reduces an image to 1 bit per pixel. Palette index 1 is white.
func monochrome(m image.Image, dither Dither) *image.Paletted {
	b := m.Bounds()
	dst := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), monoPalette)
	if dither == DitherFloydSteinberg {
		draw.FloydSteinberg.Draw(dst, dst.Rect, m, b.Min)
	} else {
		draw.Draw(dst, dst.Rect, m, b.Min, draw.Src)
	}
	return dst
}
