package pix

import (
	"fmt"
	"image"
	"log/slog"

	xdraw "golang.org/x/image/draw"
)

// Over this size an unresized image triggers a warning.
const bigImageSize = 500

// encoder packs pixels into the output buffer. One encoder instance covers
// all frames of a job; the buffer is sized once at construction and is
// never reallocated. Pixels must arrive in raster order, with endRow called
// after every row.
type encoder struct {
	format       Format
	transparency Transparency
	invertAlpha  bool
	bigEndian    bool

	buf   []byte
	index int
	bitno int
}

func newEncoder(job Job, width, totalRows int) *encoder {
	return &encoder{
		format:       job.Format,
		transparency: job.Transparency,
		invertAlpha:  job.InvertAlpha,
		bigEndian:    job.ByteOrder != LittleEndian,
		buf:          make([]byte, StorageWidth(job.Format, job.Transparency, width)*totalRows),
	}
}

func (e *encoder) encodeBit(bit bool) {
	if e.invertAlpha {
		bit = !bit
	}
	if bit {
		e.buf[e.index] |= 0x80 >> (e.bitno % 8)
	}
	e.bitno++
	if e.bitno == 8 {
		e.bitno = 0
		e.index++
	}
}

func (e *encoder) encodeGray(b, a uint8) {
	if e.transparency == ChromaKey {
		// 1 is the reserved transparent value; a real 1 becomes 0.
		if b == 1 {
			b = 0
		}
		if a != 0xFF {
			b = 1
		}
	}
	if e.invertAlpha {
		// Color and key share the single byte, so inverting the
		// alpha means inverting the color value.
		b ^= 0xFF
	}
	if e.transparency == AlphaChannel && a != 0xFF {
		b = a
	}
	e.buf[e.index] = b
	e.index++
}

func (e *encoder) encodeRGB565(r, g, b, a uint8) {
	r >>= 3
	g >>= 2
	b >>= 3
	if e.transparency == ChromaKey {
		if r == 0 && g == 1 && b == 0 {
			// Collides with the reserved key; nudge it off.
			g = 0
		} else if a < 0x80 {
			r, g, b = 0, 1, 0
		}
	}
	rgb := uint16(r)<<11 | uint16(g)<<5 | uint16(b)
	if e.bigEndian {
		e.buf[e.index] = byte(rgb >> 8)
		e.buf[e.index+1] = byte(rgb)
	} else {
		e.buf[e.index] = byte(rgb)
		e.buf[e.index+1] = byte(rgb >> 8)
	}
	e.index += 2
	if e.transparency == AlphaChannel {
		if e.invertAlpha {
			a ^= 0xFF
		}
		e.buf[e.index] = a
		e.index++
	}
}

func (e *encoder) encodeRGB(r, g, b, a uint8) {
	if e.transparency == ChromaKey {
		if r == 0 && g == 1 && b == 0 {
			g = 0
		} else if a < 0x80 {
			r, g, b = 0, 1, 0
		}
	}
	e.buf[e.index] = r
	e.buf[e.index+1] = g
	e.buf[e.index+2] = b
	e.index += 3
	if e.transparency == AlphaChannel {
		if e.invertAlpha {
			a ^= 0xFF
		}
		e.buf[e.index] = a
		e.index++
	}
}

// endRow pads binary rows out to a byte boundary. It is a no-op for the
// byte-aligned formats.
func (e *encoder) endRow() {
	if e.bitno != 0 {
		e.bitno = 0
		e.index++
	}
}

// writeFrame converts one frame to the encoder's format and packs it. For
// grayscale sources that turn out to be alpha-only the transparency mode is
// switched to alpha_channel, which sticks for the rest of the job.
func (e *encoder) writeFrame(m image.Image, dither Dither, logger *slog.Logger) {
	switch e.format {
	case Binary:
		src := toNRGBA(m)
		var mono *image.Paletted
		if isAlphaOnly(src) {
			mono = monochrome(alphaChannel(src), dither)
		} else {
			// Threshold luma with the alpha channel dropped, so a
			// translucent light pixel stays a 1-bit.
			mono = monochrome(grayscale(src), dither)
		}
		for y := 0; y < mono.Rect.Dy(); y++ {
			for x := 0; x < mono.Rect.Dx(); x++ {
				e.encodeBit(mono.ColorIndexAt(x, y) != 0)
			}
			e.endRow()
		}
	case Grayscale:
		src := toNRGBA(m)
		if isAlphaOnly(src) {
			if e.transparency != AlphaChannel {
				logger.Warn("grayscale image is alpha only; overriding transparency",
					"transparency", e.transparency)
				e.transparency = AlphaChannel
			}
			for y := 0; y < src.Rect.Dy(); y++ {
				for x := 0; x < src.Rect.Dx(); x++ {
					e.encodeGray(src.Pix[y*src.Stride+x*4+3], 0xFF)
				}
				e.endRow()
			}
			return
		}
		for y := 0; y < src.Rect.Dy(); y++ {
			for x := 0; x < src.Rect.Dx(); x++ {
				p := src.Pix[y*src.Stride+x*4:]
				e.encodeGray(luma(p[0], p[1], p[2]), p[3])
			}
			e.endRow()
		}
	case RGB565:
		src := toNRGBA(m)
		for y := 0; y < src.Rect.Dy(); y++ {
			for x := 0; x < src.Rect.Dx(); x++ {
				p := src.Pix[y*src.Stride+x*4:]
				e.encodeRGB565(p[0], p[1], p[2], p[3])
			}
			e.endRow()
		}
	case RGB:
		src := toNRGBA(m)
		for y := 0; y < src.Rect.Dy(); y++ {
			for x := 0; x < src.Rect.Dx(); x++ {
				p := src.Pix[y*src.Stride+x*4:]
				e.encodeRGB(p[0], p[1], p[2], p[3])
			}
			e.endRow()
		}
	}
}

// fitSize shrinks (w, h) to fit within (maxW, maxH) preserving the aspect
// ratio. Images are never upscaled.
func fitSize(w, h, maxW, maxH int) (int, int) {
	if maxW > w {
		maxW = w
	}
	if maxH > h {
		maxH = h
	}
	ratio := float64(maxW) / float64(w)
	if r := float64(maxH) / float64(h); r < ratio {
		ratio = r
	}
	return int(float64(w) * ratio), int(float64(h) * ratio)
}

func scaleTo(m image.Image, w, h int) image.Image {
	b := m.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return m
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Rect, m, b, xdraw.Src, nil)
	return dst
}

// Encode runs one job against a raster source and returns the packed
// buffer. Frames are encoded back-to-back into a single buffer in raster
// order. The returned transparency is the one actually encoded, which for
// alpha-only grayscale sources may differ from the job's request.
func Encode(job Job, src Source, logger *slog.Logger) (*Result, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	first, err := src.Frame(0)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	w, h := first.Bounds().Dx(), first.Bounds().Dy()
	if job.MaxWidth > 0 {
		w, h = fitSize(w, h, job.MaxWidth, job.MaxHeight)
	} else if w > bigImageSize || h > bigImageSize {
		logger.Warn("image is very big; consider resizing", "width", w, "height", h)
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("image size %dx%d is not usable", w, h)
	}

	frameCount := 1
	if job.Animated {
		if frameCount = src.FrameCount(); frameCount <= 1 {
			logger.Warn("image has no animation frames")
			frameCount = 1
		}
	}

	enc := newEncoder(job, w, h*frameCount)
	for i := 0; i < frameCount; i++ {
		m := first
		if i > 0 {
			if m, err = src.Frame(i); err != nil {
				return nil, fmt.Errorf("read frame %d: %w", i, err)
			}
		}
		enc.writeFrame(scaleTo(m, w, h), job.Dither, logger)
	}

	return &Result{
		Data:         enc.buf,
		Width:        w,
		Height:       h,
		Format:       job.Format,
		Transparency: enc.transparency,
		FrameCount:   frameCount,
	}, nil
}
