/*
Package source opens raster images for encoding, wherever they come from:
local files, downloaded web assets, downloaded icon sets, or SD card paths
resolved on the device at runtime.
*/
package source

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"os"

	_ "image/jpeg"
	_ "image/png"

	"image/gif"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"fwimg/pix"
)

// ErrNotFound is returned when a referenced image does not exist.
var ErrNotFound = errors.New("image not found")

// Kind says where an image comes from.
type Kind int

const (
	// Local is a file on the build host.
	Local Kind = iota
	// Web is a URL downloaded at build time.
	Web
	// Icon is a named icon downloaded from one of the known icon sets.
	Icon
	// SDCard is a path on the device's SD card, decoded at runtime. It
	// is never opened on the build host.
	SDCard
)

// Ref locates a raster source.
type Ref struct {
	Kind Kind

	// Value is a path, URL, or icon name depending on Kind.
	Value string

	// Set names the icon collection for Kind == Icon.
	Set string
}

func (r Ref) String() string {
	if r.Kind == Icon {
		return r.Set + ":" + r.Value
	}
	return r.Value
}

type still struct {
	m image.Image
}

func (s still) FrameCount() int { return 1 }

func (s still) Frame(i int) (image.Image, error) {
	if i != 0 {
		return nil, fmt.Errorf("frame %d of a still image", i)
	}
	return s.m, nil
}

// animation serves the frames of a GIF composited onto the full canvas, so
// every frame has the image's nominal size regardless of per-frame crops.
// Each frame's disposal byte decides what the next frame composites over.
type animation struct {
	g      *gif.GIF
	canvas *image.NRGBA

	// saved holds the canvas from before a restore-to-previous frame
	// was drawn.
	saved *image.NRGBA
	next  int
}

func (a *animation) FrameCount() int { return len(a.g.Image) }

func (a *animation) disposal(i int) byte {
	if i < len(a.g.Disposal) {
		return a.g.Disposal[i]
	}
	return gif.DisposalNone
}

// dispose clears up after frame i before the next one is drawn.
func (a *animation) dispose(i int) {
	switch a.disposal(i) {
	case gif.DisposalBackground:
		draw.Draw(a.canvas, a.g.Image[i].Bounds(), image.Transparent, image.Point{}, draw.Src)
	case gif.DisposalPrevious:
		if a.saved != nil {
			a.canvas = a.saved
			a.saved = nil
		}
	}
}

func (a *animation) Frame(i int) (image.Image, error) {
	if i < 0 || i >= len(a.g.Image) {
		return nil, fmt.Errorf("frame %d of %d", i, len(a.g.Image))
	}
	if i < a.next {
		a.canvas = image.NewNRGBA(a.canvas.Rect)
		a.saved = nil
		a.next = 0
	}
	for ; a.next <= i; a.next++ {
		if a.next > 0 {
			a.dispose(a.next - 1)
		}
		if a.disposal(a.next) == gif.DisposalPrevious {
			saved := image.NewNRGBA(a.canvas.Rect)
			copy(saved.Pix, a.canvas.Pix)
			a.saved = saved
		}
		frame := a.g.Image[a.next]
		b := frame.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := frame.At(x, y)
				if _, _, _, alpha := c.RGBA(); alpha != 0 {
					a.canvas.Set(x, y, c)
				}
			}
		}
	}
	dup := image.NewNRGBA(a.canvas.Rect)
	copy(dup.Pix, a.canvas.Pix)
	return dup, nil
}

// Open reads an image file and returns it as a frame source. GIF files
// expose all of their frames; anything else is a single frame. SVG files
// are rasterized externally, at the given target size if it is non-zero.
func Open(path string, maxW, maxH int) (pix.Source, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}

	if isSVG(b) {
		m, err := rasterizeSVG(path, maxW, maxH)
		if err != nil {
			return nil, err
		}
		return still{m}, nil
	}

	if bytes.HasPrefix(b, []byte("GIF8")) {
		g, err := gif.DecodeAll(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		canvas := image.NewNRGBA(image.Rect(0, 0, g.Config.Width, g.Config.Height))
		return &animation{g: g, canvas: canvas}, nil
	}

	m, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return still{m}, nil
}
