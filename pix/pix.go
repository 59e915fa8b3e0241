/*
Package pix implements the packed pixel formats understood by the display
firmware and the encoders that produce them.

Buffers are laid out row-major, with animation frames stored back-to-back so
that a buffer holds width * height * frames pixels. Four formats exist:

	BINARY     1 bit per pixel, most significant bit first. Each row is
	           padded to a byte boundary; rows never share a byte.
	GRAYSCALE  1 byte per pixel. With chroma_key transparency the value 1
	           is reserved to mean transparent; an opaque value of 1 is
	           stored as 0. With alpha_channel transparency the byte holds
	           the alpha value for translucent pixels.
	RGB565     2 bytes per pixel packed as (r>>3)<<11 | (g>>2)<<5 | b>>3,
	           big-endian unless configured otherwise. With alpha_channel
	           transparency a third alpha byte follows the pair. With
	           chroma_key transparency the quantized color (0, 1, 0) is
	           the reserved transparent value.
	RGB        3 bytes per pixel, r then g then b, plus a fourth alpha
	           byte with alpha_channel transparency. The reserved
	           chroma key is the color (0, 1, 0).
*/
package pix

import (
	"fmt"
	"strings"
)

// Format identifies one of the on-device pixel formats. The numeric values
// match the firmware's ImageType enum and end up in generated headers.
type Format uint8

const (
	Binary Format = iota
	Grayscale
	RGB
	RGB565
)

// Transparency selects how transparent pixels are represented. The numeric
// values match the firmware's TransparencyType enum.
type Transparency uint8

const (
	Opaque Transparency = iota
	ChromaKey
	AlphaChannel
)

// Dither selects the error diffusion used when reducing to 1 bit.
type Dither uint8

const (
	DitherNone Dither = iota
	DitherFloydSteinberg
)

// ByteOrder controls how RGB565 words are written. The zero value leaves
// the format default (big-endian) in effect.
type ByteOrder uint8

const (
	ByteOrderDefault ByteOrder = iota
	BigEndian
	LittleEndian
)

type formatInfo struct {
	name string

	// Legal transparency modes for the format.
	transparency [3]bool

	// True if invert_alpha is valid without alpha_channel transparency;
	// for these formats it inverts the color values instead.
	invertColor bool

	byteOrder bool
}

var formats = [...]formatInfo{
	Binary: {
		name:         "BINARY",
		transparency: [3]bool{Opaque: true, ChromaKey: true},
		invertColor:  true,
	},
	Grayscale: {
		name:         "GRAYSCALE",
		transparency: [3]bool{Opaque: true, ChromaKey: true, AlphaChannel: true},
		invertColor:  true,
	},
	RGB: {
		name:         "RGB",
		transparency: [3]bool{Opaque: true, ChromaKey: true, AlphaChannel: true},
	},
	RGB565: {
		name:         "RGB565",
		transparency: [3]bool{Opaque: true, ChromaKey: true, AlphaChannel: true},
		byteOrder:    true,
	},
}

// Formats removed in favour of a format plus transparency combination. The
// replacement text is kept verbatim for compatibility with old manifests.
var replacedFormats = map[string]string{
	"TRANSPARENT_BINARY": "'type: binary' and 'transparency: chroma_key'",
	"RGB24":              "'type: rgb'",
	"RGBA":               "'type: rgb' and 'transparency: alpha_channel'",
}

func (f Format) String() string {
	if int(f) < len(formats) {
		return formats[f].name
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

func (t Transparency) String() string {
	switch t {
	case Opaque:
		return "opaque"
	case ChromaKey:
		return "chroma_key"
	case AlphaChannel:
		return "alpha_channel"
	}
	return fmt.Sprintf("Transparency(%d)", uint8(t))
}

// ParseFormat maps a manifest type name to a Format. Removed format names
// are rejected with a pointer at their replacement.
func ParseFormat(s string) (Format, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if replace, ok := replacedFormats[name]; ok {
		return 0, fmt.Errorf("image type %q is removed; replace with %s", name, replace)
	}
	for f, info := range formats {
		if info.name == name {
			return Format(f), nil
		}
	}
	return 0, fmt.Errorf("unknown image type %q", s)
}

// ParseTransparency maps a manifest transparency name to a Transparency.
func ParseTransparency(s string) (Transparency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "opaque", "":
		return Opaque, nil
	case "chroma_key":
		return ChromaKey, nil
	case "alpha_channel":
		return AlphaChannel, nil
	}
	return 0, fmt.Errorf("unknown transparency %q", s)
}

// ParseDither maps a manifest dither name to a Dither.
func ParseDither(s string) (Dither, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NONE", "":
		return DitherNone, nil
	case "FLOYDSTEINBERG":
		return DitherFloydSteinberg, nil
	}
	return 0, fmt.Errorf("unknown dither method %q", s)
}

// ParseByteOrder maps a manifest byte order name to a ByteOrder.
func ParseByteOrder(s string) (ByteOrder, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return ByteOrderDefault, nil
	case "BIG_ENDIAN":
		return BigEndian, nil
	case "LITTLE_ENDIAN":
		return LittleEndian, nil
	}
	return 0, fmt.Errorf("unknown byte order %q", s)
}

// SupportsByteOrder reports whether the format has a configurable byte
// order. Only RGB565 does.
func (f Format) SupportsByteOrder() bool {
	return int(f) < len(formats) && formats[f].byteOrder
}

// StorageWidth returns the number of bytes needed to store one row of width
// pixels in the given format and transparency mode.
func StorageWidth(f Format, t Transparency, width int) int {
	switch f {
	case Binary:
		return (width + 7) / 8
	case Grayscale:
		return width
	case RGB565:
		if t == AlphaChannel {
			return width * 3
		}
		return width * 2
	case RGB:
		if t == AlphaChannel {
			return width * 4
		}
		return width * 3
	}
	return 0
}
