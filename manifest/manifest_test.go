package manifest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fwimg/pix"
	"fwimg/source"
)

func parse(t *testing.T, doc string) []Image {
	t.Helper()
	images, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return images
}

func TestParse(t *testing.T) {
	images := parse(t, `
[[images]]
id = "boot_logo"
file = "logo.png"
type = "rgb565"
transparency = "alpha_channel"
byte_order = "little_endian"
resize = [120, 80]
invert_alpha = true
`)
	require.Len(t, images, 1)

	img := images[0]
	assert.Equal(t, "boot_logo", img.ID)
	assert.Equal(t, source.Ref{Kind: source.Local, Value: "logo.png"}, img.Ref)
	assert.Equal(t, pix.Job{
		Format:       pix.RGB565,
		Transparency: pix.AlphaChannel,
		ByteOrder:    pix.LittleEndian,
		InvertAlpha:  true,
		MaxWidth:     120,
		MaxHeight:    80,
	}, img.Job)
}

func TestParseDefaults(t *testing.T) {
	images := parse(t, `
[defaults]
type = "grayscale"
transparency = "chroma_key"
dither = "floydsteinberg"

[[images]]
id = "a"
file = "a.png"

[[images]]
id = "b"
file = "b.png"
transparency = "opaque"
`)
	require.Len(t, images, 2)

	assert.Equal(t, pix.Grayscale, images[0].Job.Format)
	assert.Equal(t, pix.ChromaKey, images[0].Job.Transparency)
	assert.Equal(t, pix.DitherFloydSteinberg, images[0].Job.Dither)

	// Explicit settings win over defaults.
	assert.Equal(t, pix.Opaque, images[1].Job.Transparency)
}

func TestParseDefaultByteOrderIgnored(t *testing.T) {
	// A defaulted byte order only applies to formats that have one; it
	// must not fail validation for the grayscale image.
	images := parse(t, `
[defaults]
byte_order = "little_endian"

[[images]]
id = "gray"
file = "a.png"
type = "grayscale"

[[images]]
id = "color"
file = "b.png"
type = "rgb565"
`)
	require.Len(t, images, 2)
	assert.Equal(t, pix.ByteOrderDefault, images[0].Job.ByteOrder)
	assert.Equal(t, pix.LittleEndian, images[1].Job.ByteOrder)
}

func TestParseExplicitByteOrderRejected(t *testing.T) {
	_, err := Parse(strings.NewReader(`
[[images]]
id = "gray"
file = "a.png"
type = "grayscale"
byte_order = "little_endian"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "byte order")
}

func TestParseRemovedType(t *testing.T) {
	_, err := Parse(strings.NewReader(`
[[images]]
id = "old"
file = "a.png"
type = "RGBA"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "replace with 'type: rgb' and 'transparency: alpha_channel'")
}

func TestParseRequiresType(t *testing.T) {
	_, err := Parse(strings.NewReader(`
[[images]]
id = "a"
file = "a.png"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type is required")
}

func TestParseDuplicateID(t *testing.T) {
	_, err := Parse(strings.NewReader(`
[[images]]
id = "a"
file = "a.png"
type = "rgb"

[[images]]
id = "a"
file = "b.png"
type = "rgb"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id")
}

func TestParseSources(t *testing.T) {
	images := parse(t, `
[defaults]
type = "rgb"

[[images]]
id = "local"
file = "img/a.png"

[[images]]
id = "web"
url = "https://example.com/a.png"

[[images]]
id = "icon"
icon = "mdi:thermometer"

[[images]]
id = "card"
sd_path = "/images/photo.bmp"
`)
	require.Len(t, images, 4)
	assert.Equal(t, source.Local, images[0].Ref.Kind)
	assert.Equal(t, source.Web, images[1].Ref.Kind)
	assert.Equal(t, source.Ref{Kind: source.Icon, Value: "thermometer", Set: "mdi"}, images[2].Ref)
	assert.Equal(t, source.SDCard, images[3].Ref.Kind)
}

func TestParseSourceConflicts(t *testing.T) {
	_, err := Parse(strings.NewReader(`
[[images]]
id = "a"
file = "a.png"
url = "https://example.com/a.png"
type = "rgb"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of")
}

func TestParseShorthand(t *testing.T) {
	ref, err := ParseShorthand("https://example.com/logo.png")
	require.NoError(t, err)
	assert.Equal(t, source.Web, ref.Kind)

	ref, err = ParseShorthand("mdil:home")
	require.NoError(t, err)
	assert.Equal(t, source.Ref{Kind: source.Icon, Value: "home", Set: "mdil"}, ref)

	_, err = ParseShorthand("mdi:not a valid name")
	assert.Error(t, err)

	// An unknown prefix is just a path with a colon in it.
	ref, err = ParseShorthand("c:/images/logo.png")
	require.NoError(t, err)
	assert.Equal(t, source.Local, ref.Kind)
}

func TestParseResizeValidation(t *testing.T) {
	_, err := Parse(strings.NewReader(`
[[images]]
id = "a"
file = "a.png"
type = "rgb"
resize = [120]
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resize")
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	assert.Error(t, err)
}
