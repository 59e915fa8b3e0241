package emit

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fwimg/pix"
)

func result() *pix.Result {
	return &pix.Result{
		Data:         []byte{0xAB, 0x12, 0xCD, 0x34},
		Width:        2,
		Height:       1,
		Format:       pix.RGB565,
		Transparency: pix.ChromaKey,
		FrameCount:   1,
	}
}

func TestRaw(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Raw(&buf, result()))
	assert.Equal(t, []byte{0xAB, 0x12, 0xCD, 0x34}, buf.Bytes())
}

func TestCArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CArray(&buf, "boot_logo", result()))

	out := buf.String()
	assert.Contains(t, out, "#define BOOT_LOGO_WIDTH 2")
	assert.Contains(t, out, "#define BOOT_LOGO_HEIGHT 1")
	assert.Contains(t, out, "#define BOOT_LOGO_FRAMES 1")
	assert.Contains(t, out, "// IMAGE_TYPE_RGB565")
	assert.Contains(t, out, "// TRANSPARENCY_CHROMA_KEY")
	assert.Contains(t, out, "static const uint8_t boot_logo[4] PROGMEM = {")
	assert.Contains(t, out, "0xab, 0x12, 0xcd, 0x34,")
}

func TestIdentifier(t *testing.T) {
	assert.Equal(t, "boot_logo", Identifier("boot_logo"))
	assert.Equal(t, "boot_logo_png", Identifier("boot-logo.png"))
	assert.Equal(t, "_1up", Identifier("1up"))
}
