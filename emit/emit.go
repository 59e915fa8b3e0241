/*
Package emit writes encoded image buffers in the forms the firmware build
consumes: raw binary blobs and C header fragments with the pixel data in a
PROGMEM byte array.
*/
package emit

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"fwimg/pix"
)

const bytesPerLine = 12

// Raw writes just the packed pixel data.
func Raw(w io.Writer, res *pix.Result) error {
	_, err := w.Write(res.Data)
	return err
}

// CArray writes a self-contained C header holding the pixel data and the
// metadata macros needed to construct the image on the device.
func CArray(w io.Writer, name string, res *pix.Result) error {
	b := bufio.NewWriter(w)

	macro := strings.ToUpper(name)
	fmt.Fprintf(b, "// %s: %dx%d %s, %s, %d frame(s).\n", name,
		res.Width, res.Height, res.Format, res.Transparency, res.FrameCount)
	fmt.Fprintf(b, "// Generated by fwimg. Do not edit.\n")
	fmt.Fprintf(b, "#pragma once\n\n#include <stdint.h>\n\n")
	fmt.Fprintf(b, "#define %s_WIDTH %d\n", macro, res.Width)
	fmt.Fprintf(b, "#define %s_HEIGHT %d\n", macro, res.Height)
	fmt.Fprintf(b, "#define %s_FRAMES %d\n", macro, res.FrameCount)
	fmt.Fprintf(b, "#define %s_TYPE %d // IMAGE_TYPE_%s\n", macro, res.Format, res.Format)
	fmt.Fprintf(b, "#define %s_TRANSPARENCY %d // TRANSPARENCY_%s\n", macro,
		res.Transparency, strings.ToUpper(res.Transparency.String()))
	fmt.Fprintf(b, "\nstatic const uint8_t %s[%d] PROGMEM = {", name, len(res.Data))

	for i, v := range res.Data {
		if i%bytesPerLine == 0 {
			fmt.Fprintf(b, "\n   ")
		}
		fmt.Fprintf(b, " 0x%02x,", v)
	}

	fmt.Fprintf(b, "\n};\n")
	return b.Flush()
}

// Identifier converts an image id into a safe C identifier.
func Identifier(id string) string {
	var sb strings.Builder
	for i, r := range id {
		switch {
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '_':
			sb.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				sb.WriteByte('_')
			}
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}
