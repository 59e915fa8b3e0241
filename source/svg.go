package source

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strconv"
)

const svgSniffLen = 1024

func isSVG(b []byte) bool {
	if len(b) > svgSniffLen {
		b = b[:svgSniffLen]
	}
	return bytes.Contains(b, []byte("<svg"))
}

// rasterizeSVG renders an SVG file to a raster image using rsvg-convert.
// When a target size is given the vector is rendered directly at that size,
// so no later rescale is needed.
func rasterizeSVG(path string, width, height int) (image.Image, error) {
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		return nil, fmt.Errorf("SVG images require rsvg-convert (librsvg) on the PATH: %w", err)
	}

	args := []string{"--format", "png"}
	if width > 0 && height > 0 {
		args = append(args,
			"--width", strconv.Itoa(width),
			"--height", strconv.Itoa(height),
			"--keep-aspect-ratio",
		)
	}
	args = append(args, path)

	cmd := exec.Command("rsvg-convert", args...)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rsvg-convert %s: %w: %s", path, err, stderr.String())
	}

	m, err := png.Decode(&out)
	if err != nil {
		return nil, fmt.Errorf("rasterize %s: %w", path, err)
	}
	return m, nil
}
