/*
Package fwimg converts images into the packed pixel formats embedded into
microcontroller display firmware.
*/
package fwimg

import (
	"log/slog"

	"fwimg/source"
)

// OutputFormat selects what Build writes for each image.
type OutputFormat int

const (
	// OutputC writes a C header per image.
	OutputC OutputFormat = iota
	// OutputRaw writes a raw binary blob per image.
	OutputRaw
	// OutputBoth writes both.
	OutputBoth
)

// Builder encodes the images of a manifest into output files.
type Builder struct {
	fetcher *source.Fetcher
	logger  *slog.Logger
}

// New returns a Builder using the given asset fetcher.
func New(fetcher *source.Fetcher, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		fetcher: fetcher,
		logger:  logger,
	}
}
