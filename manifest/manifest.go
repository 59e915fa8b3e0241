/*
Package manifest reads the TOML file describing which images to build and
how to encode each one. A manifest holds an optional [defaults] table and a
list of [[images]]; any option left off an image falls back to the default.
*/
package manifest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"fwimg/pix"
	"fwimg/source"
)

// Options are the per-image settings. All of them may also appear in the
// [defaults] table.
type Options struct {
	Type         string `toml:"type"`
	Transparency string `toml:"transparency"`
	Dither       string `toml:"dither"`
	InvertAlpha  *bool  `toml:"invert_alpha"`
	ByteOrder    string `toml:"byte_order"`
	Resize       []int  `toml:"resize"`
	Animated     *bool  `toml:"animated"`
}

// Entry is one [[images]] table. Exactly one of File, URL, Icon or SDPath
// must be set; File also accepts URL and icon shorthands.
type Entry struct {
	ID     string `toml:"id"`
	File   string `toml:"file"`
	URL    string `toml:"url"`
	Icon   string `toml:"icon"`
	SDPath string `toml:"sd_path"`
	Options
}

type document struct {
	Defaults Options `toml:"defaults"`
	Images   []Entry `toml:"images"`
}

// Image is a fully resolved manifest entry: a validated encoding job plus
// the source it reads from.
type Image struct {
	ID  string
	Job pix.Job
	Ref source.Ref
}

var (
	idPattern   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	iconPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
)

// ParseFile reads and resolves the manifest at path.
func ParseFile(path string) ([]Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads and resolves a manifest. Every entry is validated; the first
// invalid entry fails the whole parse.
func Parse(r io.Reader) ([]Image, error) {
	var doc document
	if err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if len(doc.Images) == 0 {
		return nil, errors.New("manifest has no images")
	}

	images := make([]Image, 0, len(doc.Images))
	seen := make(map[string]struct{}, len(doc.Images))
	for i, entry := range doc.Images {
		img, err := resolve(entry, doc.Defaults)
		if err != nil {
			return nil, fmt.Errorf("images[%d] (%s): %w", i, entry.ID, err)
		}
		if _, ok := seen[img.ID]; ok {
			return nil, fmt.Errorf("images[%d]: duplicate id %q", i, img.ID)
		}
		seen[img.ID] = struct{}{}
		images = append(images, img)
	}
	return images, nil
}

func resolve(entry Entry, defaults Options) (Image, error) {
	if entry.ID == "" {
		return Image{}, errors.New("id is required")
	}
	if !idPattern.MatchString(entry.ID) {
		return Image{}, fmt.Errorf("id %q is not a valid identifier", entry.ID)
	}

	ref, err := parseRef(entry)
	if err != nil {
		return Image{}, err
	}

	opts := merged(entry.Options, defaults)
	if opts.Type == "" {
		return Image{}, errors.New("type is required either on the image or in defaults")
	}

	var job pix.Job
	if job.Format, err = pix.ParseFormat(opts.Type); err != nil {
		return Image{}, err
	}
	if job.Transparency, err = pix.ParseTransparency(opts.Transparency); err != nil {
		return Image{}, err
	}
	if job.Dither, err = pix.ParseDither(opts.Dither); err != nil {
		return Image{}, err
	}
	if job.ByteOrder, err = pix.ParseByteOrder(opts.ByteOrder); err != nil {
		return Image{}, err
	}
	if opts.InvertAlpha != nil {
		job.InvertAlpha = *opts.InvertAlpha
	}
	if opts.Animated != nil {
		job.Animated = *opts.Animated
	}
	if opts.Resize != nil {
		if len(opts.Resize) != 2 || opts.Resize[0] <= 0 || opts.Resize[1] <= 0 {
			return Image{}, fmt.Errorf("resize must be two positive dimensions, got %v", opts.Resize)
		}
		job.MaxWidth, job.MaxHeight = opts.Resize[0], opts.Resize[1]
	}

	if err := job.Validate(); err != nil {
		return Image{}, err
	}
	return Image{ID: entry.ID, Job: job, Ref: ref}, nil
}

// merged applies defaults to any option the entry leaves unset. A defaulted
// byte order is silently dropped for formats without byte order support so
// that one default can cover a mixed manifest.
func merged(o, d Options) Options {
	if o.Type == "" {
		o.Type = d.Type
	}
	if o.ByteOrder == "" && d.ByteOrder != "" {
		if f, err := pix.ParseFormat(o.Type); err == nil && f.SupportsByteOrder() {
			o.ByteOrder = d.ByteOrder
		}
	}
	if o.Transparency == "" {
		o.Transparency = d.Transparency
	}
	if o.Dither == "" {
		o.Dither = d.Dither
	}
	if o.InvertAlpha == nil {
		o.InvertAlpha = d.InvertAlpha
	}
	if o.Resize == nil {
		o.Resize = d.Resize
	}
	if o.Animated == nil {
		o.Animated = d.Animated
	}
	return o
}

func parseRef(entry Entry) (source.Ref, error) {
	set := 0
	for _, s := range []string{entry.File, entry.URL, entry.Icon, entry.SDPath} {
		if s != "" {
			set++
		}
	}
	if set != 1 {
		return source.Ref{}, errors.New("exactly one of file, url, icon or sd_path is required")
	}

	switch {
	case entry.URL != "":
		return source.Ref{Kind: source.Web, Value: entry.URL}, nil
	case entry.Icon != "":
		return parseIcon(entry.Icon)
	case entry.SDPath != "":
		return source.Ref{Kind: source.SDCard, Value: entry.SDPath}, nil
	}
	return ParseShorthand(entry.File)
}

// ParseShorthand interprets a file value, which may be a plain path, an
// http(s) URL, or an icon reference like "mdi:thermometer".
func ParseShorthand(value string) (source.Ref, error) {
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return source.Ref{Kind: source.Web, Value: value}, nil
	}
	if set, name, ok := strings.Cut(value, ":"); ok && source.IsIconSet(set) {
		return parseIcon(set + ":" + name)
	}
	return source.Ref{Kind: source.Local, Value: value}, nil
}

func parseIcon(value string) (source.Ref, error) {
	set, name, ok := strings.Cut(value, ":")
	if !ok || !source.IsIconSet(set) {
		return source.Ref{}, fmt.Errorf("unknown icon set in %q", value)
	}
	if !iconPattern.MatchString(name) {
		return source.Ref{}, fmt.Errorf("could not parse icon name from %q", value)
	}
	return source.Ref{Kind: source.Icon, Value: name, Set: set}, nil
}
