package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"fwimg"
	"fwimg/emit"
	"fwimg/manifest"
	"fwimg/pix"
	"fwimg/source"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "fwimg")
	}
	return ".fwimg-cache"
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func outputFormat(s string) (fwimg.OutputFormat, error) {
	switch s {
	case "c":
		return fwimg.OutputC, nil
	case "bin":
		return fwimg.OutputRaw, nil
	case "both":
		return fwimg.OutputBoth, nil
	}
	return 0, fmt.Errorf("unknown output format %q", s)
}

func main() {
	app := cli.NewApp()

	app.Name = "fwimg"
	app.Usage = "Firmware display image asset encoder"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "cache",
			EnvVars: []string{"FWIMG_CACHE"},
			Value:   defaultCacheDir(),
			Usage:   "directory for downloaded assets",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "build",
			Usage:     "Encode every image in a manifest",
			ArgsUsage: "MANIFEST",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "out",
					Value: ".",
					Usage: "output directory",
				},
				&cli.StringFlag{
					Name:  "format",
					Value: "c",
					Usage: "output files to write: c, bin or both",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				format, err := outputFormat(c.String("format"))
				if err != nil {
					return cli.Exit(err, 1)
				}

				images, err := manifest.ParseFile(c.Args().First())
				if err != nil {
					return cli.Exit(err, 1)
				}

				logger := newLogger(c.Bool("verbose"))

				fetcher, err := source.NewFetcher(c.String("cache"), logger)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer fetcher.Close()

				b := fwimg.New(fetcher, logger)
				if err := b.Build(context.Background(), images, c.String("out"), format); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "encode",
			Usage:     "Encode a single image",
			ArgsUsage: "FILE|URL|SET:ICON",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "type",
					Usage:    "pixel format: binary, grayscale, rgb565 or rgb",
					Required: true,
				},
				&cli.StringFlag{
					Name:  "transparency",
					Value: "opaque",
					Usage: "transparency mode: opaque, chroma_key or alpha_channel",
				},
				&cli.StringFlag{
					Name:  "dither",
					Value: "none",
					Usage: "dither method: none or floydsteinberg",
				},
				&cli.StringFlag{
					Name:  "byte-order",
					Usage: "RGB565 byte order: big_endian or little_endian",
				},
				&cli.StringFlag{
					Name:  "resize",
					Usage: "bounding size as WIDTHxHEIGHT",
				},
				&cli.BoolFlag{
					Name:  "invert-alpha",
					Usage: "invert the alpha channel (or colors, for monochrome formats)",
				},
				&cli.BoolFlag{
					Name:  "animated",
					Usage: "encode all frames of an animated source",
				},
				&cli.StringFlag{
					Name:  "id",
					Usage: "identifier for the generated array",
				},
				&cli.StringFlag{
					Name:  "out",
					Usage: "output file; a .bin suffix selects raw output",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				job, err := jobFromFlags(c)
				if err != nil {
					return cli.Exit(err, 1)
				}

				ref, err := manifest.ParseShorthand(c.Args().First())
				if err != nil {
					return cli.Exit(err, 1)
				}

				logger := newLogger(c.Bool("verbose"))

				fetcher, err := source.NewFetcher(c.String("cache"), logger)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer fetcher.Close()

				src, err := fetcher.Resolve(ref, job.MaxWidth, job.MaxHeight)
				if err != nil {
					return cli.Exit(err, 1)
				}

				res, err := pix.Encode(job, src, logger)
				if err != nil {
					return cli.Exit(err, 1)
				}

				id := c.String("id")
				if id == "" {
					base := filepath.Base(c.Args().First())
					id = emit.Identifier(strings.TrimSuffix(base, filepath.Ext(base)))
				}

				out := c.String("out")
				if out == "" {
					out = id + ".h"
				}

				f, err := os.Create(out)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer f.Close()

				if filepath.Ext(out) == ".bin" {
					err = emit.Raw(f, res)
				} else {
					err = emit.CArray(f, id, res)
				}
				if err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func jobFromFlags(c *cli.Context) (pix.Job, error) {
	var job pix.Job
	var err error

	if job.Format, err = pix.ParseFormat(c.String("type")); err != nil {
		return job, err
	}
	if job.Transparency, err = pix.ParseTransparency(c.String("transparency")); err != nil {
		return job, err
	}
	if job.Dither, err = pix.ParseDither(c.String("dither")); err != nil {
		return job, err
	}
	if job.ByteOrder, err = pix.ParseByteOrder(c.String("byte-order")); err != nil {
		return job, err
	}
	job.InvertAlpha = c.Bool("invert-alpha")
	job.Animated = c.Bool("animated")

	if resize := c.String("resize"); resize != "" {
		if _, err := fmt.Sscanf(resize, "%dx%d", &job.MaxWidth, &job.MaxHeight); err != nil {
			return job, fmt.Errorf("resize must be WIDTHxHEIGHT, got %q", resize)
		}
	}

	return job, job.Validate()
}
