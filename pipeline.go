package fwimg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"fwimg/emit"
	"fwimg/manifest"
	"fwimg/pix"
	"fwimg/source"
)

const buildWorkers = 4

func (b *Builder) queueImages(ctx context.Context, images []manifest.Image) (<-chan manifest.Image, <-chan error) {
	out := make(chan manifest.Image)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		for _, img := range images {
			select {
			case out <- img:
			case <-ctx.Done():
				errc <- errors.New("build cancelled")
				return
			}
		}
	}()
	return out, errc
}

func (b *Builder) imageWorker(ctx context.Context, in <-chan manifest.Image, dir string, format OutputFormat) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for img := range in {
			if err := b.buildImage(img, dir, format); err != nil {
				errc <- fmt.Errorf("%s: %w", img.ID, err)
				return
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()
	return errc
}

func (b *Builder) buildImage(img manifest.Image, dir string, format OutputFormat) error {
	// SD card images are decoded on the device at runtime; there is
	// nothing to encode at build time.
	if img.Ref.Kind == source.SDCard {
		b.logger.Info("skipping build-time processing for SD card image", "id", img.ID, "path", img.Ref.Value)
		return nil
	}

	src, err := b.fetcher.Resolve(img.Ref, img.Job.MaxWidth, img.Job.MaxHeight)
	if err != nil {
		return err
	}

	res, err := pix.Encode(img.Job, src, b.logger.With("id", img.ID))
	if err != nil {
		return err
	}

	b.logger.Debug("encoded image", "id", img.ID,
		"width", res.Width, "height", res.Height,
		"format", res.Format, "bytes", len(res.Data), "frames", res.FrameCount)

	name := emit.Identifier(img.ID)
	if format == OutputC || format == OutputBoth {
		if err := writeFile(filepath.Join(dir, name+".h"), func(f *os.File) error {
			return emit.CArray(f, name, res)
		}); err != nil {
			return err
		}
	}
	if format == OutputRaw || format == OutputBoth {
		if err := writeFile(filepath.Join(dir, name+".bin"), func(f *os.File) error {
			return emit.Raw(f, res)
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Build encodes every image in the manifest, writing the outputs into dir.
// Images are independent jobs and are encoded concurrently.
func (b *Builder) Build(ctx context.Context, images []manifest.Image, dir string, format OutputFormat) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	in, errc := b.queueImages(ctx, images)
	errcList := []<-chan error{errc}

	for i := 0; i < buildWorkers; i++ {
		errcList = append(errcList, b.imageWorker(ctx, in, dir, format))
	}

	return waitForPipeline(errcList...)
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}
