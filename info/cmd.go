package info

import (
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"bmpaccess/bmp"
	"bmpaccess/parallel"
)

type CLICmd struct {
	Files  []string `arg:"" help:"BMP files to inspect" type:"existingfile"`
	Decode bool     `help:"Also decode the pixel data" default:"false"`
}

func (c *CLICmd) Run(opts bmp.Options, worker parallel.WorkerFunc, wait parallel.WaitFunc) error {
	var errCount atomic.Uint64
	parallel.ForEach(worker, wait, c.Files, func(name string) {
		logger := slog.Default().With("file", name)
		if err := inspect(logger, name, c.Decode, opts); err != nil {
			errCount.Add(1)
			logger.Error("could not inspect image", "error", err)
		}
	})

	if n := errCount.Load(); n > 0 {
		return fmt.Errorf("error processing %d files", n)
	}
	return nil
}

func inspect(logger *slog.Logger, name string, decode bool, opts bmp.Options) error {
	data, err := os.ReadFile(name)
	if err != nil {
		return fmt.Errorf("could not read %q: %w", name, err)
	}

	h, pal, err := bmp.DecodeHeaderPalette(data)
	if err != nil {
		return err
	}
	logger.Info("header", Attrs(h, pal)...)

	if !decode {
		return nil
	}
	if _, err = bmp.DecodeWithOptions(data, opts); err != nil {
		return err
	}
	logger.Info("decoded", "width", h.Width, "height", h.Height, "stride", h.Stride())
	return nil
}

// Attrs lists the header fields as slog key/value pairs.
func Attrs(h *bmp.Header, pal bmp.Palette) []any {
	attrs := []any{
		"magic", fmt.Sprintf("%c%c", byte(h.Magic), byte(h.Magic>>8)),
		"file_size", h.FileSize,
		"data_offset", h.DataOffset,
		"header_size", h.HeaderSize,
		"width", h.Width,
		"height", h.Height,
		"orientation", h.Orientation.String(),
		"bpp", h.BitsPerPixel,
		"compression", h.Compression.String(),
		"image_size", h.ImageDataSize,
		"supported", h.Variant().Supported(),
	}
	if h.HeaderSize == 40 {
		attrs = append(attrs,
			"ppm_x", h.HPixelsPerMeter,
			"ppm_y", h.VPixelsPerMeter,
			"colors_used", h.ColorsUsed,
			"colors_required", h.ColorsRequired)
	}
	if h.BitMask {
		attrs = append(attrs,
			"red_mask", fmt.Sprintf("%#08x", h.RedMask.Mask),
			"green_mask", fmt.Sprintf("%#08x", h.GreenMask.Mask),
			"blue_mask", fmt.Sprintf("%#08x", h.BlueMask.Mask))
	} else {
		attrs = append(attrs, "palette_bytes", h.PaletteSize, "palette_entries", pal.Len())
	}
	return attrs
}
