package convert

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"bmpaccess/bmp"
	"bmpaccess/palette"
	"bmpaccess/parallel"

	"github.com/alecthomas/kong"
	xbmp "golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

type CLICmd struct {
	Scan      string      `help:"Source folder to scan for .bmp files" default:"."`
	Dest      string      `help:"Destination folder for converted pictures. Relative to scan dir if not absolute." default:"converted"`
	Format    string      `help:"Output format" enum:"png,gif,jpeg,bmp,tiff" default:"png"`
	Resize    bool        `help:"Resize image" default:"false" group:"resize"`
	Width     int         `help:"Max width" group:"resize"`
	Height    int         `help:"Max height" group:"resize"`
	Crop      bool        `help:"Crop image to maintain requested aspect ratio" default:"false" group:"resize"`
	Fill      string      `help:"If given and not cropping, will fill background with this color to maintain destination aspect ratio" group:"resize"`
	Palette   string      `help:"Palette to apply: 'source' for the color table of each file, a built-in name (${palettes}) or a RIFF PAL file" group:"palette"`
	Dither    bool        `help:"Apply dithering" default:"false" group:"palette"`
	FillColor color.Color `kong:"-"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	scanDir, err := filepath.Abs(c.Scan)
	var info os.FileInfo
	if err == nil {
		if info, err = os.Stat(scanDir); err == nil && !info.IsDir() {
			err = fmt.Errorf("not a directory")
		}
	}
	if err != nil {
		return fmt.Errorf("invalid scan path %q: %w", c.Scan, err)
	}
	c.Scan = scanDir

	if !filepath.IsAbs(c.Dest) {
		c.Dest = filepath.Join(scanDir, c.Dest)
	}

	if c.Resize {
		switch {
		case c.Width < 0:
			return fmt.Errorf("invalid resize width: %d", c.Width)
		case c.Height < 0:
			return fmt.Errorf("invalid resize height: %d", c.Height)
		case c.Width == 0 && c.Height == 0:
			return fmt.Errorf("no resize dimensions given")
		}
	}

	if !c.Crop && c.Fill != "" {
		if c.FillColor, err = parseHexToColor(c.Fill); err != nil {
			return err
		}
	}

	if c.Palette != "" && c.Palette != "source" {
		if _, err := palette.Load(c.Palette); err != nil {
			return err
		}
	}

	return nil
}

func (c *CLICmd) Run(opts bmp.Options, worker parallel.WorkerFunc, wait parallel.WaitFunc) error {
	if err := os.MkdirAll(c.Dest, 0o755); err != nil {
		return fmt.Errorf("unable to create destination folder %q: %w", c.Dest, err)
	}

	files, err := listBMP(c.Scan)
	if err != nil {
		return err
	}

	var processedCount, errCount atomic.Uint64
	parallel.ForEach(worker, wait, files, func(fileName string) {
		logger := slog.Default().With("file", filepath.Join(c.Scan, fileName))
		if err := c.convert(logger, fileName, opts); err != nil {
			errCount.Add(1)
			logger.Error("could not convert image", "error", err)
			return
		}
		processedCount.Add(1)
	})

	processed := processedCount.Load()
	errors := errCount.Load()
	slog.Info("stats", "processed", processed, "errors", errors,
		"total", processed+errors)

	if errors > 0 {
		return fmt.Errorf("error processing %d files", errors)
	}
	return nil
}

func listBMP(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to read folder %q: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".bmp") {
			continue
		}
		files = append(files, e.Name())
	}
	return files, nil
}

func (c *CLICmd) convert(logger *slog.Logger, fileName string, opts bmp.Options) error {
	data, err := os.ReadFile(filepath.Join(c.Scan, fileName))
	if err != nil {
		return fmt.Errorf("could not read image: %w", err)
	}

	decoded, err := bmp.DecodeWithOptions(data, opts)
	if err != nil {
		return fmt.Errorf("could not decode image: %w", err)
	}
	var img image.Image = decoded.RGBA()

	if c.Resize {
		img = resize(logger, img, c.Width, c.Height, c.Crop, c.FillColor)
	}

	if c.Palette != "" {
		var pal color.Palette
		if c.Palette == "source" {
			pal, err = palette.FromBMP(data)
		} else {
			pal, err = palette.Load(c.Palette)
		}
		if err != nil {
			return fmt.Errorf("could not load palette %q: %w", c.Palette, err)
		}
		img = repalette(logger.With("palette", c.Palette), img, pal, c.Dither)
	}

	return save(img, c.Format, c.Dest, fileName)
}

func parseHexToColor(s string) (color.Color, error) {
	var c color.RGBA
	var n int
	var err error
	switch len(s) {
	case 4:
		n, err = fmt.Sscanf(s, "#%1x%1x%1x", &c.R, &c.G, &c.B)
		c.R |= c.R << 4
		c.G |= c.G << 4
		c.B |= c.B << 4
		c.A = 0xFF
	case 5:
		n, err = fmt.Sscanf(s, "#%1x%1x%1x%1x", &c.R, &c.G, &c.B, &c.A)
		c.R |= c.R << 4
		c.G |= c.G << 4
		c.B |= c.B << 4
		c.A |= c.A << 4
	case 7:
		n, err = fmt.Sscanf(s, "#%2x%2x%2x", &c.R, &c.G, &c.B)
		c.A = 0xFF
	case 9:
		n, err = fmt.Sscanf(s, "#%2x%2x%2x%2x", &c.R, &c.G, &c.B, &c.A)
	default:
		return nil, fmt.Errorf("invalid fill color, should be #RGB, #RGBA, #RRGGBB or #RRGGBBAA")
	}

	if err != nil {
		return nil, fmt.Errorf("could not read color: %w", err)
	} else if n < 3 {
		return nil, fmt.Errorf("insufficient fill color fields: %d", n)
	}
	return c, nil
}

func save(img image.Image, format, destDir, srcName string) (err error) {
	destName := strings.TrimSuffix(srcName, filepath.Ext(srcName)) + "." + format

	outFile, err := os.CreateTemp(destDir, destName+".*")
	if err != nil {
		return fmt.Errorf("could not create temporary destination %q: %w", destName, err)
	}
	canRename := false
	defer func() {
		if defErr := outFile.Sync(); defErr != nil && err == nil {
			err = fmt.Errorf("could not flush temporary destination %q: %w", destName, defErr)
		}
		if defErr := outFile.Close(); defErr != nil && err == nil {
			err = fmt.Errorf("could not close temporary destination %q: %w", destName, defErr)
		}

		if canRename && err == nil {
			if defErr := os.Rename(outFile.Name(), filepath.Join(destDir, destName)); defErr != nil {
				err = fmt.Errorf("could not rename destination file %q: %w", destName, defErr)
			}
		} else {
			os.Remove(outFile.Name())
		}
	}()

	switch format {
	case "gif":
		if err = gif.Encode(outFile, img, nil); err != nil {
			return fmt.Errorf("could not encode GIF destination %q: %w", destName, err)
		}
	case "jpeg":
		if err = jpeg.Encode(outFile, img, &jpeg.Options{Quality: 100}); err != nil {
			return fmt.Errorf("could not encode JPEG destination %q: %w", destName, err)
		}
	case "png":
		enc := png.Encoder{
			CompressionLevel: png.BestCompression,
			BufferPool:       pngPool,
		}
		if err = enc.Encode(outFile, img); err != nil {
			return fmt.Errorf("could not encode PNG destination %q: %w", destName, err)
		}
	case "bmp":
		if err = xbmp.Encode(outFile, img); err != nil {
			return fmt.Errorf("could not encode BMP destination %q: %w", destName, err)
		}
	case "tiff":
		if err = tiff.Encode(outFile, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
			return fmt.Errorf("could not encode TIFF destination %q: %w", destName, err)
		}
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}

	canRename = true
	return nil
}

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}
