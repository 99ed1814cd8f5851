package orient

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"bmpaccess/bmp"

	"github.com/alecthomas/kong"
)

type OpParams struct {
	Scan     string `help:"Source folder to scan" default:"."`
	TopDown  string `help:"Destination folder for images stored top row first" default:"topdown"`
	BottomUp string `help:"Destination folder for images stored bottom row first" default:"bottomup"`
}

type CLICmd struct {
	Cp struct {
		OpParams
	} `cmd:"" help:"Copy images to their respective folders"`
	Mv struct {
		OpParams
	} `cmd:"" help:"Move images to their respective folders"`
}

func (c *CLICmd) params(name string) *OpParams {
	if name == "mv" {
		return &c.Mv.OpParams
	}
	return &c.Cp.OpParams
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	return c.params(kctx.Selected().Name).resolve()
}

func (p *OpParams) resolve() error {
	scanDir, err := filepath.Abs(p.Scan)
	var info os.FileInfo
	if err == nil {
		if info, err = os.Stat(scanDir); err == nil && !info.IsDir() {
			err = fmt.Errorf("not a directory")
		}
	}
	if err != nil {
		return fmt.Errorf("invalid scan path %q: %w", p.Scan, err)
	}
	p.Scan = scanDir

	if !filepath.IsAbs(p.TopDown) {
		p.TopDown = filepath.Join(scanDir, p.TopDown)
	}
	if !filepath.IsAbs(p.BottomUp) {
		p.BottomUp = filepath.Join(scanDir, p.BottomUp)
	}
	return nil
}

func (c *CLICmd) Run(kctx *kong.Context) error {
	name := kctx.Selected().Name
	fileOp := copyFile
	if name == "mv" {
		fileOp = moveFile
	}
	return sortFiles(*c.params(name), fileOp)
}

type stats struct {
	topDown, bottomUp, errors int
}

func sortFiles(conf OpParams, fileOp func(string, string) error) error {
	for _, dir := range []string{conf.TopDown, conf.BottomUp} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("unable to create destination folder %q: %w", dir, err)
		}
	}

	files, err := os.ReadDir(conf.Scan)
	if err != nil {
		return fmt.Errorf("unable to read folder %q: %w", conf.Scan, err)
	}

	var st stats
	for _, file := range files {
		if file.IsDir() || !strings.EqualFold(filepath.Ext(file.Name()), ".bmp") {
			continue
		}

		name := filepath.Join(conf.Scan, file.Name())
		orientation, err := readOrientation(name)
		if err != nil {
			st.errors++
			slog.Error("could not read image", "file", name, "error", err)
			continue
		}

		dest := filepath.Join(conf.BottomUp, file.Name())
		if orientation == bmp.TopDown {
			dest = filepath.Join(conf.TopDown, file.Name())
		}

		if err = fileOp(name, dest); err != nil {
			st.errors++
			slog.Error("could not operate image", "from", name, "to", dest, "error", err)
			continue
		}
		if orientation == bmp.TopDown {
			st.topDown++
		} else {
			st.bottomUp++
		}
	}

	slog.Info("stats", "topdown", st.topDown, "bottomup", st.bottomUp, "errors", st.errors,
		"total", st.topDown+st.bottomUp)

	if st.errors > 0 {
		return fmt.Errorf("error processing %d files", st.errors)
	}
	return nil
}

func readOrientation(name string) (bmp.Orientation, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return 0, fmt.Errorf("could not read %q: %w", name, err)
	}

	h, err := bmp.DecodeHeader(data)
	if err != nil {
		return 0, err
	}
	return h.Orientation, nil
}
