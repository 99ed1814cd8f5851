package palette

import (
	"fmt"
	"image/color"
	"log/slog"
	"os"
)

type CLICmd struct {
	Source string `arg:"" help:"BMP file to read the color table from" type:"existingfile"`
	Dest   string `arg:"" help:"RIFF palette file to create"`
	Force  bool   `help:"Overwrite the destination" default:"false"`
}

func (c *CLICmd) Run() error {
	data, err := os.ReadFile(c.Source)
	if err != nil {
		return fmt.Errorf("could not read %q: %w", c.Source, err)
	}

	pal, err := FromBMP(data)
	if err != nil {
		return fmt.Errorf("could not read color table of %q: %w", c.Source, err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if c.Force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	out, err := os.OpenFile(c.Dest, flags, 0o644)
	if err != nil {
		return fmt.Errorf("could not create %q: %w", c.Dest, err)
	}

	n, err := WriteTo(out, []color.Palette{pal})
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("could not close %q: %w", c.Dest, closeErr)
	}
	if err != nil {
		return err
	}

	slog.Info("palette exported", "from", c.Source, "to", c.Dest, "colors", len(pal), "bytes", n)
	return nil
}
