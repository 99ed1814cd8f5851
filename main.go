package main

import (
	"log/slog"
	"os"
	"strings"

	"bmpaccess/bmp"
	"bmpaccess/convert"
	"bmpaccess/info"
	"bmpaccess/orient"
	"bmpaccess/palette"
	"bmpaccess/parallel"

	"github.com/alecthomas/kong"
)

type CLI struct {
	Workers   int    `help:"Number of parallel workers, 0 for one per CPU" default:"0"`
	MaxPixels int    `help:"Refuse to decode images with more pixels than this" default:"268435456" env:"BMPACCESS_MAX_PIXELS"`
	LogLevel  string `help:"Log level" enum:"debug,info,warn,error" default:"info"`
	LogFormat string `help:"Log format" enum:"text,json" default:"text"`

	Info    info.CLICmd    `cmd:"" help:"Print the headers of BMP files"`
	Convert convert.CLICmd `cmd:"" help:"Decode BMP files and save them in another format"`
	Sort    orient.CLICmd  `cmd:"" help:"Sort BMP files by stored row order"`
	Palette palette.CLICmd `cmd:"" help:"Export the color table of a BMP file as a RIFF palette"`
}

func setupLogger(level, format string, out *os.File) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}
	slog.SetDefault(slog.New(h))
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("bmpaccess"),
		kong.Description("Decode 1 bit per pixel BMP images to RGBA."),
		kong.UsageOnError(),
		kong.Vars{"palettes": strings.Join(palette.Names(), ", ")},
	)

	setupLogger(cli.LogLevel, cli.LogFormat, os.Stderr)

	pool := parallel.Start(cli.Workers)
	defer pool.Cancel()

	opts := bmp.Options{MaxPixels: cli.MaxPixels}
	slog.Debug("running", "command", kctx.Command(), "workers", pool.Workers())

	err := kctx.Run(opts, pool.Do, pool.Wait)
	if err != nil {
		slog.Error("command failed", "command", kctx.Command(), "error", err)
		os.Exit(1)
	}
}
