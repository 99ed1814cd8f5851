package convert

import (
	"image"
	"image/color"
	"log/slog"
	"math"

	"golang.org/x/image/draw"
)

// layout is the outcome of fitting a source into a requested box.
type layout struct {
	src  image.Rectangle // part of the source that is kept
	size image.Rectangle // destination canvas
	dest image.Rectangle // where the source lands on the canvas
	fill bool            // canvas is larger than dest and needs a background
}

// fit computes how a source of bounds sb is scaled into width x height.
// A zero dimension keeps the source one. Cropping trims the source to the
// target aspect ratio; otherwise the result keeps the source ratio and is
// either shrunk to it or letterboxed when fill is set.
func fit(sb image.Rectangle, width, height int, crop, fill bool) layout {
	srcW, srcH := float64(sb.Dx()), float64(sb.Dy())

	destW := float64(width)
	if destW == 0 {
		destW = srcW
	}
	destH := float64(height)
	if destH == 0 {
		destH = srcH
	}

	l := layout{
		src:  sb,
		size: image.Rect(0, 0, int(destW), int(destH)),
		dest: image.Rect(0, 0, int(destW), int(destH)),
	}

	srcAR := srcW / srcH
	destAR := destW / destH
	switch {
	case crop && srcAR < destAR:
		dh := int(math.Round((srcH - srcW/destAR) / 2))
		l.src.Min.Y += dh
		l.src.Max.Y -= dh
	case crop && srcAR > destAR:
		dw := int(math.Round((srcW - srcH*destAR) / 2))
		l.src.Min.X += dw
		l.src.Max.X -= dw
	case !crop && srcAR < destAR:
		dw := destH * srcAR
		if !fill {
			l.size.Max.X = int(math.Round(dw))
			l.dest.Max.X = l.size.Max.X
		} else if l.fill = destW > dw; l.fill {
			idw := int(math.Round((destW - dw) / 2))
			l.dest.Min.X += idw
			l.dest.Max.X -= idw
		}
	case !crop && srcAR > destAR:
		dh := destW / srcAR
		if !fill {
			l.size.Max.Y = int(math.Round(dh))
			l.dest.Max.Y = l.size.Max.Y
		} else if l.fill = destH > dh; l.fill {
			idh := int(math.Round((destH - dh) / 2))
			l.dest.Min.Y += idh
			l.dest.Max.Y -= idh
		}
	}
	return l
}

func resize(logger *slog.Logger, img image.Image, width, height int, crop bool, fillColor color.Color) image.Image {
	sb := img.Bounds()
	if (width == 0 || width == sb.Dx()) && (height == 0 || height == sb.Dy()) {
		return img
	}

	l := fit(sb, width, height, crop, fillColor != nil)
	logger.Info("resizing", "width", l.dest.Dx(), "height", l.dest.Dy())

	dest := image.NewRGBA(l.size)
	if l.fill {
		draw.Draw(dest, l.size, image.NewUniform(fillColor), l.size.Min, draw.Src)
	}
	// Upscaled bilevel art stays sharp with nearest neighbour.
	scaler := draw.Interpolator(draw.CatmullRom)
	if l.dest.Dx() > l.src.Dx() {
		scaler = draw.NearestNeighbor
	}
	scaler.Scale(dest, l.dest, img, l.src, draw.Over, nil)

	return dest
}
