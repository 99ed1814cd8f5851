package palette

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
	"io"

	"golang.org/x/image/riff"
)

/*
RIFF palette layout, as written by Windows:

typedef struct tagLOGPALETTE {
  WORD         palVersion;     // 0x0300
  WORD         palNumEntries;
  PALETTEENTRY palPalEntry[1];
} LOGPALETTE;

typedef struct tagPALETTEENTRY {
  BYTE peRed;
  BYTE peGreen;
  BYTE peBlue;
  BYTE peFlags;
} PALETTEENTRY;
*/

var (
	riffType = riff.FourCC{'R', 'I', 'F', 'F'}
	palType  = riff.FourCC{'P', 'A', 'L', ' '}
	dataType = riff.FourCC{'d', 'a', 't', 'a'}
)

const palVersion = 0x0300

// ReadFrom reads every palette of a RIFF PAL stream.
func ReadFrom(r io.Reader) ([]color.Palette, error) {
	formType, rd, err := riff.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not open RIFF stream: %w", err)
	} else if formType != palType {
		return nil, fmt.Errorf("unsupported RIFF content type: %s", string(formType[:]))
	}

	return readChunks(rd, "PAL")
}

func readChunks(r *riff.Reader, ident string) ([]color.Palette, error) {
	var res []color.Palette

	for {
		id, size, data, err := r.Next()
		if errors.Is(err, io.EOF) {
			return res, nil
		} else if err != nil {
			return res, fmt.Errorf("could not read chunk %s#%d: %w", ident, len(res), err)
		}

		chunk := fmt.Sprintf("%s#%d", ident, len(res))
		switch id {
		case riff.LIST:
			listType, list, err := riff.NewListReader(size, data)
			if err != nil {
				return res, fmt.Errorf("could not read list %s: %w", chunk, err)
			} else if listType != palType {
				return res, fmt.Errorf("list %s has unsupported type: %s", chunk, string(listType[:]))
			}

			nested, err := readChunks(list, chunk)
			res = append(res, nested...)
			if err != nil {
				return res, err
			}
		case dataType:
			pal, err := readPalette(data, chunk)
			if err != nil {
				return res, err
			}
			res = append(res, pal)
		default:
			return res, fmt.Errorf("unsupported chunk type in %s: %s", chunk, string(id[:]))
		}
	}
}

func readPalette(r io.Reader, ident string) (color.Palette, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("could not read header of chunk %s: %w", ident, err)
	}

	if ver := binary.LittleEndian.Uint16(hdr[:2]); ver != palVersion {
		return nil, fmt.Errorf("unsupported palette version in chunk %s: %#04x", ident, ver)
	}

	count := int(binary.LittleEndian.Uint16(hdr[2:]))
	entries := make([]byte, count*4)
	if _, err := io.ReadFull(r, entries); err != nil {
		return nil, fmt.Errorf("could not read %d colors from chunk %s: %w", count, ident, err)
	}

	res := make(color.Palette, count)
	for i := range count {
		e := entries[i*4:]
		res[i] = color.RGBA{R: e[0], G: e[1], B: e[2], A: 0xFF}
	}
	return res, nil
}

// WriteTo writes pals as a RIFF PAL stream, one data chunk per palette.
func WriteTo(w io.Writer, pals []color.Palette) (int64, error) {
	size := 4
	for _, pal := range pals {
		size += 8 + 4 + len(pal)*4 // chunk id + chunk size + version + count + 4 bytes/color
	}

	var buf []byte
	buf = append(buf, riffType[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(size))
	buf = append(buf, palType[:]...)

	for i, pal := range pals {
		if len(pal) > 0xFFFF {
			return 0, fmt.Errorf("palette %d has %d colors, at most 65535 fit", i, len(pal))
		}
		buf = appendPalette(buf, pal)
	}

	n, err := w.Write(buf)
	if err != nil {
		return int64(n), fmt.Errorf("could not write palette stream: %w", err)
	} else if n != len(buf) {
		return int64(n), fmt.Errorf("wrote only %d/%d bytes", n, len(buf))
	}
	return int64(n), nil
}

func appendPalette(buf []byte, pal color.Palette) []byte {
	buf = append(buf, dataType[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(4+len(pal)*4))
	buf = binary.LittleEndian.AppendUint16(buf, palVersion)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(pal)))

	for _, col := range pal {
		c := color.RGBAModel.Convert(col).(color.RGBA)
		buf = append(buf, c.R, c.G, c.B, 0x00)
	}
	return buf
}
