package filter

import "maps"

// Key names a stream or packet property.
type Key string

const (
	StreamType  Key = "stream_type"
	FileExt     Key = "file_ext"
	MIME        Key = "mime"
	CodecID     Key = "codec_id"
	PixelFormat Key = "pixel_format"
	Width       Key = "width"
	Height      Key = "height"
	Stride      Key = "stride"
)

const (
	StreamFile   = "file"
	StreamVisual = "visual"
	CodecRaw     = "raw"
	PixelRGBA    = "rgba"
)

type Properties map[Key]any

func (p Properties) Clone() Properties {
	if p == nil {
		return Properties{}
	}
	return maps.Clone(p)
}

// Merge copies the entries of src that p does not already hold.
func (p Properties) Merge(src Properties) {
	for k, v := range src {
		if _, ok := p[k]; !ok {
			p[k] = v
		}
	}
}

func (p Properties) String(k Key) string {
	s, _ := p[k].(string)
	return s
}

func (p Properties) Uint(k Key) (uint32, bool) {
	v, ok := p[k].(uint32)
	return v, ok
}

// Packet is one complete unit of data moving through the filter.
type Packet struct {
	Data  []byte
	Props Properties
}
