package bmp

import "fmt"

// Status classifies a decode failure. Wrapped errors returned by this
// package match one of these values with errors.Is.
type Status uint32

const (
	ErrIO Status = iota + 1
	ErrFileInvalid
	ErrFileNotSupported
	ErrOutOfMemory
	ErrInvalidArgument
)

func (e Status) Error() string {
	switch e {
	case ErrIO:
		return "bmp: input truncated"
	case ErrFileInvalid:
		return "bmp: invalid file"
	case ErrFileNotSupported:
		return "bmp: unsupported variant"
	case ErrOutOfMemory:
		return "bmp: allocation limit exceeded"
	case ErrInvalidArgument:
		return "bmp: invalid argument"
	default:
		return fmt.Sprintf("bmp.Status(%d)", uint32(e))
	}
}
