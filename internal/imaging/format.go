package imaging

// Format is an image container format.
type Format int

const (
	// FormatUnknown is any byte sequence that is not a supported container.
	FormatUnknown Format = iota
	// FormatJPEG is a JPEG (JFIF/EXIF) stream.
	FormatJPEG
	// FormatPNG is a PNG stream.
	FormatPNG
)

// String returns the lower-case format name.
func (f Format) String() string {
	switch f {
	case FormatJPEG:
		return "jpeg"
	case FormatPNG:
		return "png"
	default:
		return "unknown"
	}
}

// ParseFormat returns the format named s as produced by String.
// Unrecognized names are FormatUnknown.
func ParseFormat(s string) Format {
	switch s {
	case "jpeg":
		return FormatJPEG
	case "png":
		return FormatPNG
	default:
		return FormatUnknown
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(text []byte) error {
	*f = ParseFormat(string(text))
	return nil
}

// Magic number prefixes. Only the first three bytes are compared.
var (
	jpegMagic = [3]byte{0xFF, 0xD8, 0xFF}
	pngMagic  = [3]byte{0x89, 0x50, 0x4E}
)

// Sniff returns the container format of data based on its first three
// bytes. Inputs shorter than three bytes are FormatUnknown.
func Sniff(data []byte) Format {
	if len(data) < 3 {
		return FormatUnknown
	}
	prefix := [3]byte{data[0], data[1], data[2]}
	switch prefix {
	case jpegMagic:
		return FormatJPEG
	case pngMagic:
		return FormatPNG
	default:
		return FormatUnknown
	}
}
