package imaging

import (
	"image"

	exif "github.com/dsoprea/go-exif/v3"
)

// orienter is implemented by decoders whose container can carry an EXIF
// orientation tag.
type orienter interface {
	Orientation(data []byte) int
}

// exifOrientation returns the EXIF orientation (1-8) of data, or 1 when the
// tag is missing or unreadable.
func exifOrientation(data []byte) (orientation int) {
	// go-exif panics on some malformed inputs.
	defer func() {
		if recover() != nil {
			orientation = 1
		}
	}()

	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return 1
	}
	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return 1
	}

	for _, entry := range entries {
		if entry.TagName != "Orientation" {
			continue
		}
		if v, ok := entry.Value.([]uint16); ok && len(v) > 0 && v[0] >= 1 && v[0] <= 8 {
			return int(v[0])
		}
		return 1
	}
	return 1
}

// orient returns src transformed so that orientation o becomes 1.
// Orientations 5 to 8 swap width and height.
func orient(src *image.NRGBA, o int) *image.NRGBA {
	if o < 2 || o > 8 {
		return src
	}

	w, h := src.Rect.Dx(), src.Rect.Dy()
	dw, dh := w, h
	if o >= 5 {
		dw, dh = h, w
	}
	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))

	for sy := 0; sy < h; sy++ {
		for sx := 0; sx < w; sx++ {
			var dx, dy int
			switch o {
			case 2: // mirror horizontal
				dx, dy = w-1-sx, sy
			case 3: // rotate 180
				dx, dy = w-1-sx, h-1-sy
			case 4: // mirror vertical
				dx, dy = sx, h-1-sy
			case 5: // transpose
				dx, dy = sy, sx
			case 6: // rotate 90 CW
				dx, dy = h-1-sy, sx
			case 7: // transverse
				dx, dy = h-1-sy, w-1-sx
			case 8: // rotate 270 CW
				dx, dy = sy, w-1-sx
			}
			si := src.PixOffset(src.Rect.Min.X+sx, src.Rect.Min.Y+sy)
			di := dst.PixOffset(dx, dy)
			copy(dst.Pix[di:di+4], src.Pix[si:si+4])
		}
	}
	return dst
}
