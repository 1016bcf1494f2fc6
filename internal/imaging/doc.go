// Package imaging identifies and decodes raster image containers into a
// uniform pixel representation.
//
// Sniff classifies bytes by their magic number. Decode dispatches to a
// per-format Decoder chosen from a fixed registry and converts the result to
// a PixelBuffer of non-premultiplied RGBA8 pixels. Supported containers are
// JPEG and PNG; JPEG images are rotated upright according to their EXIF
// orientation tag.
package imaging
