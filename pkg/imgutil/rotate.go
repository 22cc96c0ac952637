package imgutil

import (
	"fmt"
	"image"
	"path/filepath"
)

// Rotate turns img clockwise by a multiple of 90 degrees.
func Rotate(img image.Image, degrees int) (image.Image, error) {
	deg := ((degrees % 360) + 360) % 360
	if deg%90 != 0 {
		return nil, fmt.Errorf("rotation must be a multiple of 90 degrees, got %d", degrees)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dw, dh := w, h
	if deg == 90 || deg == 270 {
		dw, dh = h, w
	}

	// source maps a destination pixel back to the source pixel it came from.
	source := func(x, y int) (int, int) {
		switch deg {
		case 90:
			return y, h - 1 - x
		case 180:
			return w - 1 - x, h - 1 - y
		case 270:
			return w - 1 - y, x
		default:
			return x, y
		}
	}

	if p, ok := img.(*image.Paletted); ok {
		dst := image.NewPaletted(image.Rect(0, 0, dw, dh), p.Palette)
		for y := 0; y < dh; y++ {
			for x := 0; x < dw; x++ {
				sx, sy := source(x, y)
				dst.SetColorIndex(x, y, p.ColorIndexAt(b.Min.X+sx, b.Min.Y+sy))
			}
		}
		return dst, nil
	}

	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			sx, sy := source(x, y)
			dst.Set(x, y, img.At(b.Min.X+sx, b.Min.Y+sy))
		}
	}
	return dst, nil
}

// RotateFile rotates the image at path in place, keeping its codec.
func RotateFile(path string, degrees int, opts EncodeOptions) error {
	kind := KindFromExt(path)
	if !CanEncode(kind) {
		return fmt.Errorf("rotate %s: %w", filepath.Base(path), ErrEncodeUnsupported)
	}

	img, err := Decode(path)
	if err != nil {
		return err
	}
	rotated, err := Rotate(img, degrees)
	if err != nil {
		return err
	}
	data, err := encodeBytes(rotated, kind, opts)
	if err != nil {
		return fmt.Errorf("encode rotated %s: %w", filepath.Base(path), err)
	}
	return writeFileAtomic(path, data, fileMode(path))
}
