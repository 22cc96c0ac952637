package imgutil

import (
	"fmt"
	"image"
	"image/draw"
	"os"
	"path/filepath"
	"strings"
)

// Order says which half of a spread is read first.
type Order int

const (
	RightFirst Order = iota
	LeftFirst
)

// Halves cuts img at floor(width/2). The right half keeps the extra column
// when the width is odd.
func Halves(img image.Image) (left, right image.Image) {
	b := img.Bounds()
	half := b.Dx() / 2
	left = crop(img, image.Rect(b.Min.X, b.Min.Y, b.Min.X+half, b.Max.Y))
	right = crop(img, image.Rect(b.Min.X+half, b.Min.Y, b.Max.X, b.Max.Y))
	return left, right
}

// Split returns the two halves of a spread in reading order.
func Split(img image.Image, order Order) (first, second image.Image) {
	left, right := Halves(img)
	if order == LeftFirst {
		return left, right
	}
	return right, left
}

// SplitNames returns the file names used for the two halves of path:
// <base>_1.<ext> and <base>_2.<ext>, next to the original.
func SplitNames(path string) (first, second string) {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return base + "_1" + ext, base + "_2" + ext
}

// SplitFile splits the image at path and writes both halves with the codec of
// its extension. Both halves are encoded before anything touches the disk.
func SplitFile(path string, order Order, opts EncodeOptions) (first, second string, err error) {
	kind := KindFromExt(path)
	if !CanEncode(kind) {
		return "", "", fmt.Errorf("split %s: %w", filepath.Base(path), ErrEncodeUnsupported)
	}

	img, err := Decode(path)
	if err != nil {
		return "", "", err
	}

	a, b := Split(img, order)
	dataA, err := encodeBytes(a, kind, opts)
	if err != nil {
		return "", "", fmt.Errorf("encode first half of %s: %w", filepath.Base(path), err)
	}
	dataB, err := encodeBytes(b, kind, opts)
	if err != nil {
		return "", "", fmt.Errorf("encode second half of %s: %w", filepath.Base(path), err)
	}

	first, second = SplitNames(path)
	perm := fileMode(path)
	if err := writeFileAtomic(first, dataA, perm); err != nil {
		return "", "", err
	}
	if err := writeFileAtomic(second, dataB, perm); err != nil {
		_ = os.Remove(first)
		return "", "", err
	}
	return first, second, nil
}

// crop copies r out of img into a zero-origin image. Paletted images keep
// their palette so GIF output is not re-quantized.
func crop(img image.Image, r image.Rectangle) image.Image {
	if p, ok := img.(*image.Paletted); ok {
		dst := image.NewPaletted(image.Rect(0, 0, r.Dx(), r.Dy()), p.Palette)
		for y := 0; y < r.Dy(); y++ {
			for x := 0; x < r.Dx(); x++ {
				dst.SetColorIndex(x, y, p.ColorIndexAt(r.Min.X+x, r.Min.Y+y))
			}
		}
		return dst
	}
	dst := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst
}
