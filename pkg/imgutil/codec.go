package imgutil

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrEncodeUnsupported is returned for formats that can be read but not written (webp).
var ErrEncodeUnsupported = errors.New("writing this image format is not supported")

const DefaultJPEGQuality = 92

type EncodeOptions struct {
	JPEGQuality int
}

// Decode reads and decodes the image at path.
func Decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// DecodeConfig reads only the header of the image at path.
func DecodeConfig(path string) (image.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return image.Config{}, fmt.Errorf("decode header %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// CanEncode reports whether images of this kind can be written back.
func CanEncode(kind Kind) bool {
	switch kind {
	case KindJPEG, KindPNG, KindGIF, KindBMP:
		return true
	default:
		return false
	}
}

// Encode writes img to w using the codec for kind.
func Encode(w io.Writer, img image.Image, kind Kind, opts EncodeOptions) error {
	switch kind {
	case KindJPEG:
		q := opts.JPEGQuality
		if q <= 0 || q > 100 {
			q = DefaultJPEGQuality
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: q})
	case KindPNG:
		return png.Encode(w, img)
	case KindGIF:
		return gif.Encode(w, img, nil)
	case KindBMP:
		return bmp.Encode(w, img)
	case KindWEBP:
		return ErrEncodeUnsupported
	default:
		return fmt.Errorf("unknown image kind %s", kind)
	}
}

func encodeBytes(img image.Image, kind Kind, opts EncodeOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, kind, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeFileAtomic writes data next to path and renames it into place, so a
// reader never observes a half-written image.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".mangasplit-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return replaceFile(tmp.Name(), path)
}

func replaceFile(tmpPath, destPath string) error {
	if err := os.Rename(tmpPath, destPath); err == nil {
		return nil
	}
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Rename(tmpPath, destPath)
}

func fileMode(path string) os.FileMode {
	if info, err := os.Stat(path); err == nil {
		return info.Mode().Perm()
	}
	return 0o644
}
