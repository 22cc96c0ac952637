package imgutil

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Kind identifies a supported image type.
type Kind int

const (
	KindUnknown Kind = iota
	KindJPEG
	KindPNG
	KindGIF
	KindBMP
	KindWEBP
)

func (k Kind) String() string {
	switch k {
	case KindJPEG:
		return "jpeg"
	case KindPNG:
		return "png"
	case KindGIF:
		return "gif"
	case KindBMP:
		return "bmp"
	case KindWEBP:
		return "webp"
	default:
		return "unknown"
	}
}

const headerLen = 12

var (
	pngSig  = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	jpegSig = []byte{0xff, 0xd8, 0xff}
	gifSig7 = []byte("GIF87a")
	gifSig9 = []byte("GIF89a")
	bmpSig  = []byte("BM")
	riffSig = []byte("RIFF")
	webpSig = []byte("WEBP")
)

var extKinds = map[string]Kind{
	".jpg":  KindJPEG,
	".jpeg": KindJPEG,
	".png":  KindPNG,
	".gif":  KindGIF,
	".bmp":  KindBMP,
	".webp": KindWEBP,
}

// KindFromExt maps a file name's extension (case-insensitive) to a Kind.
func KindFromExt(path string) Kind {
	return extKinds[strings.ToLower(filepath.Ext(path))]
}

// IsImagePath reports whether path has one of the recognized image extensions.
func IsImagePath(path string) bool {
	return KindFromExt(path) != KindUnknown
}

// DetectHeader inspects the leading bytes of a file for known signatures.
func DetectHeader(header []byte) (Kind, error) {
	if len(header) < 2 {
		return KindUnknown, errors.New("header too short")
	}

	switch {
	case bytes.HasPrefix(header, jpegSig):
		return KindJPEG, nil
	case bytes.HasPrefix(header, pngSig):
		return KindPNG, nil
	case bytes.HasPrefix(header, gifSig7), bytes.HasPrefix(header, gifSig9):
		return KindGIF, nil
	case len(header) >= headerLen && bytes.HasPrefix(header, riffSig) && bytes.Equal(header[8:12], webpSig):
		return KindWEBP, nil
	case bytes.HasPrefix(header, bmpSig):
		return KindBMP, nil
	}

	return KindUnknown, nil
}

// SniffFile reads the first bytes of a file to determine its type.
func SniffFile(path string) (Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return KindUnknown, err
	}
	defer f.Close()

	return SniffReader(f)
}

// SniffReader reads up to 12 bytes from r and determines its type.
func SniffReader(r io.Reader) (Kind, error) {
	header := make([]byte, headerLen)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return KindUnknown, err
	}

	return DetectHeader(header[:n])
}
