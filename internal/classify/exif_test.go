package classify

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

// buildOrientationTIFF returns a little-endian TIFF block whose IFD0 holds a
// single Orientation tag.
func buildOrientationTIFF(orientation uint16) []byte {
	var tiff bytes.Buffer
	tiff.Write([]byte{0x49, 0x49, 0x2a, 0x00})
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(8))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(1))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(0x0112))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(3))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(1))
	_ = binary.Write(&tiff, binary.LittleEndian, orientation)
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(0))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(0))
	return tiff.Bytes()
}

// writeRotatedJPEG encodes a w x h JPEG and inserts an APP1 EXIF segment
// right after the SOI marker.
func writeRotatedJPEG(t *testing.T, path string, w, h int, orientation uint16) {
	t.Helper()
	var enc bytes.Buffer
	if err := jpeg.Encode(&enc, image.NewGray(image.Rect(0, 0, w, h)), nil); err != nil {
		t.Fatal(err)
	}
	data := enc.Bytes()

	payload := append([]byte("Exif\x00\x00"), buildOrientationTIFF(orientation)...)
	var buf bytes.Buffer
	buf.Write(data[:2])
	buf.Write([]byte{0xff, 0xe1})
	_ = binary.Write(&buf, binary.BigEndian, uint16(len(payload)+2))
	buf.Write(payload)
	buf.Write(data[2:])

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReadHonorsEXIFOrientation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phone.jpg")
	writeRotatedJPEG(t, path, 40, 20, 6)

	raw, err := Read(path, ReadOptions{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !raw.Wide() {
		t.Fatalf("without EXIF the stored pixels are wide: %+v", raw)
	}

	oriented, err := Read(path, ReadOptions{HonorEXIF: true})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if oriented.Width != 20 || oriented.Height != 40 || oriented.Wide() {
		t.Fatalf("orientation 6 should swap the axes: %+v", oriented)
	}
}

func TestReadIgnoresUprightOrientation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.jpg")
	writeRotatedJPEG(t, path, 40, 20, 1)

	rec, err := Read(path, ReadOptions{HonorEXIF: true})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !rec.Wide() {
		t.Fatalf("orientation 1 keeps the stored size: %+v", rec)
	}
}

func TestOrientationWithoutEXIF(t *testing.T) {
	var enc bytes.Buffer
	if err := jpeg.Encode(&enc, image.NewGray(image.Rect(0, 0, 4, 4)), nil); err != nil {
		t.Fatal(err)
	}
	o, err := orientationFrom(bytes.NewReader(enc.Bytes()))
	if err != nil {
		t.Fatalf("orientationFrom: %v", err)
	}
	if o != 1 {
		t.Fatalf("orientation = %d, want 1", o)
	}
}

func TestOrientationFromAPP1Segment(t *testing.T) {
	for _, want := range []int{1, 3, 6, 8} {
		path := filepath.Join(t.TempDir(), "page.jpg")
		writeRotatedJPEG(t, path, 8, 4, uint16(want))

		got, err := readOrientation(path)
		if err != nil {
			t.Fatalf("orientation %d: %v", want, err)
		}
		if got != want {
			t.Fatalf("orientation = %d, want %d", got, want)
		}
	}
}
