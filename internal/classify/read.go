package classify

import (
	"errors"
	"fmt"
	"io"
	"os"

	exif "github.com/dsoprea/go-exif/v3"

	"mangasplit/pkg/imgutil"
)

type ReadOptions struct {
	// HonorEXIF swaps width and height of JPEGs whose EXIF orientation says
	// the picture is displayed rotated by 90 or 270 degrees.
	HonorEXIF bool
}

// Read measures the image at path. Only the header is decoded.
func Read(path string, opts ReadOptions) (Record, error) {
	cfg, err := imgutil.DecodeConfig(path)
	if err != nil {
		return Record{Path: path}, err
	}
	rec := Record{Path: path, Width: cfg.Width, Height: cfg.Height}

	if opts.HonorEXIF {
		kind, err := imgutil.SniffFile(path)
		if err == nil && kind == imgutil.KindJPEG {
			if orientation, err := readOrientation(path); err == nil && swapsAxes(orientation) {
				rec.Width, rec.Height = rec.Height, rec.Width
			}
		}
	}
	return rec, nil
}

// swapsAxes is true for the four EXIF orientations that transpose the image.
func swapsAxes(orientation int) bool {
	return orientation >= 5 && orientation <= 8
}

func readOrientation(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return orientationFrom(f)
}

func orientationFrom(rs io.ReadSeeker) (int, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}

	// The EXIF block sits inside APP1, after the JPEG markers.
	raw, err := exif.SearchAndExtractExifWithReader(rs)
	if errors.Is(err, exif.ErrNoExif) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	tags, _, err := exif.GetFlatExifData(raw, nil)
	if err != nil {
		return 0, err
	}

	for _, tag := range tags {
		// IFD0 is listed before the thumbnail's IFD1, so the first match wins.
		if tag.TagName != "Orientation" || tag.IfdPath != "IFD" {
			continue
		}
		switch v := tag.Value.(type) {
		case []uint16:
			if len(v) > 0 {
				return int(v[0]), nil
			}
		case uint16:
			return int(v), nil
		}
		return 0, fmt.Errorf("unexpected orientation value %v", tag.Value)
	}
	return 1, nil
}
