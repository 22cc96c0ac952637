package packaging

import (
	"archive/zip"
	"context"
	"io"
	"os"
)

// writeZip stores entries in file-list order. Pages are already compressed
// images, so they are stored rather than deflated.
func writeZip(ctx context.Context, files []string, dest string) error {
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(f)

	for i, name := range EntryNames(files) {
		if err := ctx.Err(); err != nil {
			zw.Close()
			f.Close()
			return err
		}
		if err := addZipEntry(zw, files[i], name); err != nil {
			zw.Close()
			f.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func addZipEntry(zw *zip.Writer, src, name string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Store

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, in)
	return err
}
