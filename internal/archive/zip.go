package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

func extractZip(ctx context.Context, archivePath, dest string) error {
	zr, err := zip.OpenReader(archivePath)
	if errors.Is(err, zip.ErrInsecurePath) {
		zr.Close()
		return fmt.Errorf("%w: %v", ErrUnsafePath, err)
	}
	if err != nil {
		return err
	}
	defer zr.Close()

	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		target, err := safeJoin(dest, f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		err = writeEntry(target, rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func writeEntry(target string, r io.Reader) error {
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
