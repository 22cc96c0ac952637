package archive

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/nwaples/rardecode"
)

func extractRARNative(ctx context.Context, archivePath, dest string) error {
	rr, err := rardecode.OpenReader(archivePath, "")
	if err != nil {
		return err
	}
	defer rr.Close()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		hdr, err := rr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		target, err := safeJoin(dest, hdr.Name)
		if err != nil {
			return err
		}
		if hdr.IsDir {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := writeEntry(target, rr); err != nil {
			return err
		}
	}
}
