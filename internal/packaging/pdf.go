package packaging

import (
	"context"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

func init() {
	// Keep pdfcpu from creating a config directory under the user's home.
	api.DisableConfigDir()
}

// writePDF builds one page per image, in file-list order.
func writePDF(ctx context.Context, files []string, dest string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := api.ImportImagesFile(files, dest, nil, nil); err != nil {
		return fmt.Errorf("pdf import: %w", err)
	}
	return nil
}
