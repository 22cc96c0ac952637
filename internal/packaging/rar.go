package packaging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"mangasplit/internal/config"
	"mangasplit/internal/events"
	"mangasplit/internal/metrics"
	"mangasplit/internal/tools"
)

// writeRAR hands the pages to an external rar tool. Without a working tool the
// pages are written as a ZIP stream under the requested name; comic readers
// open a ZIP regardless of its extension.
func (p *Packager) writeRAR(ctx context.Context, files []string, dest string, format config.Format) (string, error) {
	err := p.runRARTool(ctx, files, dest)
	if err == nil {
		return format.String(), nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	log.Debug().Err(err).Str("output", dest).Msg("rar creation failed, writing zip instead")
	events.Warnf(p.Sink, "No working RAR tool (%v); writing %s as a ZIP archive with a %s extension",
		err, format.String(), format.Ext())
	metrics.IncFallback(format.String(), "zip")

	_ = os.Remove(dest)
	if err := writeZip(ctx, files, dest); err != nil {
		return "", err
	}
	return "zip", nil
}

// runRARTool stages the pages under their entry names so the archive keeps
// unique flat names, then feeds the tool a list file in page order.
func (p *Packager) runRARTool(ctx context.Context, files []string, dest string) error {
	if !p.RARTools.Available() {
		return tools.ErrNoCandidate
	}

	work, err := os.MkdirTemp(filepath.Dir(dest), ".mangasplit-rar-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(work)

	pagesDir := filepath.Join(work, "pages")
	if err := writeFolder(ctx, files, pagesDir); err != nil {
		return err
	}

	var list strings.Builder
	for _, name := range EntryNames(files) {
		list.WriteString(filepath.Join(pagesDir, name))
		list.WriteString("\n")
	}
	listFile := filepath.Join(work, "pages.lst")
	if err := os.WriteFile(listFile, []byte(list.String()), 0o644); err != nil {
		return err
	}

	if _, err := p.RARTools.Run(ctx, tools.Invocation{Input: listFile, Output: dest}); err != nil {
		return err
	}
	if _, err := os.Stat(dest); err != nil {
		return fmt.Errorf("rar tool reported success but wrote no archive: %w", err)
	}
	return nil
}
