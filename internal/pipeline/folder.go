package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"mangasplit/internal/classify"
	"mangasplit/internal/config"
	"mangasplit/internal/events"
	"mangasplit/internal/metrics"
	"mangasplit/internal/packaging"
	"mangasplit/pkg/imgutil"
)

// ListImages returns every image under folder in page order.
func ListImages(folder string) ([]string, error) {
	var rels []string
	err := filepath.WalkDir(folder, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || !imgutil.IsImagePath(path) {
			return nil
		}
		rel, err := filepath.Rel(folder, path)
		if err != nil {
			return err
		}
		rels = append(rels, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	SortNatural(rels)
	paths := make([]string, len(rels))
	for i, rel := range rels {
		paths[i] = filepath.Join(folder, filepath.FromSlash(rel))
	}
	return paths, nil
}

func readingOrder(dir config.Direction) imgutil.Order {
	if dir == config.LeftToRight {
		return imgutil.LeftFirst
	}
	return imgutil.RightFirst
}

// ProcessFolder splits or rotates the pages of folder in place and packages
// the result at root. A folder without images yields no artifact and no error.
func ProcessFolder(ctx context.Context, folder, root string, cfg config.Processing, deps Deps) (*Artifact, FolderStats, error) {
	var stats FolderStats
	name := filepath.Base(folder)
	logger := log.With().Str("folder", name).Logger()

	images, err := ListImages(folder)
	if err != nil {
		return nil, stats, err
	}
	if len(images) == 0 {
		events.Infof(deps.Sink, "No images found in %s", name)
		return nil, stats, nil
	}
	images, done := dropSplitSources(images)
	if done > 0 {
		events.Infof(deps.Sink, "Skipping %d pages of %s already split by an earlier run", done, name)
	}
	total := len(images)
	stats.Images = total
	events.Infof(deps.Sink, "Processing %s (%d images)", name, total)

	order := readingOrder(cfg.Direction)
	readOpts := classify.ReadOptions{HonorEXIF: deps.HonorEXIF}
	st := classify.NewState()
	out := make([]string, 0, total)

	for i, path := range images {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		base := filepath.Base(path)

		rec, err := classify.Read(path, readOpts)
		if err != nil {
			events.Warnf(deps.Sink, "Cannot read %s: %v", base, err)
			stats.Unreadable++
			out = append(out, path)
			continue
		}

		var d classify.Decision
		d, st = classify.Decide(rec, i, total, cfg, st)
		logger.Debug().
			Str("page", base).
			Int("index", i).
			Int("width", rec.Width).
			Int("height", rec.Height).
			Bool("split", d.ShouldSplit).
			Bool("exception", d.Exception).
			Bool("special_spread", d.SpecialSpread).
			Msg("classified page")

		switch {
		case d.ShouldSplit:
			first, second, err := imgutil.SplitFile(path, order, deps.Encode)
			if err != nil {
				events.Warnf(deps.Sink, "Could not split %s, keeping it whole: %v", base, err)
				stats.SplitFailed++
				stats.Kept++
				out = append(out, path)
				continue
			}
			out = append(out, first, second)
			stats.Split++
			if cfg.DeleteOriginals {
				if err := os.Remove(path); err != nil {
					events.Warnf(deps.Sink, "Could not delete %s: %v", base, err)
				}
			}
		case cfg.RotateWide && d.Wide:
			if err := imgutil.RotateFile(path, 90, deps.Encode); err != nil {
				events.Warnf(deps.Sink, "Could not rotate %s: %v", base, err)
				stats.Kept++
			} else {
				stats.Rotated++
			}
			out = append(out, path)
		default:
			stats.Kept++
			out = append(out, path)
		}
	}

	metrics.AddPages("split", stats.Split)
	metrics.AddPages("rotated", stats.Rotated)
	metrics.AddPages("kept", stats.Kept)
	metrics.AddPages("unreadable", stats.Unreadable)

	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}
	if deps.Packager == nil {
		return nil, stats, errors.New("no packager configured")
	}
	art, err := deps.Packager.Package(ctx, out, cfg.Format, root, outputName(root, name, cfg))
	if err != nil {
		return nil, stats, err
	}
	events.Infof(deps.Sink, "Created %s (%d pages)", filepath.Base(art.Path), len(out))

	if cfg.DeleteOriginals {
		if err := removeTree(folder); err != nil {
			events.Warnf(deps.Sink, "Could not fully delete %s: %v", name, err)
		}
	}
	return &art, stats, nil
}

// dropSplitSources removes pages whose two halves are already in the
// listing. The halves stay and are classified like any other page.
func dropSplitSources(images []string) ([]string, int) {
	present := make(map[string]bool, len(images))
	for _, p := range images {
		present[p] = true
	}
	kept := images[:0:0]
	for _, p := range images {
		first, second := imgutil.SplitNames(p)
		if present[first] && present[second] {
			continue
		}
		kept = append(kept, p)
	}
	return kept, len(images) - len(kept)
}

// outputName picks the artifact base name for a folder. An existing file at
// the plain output path, typically the archive the folder was extracted
// from, is only replaced when originals are being deleted anyway.
func outputName(root, name string, cfg config.Processing) string {
	if cfg.DeleteOriginals || cfg.Format == config.FormatFolder {
		return name
	}
	if _, err := os.Stat(packaging.OutputPath(root, name, cfg.Format)); err == nil {
		return name + "_processed"
	}
	return name
}

// removeTree deletes dir bottom-up. Entries that cannot be removed are
// skipped and reported in the returned error.
func removeTree(dir string) error {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return err
	}
	// Deepest first so every directory is empty by the time it is removed.
	sort.SliceStable(paths, func(i, j int) bool {
		return strings.Count(paths[i], string(filepath.Separator)) > strings.Count(paths[j], string(filepath.Separator))
	})

	var errs []error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
