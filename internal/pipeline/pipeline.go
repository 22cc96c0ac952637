// Package pipeline drives a run: it extracts the archives under a root
// directory, processes every source folder and packages the results.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"mangasplit/internal/archive"
	"mangasplit/internal/config"
	"mangasplit/internal/events"
	"mangasplit/internal/metrics"
)

// IsOutputDir reports whether name (a folder name or an archive name without
// its extension) looks like something this tool produced.
func IsOutputDir(name string) bool {
	return strings.HasSuffix(name, "_processed")
}

// Run processes root. Per-item failures are collected in the summary; only
// an unusable root or configuration is returned as an error. A cancelled run
// returns what it finished with Cancelled set.
func Run(ctx context.Context, root string, cfg config.Processing, deps Deps) (Summary, error) {
	summary := Summary{}
	if err := cfg.Validate(); err != nil {
		return summary, err
	}

	info, err := os.Stat(root)
	if err != nil {
		return summary, err
	}
	if !info.IsDir() {
		return summary, fmt.Errorf("%s is not a directory", root)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return summary, err
	}

	// Archive -> folder it was extracted to.
	extracted := map[string]string{}
	archives, err := listArchives(absRoot)
	if err != nil {
		return summary, err
	}
	for _, a := range archives {
		if ctx.Err() != nil {
			summary.Cancelled = true
			return summary, nil
		}
		if deps.Extractor == nil {
			break
		}
		dir, err := deps.Extractor.Extract(ctx, a)
		if err != nil {
			if ctx.Err() != nil {
				summary.Cancelled = true
				return summary, nil
			}
			events.Errorf(deps.Sink, "Failed to extract %s: %v", filepath.Base(a), err)
			summary.Failures = append(summary.Failures, Failure{Item: filepath.Base(a), Err: err})
			continue
		}
		summary.ArchivesExtracted++
		extracted[a] = dir
	}

	folders, err := listFolders(absRoot)
	if err != nil {
		return summary, err
	}
	produced := processFolders(ctx, absRoot, folders, cfg, deps, &summary)

	if ctx.Err() != nil {
		summary.Cancelled = true
		return summary, nil
	}

	if cfg.DeleteOriginals {
		for _, a := range archives {
			dir, ok := extracted[a]
			if !ok {
				continue
			}
			artPath, ok := produced[dir]
			if !ok {
				continue
			}
			if artPath == a {
				// The artifact was written over the archive it came from.
				summary.ArchivesDeleted++
				continue
			}
			if err := os.Remove(a); err != nil {
				events.Warnf(deps.Sink, "Could not delete archive %s: %v", filepath.Base(a), err)
				continue
			}
			summary.ArchivesDeleted++
			events.Infof(deps.Sink, "Deleted original archive %s", filepath.Base(a))
		}
	}

	events.Progress(deps.Sink, "Done", 100)
	return summary, nil
}

// processFolders runs the folder jobs through a fixed pool of workers and
// folds their results into summary. It returns the artifact path of every
// folder that produced one.
func processFolders(ctx context.Context, root string, folders []string, cfg config.Processing, deps Deps, summary *Summary) map[string]string {
	produced := map[string]string{}
	total := len(folders)
	if total == 0 {
		events.Infof(deps.Sink, "No folders to process in %s", root)
		return produced
	}

	jobs := make(chan job)
	results := make(chan result)

	workers := deps.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > total {
		workers = total
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			worker(ctx, jobs, results, root, cfg, deps)
		}()
	}

	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		done := 0
		for res := range results {
			done++
			summary.Folders++
			summary.Pages.add(res.Stats)
			switch {
			case res.Err != nil && errors.Is(res.Err, context.Canceled):
				metrics.IncFolder("cancelled")
			case res.Err != nil:
				metrics.IncFolder("failed")
				events.Errorf(deps.Sink, "Failed to process %s: %v", res.Name, res.Err)
				summary.Failures = append(summary.Failures, Failure{Item: res.Name, Err: res.Err})
			case res.Artifact == nil:
				metrics.IncFolder("empty")
				summary.Empty++
			default:
				metrics.IncFolder("packaged")
				summary.Packaged++
				summary.Artifacts = append(summary.Artifacts, *res.Artifact)
				produced[res.Folder] = res.Artifact.Path
			}
			events.Progress(deps.Sink, fmt.Sprintf("Processed %s (%d/%d)", res.Name, done, total), done*100/total)
		}
	}()

	go func() {
		defer close(jobs)
		for _, f := range folders {
			select {
			case jobs <- job{Folder: f, Name: filepath.Base(f)}:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(results)
	<-collectorDone
	return produced
}

func worker(ctx context.Context, jobs <-chan job, results chan<- result, root string, cfg config.Processing, deps Deps) {
	for j := range jobs {
		if ctx.Err() != nil {
			return
		}
		log.Debug().Str("folder", j.Name).Msg("processing folder")
		art, stats, err := ProcessFolder(ctx, j.Folder, root, cfg, deps)
		results <- result{Folder: j.Folder, Name: j.Name, Artifact: art, Stats: stats, Err: err}
	}
}

func listArchives(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || !archive.IsArchivePath(name) || strings.HasPrefix(name, ".") {
			continue
		}
		if IsOutputDir(strings.TrimSuffix(name, filepath.Ext(name))) {
			continue
		}
		names = append(names, name)
	}
	SortNatural(names)
	return joinAll(root, names), nil
}

// listFolders returns the top-level source folders, skipping hidden
// directories and earlier folder outputs.
func listFolders(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") || IsOutputDir(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	SortNatural(names)
	return joinAll(root, names), nil
}

func joinAll(root string, names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = filepath.Join(root, n)
	}
	return out
}
