// Package archive extracts comic archives (.cbz/.zip/.cbr/.rar) into a
// sibling directory so their pages can be processed like any other folder.
package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"

	"mangasplit/internal/events"
	"mangasplit/internal/metrics"
	"mangasplit/internal/tools"
)

var (
	ErrUnsupported = errors.New("unsupported archive type")
	// ErrUnsafePath is returned for entries that would land outside the extraction directory.
	ErrUnsafePath = errors.New("archive entry escapes extraction directory")
)

type container int

const (
	containerZIP container = iota
	containerRAR
)

var archiveExts = map[string]container{
	".zip": containerZIP,
	".cbz": containerZIP,
	".rar": containerRAR,
	".cbr": containerRAR,
}

// IsArchivePath reports whether path has a recognised archive extension.
func IsArchivePath(path string) bool {
	_, ok := archiveExts[strings.ToLower(filepath.Ext(path))]
	return ok
}

// DestDir returns the directory an archive is extracted into: its own path
// without the extension.
func DestDir(archivePath string) string {
	return strings.TrimSuffix(archivePath, filepath.Ext(archivePath))
}

type Extractor struct {
	// Tools is the fallback chain for RAR archives the in-process decoder rejects.
	Tools tools.Chain
	Sink  events.Sink
}

// NewExtractor returns an extractor using the default tool candidates.
func NewExtractor(sink events.Sink, chain tools.Chain) *Extractor {
	if chain.Candidates == nil {
		chain.Candidates = tools.ExtractCandidates()
	}
	return &Extractor{Tools: chain, Sink: sink}
}

// Extract unpacks archivePath into DestDir(archivePath) and returns that directory.
// The source archive is never removed.
func (e *Extractor) Extract(ctx context.Context, archivePath string) (string, error) {
	info, err := os.Stat(archivePath)
	if err != nil {
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s: %w", archivePath, ErrUnsupported)
	}
	kind, ok := archiveExts[strings.ToLower(filepath.Ext(archivePath))]
	if !ok {
		return "", fmt.Errorf("%s: %w", archivePath, ErrUnsupported)
	}
	kind = sniff(archivePath, kind)

	dest := DestDir(archivePath)
	_, statErr := os.Stat(dest)
	created := os.IsNotExist(statErr)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", err
	}

	method := "zip"
	if kind == containerZIP {
		err = extractZip(ctx, archivePath, dest)
	} else {
		method, err = e.extractRAR(ctx, archivePath, dest)
	}
	name := filepath.Base(archivePath)
	if err != nil {
		// A half-extracted directory would otherwise be picked up as a source folder.
		if created {
			_ = os.RemoveAll(dest)
		}
		metrics.IncArchive("failed")
		return "", fmt.Errorf("extract %s: %w", name, err)
	}
	metrics.IncArchive(method)
	events.Infof(e.Sink, "Extracted %s (%s)", name, method)
	return dest, nil
}

func (e *Extractor) extractRAR(ctx context.Context, archivePath, dest string) (string, error) {
	err := extractRARNative(ctx, archivePath, dest)
	if err == nil {
		return "rar", nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	log.Debug().Err(err).Str("archive", archivePath).Msg("in-process rar decoder failed, trying external tools")
	events.Warnf(e.Sink, "Built-in RAR decoder failed for %s, trying external tools", filepath.Base(archivePath))

	c, toolErr := e.Tools.Run(ctx, tools.Invocation{Input: archivePath, Output: dest})
	if toolErr != nil {
		if errors.Is(toolErr, tools.ErrNoCandidate) {
			return "", fmt.Errorf("%w (decoder: %v)", toolErr, err)
		}
		return "", toolErr
	}
	return c.Name, nil
}

// sniff corrects the container type of archives whose extension lies, such
// as .cbr files that are really ZIP streams.
func sniff(path string, byExt container) container {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return byExt
	}
	for m := mt; m != nil; m = m.Parent() {
		switch {
		case m.Is("application/zip"):
			return containerZIP
		case m.Is("application/x-rar-compressed"):
			return containerRAR
		}
	}
	return byExt
}

// safeJoin resolves an archive entry name under dest, rejecting absolute
// paths and parent traversal.
func safeJoin(dest, name string) (string, error) {
	name = strings.ReplaceAll(name, `\`, "/")
	if name == "" || strings.HasPrefix(name, "/") || filepath.VolumeName(name) != "" {
		return "", fmt.Errorf("%q: %w", name, ErrUnsafePath)
	}
	target := filepath.Join(dest, filepath.FromSlash(name))
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q: %w", name, ErrUnsafePath)
	}
	return target, nil
}
