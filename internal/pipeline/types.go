package pipeline

import (
	"context"

	"mangasplit/internal/config"
	"mangasplit/internal/events"
	"mangasplit/internal/packaging"
	"mangasplit/pkg/imgutil"
)

type Artifact = packaging.Artifact

type Extractor interface {
	Extract(ctx context.Context, archivePath string) (string, error)
}

type Packager interface {
	Package(ctx context.Context, files []string, format config.Format, root, baseName string) (Artifact, error)
}

// Deps are the collaborators and tuning knobs of a run. Sink may be nil.
type Deps struct {
	Sink      events.Sink
	Extractor Extractor
	Packager  Packager
	Encode    imgutil.EncodeOptions
	HonorEXIF bool
	// Workers is how many folders are processed at once. Pages inside one
	// folder are always handled in order by a single goroutine.
	Workers int
}

type FolderStats struct {
	Images     int
	Split      int
	Rotated    int
	Kept       int
	Unreadable int
	// SplitFailed counts spreads that were kept whole because writing the
	// halves failed.
	SplitFailed int
}

func (s *FolderStats) add(o FolderStats) {
	s.Images += o.Images
	s.Split += o.Split
	s.Rotated += o.Rotated
	s.Kept += o.Kept
	s.Unreadable += o.Unreadable
	s.SplitFailed += o.SplitFailed
}

// Failure is one item the run gave up on.
type Failure struct {
	Item string
	Err  error
}

type Summary struct {
	Folders           int
	Packaged          int
	Empty             int
	ArchivesExtracted int
	ArchivesDeleted   int
	Pages             FolderStats
	Artifacts         []Artifact
	Failures          []Failure
	Cancelled         bool
}

type job struct {
	Folder string
	Name   string
}

type result struct {
	Folder   string
	Name     string
	Artifact *Artifact
	Stats    FolderStats
	Err      error
}
