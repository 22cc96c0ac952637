package config

import (
	"fmt"
	"strings"
)

type SplitMode int

const (
	SplitAuto SplitMode = iota
	SplitKeep
	SplitAll
)

func (m SplitMode) String() string {
	switch m {
	case SplitAuto:
		return "auto"
	case SplitKeep:
		return "keep"
	case SplitAll:
		return "split-all"
	default:
		return "unknown"
	}
}

// ParseSplitMode accepts the CLI spellings plus a few aliases.
func ParseSplitMode(s string) (SplitMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto", "detect", "":
		return SplitAuto, nil
	case "keep", "none", "original":
		return SplitKeep, nil
	case "split-all", "splitall", "all":
		return SplitAll, nil
	default:
		return SplitAuto, fmt.Errorf("unknown split mode %q (want auto, keep or split-all)", s)
	}
}

// Direction is the reading order of a spread: it decides which half becomes page 1.
type Direction int

const (
	RightToLeft Direction = iota
	LeftToRight
)

func (d Direction) String() string {
	if d == LeftToRight {
		return "ltr"
	}
	return "rtl"
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rtl", "manga", "japanese", "":
		return RightToLeft, nil
	case "ltr", "western", "comic":
		return LeftToRight, nil
	default:
		return RightToLeft, fmt.Errorf("unknown reading direction %q (want rtl or ltr)", s)
	}
}

type Format int

const (
	FormatCBZ Format = iota
	FormatCBR
	FormatZIP
	FormatRAR
	FormatFolder
	FormatPDF
)

func (f Format) String() string {
	switch f {
	case FormatCBZ:
		return "cbz"
	case FormatCBR:
		return "cbr"
	case FormatZIP:
		return "zip"
	case FormatRAR:
		return "rar"
	case FormatFolder:
		return "folder"
	case FormatPDF:
		return "pdf"
	default:
		return "unknown"
	}
}

// Ext returns the file extension (with dot) of an archive format, or "" for folder output.
func (f Format) Ext() string {
	if f == FormatFolder {
		return ""
	}
	return "." + f.String()
}

// IsRAR reports whether the format is produced by an external RAR tool.
func (f Format) IsRAR() bool {
	return f == FormatCBR || f == FormatRAR
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "cbz", "":
		return FormatCBZ, nil
	case "cbr":
		return FormatCBR, nil
	case "zip":
		return FormatZIP, nil
	case "rar":
		return FormatRAR, nil
	case "folder", "dir", "directory":
		return FormatFolder, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return FormatCBZ, fmt.Errorf("unknown output format %q (want cbz, cbr, zip, rar, folder or pdf)", s)
	}
}

// Processing is the per-run configuration handed to the pipeline. It is never
// mutated after construction.
type Processing struct {
	SplitMode       SplitMode
	Direction       Direction
	SkipStart       int
	SkipEnd         int
	RotateWide      bool
	DeleteOriginals bool
	Format          Format
}

func Default() Processing {
	return Processing{
		SplitMode: SplitAuto,
		Direction: RightToLeft,
		Format:    FormatCBZ,
	}
}

// Validate rejects negative skip counts. Skip counts larger than a folder are
// fine; they are clamped when the window is computed.
func (p Processing) Validate() error {
	if p.SkipStart < 0 {
		return fmt.Errorf("skip-start must be >= 0, got %d", p.SkipStart)
	}
	if p.SkipEnd < 0 {
		return fmt.Errorf("skip-end must be >= 0, got %d", p.SkipEnd)
	}
	return nil
}
