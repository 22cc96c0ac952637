// Package classify decides, page by page, whether a folder image is a
// double-page spread that should be split.
package classify

import "mangasplit/internal/config"

// SpecialSpreadWindow is how many positions after the last single page a wide
// image is still trusted to be an intentional wide single page.
const SpecialSpreadWindow = 3

// Record is the measured size of one page.
type Record struct {
	Path   string
	Width  int
	Height int
}

func (r Record) Wide() bool { return r.Width > r.Height }

// State carries what the classifier has learned about earlier pages of the
// same folder. The zero value means no single page has been seen yet.
type State struct {
	latestSingle int
	seen         bool
}

// NewState returns the state for the first page of a folder.
func NewState() State { return State{} }

// LatestSinglePage returns the index of the last non-wide page, if any.
func (s State) LatestSinglePage() (int, bool) { return s.latestSingle, s.seen }

type Decision struct {
	ShouldSplit   bool
	Wide          bool
	Exception     bool
	SpecialSpread bool
}

// Window returns the clamped exception window for a folder of total pages:
// indexes below start and at or above end are never split.
func Window(total int, cfg config.Processing) (start, end int) {
	start = clamp(cfg.SkipStart, total)
	end = total - clamp(cfg.SkipEnd, total)
	return start, end
}

// IsException reports whether index falls inside the skip window.
func IsException(index, total int, cfg config.Processing) bool {
	start, end := Window(total, cfg)
	return index < start || index >= end
}

// Decide classifies the page at index and returns the state for the next page.
func Decide(rec Record, index, total int, cfg config.Processing, st State) (Decision, State) {
	d := Decision{
		Wide:      rec.Wide(),
		Exception: IsException(index, total, cfg),
	}
	d.SpecialSpread = d.Wide && st.seen && index-st.latestSingle < SpecialSpreadWindow

	switch cfg.SplitMode {
	case config.SplitAll:
		d.ShouldSplit = !d.Exception
	case config.SplitAuto:
		d.ShouldSplit = !d.Exception && d.Wide && !d.SpecialSpread
	default:
		d.ShouldSplit = false
	}

	if !d.Wide {
		st = State{latestSingle: index, seen: true}
	}
	return d, st
}

func clamp(n, total int) int {
	if n < 0 {
		return 0
	}
	if n > total {
		return total
	}
	return n
}
