package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"mangasplit/internal/classify"
	"mangasplit/internal/config"
)

// Action is what a run would do with one page.
type Action string

const (
	ActionSplit      Action = "split"
	ActionRotate     Action = "rotate"
	ActionKeep       Action = "keep"
	ActionUnreadable Action = "unreadable"
)

type PagePlan struct {
	Path     string
	Width    int
	Height   int
	Decision classify.Decision
	Action   Action
	Err      error
}

type FolderPlan struct {
	Folder string
	Pages  []PagePlan
}

// Count returns how many pages get action a.
func (fp FolderPlan) Count(a Action) int {
	n := 0
	for _, p := range fp.Pages {
		if p.Action == a {
			n++
		}
	}
	return n
}

type Plan struct {
	Root     string
	Archives []string
	Folders  []FolderPlan
}

// PlanFolder classifies the pages of folder exactly like ProcessFolder would,
// without writing anything.
func PlanFolder(ctx context.Context, folder string, cfg config.Processing, opts classify.ReadOptions) (FolderPlan, error) {
	fp := FolderPlan{Folder: folder}
	images, err := ListImages(folder)
	if err != nil {
		return fp, err
	}

	st := classify.NewState()
	for i, path := range images {
		if err := ctx.Err(); err != nil {
			return fp, err
		}
		page := PagePlan{Path: path}
		rec, err := classify.Read(path, opts)
		if err != nil {
			page.Action = ActionUnreadable
			page.Err = err
			fp.Pages = append(fp.Pages, page)
			continue
		}
		page.Width, page.Height = rec.Width, rec.Height
		page.Decision, st = classify.Decide(rec, i, len(images), cfg, st)
		switch {
		case page.Decision.ShouldSplit:
			page.Action = ActionSplit
		case cfg.RotateWide && page.Decision.Wide:
			page.Action = ActionRotate
		default:
			page.Action = ActionKeep
		}
		fp.Pages = append(fp.Pages, page)
	}
	return fp, nil
}

// BuildPlan plans every source folder under root. Archives are listed but
// not opened, since planning must not extract anything.
func BuildPlan(ctx context.Context, root string, cfg config.Processing, opts classify.ReadOptions) (Plan, error) {
	plan := Plan{Root: root}
	if err := cfg.Validate(); err != nil {
		return plan, err
	}
	if _, err := os.Stat(root); err != nil {
		return plan, err
	}

	archives, err := listArchives(root)
	if err != nil {
		return plan, err
	}
	for _, a := range archives {
		plan.Archives = append(plan.Archives, filepath.Base(a))
	}

	folders, err := listFolders(root)
	if err != nil {
		return plan, err
	}
	for _, f := range folders {
		fp, err := PlanFolder(ctx, f, cfg, opts)
		if err != nil {
			return plan, err
		}
		plan.Folders = append(plan.Folders, fp)
	}
	return plan, nil
}
