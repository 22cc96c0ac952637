package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"mangasplit/internal/classify"
	"mangasplit/internal/pipeline"
	"mangasplit/internal/tui"
)

var (
	scanRotateWide bool
	scanAll        bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [flags] <root>",
	Short: "Show which pages would be split or rotated, without modifying files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := processingConfig("cbz", scanRotateWide, false)
		if err != nil {
			return err
		}
		if err := initLogging(true); err != nil {
			return err
		}

		plan, err := pipeline.BuildPlan(context.Background(), args[0], cfg, classify.ReadOptions{HonorEXIF: honorEXIF})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(plan.Archives) > 0 {
			fmt.Fprintln(out, scanFolderStyle.Render("Archives (extracted on process)"))
			for _, a := range plan.Archives {
				fmt.Fprintf(out, "  %s %s\n", scanBulletStyle.Render("-"), scanValueStyle.Render(a))
			}
			fmt.Fprintln(out)
		}

		for i, fp := range plan.Folders {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "%s %s\n",
				scanFolderStyle.Render(filepath.Base(fp.Folder)),
				scanDimStyle.Render(fmt.Sprintf("%d pages, %d split, %d rotate, %d unreadable",
					len(fp.Pages), fp.Count(pipeline.ActionSplit), fp.Count(pipeline.ActionRotate), fp.Count(pipeline.ActionUnreadable))),
			)
			if len(fp.Pages) == 0 {
				fmt.Fprintf(out, "  %s %s\n", scanBulletStyle.Render("-"), scanDimStyle.Render("no images"))
				continue
			}
			for _, page := range fp.Pages {
				if !scanAll && page.Action == pipeline.ActionKeep && !page.Decision.SpecialSpread {
					continue
				}
				printPage(out, fp.Folder, page)
			}
		}
		return nil
	},
}

func printPage(w io.Writer, folder string, page pipeline.PagePlan) {
	rel, err := filepath.Rel(folder, page.Path)
	if err != nil {
		rel = filepath.Base(page.Path)
	}
	action := lipgloss.NewStyle().Foreground(tui.ActionColor(string(page.Action))).Render(fmt.Sprintf("%-10s", page.Action))

	detail := fmt.Sprintf("%dx%d", page.Width, page.Height)
	switch {
	case page.Err != nil:
		detail = page.Err.Error()
	case page.Decision.Exception:
		detail += " (skip window)"
	case page.Decision.SpecialSpread:
		detail += " (wide page right after a single page)"
	}
	fmt.Fprintf(w, "  %s %s %s\n", action, scanValueStyle.Render(rel), scanDimStyle.Render(detail))
}

var (
	scanFolderStyle = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorAccent)
	scanValueStyle  = lipgloss.NewStyle().Foreground(tui.ColorInk)
	scanDimStyle    = lipgloss.NewStyle().Foreground(tui.ColorDim)
	scanBulletStyle = lipgloss.NewStyle().Foreground(tui.ColorDim)
)

func init() {
	scanCmd.Flags().BoolVar(&scanRotateWide, "rotate-wide", false, "show wide pages that would be rotated")
	scanCmd.Flags().BoolVarP(&scanAll, "all", "a", false, "list every page, not only the ones that change")

	rootCmd.AddCommand(scanCmd)
}
