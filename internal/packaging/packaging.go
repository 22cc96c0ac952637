// Package packaging bundles processed pages into the requested output
// container: a comic archive, a plain folder or a PDF.
package packaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"mangasplit/internal/config"
	"mangasplit/internal/events"
	"mangasplit/internal/tools"
)

// Artifact is what a folder turned into.
type Artifact struct {
	Path      string
	Requested config.Format
	// Container is what was actually written. It differs from Requested only
	// when RAR output degraded to ZIP.
	Container string
}

func (a Artifact) FellBack() bool { return a.Container != a.Requested.String() }

type Packager struct {
	RARTools tools.Chain
	Sink     events.Sink
}

func NewPackager(sink events.Sink, chain tools.Chain) *Packager {
	if chain.Candidates == nil {
		chain.Candidates = tools.CreateRARCandidates()
	}
	return &Packager{RARTools: chain, Sink: sink}
}

// OutputPath is where the artifact for baseName ends up under root.
func OutputPath(root, baseName string, format config.Format) string {
	if format == config.FormatFolder {
		return filepath.Join(root, baseName+"_processed")
	}
	return filepath.Join(root, baseName+format.Ext())
}

// Package writes files, in order, into one artifact at OutputPath. Every
// output, folders included, is assembled under a staging name and renamed
// when complete, so a failed or cancelled run never leaves a partial
// artifact at the final path.
func (p *Packager) Package(ctx context.Context, files []string, format config.Format, root, baseName string) (Artifact, error) {
	if len(files) == 0 {
		return Artifact{}, errors.New("nothing to package")
	}
	dest := OutputPath(root, baseName, format)
	art := Artifact{Path: dest, Requested: format, Container: format.String()}

	staging := stagingPath(dest, format)
	defer os.RemoveAll(staging)

	var err error
	switch format {
	case config.FormatFolder:
		err = writeFolder(ctx, files, staging)
	case config.FormatCBZ, config.FormatZIP:
		err = writeZip(ctx, files, staging)
	case config.FormatCBR, config.FormatRAR:
		art.Container, err = p.writeRAR(ctx, files, staging, format)
	case config.FormatPDF:
		err = writePDF(ctx, files, staging)
	default:
		err = fmt.Errorf("unknown output format %v", format)
	}
	if err != nil {
		return Artifact{}, fmt.Errorf("package %s: %w", filepath.Base(dest), err)
	}
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}
	replace := replaceFile
	if format == config.FormatFolder {
		replace = replaceDir
	}
	if err := replace(staging, dest); err != nil {
		return Artifact{}, err
	}
	return art, nil
}

// stagingPath keeps the final extension so tools that key off it behave.
func stagingPath(dest string, format config.Format) string {
	return filepath.Join(filepath.Dir(dest), ".mangasplit-"+uuid.NewString()+format.Ext())
}

// EntryNames returns the name each file gets inside the artifact: its base
// name, with " (n)" appended before the extension when an earlier file
// already took that name.
func EntryNames(files []string) []string {
	used := make(map[string]bool, len(files))
	names := make([]string, len(files))
	for i, f := range files {
		name := filepath.Base(f)
		if used[strings.ToLower(name)] {
			ext := filepath.Ext(name)
			stem := strings.TrimSuffix(name, ext)
			for n := 2; ; n++ {
				candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
				if !used[strings.ToLower(candidate)] {
					name = candidate
					break
				}
			}
		}
		used[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

func writeFolder(ctx context.Context, files []string, dest string) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	for i, name := range EntryNames(files) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := copyFile(files[i], filepath.Join(dest, name)); err != nil {
			return fmt.Errorf("copy %s: %w", filepath.Base(files[i]), err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func replaceFile(tmpPath, destPath string) error {
	if err := os.Rename(tmpPath, destPath); err == nil {
		return nil
	}
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Rename(tmpPath, destPath)
}

// replaceDir swaps a finished staging folder in for an earlier output folder.
func replaceDir(tmpPath, destPath string) error {
	if err := os.RemoveAll(destPath); err != nil {
		return err
	}
	return os.Rename(tmpPath, destPath)
}
