package packaging

import (
	"archive/zip"
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"mangasplit/internal/config"
	"mangasplit/internal/events"
	"mangasplit/internal/tools"
)

func writePage(t *testing.T, path string, shade uint8) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 8, 12))
	for i := range img.Pix {
		img.Pix[i] = shade
	}
	img.SetGray(0, 0, color.Gray{Y: 255 - shade})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func pages(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	var out []string
	for i, n := range names {
		p := filepath.Join(dir, filepath.FromSlash(n))
		writePage(t, p, uint8(i*20))
		out = append(out, p)
	}
	return out
}

func zipNames(t *testing.T, path string) []string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open zip %s: %v", path, err)
	}
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

func noStaging(t *testing.T, dir string) {
	t.Helper()
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".mangasplit-") {
			t.Fatalf("staging leftover %s", e.Name())
		}
	}
}

func TestPackageZipKeepsOrder(t *testing.T) {
	root := t.TempDir()
	files := pages(t, filepath.Join(root, "src"), "p10.png", "p2_1.png", "p2_2.png", "a/p1.png")

	p := NewPackager(events.Discard, tools.Chain{})
	art, err := p.Package(context.Background(), files, config.FormatCBZ, root, "Vol 1")
	if err != nil {
		t.Fatalf("Package: %v", err)
	}
	if art.Path != filepath.Join(root, "Vol 1.cbz") || art.FellBack() {
		t.Fatalf("artifact = %+v", art)
	}
	got := strings.Join(zipNames(t, art.Path), ",")
	if got != "p10.png,p2_1.png,p2_2.png,p1.png" {
		t.Fatalf("entries = %s", got)
	}
	noStaging(t, root)
}

func TestPackageDuplicateNames(t *testing.T) {
	names := EntryNames([]string{"a/001.png", "b/001.png", "c/001.PNG", "001 (2).png"})
	want := []string{"001.png", "001 (2).png", "001 (3).PNG", "001 (2) (2).png"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

func TestPackageFolderCopies(t *testing.T) {
	root := t.TempDir()
	files := pages(t, filepath.Join(root, "src"), "001.png", "002.png")

	art, err := NewPackager(events.Discard, tools.Chain{}).Package(context.Background(), files, config.FormatFolder, root, "src")
	if err != nil {
		t.Fatalf("Package: %v", err)
	}
	if art.Path != filepath.Join(root, "src_processed") {
		t.Fatalf("path = %s", art.Path)
	}
	for _, f := range files {
		if _, err := os.Stat(filepath.Join(art.Path, filepath.Base(f))); err != nil {
			t.Fatalf("copy missing: %v", err)
		}
		if _, err := os.Stat(f); err != nil {
			t.Fatal("folder output must copy, not move")
		}
	}
}

func TestPackageRARFallsBackToZip(t *testing.T) {
	root := t.TempDir()
	files := pages(t, filepath.Join(root, "src"), "001.png", "002.png")

	rec := &events.Recorder{}
	p := &Packager{Sink: rec, RARTools: tools.Chain{Candidates: []tools.Candidate{
		{Name: "rar", Path: filepath.Join(root, "no-such-rar")},
	}}}
	art, err := p.Package(context.Background(), files, config.FormatRAR, root, "src")
	if err != nil {
		t.Fatalf("Package: %v", err)
	}
	if art.Path != filepath.Join(root, "src.rar") {
		t.Fatalf("path = %s", art.Path)
	}
	if !art.FellBack() || art.Container != "zip" {
		t.Fatalf("artifact = %+v, want zip fallback", art)
	}
	if got := zipNames(t, art.Path); len(got) != 2 {
		t.Fatalf("fallback is not a readable zip: %v", got)
	}
	warns := rec.Messages(events.LevelWarn)
	if len(warns) != 1 || !strings.Contains(warns[0], "ZIP") {
		t.Fatalf("warnings = %v", warns)
	}
	noStaging(t, root)
}

func TestPackageRARWithTool(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script tools")
	}
	root := t.TempDir()
	files := pages(t, filepath.Join(root, "src"), "001.png", "002.png")

	tool := filepath.Join(t.TempDir(), "rar")
	// Record the list file as the "archive" so the page order can be checked.
	script := "#!/bin/sh\nlist=\"$1\"\nout=\"$2\"\nfor f in $(cat \"$list\"); do basename \"$f\"; done > \"$out\"\n"
	if err := os.WriteFile(tool, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	p := &Packager{Sink: events.Discard, RARTools: tools.Chain{Candidates: []tools.Candidate{
		{Name: "rar", Path: tool, Args: func(inv tools.Invocation) []string { return []string{inv.Input, inv.Output} }},
	}}}
	art, err := p.Package(context.Background(), files, config.FormatCBR, root, "src")
	if err != nil {
		t.Fatalf("Package: %v", err)
	}
	if art.FellBack() {
		t.Fatal("tool was available, no fallback expected")
	}
	data, err := os.ReadFile(art.Path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "001.png\n002.png\n" {
		t.Fatalf("list = %q", data)
	}
	noStaging(t, root)
}

func TestPackagePDF(t *testing.T) {
	root := t.TempDir()
	files := pages(t, filepath.Join(root, "src"), "001.png", "002.png")

	art, err := NewPackager(events.Discard, tools.Chain{}).Package(context.Background(), files, config.FormatPDF, root, "src")
	if err != nil {
		t.Fatalf("Package: %v", err)
	}
	data, err := os.ReadFile(art.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}
}

func TestPackageCancelledLeavesNothing(t *testing.T) {
	for _, format := range []config.Format{config.FormatZIP, config.FormatFolder} {
		t.Run(format.String(), func(t *testing.T) {
			root := t.TempDir()
			files := pages(t, filepath.Join(root, "src"), "001.png")

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			if _, err := NewPackager(events.Discard, tools.Chain{}).Package(ctx, files, format, root, "src"); err == nil {
				t.Fatal("expected cancellation error")
			}
			if _, err := os.Stat(OutputPath(root, "src", format)); !os.IsNotExist(err) {
				t.Fatal("cancelled packaging must not produce the final output")
			}
			noStaging(t, root)
		})
	}
}

func TestPackageFolderReplacesEarlierOutput(t *testing.T) {
	root := t.TempDir()
	stale := filepath.Join(root, "src_processed", "old.png")
	writePage(t, stale, 0)
	files := pages(t, filepath.Join(root, "src"), "001.png")

	art, err := NewPackager(events.Discard, tools.Chain{}).Package(context.Background(), files, config.FormatFolder, root, "src")
	if err != nil {
		t.Fatalf("Package: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatal("earlier output should be replaced")
	}
	if _, err := os.Stat(filepath.Join(art.Path, "001.png")); err != nil {
		t.Fatalf("page missing: %v", err)
	}
	noStaging(t, root)
}
