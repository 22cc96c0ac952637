package config

import (
	"testing"
	"time"
)

func TestParseSplitMode(t *testing.T) {
	cases := map[string]SplitMode{
		"auto":      SplitAuto,
		"":          SplitAuto,
		"KEEP":      SplitKeep,
		"split-all": SplitAll,
		"all":       SplitAll,
	}
	for in, want := range cases {
		got, err := ParseSplitMode(in)
		if err != nil {
			t.Fatalf("ParseSplitMode(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseSplitMode(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseSplitMode("sideways"); err == nil {
		t.Fatal("expected error for unknown split mode")
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"cbz":    FormatCBZ,
		".CBR":   FormatCBR,
		"zip":    FormatZIP,
		"rar":    FormatRAR,
		"folder": FormatFolder,
		"pdf":    FormatPDF,
	}
	for in, want := range cases {
		got, err := ParseFormat(in)
		if err != nil {
			t.Fatalf("ParseFormat(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseFormat(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseFormat("7z"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestFormatExt(t *testing.T) {
	if FormatFolder.Ext() != "" {
		t.Errorf("folder ext = %q, want empty", FormatFolder.Ext())
	}
	if FormatCBR.Ext() != ".cbr" {
		t.Errorf("cbr ext = %q", FormatCBR.Ext())
	}
	if !FormatRAR.IsRAR() || !FormatCBR.IsRAR() || FormatCBZ.IsRAR() {
		t.Error("IsRAR mismatch")
	}
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("western")
	if err != nil || d != LeftToRight {
		t.Fatalf("ParseDirection(western) = %v, %v", d, err)
	}
	d, err = ParseDirection("RTL")
	if err != nil || d != RightToLeft {
		t.Fatalf("ParseDirection(RTL) = %v, %v", d, err)
	}
}

func TestValidate(t *testing.T) {
	p := Default()
	p.SkipStart = 1000
	if err := p.Validate(); err != nil {
		t.Fatalf("large skip counts must be valid: %v", err)
	}
	p.SkipEnd = -1
	if err := p.Validate(); err == nil {
		t.Fatal("expected error for negative skip-end")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("MANGASPLIT_FORMAT", "rar")
	t.Setenv("MANGASPLIT_TOOL_TIMEOUT", "45s")
	t.Setenv("MANGASPLIT_WORKERS", "not-a-number")
	t.Setenv("MANGASPLIT_LOG_PRETTY", "off")

	env := FromEnv()
	if env.Format != "rar" {
		t.Errorf("Format = %q", env.Format)
	}
	if env.ToolTimeout != 45*time.Second {
		t.Errorf("ToolTimeout = %v", env.ToolTimeout)
	}
	if env.Workers != 1 {
		t.Errorf("Workers = %d, want default 1", env.Workers)
	}
	if env.Logging.Pretty {
		t.Error("Pretty should be false")
	}
}
