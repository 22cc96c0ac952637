package tools

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script tools are not supported on windows")
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func passArgs(inv Invocation) []string { return []string{inv.Input, inv.Output} }

func TestChainSkipsMissingAndFailing(t *testing.T) {
	dir := t.TempDir()
	failing := writeScript(t, dir, "failing", "exit 3")
	working := writeScript(t, dir, "working", `printf ok > "$2"`)

	out := filepath.Join(dir, "out.txt")
	ch := Chain{Candidates: []Candidate{
		{Name: "missing", Path: filepath.Join(dir, "does-not-exist"), Args: passArgs},
		{Name: "failing", Path: failing, Args: passArgs},
		{Name: "working", Path: working, Args: passArgs},
	}}

	used, err := ch.Run(context.Background(), Invocation{Input: "in", Output: out})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if used.Name != "working" {
		t.Fatalf("used %q, want working", used.Name)
	}
	data, err := os.ReadFile(out)
	if err != nil || string(data) != "ok" {
		t.Fatalf("output = %q, %v", data, err)
	}
}

func TestChainNoCandidate(t *testing.T) {
	ch := Chain{Candidates: []Candidate{
		{Name: "missing", Path: "/nonexistent/tool/path", Args: passArgs},
		{Name: "empty", Path: "", Args: passArgs},
	}}
	if ch.Available() {
		t.Fatal("Available should be false")
	}
	_, err := ch.Run(context.Background(), Invocation{})
	if !errors.Is(err, ErrNoCandidate) {
		t.Fatalf("err = %v, want ErrNoCandidate", err)
	}
}

func TestChainAllFail(t *testing.T) {
	dir := t.TempDir()
	failing := writeScript(t, dir, "failing", "echo broken archive >&2; exit 2")
	ch := Chain{Candidates: []Candidate{{Name: "failing", Path: failing, Args: passArgs}}}

	_, err := ch.Run(context.Background(), Invocation{})
	if err == nil || errors.Is(err, ErrNoCandidate) {
		t.Fatalf("err = %v, want tool failure", err)
	}
	if !strings.Contains(err.Error(), "broken archive") {
		t.Fatalf("error should carry tool output: %v", err)
	}
}

func TestChainTimeoutFallsThrough(t *testing.T) {
	dir := t.TempDir()
	slow := writeScript(t, dir, "slow", "sleep 5")
	working := writeScript(t, dir, "working", "exit 0")

	ch := Chain{
		Timeout: 200 * time.Millisecond,
		Candidates: []Candidate{
			{Name: "slow", Path: slow, Args: passArgs},
			{Name: "working", Path: working, Args: passArgs},
		},
	}
	start := time.Now()
	used, err := ch.Run(context.Background(), Invocation{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if used.Name != "working" {
		t.Fatalf("used %q, want working", used.Name)
	}
	if time.Since(start) > 4*time.Second {
		t.Fatal("timeout did not stop the slow tool")
	}
}

func TestChainCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ch := Chain{Candidates: ExtractCandidates()}
	if _, err := ch.Run(ctx, Invocation{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRARCreateArgsUseListFile(t *testing.T) {
	args := rarCreateArgs(Invocation{Input: "/tmp/list.txt", Output: "/tmp/out.rar"})
	if args[len(args)-1] != "@/tmp/list.txt" {
		t.Fatalf("last arg = %q", args[len(args)-1])
	}
}
