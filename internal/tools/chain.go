package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrNoCandidate is returned when none of the candidates is installed.
var ErrNoCandidate = errors.New("no external tool available")

// Invocation is what a candidate is asked to do: read Input, write Output.
type Invocation struct {
	Input  string
	Output string
}

// Candidate is one way of running an external tool. Path is either an
// absolute install location (checked for existence) or a bare command name
// resolved through PATH.
type Candidate struct {
	Name string
	Path string
	Args func(Invocation) []string
}

// Resolve returns the executable to run, if present on this machine.
func (c Candidate) Resolve() (string, bool) {
	if c.Path == "" {
		return "", false
	}
	if filepath.IsAbs(c.Path) || strings.ContainsAny(c.Path, `/\`) {
		info, err := os.Stat(c.Path)
		if err != nil || info.IsDir() {
			return "", false
		}
		return c.Path, true
	}
	p, err := exec.LookPath(c.Path)
	if err != nil {
		return "", false
	}
	return p, true
}

// Chain tries candidates in order until one exits with status 0.
type Chain struct {
	Candidates []Candidate
	Timeout    time.Duration
}

// Available reports whether at least one candidate resolves.
func (ch Chain) Available() bool {
	for _, c := range ch.Candidates {
		if _, ok := c.Resolve(); ok {
			return true
		}
	}
	return false
}

// Run executes the first working candidate. A candidate that times out or
// exits non-zero is treated like a missing one and the next is tried.
func (ch Chain) Run(ctx context.Context, inv Invocation) (Candidate, error) {
	seen := map[string]bool{}
	var failures []error
	for _, c := range ch.Candidates {
		if err := ctx.Err(); err != nil {
			return Candidate{}, err
		}
		exe, ok := c.Resolve()
		if !ok {
			log.Debug().Str("tool", c.Name).Str("path", c.Path).Msg("tool candidate not installed")
			continue
		}
		if seen[exe] {
			continue
		}
		seen[exe] = true

		if err := ch.runOne(ctx, exe, c.Args(inv)); err != nil {
			if ctx.Err() != nil {
				return Candidate{}, ctx.Err()
			}
			log.Debug().Err(err).Str("tool", c.Name).Str("exe", exe).Msg("tool candidate failed")
			failures = append(failures, fmt.Errorf("%s: %w", c.Name, err))
			continue
		}
		return c, nil
	}
	if len(failures) == 0 {
		return Candidate{}, ErrNoCandidate
	}
	return Candidate{}, errors.Join(failures...)
}

func (ch Chain) runOne(ctx context.Context, exe string, args []string) error {
	timeout := ch.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, exe, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	cmd.WaitDelay = 2 * time.Second

	err := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("timed out after %v", timeout)
	}
	if err != nil {
		msg := strings.TrimSpace(out.String())
		if len(msg) > 200 {
			msg = msg[:200] + "..."
		}
		if msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}
