package safesave

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Overwrite policies accepted by PolicyConfirmer.
const (
	PolicyPrompt = "prompt"
	PolicyAlways = "always"
	PolicyNever  = "never"
)

// Confirmer decides whether an existing file at path may be replaced.
type Confirmer interface {
	ConfirmOverwrite(ctx context.Context, path string) (bool, error)
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context, path string) (bool, error)

// ConfirmOverwrite calls f.
func (f ConfirmFunc) ConfirmOverwrite(ctx context.Context, path string) (bool, error) {
	return f(ctx, path)
}

var (
	// AlwaysOverwrite replaces existing files without asking.
	AlwaysOverwrite Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })
	// NeverOverwrite keeps every existing file.
	NeverOverwrite Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) { return false, nil })
)

// Prompt asks on out and reads one line of input per question. Only "y" or
// "yes" (any case) confirms; end of input declines.
type Prompt struct {
	mu     sync.Mutex
	reader *bufio.Reader
	out    io.Writer
}

// NewPrompt returns a prompt reading answers from in and writing questions
// to out.
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	if in == nil {
		in = strings.NewReader("")
	}
	if out == nil {
		out = io.Discard
	}
	return &Prompt{reader: bufio.NewReader(in), out: out}
}

// ConfirmOverwrite implements Confirmer.
func (p *Prompt) ConfirmOverwrite(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := fmt.Fprintf(p.out, "%s already exists. Overwrite? [y/N]: ", path); err != nil {
		return false, fmt.Errorf("write prompt: %w", err)
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	if err == io.EOF && line == "" {
		fmt.Fprintln(p.out)
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// PolicyConfirmer maps a configured overwrite policy to a Confirmer. The
// prompt policy asks on out and reads answers from in.
func PolicyConfirmer(policy string, in io.Reader, out io.Writer) (Confirmer, error) {
	switch strings.ToLower(strings.TrimSpace(policy)) {
	case PolicyPrompt, "":
		return NewPrompt(in, out), nil
	case PolicyAlways:
		return AlwaysOverwrite, nil
	case PolicyNever:
		return NeverOverwrite, nil
	default:
		return nil, fmt.Errorf("unknown overwrite policy %q (want prompt, always, or never)", policy)
	}
}
