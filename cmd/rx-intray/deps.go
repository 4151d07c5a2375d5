/*
Copyright © 2026 Cristian Oliveira <license@cristianoliveira.dev>
*/
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cristianoliveira/rx-intray/internal/desktop"
	"github.com/cristianoliveira/rx-intray/internal/logging"
	"github.com/cristianoliveira/rx-intray/internal/manager"
	"github.com/cristianoliveira/rx-intray/internal/settings"
)

// managerConfig selects how a command's manager is built.
type managerConfig struct {
	// Prompter answers desktop permission questions. Nil grants on request.
	Prompter desktop.Prompter
	// Ephemeral keeps settings in memory for this process only.
	Ephemeral bool
}

// newManager builds the notification manager for one command run.
// Tests replace it to inject an in-memory platform.
var newManager = func(ctx context.Context, cfg managerConfig) (*manager.Manager, error) {
	opts, err := manager.OptionsFromConfig(logging.GetGlobal(), cfg.Prompter)
	if err != nil {
		return nil, err
	}
	if cfg.Ephemeral {
		if c, ok := opts.Persister.(io.Closer); ok {
			c.Close()
		}
		opts.Persister = settings.NewMemoryPersister(nil)
	}
	return manager.New(ctx, opts), nil
}

// openPersister opens the configured settings backend.
var openPersister = settings.NewPersisterFromConfig

// closePersister releases p when it holds resources.
func closePersister(p settings.Persister) {
	if c, ok := p.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logging.Warn("closing settings backend", "error", err)
		}
	}
}

// linePrompter asks yes/no questions on a line-oriented terminal.
type linePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newLinePrompter(in io.Reader, out io.Writer) *linePrompter {
	br, ok := in.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(in)
	}
	return &linePrompter{in: br, out: out}
}

// Confirm implements desktop.Prompter. Only "y" and "yes" count as consent.
func (p *linePrompter) Confirm(ctx context.Context, question string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ", question)

	type answer struct {
		line string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := p.in.ReadString('\n')
		ch <- answer{line, err}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a := <-ch:
		if a.err != nil && a.line == "" {
			if a.err == io.EOF {
				return false, nil
			}
			return false, a.err
		}
		switch strings.ToLower(strings.TrimSpace(a.line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}
