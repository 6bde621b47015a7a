package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// DebugPrinter writes the human-readable trace of a run started in debug
// mode. Each line is prefixed with a bracketed timestamp and dimmed with ANSI
// colour codes:
//
//	[2024-05-01 12:00:00] Getting chat completion for...
//
// A nil *DebugPrinter discards everything.
type DebugPrinter struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
	now   func() time.Time
}

// DebugPrinterOptions configures NewDebugPrinter.
type DebugPrinterOptions struct {
	// Color enables ANSI colour codes. Defaults to true.
	Color bool
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

// NewDebugPrinter creates a printer writing to out (os.Stdout when nil).
func NewDebugPrinter(out io.Writer, optFns ...func(o *DebugPrinterOptions)) *DebugPrinter {
	opts := DebugPrinterOptions{Color: true, Now: time.Now}
	for _, fn := range optFns {
		fn(&opts)
	}
	if out == nil {
		out = os.Stdout
	}
	return &DebugPrinter{out: out, color: opts.Color, now: opts.Now}
}

// Print joins parts with spaces and writes one timestamped line.
func (p *DebugPrinter) Print(parts ...any) {
	if p == nil {
		return
	}

	strs := make([]string, len(parts))
	for i, part := range parts {
		strs[i] = fmt.Sprint(part)
	}
	msg := strings.Join(strs, " ")
	ts := p.now().Format(time.DateTime)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.color {
		_, _ = fmt.Fprintf(p.out, "\x1b[97m[\x1b[90m%s\x1b[97m]\x1b[90m %s\x1b[0m\n", ts, msg)
		return
	}
	_, _ = fmt.Fprintf(p.out, "[%s] %s\n", ts, msg)
}
