package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/brianmathews/PPTcrunch/internal/progress"
)

// ConsoleReporter renders pipeline events as styled lines on a writer.
// Files are processed one at a time, so a single in-place progress line is
// enough; it is cleared before any other output.
type ConsoleReporter struct {
	mu      sync.Mutex
	w       io.Writer
	styles  Styles
	tty     bool
	verbose bool

	lineActive bool
}

// NewConsoleReporter builds a reporter writing to w. When tty is true the
// encoding percentage is rewritten in place with carriage returns.
func NewConsoleReporter(w io.Writer, tty, verbose bool) *ConsoleReporter {
	return &ConsoleReporter{
		w:       w,
		styles:  defaultStyles(),
		tty:     tty,
		verbose: verbose,
	}
}

func (c *ConsoleReporter) Update(u progress.Update) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if u.Stage == progress.StageEncoding && u.Percent >= 0 && c.tty {
		line := fmt.Sprintf("  %s %5.1f%%", c.stageLabel(u.Stage), u.Percent)
		if u.Speed != "" {
			line += c.styles.Faint.Render(" " + u.Speed)
		}
		fmt.Fprintf(c.w, "\r\033[K%s", line)
		c.lineActive = true
		return
	}

	c.clearLine()
	switch u.Stage {
	case progress.StageCompleted:
		fmt.Fprintf(c.w, "%s %s\n", c.styles.Success.Render("✓"), u.Message)
	case progress.StageError:
		fmt.Fprintf(c.w, "%s %s\n", c.styles.Error.Render("✗"), u.Message)
	default:
		fmt.Fprintf(c.w, "%s %s\n", c.stageLabel(u.Stage), u.Message)
	}
}

func (c *ConsoleReporter) Log(l progress.Log) {
	line := strings.TrimRight(l.Line, "\r\n")
	if line == "" {
		return
	}
	warning := strings.HasPrefix(line, "warning:")
	if !c.verbose && !warning {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLine()
	if warning {
		fmt.Fprintln(c.w, c.styles.Warning.Render(line))
		return
	}
	fmt.Fprintln(c.w, c.styles.Faint.Render("  "+line))
}

func (c *ConsoleReporter) Result(r progress.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLine()
}

// FileHeader prints the banner for the next input in the batch.
func (c *ConsoleReporter) FileHeader(index, total int, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLine()
	fmt.Fprintf(c.w, "\n%s %s\n",
		c.styles.Title.Render(fmt.Sprintf("[%d/%d]", index, total)),
		c.styles.Prompt.Render(name))
}

// Summary prints the final batch tally.
func (c *ConsoleReporter) Summary(compressed, kept, failed int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLine()
	parts := []string{
		c.styles.Success.Render(fmt.Sprintf("%d compressed", compressed)),
		c.styles.Faint.Render(fmt.Sprintf("%d kept", kept)),
	}
	if failed > 0 {
		parts = append(parts, c.styles.Error.Render(fmt.Sprintf("%d failed", failed)))
	}
	fmt.Fprintf(c.w, "\n%s\n", strings.Join(parts, "  "))
}

func (c *ConsoleReporter) stageLabel(s progress.Stage) string {
	switch s {
	case progress.StageProbing, progress.StageDeps:
		return c.styles.StageProbe.Render(string(s))
	case progress.StageExtracting, progress.StageRepacking:
		return c.styles.StageZip.Render(string(s))
	case progress.StageEncoding:
		return c.styles.StageEnc.Render(string(s))
	default:
		return c.styles.Faint.Render(string(s))
	}
}

func (c *ConsoleReporter) clearLine() {
	if c.lineActive {
		fmt.Fprint(c.w, "\r\033[K")
		c.lineActive = false
	}
}
