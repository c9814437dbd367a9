// Package output provides consistent CLI output formatting.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// ANSI color codes used when the destination is a terminal.
const (
	colorReset = "\033[0m"
	colorBold  = "\033[1m"
	colorDim   = "\033[2m"
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
	colorRed   = "\033[31m"
)

// Writer provides formatted output for CLI commands.
type Writer struct {
	out      io.Writer
	useColor bool
}

// New creates a Writer. Color is enabled only when out is a terminal
// and NO_COLOR is unset.
func New(out io.Writer) *Writer {
	return &Writer{
		out:      out,
		useColor: detectColor(out),
	}
}

func detectColor(out io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (w *Writer) paint(code, s string) string {
	if !w.useColor {
		return s
	}
	return code + s + colorReset
}

// Println writes a plain line.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Println(msg string) {
	_, _ = fmt.Fprintln(w.out, msg)
}

// Printf writes a formatted line.
func (w *Writer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(w.out, format+"\n", args...)
}

// Success prints a success message.
func (w *Writer) Success(msg string) {
	_, _ = fmt.Fprintf(w.out, "%s %s\n", w.paint(colorGreen, "ok"), msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	_, _ = fmt.Fprintf(w.out, "%s %s\n", w.paint(colorBold, "warn"), msg)
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	_, _ = fmt.Fprintf(w.out, "%s %s\n", w.paint(colorRed, "error"), msg)
}

// Heading prints a bold section heading.
func (w *Writer) Heading(msg string) {
	_, _ = fmt.Fprintf(w.out, "%s\n", w.paint(colorBold, msg))
}

// Field prints an aligned "label: value" line.
func (w *Writer) Field(label, value string) {
	_, _ = fmt.Fprintf(w.out, "  %-16s %s\n", label+":", value)
}

// Result prints one search result: a location header and an indented
// snippet with blank edges trimmed.
func (w *Writer) Result(rank int, location, kind string, score float64, snippet string) {
	header := fmt.Sprintf("%2d. %s", rank, w.paint(colorCyan, location))
	if kind != "" {
		header += w.paint(colorDim, fmt.Sprintf("  [%s %.4f]", kind, score))
	}
	_, _ = fmt.Fprintln(w.out, header)
	snippet = strings.Trim(snippet, "\n")
	if snippet == "" {
		return
	}
	for _, line := range strings.Split(snippet, "\n") {
		_, _ = fmt.Fprintf(w.out, "      %s\n", line)
	}
}
