// Package output provides colored terminal output helpers for the auditdeck CLI.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	// Colors and styles
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
	gray   = color.New(color.FgHiBlack)
	bold   = color.New(color.Bold)

	// Output writers (can be overridden for testing)
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

func init() {
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}
}

// Success prints a success message with a checkmark.
func Success(format string, a ...any) {
	fmt.Fprintf(Stdout, green.Sprint("✓")+" "+format+"\n", a...)
}

// Info prints an informational message with an arrow.
func Info(format string, a ...any) {
	fmt.Fprintf(Stdout, cyan.Sprint("→")+" "+format+"\n", a...)
}

// Warning prints a warning message with a warning symbol.
func Warning(format string, a ...any) {
	fmt.Fprintf(Stdout, yellow.Sprint("⚠")+" "+format+"\n", a...)
}

// Error prints an error message with an X symbol.
func Error(format string, a ...any) {
	fmt.Fprintf(Stdout, red.Sprint("✗")+" "+format+"\n", a...)
}

// Fatal prints an error message and exits with code 1.
func Fatal(format string, a ...any) {
	Error(format, a...)
	os.Exit(1)
}

// Blank prints an empty line.
func Blank() {
	fmt.Fprintln(Stdout)
}

// Bold returns the string in bold.
func Bold(s string) string {
	return bold.Sprint(s)
}

// Cyan returns the string in cyan.
func Cyan(s string) string {
	return cyan.Sprint(s)
}

// Gray returns the string in gray.
func Gray(s string) string {
	return gray.Sprint(s)
}

// Header prints a section header with a separator line.
func Header(title string) {
	fmt.Fprintln(Stdout)
	fmt.Fprintln(Stdout, bold.Sprint(title))
	fmt.Fprintln(Stdout, gray.Sprint(strings.Repeat("─", len([]rune(title)))))
}

// Table prints a simple left-aligned table.
func Table(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len([]rune(h))
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len([]rune(cell)) > widths[i] {
				widths[i] = len([]rune(cell))
			}
		}
	}

	printRow := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			if i < len(widths) {
				parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
			} else {
				parts[i] = cell
			}
		}
		fmt.Fprintln(Stdout, "  "+strings.Join(parts, "  "))
	}

	headerCells := make([]string, len(headers))
	for i, h := range headers {
		headerCells[i] = bold.Sprint(fmt.Sprintf("%-*s", widths[i], h))
	}
	fmt.Fprintln(Stdout, "  "+strings.Join(headerCells, "  "))
	for _, row := range rows {
		printRow(row)
	}
}
