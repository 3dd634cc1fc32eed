// Package diag formats C1/Minako diagnostics with source context and a
// caret pointing at the offending column.
package diag

import (
	"fmt"
	"strings"

	"github.com/cwbudde/minako/internal/lexer"
)

// Error is a single diagnostic: a message tied to a source position,
// with enough of the surrounding source to render a caret.
type Error struct {
	Message string
	Source  string
	File    string
	Pos     lexer.Position
}

// New creates a diagnostic Error.
func New(pos lexer.Position, message, source, file string) *Error {
	return &Error{Pos: pos, Message: message, Source: source, File: file}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Format(false)
}

// Format renders the error with its source line and a caret under the
// offending column. If color is true, ANSI codes highlight the caret
// and message for terminal output.
func (e *Error) Format(color bool) string {
	var sb strings.Builder

	if e.File != "" {
		fmt.Fprintf(&sb, "Error in %s:%d:%d\n", e.File, e.Pos.Line, e.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "Error at line %d:%d\n", e.Pos.Line, e.Pos.Column)
	}

	if line := e.sourceLine(e.Pos.Line); line != "" {
		gutter := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(gutter)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(gutter)+e.Pos.Column-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString("\033[0m")
	}
	return sb.String()
}

func (e *Error) sourceLine(lineNum int) string {
	if e.Source == "" {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// FormatAll renders a batch of diagnostics, numbering them when there
// is more than one.
func FormatAll(errs []*Error, color bool) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return errs[0].Format(color)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "compilation failed with %d error(s):\n\n", len(errs))
	for i, err := range errs {
		fmt.Fprintf(&sb, "[error %d of %d]\n", i+1, len(errs))
		sb.WriteString(err.Format(color))
		if i < len(errs)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}
