package diag

import (
	"strings"
	"testing"

	"github.com/cwbudde/minako/internal/lexer"
)

func TestFormatPointsCaretAtColumn(t *testing.T) {
	src := "int x = ;\n"
	err := New(lexer.Position{Line: 1, Column: 9}, "expected expression", src, "main.mk")

	out := err.Format(false)
	lines := strings.Split(out, "\n")
	if len(lines) < 3 {
		t.Fatalf("expected at least 3 lines, got %d: %q", len(lines), out)
	}
	caretLine := lines[2]
	if !strings.HasSuffix(caretLine, "^") {
		t.Fatalf("caret line = %q, want suffix ^", caretLine)
	}
}

func TestFormatAllNumbersMultipleErrors(t *testing.T) {
	errs := []*Error{
		New(lexer.Position{Line: 1, Column: 1}, "first", "", ""),
		New(lexer.Position{Line: 2, Column: 1}, "second", "", ""),
	}
	out := FormatAll(errs, false)
	if !strings.Contains(out, "[error 1 of 2]") || !strings.Contains(out, "[error 2 of 2]") {
		t.Fatalf("missing numbering in output: %q", out)
	}
}

func TestFormatAllSingleErrorIsUnnumbered(t *testing.T) {
	errs := []*Error{New(lexer.Position{Line: 1, Column: 1}, "oops", "", "")}
	out := FormatAll(errs, false)
	if strings.Contains(out, "[error") {
		t.Fatalf("single error should not be numbered: %q", out)
	}
}
