package eval

import (
	"strconv"

	"github.com/cwbudde/minako/internal/ast"
)

// Value is a single interpreted runtime value. Strings are borrowed
// from the AST node that produced them, never copied (spec §3).
type Value struct {
	Type ast.Type
	Bool bool
	Int  int32
	Flt  float32
	Str  string
}

// void is the scrubbed slot value written on frame teardown and used
// to initialize the value stack — spec §4.3.1/§4.3.4's "(Void, -1)".
var void = Value{Type: ast.Void, Int: -1}

// String renders v for the `print` builtin, formatted per spec
// §4.3.9.
func (v Value) String() string {
	switch v.Type {
	case ast.Boolean:
		if v.Bool {
			return "true"
		}
		return "false"
	case ast.Integer:
		return strconv.FormatInt(int64(v.Int), 10)
	case ast.Float:
		return strconv.FormatFloat(float64(v.Flt), 'g', -1, 32)
	case ast.String:
		return v.Str
	default:
		return ""
	}
}
