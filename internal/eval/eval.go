// Package eval implements the C1/Minako evaluator: a virtual-machine
// style stack interpreter that walks a finished AST (spec §4.3).
//
// Execution is single-threaded and synchronous (spec §5): one value
// stack, one base pointer, one stack pointer, one result register and
// one return flag, all owned by a single *Evaluator. Dispatch is by
// node tag through a fixed table of handlers, the idiomatic Go analog
// of the reference implementation's function-pointer dispatch table
// (minako.c's dispatchTable).
package eval

import (
	"fmt"
	"io"

	"github.com/cwbudde/minako/internal/ast"
)

// DefaultStackSize is the value stack capacity used unless an Option
// overrides it (spec §4.3, MINAKO_STACK_SIZE).
const DefaultStackSize = 1024

type handler func(e *Evaluator, n *ast.Node)

var handlers [ast.TagCount]handler

func init() {
	handlers[ast.TagProgram] = execProgram
	handlers[ast.TagFunction] = execFunction
	handlers[ast.TagCall] = execCall
	handlers[ast.TagSequence] = execSequence
	handlers[ast.TagIf] = execIf
	handlers[ast.TagFor] = execFor
	handlers[ast.TagDoWhile] = execLoopBodyFirst
	handlers[ast.TagWhile] = execLoopBodyFirst
	handlers[ast.TagPrint] = execPrint
	handlers[ast.TagAssign] = execAssign
	handlers[ast.TagReturn] = execReturn

	handlers[ast.TagInteger] = execLiteral
	handlers[ast.TagFloat] = execLiteral
	handlers[ast.TagBoolean] = execLiteral
	handlers[ast.TagString] = execLiteral
	handlers[ast.TagLocVar] = execLocVar
	handlers[ast.TagGlobVar] = execGlobVar

	handlers[ast.TagCast] = execCast
	handlers[ast.TagPlus] = execArith
	handlers[ast.TagMinus] = execArith
	handlers[ast.TagTimes] = execArith
	handlers[ast.TagDivide] = execArith
	handlers[ast.TagUminus] = execUminus
	handlers[ast.TagLogOr] = execLogOr
	handlers[ast.TagLogAnd] = execLogAnd
	handlers[ast.TagEqt] = execCompare
	handlers[ast.TagNeq] = execCompare
	handlers[ast.TagLeq] = execCompare
	handlers[ast.TagGeq] = execCompare
	handlers[ast.TagLst] = execCompare
	handlers[ast.TagGrt] = execCompare
}

// Evaluator is the C1/Minako runtime: a fixed-capacity value stack
// plus the bp/sp/result/returnFlag state machine described in spec
// §4.3.
type Evaluator struct {
	arena *ast.Arena
	out   io.Writer

	stack  []Value
	bp, sp int
	result Value
	retFlg bool

	trace bool
	depth int
}

// Option configures an Evaluator at construction time.
type Option func(*Evaluator)

// WithStackSize overrides the default value-stack capacity.
func WithStackSize(n int) Option {
	return func(e *Evaluator) { e.stack = make([]Value, n) }
}

// WithTrace enables the dispatch trace described in spec §6: indented
// tag-open/tag-close markers and result-register snapshots, written
// to out.
func WithTrace(trace bool) Option {
	return func(e *Evaluator) { e.trace = trace }
}

// New builds an Evaluator over arena, writing `print` output to out.
func New(arena *ast.Arena, out io.Writer, opts ...Option) *Evaluator {
	e := &Evaluator{arena: arena, out: out, stack: make([]Value, DefaultStackSize)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the program rooted at node 0. It returns a *FatalError
// for stack overflow / integer division by zero, or an *InternalError if
// the AST violates an invariant the parser's type checker should have
// prevented (spec §7); any other panic is not ours to catch and is
// re-raised.
func (e *Evaluator) Run() (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		switch v := r.(type) {
		case *FatalError:
			err = v
		case *InternalError:
			err = v
		default:
			panic(r)
		}
	}()
	e.dispatch(0)
	return nil
}

func (e *Evaluator) dispatch(id ast.ID) {
	n := e.arena.Node(id)
	h := handlers[n.Tag]
	if h == nil {
		internalf("eval: no dispatch handler for tag %s", n.Tag)
	}

	if e.trace {
		fmt.Fprintf(e.out, "%*s<%s>\n", e.depth*2, "", n.Tag)
		e.depth++
	}

	h(e, n)

	if e.trace {
		e.depth--
		fmt.Fprintf(e.out, "%*s</%s> => %s\n", e.depth*2, "", n.Tag, e.result)
	}
}

func execLiteral(e *Evaluator, n *ast.Node) {
	switch n.Tag {
	case ast.TagBoolean:
		e.result = Value{Type: ast.Boolean, Bool: n.Bool}
	case ast.TagInteger:
		e.result = Value{Type: ast.Integer, Int: n.Int}
	case ast.TagFloat:
		e.result = Value{Type: ast.Float, Flt: n.Flt}
	case ast.TagString:
		e.result = Value{Type: ast.String, Str: n.Str}
	}
}

func execLocVar(e *Evaluator, n *ast.Node) {
	e.result = e.stack[e.bp+n.Slot]
}

func execGlobVar(e *Evaluator, n *ast.Node) {
	e.result = e.stack[n.Slot]
}

func execAssign(e *Evaluator, n *ast.Node) {
	varNode := e.arena.Node(n.First)
	e.dispatch(n.Last)
	switch varNode.Tag {
	case ast.TagGlobVar:
		e.stack[varNode.Slot] = e.result
	case ast.TagLocVar:
		e.stack[e.bp+varNode.Slot] = e.result
	default:
		internalf("eval: Assign target is not a variable reference (tag %s)", varNode.Tag)
	}
}

func execSequence(e *Evaluator, n *ast.Node) {
	child := n.First
	for child != 0 {
		e.dispatch(child)
		if e.retFlg {
			break
		}
		child = e.arena.Node(child).Next
	}
}

func execIf(e *Evaluator, n *ast.Node) {
	test := n.First
	e.dispatch(test)
	cons := e.arena.Node(test).Next
	elseID := e.arena.Node(cons).Next

	if e.result.Bool {
		e.dispatch(cons)
	} else if elseID != 0 {
		e.dispatch(elseID)
	}
}

// execLoopBodyFirst implements both While and DoWhile: the reference
// implementation's execWhile/execDoWhile are identical, body-first
// loops (spec §4.3.7, §9 Open Question "DoWhile vs While").
func execLoopBodyFirst(e *Evaluator, n *ast.Node) {
	cond, body := n.First, n.Last
	for {
		e.dispatch(body)
		if e.retFlg {
			break
		}
		e.dispatch(cond)
		if !e.result.Bool {
			break
		}
	}
}

// execFor deliberately does not check the return flag on its cond/step
// legs, preserving the reference implementation's quirk that a
// `return` nested inside a `for` body still runs further iterations
// (spec §4.3.7, §9 Open Question "For loop + return").
func execFor(e *Evaluator, n *ast.Node) {
	initID := n.First
	condID := e.arena.Node(initID).Next
	stepID := e.arena.Node(condID).Next
	bodyID := e.arena.Node(stepID).Next

	e.dispatch(initID)
	for {
		e.dispatch(condID)
		if !e.result.Bool {
			break
		}
		e.dispatch(bodyID)
		e.dispatch(stepID)
	}
}

func execReturn(e *Evaluator, n *ast.Node) {
	if n.First != 0 {
		e.dispatch(n.First)
	}
	e.retFlg = true
}

func execPrint(e *Evaluator, n *ast.Node) {
	e.dispatch(n.First)
	fmt.Fprintln(e.out, e.result.String())
}

func execProgram(e *Evaluator, n *ast.Node) {
	e.retFlg = false
	e.bp, e.sp = 0, 0
	for i := range e.stack {
		e.stack[i] = void
	}

	e.sp += n.Count // globals_count
	if e.sp >= len(e.stack) {
		fatalf("stack overflow")
	}

	e.dispatch(n.First) // body Sequence
}

func execFunction(e *Evaluator, n *ast.Node) {
	e.bp = e.sp
	e.sp += n.Count // locals_count
	e.dispatch(n.First)
	e.retFlg = false
}

// execCall implements the argument-evaluation/frame-setup protocol of
// spec §4.3.4, ported from the reference implementation's execCall.
func execCall(e *Evaluator, n *ast.Node) {
	callee := e.arena.Node(n.Last)
	locals := callee.Count

	if e.sp+locals >= len(e.stack) {
		fatalf("stack overflow")
	}

	paramsBase := e.sp
	savedBP := e.bp
	e.sp += locals

	argSeq := e.arena.Node(n.First)
	i := 0
	for arg := argSeq.First; arg != 0; {
		e.dispatch(arg)
		e.stack[paramsBase+i] = e.result
		e.sp++
		i++
		arg = e.arena.Node(arg).Next
	}

	e.sp = paramsBase
	e.dispatch(n.Last)

	for j := 0; j < locals; j++ {
		e.stack[paramsBase+j] = void
	}
	e.sp = e.bp
	e.bp = savedBP
}

func execCast(e *Evaluator, n *ast.Node) {
	e.dispatch(n.First)
	if n.Type == ast.Float && e.result.Type == ast.Integer {
		e.result = Value{Type: ast.Float, Flt: float32(e.result.Int)}
		return
	}
	internalf("eval: unsupported cast %s -> %s", e.result.Type, n.Type)
}

func execUminus(e *Evaluator, n *ast.Node) {
	e.dispatch(n.First)
	switch e.result.Type {
	case ast.Integer:
		e.result.Int = -e.result.Int
	case ast.Float:
		e.result.Flt = -e.result.Flt
	default:
		internalf("eval: Uminus on non-numeric type %s", e.result.Type)
	}
}

func execArith(e *Evaluator, n *ast.Node) {
	e.dispatch(n.First)
	lv := e.result
	e.dispatch(n.Last)
	rv := e.result

	switch n.Type {
	case ast.Integer:
		e.result = Value{Type: ast.Integer, Int: applyIntOp(n.Tag, lv.Int, rv.Int)}
	case ast.Float:
		e.result = Value{Type: ast.Float, Flt: applyFloatOp(n.Tag, lv.Flt, rv.Flt)}
	default:
		internalf("eval: arithmetic op %s on non-numeric type %s", n.Tag, n.Type)
	}
}

func applyIntOp(tag ast.Tag, a, b int32) int32 {
	switch tag {
	case ast.TagPlus:
		return a + b
	case ast.TagMinus:
		return a - b
	case ast.TagTimes:
		return a * b
	case ast.TagDivide:
		if b == 0 {
			fatalf("integer division by zero")
		}
		return a / b // Go's / truncates toward zero for integers, matching spec §4.3.8
	default:
		internalf("eval: unexpected integer op tag %s", tag)
		return 0
	}
}

func applyFloatOp(tag ast.Tag, a, b float32) float32 {
	switch tag {
	case ast.TagPlus:
		return a + b
	case ast.TagMinus:
		return a - b
	case ast.TagTimes:
		return a * b
	case ast.TagDivide:
		return a / b
	default:
		internalf("eval: unexpected float op tag %s", tag)
		return 0
	}
}

// execLogOr/execLogAnd implement the corrected short-circuit semantics
// spec §4.3.8 and §9 call for: the source discards the boolean
// combination instead of writing it to the result register, which the
// spec treats as a bug. See DESIGN.md Open Question 1.
func execLogOr(e *Evaluator, n *ast.Node) {
	e.dispatch(n.First)
	if e.result.Bool {
		e.result = Value{Type: ast.Boolean, Bool: true}
		return
	}
	e.dispatch(n.Last)
	e.result = Value{Type: ast.Boolean, Bool: e.result.Bool}
}

func execLogAnd(e *Evaluator, n *ast.Node) {
	e.dispatch(n.First)
	if !e.result.Bool {
		e.result = Value{Type: ast.Boolean, Bool: false}
		return
	}
	e.dispatch(n.Last)
	e.result = Value{Type: ast.Boolean, Bool: e.result.Bool}
}

func execCompare(e *Evaluator, n *ast.Node) {
	e.dispatch(n.First)
	lv := e.result
	e.dispatch(n.Last)
	rv := e.result

	var b bool
	switch lv.Type {
	case ast.Boolean:
		b = compareBool(n.Tag, lv.Bool, rv.Bool)
	case ast.Integer:
		b = compareOrdered(n.Tag, int64(lv.Int), int64(rv.Int))
	case ast.Float:
		b = compareOrdered(n.Tag, float64(lv.Flt), float64(rv.Flt))
	default:
		internalf("eval: comparison %s on unsupported type %s", n.Tag, lv.Type)
	}
	e.result = Value{Type: ast.Boolean, Bool: b}
}

func compareBool(tag ast.Tag, a, b bool) bool {
	switch tag {
	case ast.TagEqt:
		return a == b
	case ast.TagNeq:
		return a != b
	default:
		internalf("eval: ordering comparison %s on Boolean operands", tag)
		return false
	}
}

type ordered interface{ ~int64 | ~float64 }

func compareOrdered[T ordered](tag ast.Tag, a, b T) bool {
	switch tag {
	case ast.TagEqt:
		return a == b
	case ast.TagNeq:
		return a != b
	case ast.TagLeq:
		return a <= b
	case ast.TagGeq:
		return a >= b
	case ast.TagLst:
		return a < b
	case ast.TagGrt:
		return a > b
	default:
		internalf("eval: unexpected comparison tag %s", tag)
		return false
	}
}
