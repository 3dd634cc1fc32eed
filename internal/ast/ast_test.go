package ast

import "testing"

func TestIdentifierStability(t *testing.T) {
	a := New()
	ids := make([]ID, 0, 50)
	for i := 0; i < 50; i++ {
		ids = append(ids, a.Integer(int32(i)))
		// force repeated growth
		if i%7 == 0 {
			a.String("pad")
		}
	}
	for i, id := range ids {
		got := a.Node(id)
		if got.Tag != TagInteger || got.Int != int32(i) {
			t.Fatalf("id %d: node drifted after growth: %+v", id, got)
		}
	}
}

func TestAppendEmptyAbsorption(t *testing.T) {
	a := New()
	list := a.Empty(TagSequence)
	elemA := a.Integer(1)
	a.Append(list, elemA)

	before := *a.Node(list)
	after := a.Append(list, 0)
	if after != list {
		t.Fatalf("Append(L, 0) returned %d, want %d", after, list)
	}
	if got := *a.Node(list); got != before {
		t.Fatalf("Append(L, 0) mutated list: before=%+v after=%+v", before, got)
	}
}

func TestAppendGrowsChain(t *testing.T) {
	a := New()
	list := a.Empty(TagSequence)
	e1 := a.Integer(1)
	e2 := a.Integer(2)

	a.Append(list, e1)
	l := a.Node(list)
	if l.First != e1 || l.Last != e1 {
		t.Fatalf("first element not recorded: %+v", l)
	}

	a.Append(list, e2)
	l = a.Node(list)
	if l.First != e1 || l.Last != e2 {
		t.Fatalf("second element not appended: %+v", l)
	}
	if a.Node(e1).Next != e2 {
		t.Fatalf("sibling link missing: e1.Next = %d, want %d", a.Node(e1).Next, e2)
	}
}

func TestForRecordsFirstAndLastChild(t *testing.T) {
	a := New()
	init := a.Integer(0)
	cond := a.Boolean(true)
	step := a.Integer(1)
	body := a.Empty(TagSequence)

	id := a.For(init, cond, step, body)
	n := a.Node(id)
	if n.First != init {
		t.Fatalf("First = %d, want init %d", n.First, init)
	}
	if n.Last != body {
		t.Fatalf("Last = %d, want body %d", n.Last, body)
	}
	if a.Node(init).Next != cond || a.Node(cond).Next != step || a.Node(step).Next != body {
		t.Fatalf("sibling chain broken: init.Next=%d cond.Next=%d step.Next=%d",
			a.Node(init).Next, a.Node(cond).Next, a.Node(step).Next)
	}
}

func TestPairEmptyAbsorption(t *testing.T) {
	a := New()
	x := a.Integer(42)

	pairLeft := a.Pair(TagPlus, 0, x)
	tagOnly := a.Tag(TagPlus, x)
	if a.Node(pairLeft).First != a.Node(tagOnly).First {
		t.Fatalf("Pair(t, 0, x) did not degrade to Tag(t, x)")
	}

	pairRight := a.Pair(TagPlus, x, 0)
	if a.Node(pairRight).First != a.Node(tagOnly).First {
		t.Fatalf("Pair(t, x, 0) did not degrade to Tag(t, x)")
	}
}

func TestEmptyRejectsLeafTags(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for Empty(TagInteger)")
		}
	}()
	a := New()
	a.Empty(TagInteger)
}

func TestVariableFallsBackToGlobVarWhenUnresolved(t *testing.T) {
	a := New()
	id := a.Variable(true, 0, Void)
	n := a.Node(id)
	if n.Tag != TagGlobVar || n.Type != Void || n.Slot != 0 {
		t.Fatalf("unresolved variable fallback mismatch: %+v", n)
	}
}

func TestSetRootAndFunctionLocals(t *testing.T) {
	a := New()
	body := a.Empty(TagSequence)
	a.SetRoot(body, 3)
	root := a.Node(0)
	if root.Tag != TagProgram || root.First != body || root.Count != 3 {
		t.Fatalf("SetRoot mismatch: %+v", root)
	}

	fn := a.Function(body)
	a.SetFunctionLocals(fn, 5)
	if got := a.Node(fn).Count; got != 5 {
		t.Fatalf("SetFunctionLocals: got %d, want 5", got)
	}
}
