package lexer

import "testing"

func collectTypes(input string) []TokenType {
	l := New(input)
	var types []TokenType
	for {
		tok := l.NextToken()
		types = append(types, tok.Type)
		if tok.Type == EOF {
			break
		}
	}
	return types
}

func TestNextTokenBasicProgram(t *testing.T) {
	input := `int x = 1 + 2;
print x;`

	want := []TokenType{
		INT_TYPE, IDENT, ASSIGN, INT, PLUS, INT, SEMICOLON,
		PRINT, IDENT, SEMICOLON,
		EOF,
	}
	got := collectTypes(input)
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestOperatorVariants(t *testing.T) {
	cases := []struct {
		input string
		want  TokenType
	}{
		{"==", EQ_EQ},
		{"!=", NOT_EQ},
		{"<=", LESS_EQ},
		{">=", GREATER_EQ},
		{"<", LESS},
		{">", GREATER},
		{"=", ASSIGN},
		{"&&", AMP_AMP},
		{"||", PIPE_PIPE},
	}
	for _, c := range cases {
		l := New(c.input)
		tok := l.NextToken()
		if tok.Type != c.want {
			t.Errorf("NextToken(%q) = %s, want %s", c.input, tok.Type, c.want)
		}
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	l := New("while foo bool")
	if tok := l.NextToken(); tok.Type != WHILE {
		t.Fatalf("got %s, want WHILE", tok.Type)
	}
	if tok := l.NextToken(); tok.Type != IDENT || tok.Literal != "foo" {
		t.Fatalf("got %+v, want IDENT foo", tok)
	}
	if tok := l.NextToken(); tok.Type != BOOL_TYPE {
		t.Fatalf("got %s, want BOOL_TYPE", tok.Type)
	}
}

func TestFloatVsIntLiteral(t *testing.T) {
	l := New("1 1.5 1e3 1.5e-2")
	for _, want := range []TokenType{INT, FLOAT, FLOAT, FLOAT} {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("literal %q classified as %s, want %s", tok.Literal, tok.Type, want)
		}
	}
}

func TestStringLiteralWithEscapes(t *testing.T) {
	l := New(`"hello\nworld"`)
	tok := l.NextToken()
	if tok.Type != STRING {
		t.Fatalf("got %s, want STRING", tok.Type)
	}
	if tok.Literal != "hello\nworld" {
		t.Fatalf("literal = %q, want %q", tok.Literal, "hello\nworld")
	}
}

func TestUnterminatedStringRecordsError(t *testing.T) {
	l := New(`"oops`)
	l.NextToken()
	if len(l.Errors()) == 0 {
		t.Fatal("expected an accumulated lexer error")
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	input := "// leading comment\nint x; /* trailing */"
	want := []TokenType{INT_TYPE, IDENT, SEMICOLON, EOF}
	got := collectTypes(input)
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d (%v)", len(got), len(want), got)
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	l := New("int x")
	peeked := l.Peek(0)
	next := l.NextToken()
	if peeked.Type != next.Type || peeked.Literal != next.Literal {
		t.Fatalf("Peek(0)=%+v did not match NextToken()=%+v", peeked, next)
	}
}

func TestColumnCountsRunesNotBytes(t *testing.T) {
	l := New("Δ x")
	l.NextToken() // Δ as IDENT
	tok := l.NextToken()
	if tok.Pos.Column != 3 {
		t.Fatalf("column = %d, want 3 (rune count, not byte offset)", tok.Pos.Column)
	}
}

func TestIllegalCharacterRecordsError(t *testing.T) {
	l := New("@")
	tok := l.NextToken()
	if tok.Type != ILLEGAL {
		t.Fatalf("got %s, want ILLEGAL", tok.Type)
	}
	if len(l.Errors()) == 0 {
		t.Fatal("expected an accumulated lexer error")
	}
}
