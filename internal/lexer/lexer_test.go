package lexer

import "testing"

func collect(input string) []Token {
	l := New(input)
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == EOF {
			break
		}
	}
	return toks
}

func TestNextTokenBasics(t *testing.T) {
	input := `fn inc(n:int)->int { return n+1 }`
	toks := collect(input)
	want := []TokenType{FN, IDENT, LPAREN, IDENT, COLON, IDENT, RPAREN, MINUS, GT, IDENT, LBRACE, RETURN, IDENT, PLUS, INT, RBRACE, EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Type != w {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, w)
		}
	}
}

func TestPipelineOperator(t *testing.T) {
	toks := collect("5 |> inc |> dbl")
	types := []TokenType{INT, PIPELINE, IDENT, PIPELINE, IDENT, EOF}
	for i, w := range types {
		if toks[i].Type != w {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, w)
		}
	}
}

func TestRangeTokens(t *testing.T) {
	toks := collect("1..5")
	if toks[1].Type != RANGE {
		t.Errorf("expected RANGE, got %s", toks[1].Type)
	}
}

func TestStringEscapes(t *testing.T) {
	toks := collect(`"a\nb\tc\\d\qe"`)
	if toks[0].Type != STRING {
		t.Fatalf("expected STRING, got %s", toks[0].Type)
	}
	want := "a\nb\tc\\d\\qe"
	if toks[0].Literal != want {
		t.Errorf("got %q, want %q", toks[0].Literal, want)
	}
}

func TestPolyglotBlockVerbatim(t *testing.T) {
	input := "<<python[x]\n  x * 2\n>>"
	toks := collect(input)
	if toks[0].Type != POLYGLOT_OPEN {
		t.Fatalf("expected POLYGLOT_OPEN, got %s", toks[0].Type)
	}
	if toks[0].Language != "python" {
		t.Errorf("got language %q, want python", toks[0].Language)
	}
	if len(toks[0].BoundVars) != 1 || toks[0].BoundVars[0] != "x" {
		t.Errorf("got bound vars %v, want [x]", toks[0].BoundVars)
	}
	if toks[0].Literal != "\n  x * 2\n" {
		t.Errorf("got code %q", toks[0].Literal)
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"abc`)
	tok := l.NextToken()
	if tok.Type != ILLEGAL {
		t.Fatalf("expected ILLEGAL, got %s", tok.Type)
	}
	if len(l.Errors()) == 0 {
		t.Fatalf("expected a recorded lexer error")
	}
}

func TestPositionTracking(t *testing.T) {
	l := New("let x\n= 1")
	tok := l.NextToken() // let
	if tok.Pos.Line != 1 || tok.Pos.Column != 1 {
		t.Errorf("got %v", tok.Pos)
	}
	l.NextToken() // x
	tok = l.NextToken() // = on line 2
	if tok.Pos.Line != 2 {
		t.Errorf("expected line 2, got %d", tok.Pos.Line)
	}
}
