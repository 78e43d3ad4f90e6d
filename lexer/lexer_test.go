package lexer

import (
	"testing"

	"github.com/dr8co/lolcode/token"
)

// TestNextToken exercises word-level tokenization of a small LOLCODE snippet,
// including a comment and a NUMBAR literal (dotted identifiers are covered by
// TestDottedIdentifier).
func TestNextToken(t *testing.T) {
	input := `HAI 1.2
I HAS A X ITZ 5 BTW the counter
VISIBLE X
KTHXBAI`

	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.HAI, "HAI"},
		{token.NUMBAR, "1.2"},
		{token.NEWLINE, "\n"},
		{token.I_KW, "I"},
		{token.HAS, "HAS"},
		{token.A_KW, "A"},
		{token.IDENT, "X"},
		{token.ITZ, "ITZ"},
		{token.NUMBR, "5"},
		{token.NEWLINE, "\n"},
		{token.VISIBLE, "VISIBLE"},
		{token.IDENT, "X"},
		{token.NEWLINE, "\n"},
		{token.KTHXBAI, "KTHXBAI"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - wrong type. expected=%q, got=%q (literal %q)", i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - wrong literal. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestDottedIdentifier(t *testing.T) {
	l := New("BUCKET.NAME")
	tok := l.NextToken()
	if tok.Type != token.IDENT || tok.Literal != "BUCKET.NAME" {
		t.Fatalf("expected dotted IDENT, got %+v", tok)
	}
}

// TestStringEscapeAwareTermination covers spec.md §8 property 10: a ':"'
// escape (or an unresolved ':(', ':[', ':{' span) inside a YARN literal must
// not be mistaken for the literal's closing quote.
func TestStringEscapeAwareTermination(t *testing.T) {
	l := New(`":{":}"`)
	tok := l.NextToken()
	if tok.Type != token.YARN {
		t.Fatalf("expected YARN, got %+v", tok)
	}
	if tok.Literal != `:{":}` {
		t.Fatalf("expected literal %q, got %q", `:{":}`, tok.Literal)
	}
	if next := l.NextToken(); next.Type != token.EOF {
		t.Fatalf("expected EOF after the one string literal, got %+v", next)
	}
}

func TestBlockComment(t *testing.T) {
	l := New("OBTW\nthis is ignored\nTLDR\nVISIBLE X")
	tok := l.NextToken()
	if tok.Type != token.NEWLINE {
		t.Fatalf("expected NEWLINE after block comment, got %+v", tok)
	}
	tok = l.NextToken()
	if tok.Type != token.VISIBLE {
		t.Fatalf("expected VISIBLE, got %+v", tok)
	}
}
