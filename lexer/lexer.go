// Package lexer implements the lexical analyzer for the LOLCODE front end.
//
// LOLCODE has no single-character operators worth special-casing the way a
// C-family lexer does: every operator and block marker is a word ("SUM",
// "OF", "RLY") or a short punctuation mark ("?", "!", ","). The lexer's job
// is reduced to: split the input into words/numbers/strings/punctuation,
// track line numbers for diagnostics, and fold "BTW ..." / "OBTW ... TLDR"
// comments into whitespace. Assembling word sequences into keyword phrases
// ("O RLY?", "IM IN YR") is left entirely to the parser.
package lexer

import (
	"strings"

	"github.com/dr8co/lolcode/token"
)

// Lexer represents the lexer for the LOLCODE front end.
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           byte
	line         int
}

// New creates a new Lexer with the given input string.
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1}
	l.readChar()
	return l
}

// readChar reads the next character from the input and advances the position.
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// NextToken reads the next token from the input.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	line := l.line

	switch l.ch {
	case 0:
		return token.Token{Type: token.EOF, Literal: "", Line: line}
	case '\n':
		l.readChar()
		l.line++
		return token.Token{Type: token.NEWLINE, Literal: "\n", Line: line}
	case '?':
		l.readChar()
		return token.Token{Type: token.QUESTION, Literal: "?", Line: line}
	case '!':
		l.readChar()
		return token.Token{Type: token.BANG, Literal: "!", Line: line}
	case ',':
		l.readChar()
		return token.Token{Type: token.COMMA, Literal: ",", Line: line}
	case '"':
		lit, ok := l.readString()
		if !ok {
			return token.Token{Type: token.ILLEGAL, Literal: "unterminated string", Line: line}
		}
		l.readChar()
		return token.Token{Type: token.YARN, Literal: lit, Line: line}
	default:
		if isDigit(l.ch) || (l.ch == '-' && isDigit(l.peekChar())) {
			lit, isFloat := l.readNumber()
			if isFloat {
				return token.Token{Type: token.NUMBAR, Literal: lit, Line: line}
			}
			return token.Token{Type: token.NUMBR, Literal: lit, Line: line}
		}
		if isWordChar(l.ch) {
			word := l.readWord()
			return token.Token{Type: token.LookupIdent(strings.ToUpper(word)), Literal: word, Line: line}
		}
		ch := l.ch
		l.readChar()
		return token.Token{Type: token.ILLEGAL, Literal: string(ch), Line: line}
	}
}

func isWordChar(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || ch == '.'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// readWord reads a bare word (identifier or keyword), including embedded
// dots for slot access, e.g. "A.B.C".
func (l *Lexer) readWord() string {
	position := l.position
	for isWordChar(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads a NUMBR or NUMBAR literal, returning the literal text and
// whether a '.' made it a NUMBAR.
func (l *Lexer) readNumber() (string, bool) {
	position := l.position
	if l.ch == '-' {
		l.readChar()
	}
	isFloat := false
	for isDigit(l.ch) || l.ch == '.' {
		if l.ch == '.' {
			isFloat = true
		}
		l.readChar()
	}
	return l.input[position:l.position], isFloat
}

// skipWhitespaceAndComments skips spaces/tabs and BTW/OBTW...TLDR comments,
// but never consumes a newline — newlines are statement separators and are
// returned as [token.NEWLINE].
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		if l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
			l.readChar()
			continue
		}

		if l.matchWord("BTW") {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}

		if l.matchWord("OBTW") {
			for !l.matchWord("TLDR") && l.ch != 0 {
				if l.ch == '\n' {
					l.line++
				}
				l.readChar()
			}
			continue
		}

		break
	}
}

// matchWord reports whether the upper-cased word at the current position
// equals w, and if so consumes it (and a trailing word boundary).
func (l *Lexer) matchWord(w string) bool {
	end := l.position
	for end < len(l.input) && isWordChar(l.input[end]) {
		end++
	}
	if end-l.position != len(w) {
		return false
	}
	if !strings.EqualFold(l.input[l.position:end], w) {
		return false
	}
	for end > l.position {
		l.readChar()
	}
	return true
}

// readString reads a YARN literal's contents verbatim (raw bytes; the
// interpolation mini-language in package interp runs later, only when the
// value is actually cast/printed — spec.md §4.3).
//
// The scan must stay escape-aware while looking for the closing quote: a
// bare '"' always ends the literal, but a '"' that is the second byte of a
// ':"' escape, or that falls inside an unresolved ':(...)', ':[...]', or
// ':{...}' escape span, is part of the content, not the terminator (spec.md
// §8 property 10: `":{":}"` is one YARN literal, not two).
func (l *Lexer) readString() (string, bool) {
	var b strings.Builder
	l.readChar()

	for {
		switch l.ch {
		case '"':
			return b.String(), true
		case 0:
			return b.String(), false
		case ':':
			b.WriteByte(l.ch)
			l.readChar()
			switch l.ch {
			case '"', ':', ')', '3', '>', 'o':
				b.WriteByte(l.ch)
				l.readChar()
			case '(':
				b.WriteByte(l.ch)
				l.readChar()
				l.copyUntil(&b, ')')
			case '[':
				b.WriteByte(l.ch)
				l.readChar()
				l.copyUntil(&b, ']')
			case '{':
				b.WriteByte(l.ch)
				l.readChar()
				l.copyUntil(&b, '}')
			}
		default:
			b.WriteByte(l.ch)
			l.readChar()
		}
	}
}

// copyUntil copies characters into b up to and including the first
// occurrence of closing (or EOF, whichever comes first), advancing the
// lexer past it. Used to skip over a ':(...)'/':[...]'/':{...}' escape span
// while scanning a string literal so an embedded '"' inside it can't be
// mistaken for the literal's closing quote.
func (l *Lexer) copyUntil(b *strings.Builder, closing byte) {
	for l.ch != closing && l.ch != 0 {
		if l.ch == '\n' {
			l.line++
		}
		b.WriteByte(l.ch)
		l.readChar()
	}
	if l.ch == closing {
		b.WriteByte(l.ch)
		l.readChar()
	}
}
