package parser

import (
	"strings"
	"unicode"
)

type TokenType int

const (
	TokenError TokenType = iota
	TokenEOF
	TokenString
	TokenQuoted
	TokenField
	TokenAnd
	TokenOr
	TokenNot
)

type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

type Lexer struct {
	input []rune
	pos   int
}

func NewLexer(input string) *Lexer {
	return &Lexer{input: []rune(input)}
}

func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: l.pos}
	}

	if l.input[l.pos] == '"' {
		return l.readQuoted()
	}

	// a word ends at whitespace, or right after a colon when it names a field
	start := l.pos
	for l.pos < len(l.input) && !unicode.IsSpace(l.input[l.pos]) {
		if l.input[l.pos] == ':' {
			l.pos++
			word := string(l.input[start:l.pos])
			return Token{Type: TokenField, Value: strings.ToLower(strings.TrimSuffix(word, ":")), Pos: start}
		}
		l.pos++
	}

	word := string(l.input[start:l.pos])
	switch strings.ToUpper(word) {
	case "AND":
		return Token{Type: TokenAnd, Value: "AND", Pos: start}
	case "OR":
		return Token{Type: TokenOr, Value: "OR", Pos: start}
	case "NOT":
		return Token{Type: TokenNot, Value: "NOT", Pos: start}
	}

	return Token{Type: TokenString, Value: word, Pos: start}
}

// Rest returns the unread input with surrounding spaces trimmed.
func (l *Lexer) Rest() string {
	if l.pos >= len(l.input) {
		return ""
	}
	rest := strings.TrimSpace(string(l.input[l.pos:]))
	l.pos = len(l.input)
	return rest
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) && unicode.IsSpace(l.input[l.pos]) {
		l.pos++
	}
}

// readQuoted reads a double-quoted string. \" and \\ are the only escapes.
func (l *Lexer) readQuoted() Token {
	start := l.pos
	l.pos++
	var sb strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case c == '\\' && l.pos+1 < len(l.input) && (l.input[l.pos+1] == '"' || l.input[l.pos+1] == '\\'):
			sb.WriteRune(l.input[l.pos+1])
			l.pos += 2
		case c == '"':
			l.pos++
			return Token{Type: TokenQuoted, Value: sb.String(), Pos: start}
		default:
			sb.WriteRune(c)
			l.pos++
		}
	}
	return Token{Type: TokenError, Value: "unterminated quote", Pos: start}
}
