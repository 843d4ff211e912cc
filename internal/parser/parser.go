// Package parser turns a bookctl input line into a Query.
//
//	list                     every book
//	isbn:"ISBN 1234567890"   one book by exact ISBN
//	author:Jane Austen       unquoted values run to the end of the line
//	title:"1984"
//	review:3                 the review of book 3
//	review:3 = Great book    replace the review of book 3
//	unreview:3               clear the review of book 3
//	register alice "pw 1"    create an account
//	login alice "pw 1"       check credentials
//
// Other bare words are commands (list, scan, help, exit). Boolean operators
// are recognised only to reject them: the server matches one field exactly.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type Kind int

const (
	KindList Kind = iota
	KindISBN
	KindAuthor
	KindTitle
	KindReview
	KindSetReview
	KindClearReview
	KindRegister
	KindLogin
	KindScan
	KindHelp
	KindExit
)

func (k Kind) String() string {
	switch k {
	case KindList:
		return "list"
	case KindISBN:
		return "isbn"
	case KindAuthor:
		return "author"
	case KindTitle:
		return "title"
	case KindReview:
		return "review"
	case KindSetReview:
		return "set review"
	case KindClearReview:
		return "unreview"
	case KindRegister:
		return "register"
	case KindLogin:
		return "login"
	case KindScan:
		return "scan"
	case KindHelp:
		return "help"
	case KindExit:
		return "exit"
	}
	return "unknown"
}

type Query struct {
	Kind     Kind
	Value    string // search value, or the new review text
	BookID   int    // set for the review kinds
	Username string // set for KindRegister and KindLogin
	Password string
}

var (
	ErrEmpty       = errors.New("empty query")
	ErrUnsupported = errors.New("boolean operators are not supported")
)

var fields = map[string]Kind{
	"isbn":   KindISBN,
	"author": KindAuthor,
	"title":  KindTitle,
	"review":   KindReview,
	"unreview": KindClearReview,
}

var commands = map[string]Kind{
	"list": KindList,
	"ls":   KindList,
	"scan": KindScan,
	"help": KindHelp,
	"?":    KindHelp,
	"exit": KindExit,
	"quit": KindExit,
}

// credentialCommands take exactly a username and a password.
var credentialCommands = map[string]Kind{
	"register": KindRegister,
	"login":    KindLogin,
}

// Parse reads one input line.
func Parse(input string) (Query, error) {
	l := NewLexer(input)
	tok := l.NextToken()

	switch tok.Type {
	case TokenEOF:
		return Query{}, ErrEmpty
	case TokenError:
		return Query{}, fmt.Errorf("at %d: %s", tok.Pos, tok.Value)
	case TokenAnd, TokenOr, TokenNot:
		return Query{}, ErrUnsupported
	case TokenQuoted:
		return Query{}, fmt.Errorf("at %d: expected a field or a command", tok.Pos)
	case TokenString:
		return parseCommand(l, tok)
	}
	return parseFilter(l, tok)
}

func parseCommand(l *Lexer, tok Token) (Query, error) {
	if kind, ok := credentialCommands[strings.ToLower(tok.Value)]; ok {
		return parseCredentials(l, kind)
	}
	kind, ok := commands[strings.ToLower(tok.Value)]
	if !ok {
		return Query{}, fmt.Errorf("unknown command %q", tok.Value)
	}
	if next := l.NextToken(); next.Type != TokenEOF {
		return Query{}, fmt.Errorf("at %d: %s takes no arguments", next.Pos, kind)
	}
	return Query{Kind: kind}, nil
}

// parseCredentials reads "<user> <password>". Either may be quoted, which is
// the only way to pass spaces or words like "and".
func parseCredentials(l *Lexer, kind Kind) (Query, error) {
	var args []string
	for tok := l.NextToken(); tok.Type != TokenEOF; tok = l.NextToken() {
		switch tok.Type {
		case TokenString, TokenQuoted:
			args = append(args, tok.Value)
		case TokenError:
			return Query{}, fmt.Errorf("at %d: %s", tok.Pos, tok.Value)
		default:
			return Query{}, fmt.Errorf("at %d: quote %q to use it as a username or password", tok.Pos, tok.Value)
		}
	}
	if len(args) != 2 {
		return Query{}, fmt.Errorf("usage: %s <username> <password>", kind)
	}
	return Query{Kind: kind, Username: args[0], Password: args[1]}, nil
}

// parseFilter reads the value after field:. A quoted value must end the
// line; otherwise the rest of the line is the value.
func parseFilter(l *Lexer, field Token) (Query, error) {
	kind, ok := fields[field.Value]
	if !ok {
		return Query{}, fmt.Errorf("unknown field %q", field.Value)
	}

	save := l.pos
	tok := l.NextToken()
	var value string
	switch tok.Type {
	case TokenEOF:
		return Query{}, fmt.Errorf("%s: missing value", kind)
	case TokenError:
		return Query{}, fmt.Errorf("at %d: %s", tok.Pos, tok.Value)
	case TokenQuoted:
		value = tok.Value
		if next := l.NextToken(); next.Type != TokenEOF {
			if isOperator(next.Type) {
				return Query{}, ErrUnsupported
			}
			return Query{}, fmt.Errorf("at %d: unexpected %q after quoted value", next.Pos, next.Value)
		}
	default:
		l.pos = save
		value = l.Rest()
		if kind != KindReview && kind != KindClearReview && hasOperator(value) {
			return Query{}, ErrUnsupported
		}
	}

	if kind == KindReview || kind == KindClearReview {
		return parseReview(kind, value)
	}
	return Query{Kind: kind, Value: value}, nil
}

// parseReview handles "<id>" and, for review:, "<id> = <text>". The text may
// be quoted; otherwise it is taken verbatim.
func parseReview(kind Kind, value string) (Query, error) {
	idPart, text, set := strings.Cut(value, "=")
	id, err := strconv.Atoi(strings.TrimSpace(idPart))
	if err != nil {
		return Query{}, fmt.Errorf("%s: %q is not a book id", kind, strings.TrimSpace(idPart))
	}
	if !set {
		return Query{Kind: kind, BookID: id}, nil
	}
	if kind != KindReview {
		return Query{}, fmt.Errorf("%s takes only a book id", kind)
	}

	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, `"`) {
		l := NewLexer(text)
		tok := l.NextToken()
		if tok.Type == TokenError {
			return Query{}, fmt.Errorf("review text: %s", tok.Value)
		}
		if next := l.NextToken(); next.Type != TokenEOF {
			return Query{}, fmt.Errorf("review text: unexpected %q after quoted text", next.Value)
		}
		text = tok.Value
	}
	return Query{Kind: KindSetReview, BookID: id, Value: text}, nil
}

func isOperator(t TokenType) bool {
	return t == TokenAnd || t == TokenOr || t == TokenNot
}

// hasOperator reports whether an unquoted value chains another field with a
// boolean operator, as in "author:Homer OR title:1984".
func hasOperator(value string) bool {
	l := NewLexer(value)
	prevOp := false
	for tok := l.NextToken(); tok.Type != TokenEOF && tok.Type != TokenError; tok = l.NextToken() {
		if prevOp && tok.Type == TokenField {
			return true
		}
		prevOp = isOperator(tok.Type)
	}
	return false
}
