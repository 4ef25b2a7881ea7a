package parser

import (
	"fmt"
	"strings"
)

// tokenize splits a WHERE-clause expression into tokens, ending with a
// TokenEOF. The token set is expression-only: literals, identifiers,
// comparison and arithmetic operators, parentheses, commas, and the boolean
// keywords. `--` starts a line comment.
func tokenize(input string) ([]Token, error) {
	lx := lexer{src: input, line: 1, col: 1}
	var tokens []Token
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}

type lexer struct {
	src  string
	pos  int
	line int
	col  int
}

// singleCharTokens covers operators that cannot start a longer token.
var singleCharTokens = map[byte]TokenType{
	'(': TokenLParen,
	')': TokenRParen,
	',': TokenComma,
	'*': TokenStar,
	'+': TokenPlus,
	'/': TokenSlash,
	'=': TokenEQ,
}

func (lx *lexer) next() (Token, error) {
	lx.skipSpaceAndComments()

	line, col := lx.line, lx.col
	mk := func(tt TokenType, lit string) Token {
		return Token{Type: tt, Literal: lit, Line: line, Col: col}
	}

	if lx.pos >= len(lx.src) {
		return mk(TokenEOF, ""), nil
	}

	ch := lx.src[lx.pos]
	switch {
	case isDigit(ch):
		return mk(TokenNumber, lx.scanNumber()), nil

	case isIdentStart(ch):
		lit := lx.scanIdentifier()
		return mk(LookupKeyword(lit), lit), nil

	case ch == '\'':
		lit, err := lx.scanString()
		if err != nil {
			return Token{}, err
		}
		return mk(TokenString, lit), nil

	case ch == '-':
		// A minus glued to a digit is a negative number literal.
		if lx.pos+1 < len(lx.src) && isDigit(lx.src[lx.pos+1]) {
			return mk(TokenNumber, lx.scanNumber()), nil
		}
		lx.advance()
		return mk(TokenMinus, "-"), nil

	case ch == '!':
		lx.advance()
		if lx.eat('=') {
			return mk(TokenNEQ, "!="), nil
		}
		return Token{}, lx.errorf(line, col, "unexpected character '!'")

	case ch == '<':
		lx.advance()
		if lx.eat('=') {
			return mk(TokenLTE, "<="), nil
		}
		if lx.eat('>') {
			return mk(TokenNEQ, "<>"), nil
		}
		return mk(TokenLT, "<"), nil

	case ch == '>':
		lx.advance()
		if lx.eat('=') {
			return mk(TokenGTE, ">="), nil
		}
		return mk(TokenGT, ">"), nil

	default:
		if tt, ok := singleCharTokens[ch]; ok {
			lx.advance()
			return mk(tt, string(ch)), nil
		}
		return Token{}, lx.errorf(line, col, "unexpected character %q", ch)
	}
}

func (lx *lexer) errorf(line, col int, format string, args ...interface{}) error {
	return fmt.Errorf("line %d col %d: %s", line, col, fmt.Sprintf(format, args...))
}

func (lx *lexer) advance() {
	if lx.pos >= len(lx.src) {
		return
	}
	if lx.src[lx.pos] == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
	lx.pos++
}

// eat consumes the next character if it equals ch.
func (lx *lexer) eat(ch byte) bool {
	if lx.pos < len(lx.src) && lx.src[lx.pos] == ch {
		lx.advance()
		return true
	}
	return false
}

func (lx *lexer) skipSpaceAndComments() {
	for lx.pos < len(lx.src) {
		switch {
		case lx.src[lx.pos] == ' ' || lx.src[lx.pos] == '\t' ||
			lx.src[lx.pos] == '\r' || lx.src[lx.pos] == '\n':
			lx.advance()
		case strings.HasPrefix(lx.src[lx.pos:], "--"):
			for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
				lx.advance()
			}
		default:
			return
		}
	}
}

func (lx *lexer) scanNumber() string {
	start := lx.pos
	if lx.src[lx.pos] == '-' {
		lx.advance()
	}
	for lx.pos < len(lx.src) && isDigit(lx.src[lx.pos]) {
		lx.advance()
	}
	if lx.eat('.') {
		for lx.pos < len(lx.src) && isDigit(lx.src[lx.pos]) {
			lx.advance()
		}
	}
	return lx.src[start:lx.pos]
}

func (lx *lexer) scanIdentifier() string {
	start := lx.pos
	for lx.pos < len(lx.src) && isIdentPart(lx.src[lx.pos]) {
		lx.advance()
	}
	return lx.src[start:lx.pos]
}

// scanString reads a single-quoted literal. Both SQL-style doubled quotes
// ('it''s') and backslash escapes are accepted.
func (lx *lexer) scanString() (string, error) {
	line, col := lx.line, lx.col
	lx.advance() // opening quote

	var sb strings.Builder
	for lx.pos < len(lx.src) {
		ch := lx.src[lx.pos]
		switch {
		case ch == '\'' && lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '\'':
			sb.WriteByte('\'')
			lx.advance()
			lx.advance()
		case ch == '\'':
			lx.advance() // closing quote
			return sb.String(), nil
		case ch == '\\' && lx.pos+1 < len(lx.src):
			lx.advance()
			switch lx.src[lx.pos] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteByte(lx.src[lx.pos])
			}
			lx.advance()
		default:
			sb.WriteByte(ch)
			lx.advance()
		}
	}
	return "", lx.errorf(line, col, "unterminated string")
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentPart(ch byte) bool { return isIdentStart(ch) || isDigit(ch) }
