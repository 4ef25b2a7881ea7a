package parser

import "strings"

// TokenType represents the type of a lexical token.
type TokenType int

const (
	// Literals
	TokenIdentifier TokenType = iota
	TokenNumber               // integer or float literal
	TokenString               // 'single-quoted string'

	// Keywords
	TokenAND
	TokenOR
	TokenNOT
	TokenIN
	TokenBETWEEN
	TokenTRUE
	TokenFALSE

	// Operators and punctuation
	TokenLParen    // (
	TokenRParen    // )
	TokenComma     // ,
	TokenStar      // *
	TokenEQ        // =
	TokenNEQ       // != or <>
	TokenLT        // <
	TokenGT        // >
	TokenLTE       // <=
	TokenGTE       // >=
	TokenPlus  // +
	TokenMinus // -
	TokenSlash // /

	TokenEOF
)

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Col     int
}

var keywords = map[string]TokenType{
	"AND":     TokenAND,
	"OR":      TokenOR,
	"NOT":     TokenNOT,
	"IN":      TokenIN,
	"BETWEEN": TokenBETWEEN,
	"TRUE":    TokenTRUE,
	"FALSE":   TokenFALSE,
}

// LookupKeyword returns the keyword token type for an identifier, or
// TokenIdentifier if it is not a keyword. Keywords are case-insensitive.
func LookupKeyword(ident string) TokenType {
	if tt, ok := keywords[strings.ToUpper(ident)]; ok {
		return tt
	}
	return TokenIdentifier
}
