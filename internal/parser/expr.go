package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser parses a token stream into an expression tree.
//
// Precedence (lowest to highest): OR, AND, NOT, comparison (including IN,
// NOT IN and BETWEEN), addition, multiplication, unary, primary.
type Parser struct {
	tokens []Token
	pos    int
}

// NewParser creates a parser over a token slice.
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// ParseExpression parses a standalone SQL expression string into an AST.
func ParseExpression(sql string) (Expression, error) {
	tokens, err := tokenize(sql)
	if err != nil {
		return nil, err
	}
	p := NewParser(tokens)
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.peek().Type != TokenEOF {
		return nil, fmt.Errorf("unexpected token after expression: %q", p.peek().Literal)
	}
	return expr, nil
}

func (p *Parser) peek() Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return Token{Type: TokenEOF}
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) match(tt TokenType) bool {
	if p.peek().Type == tt {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.peek()
	if tok.Type != tt {
		return Token{}, p.errorf("unexpected token %q", tok.Literal)
	}
	return p.advance(), nil
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	tok := p.peek()
	return fmt.Errorf("line %d col %d: %s", tok.Line, tok.Col, fmt.Sprintf(format, args...))
}

func (p *Parser) parseExpression() (Expression, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (Expression, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == TokenOR {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: "OR", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expression, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == TokenAND {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: "AND", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseNot() (Expression, error) {
	if p.peek().Type == TokenNOT {
		p.advance()
		expr, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: "NOT", Expr: expr}, nil
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() (Expression, error) {
	left, err := p.parseAddSub()
	if err != nil {
		return nil, err
	}

	switch p.peek().Type {
	case TokenEQ, TokenNEQ, TokenLT, TokenGT, TokenLTE, TokenGTE:
		op := p.advance().Literal
		right, err := p.parseAddSub()
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Op: op, Left: left, Right: right}, nil

	case TokenIN:
		p.advance()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Op: "IN", Left: left, Right: right}, nil

	case TokenNOT:
		// col NOT IN (...) / col NOT BETWEEN a AND b
		p.advance()
		switch p.peek().Type {
		case TokenIN:
			p.advance()
			right, err := p.parsePrimary()
			if err != nil {
				return nil, err
			}
			return &BinaryExpr{Op: "NOT IN", Left: left, Right: right}, nil
		case TokenBETWEEN:
			p.advance()
			between, err := p.parseBetween(left)
			if err != nil {
				return nil, err
			}
			return &UnaryExpr{Op: "NOT", Expr: between}, nil
		default:
			return nil, p.errorf("expected IN or BETWEEN after NOT")
		}

	case TokenBETWEEN:
		p.advance()
		return p.parseBetween(left)
	}
	return left, nil
}

// parseBetween desugars `x BETWEEN lo AND hi` into `x >= lo AND x <= hi`.
func (p *Parser) parseBetween(operand Expression) (Expression, error) {
	lo, err := p.parseAddSub()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenAND); err != nil {
		return nil, err
	}
	hi, err := p.parseAddSub()
	if err != nil {
		return nil, err
	}
	return &BinaryExpr{
		Op:    "AND",
		Left:  &BinaryExpr{Op: ">=", Left: operand, Right: lo},
		Right: &BinaryExpr{Op: "<=", Left: operand, Right: hi},
	}, nil
}

func (p *Parser) parseAddSub() (Expression, error) {
	left, err := p.parseMulDiv()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == TokenPlus || p.peek().Type == TokenMinus {
		op := p.advance().Literal
		right, err := p.parseMulDiv()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMulDiv() (Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == TokenStar || p.peek().Type == TokenSlash {
		op := p.advance().Literal
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Expression, error) {
	if p.peek().Type == TokenMinus {
		p.advance()
		expr, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: "-", Expr: expr}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Expression, error) {
	tok := p.peek()

	switch tok.Type {
	case TokenNumber:
		p.advance()
		if strings.Contains(tok.Literal, ".") {
			f, err := strconv.ParseFloat(tok.Literal, 64)
			if err != nil {
				return nil, err
			}
			return &LiteralExpr{Value: f}, nil
		}
		n, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return nil, err
		}
		return &LiteralExpr{Value: n}, nil

	case TokenString:
		p.advance()
		return &LiteralExpr{Value: tok.Literal}, nil

	case TokenTRUE:
		p.advance()
		return &LiteralExpr{Value: true}, nil

	case TokenFALSE:
		p.advance()
		return &LiteralExpr{Value: false}, nil

	case TokenIdentifier:
		p.advance()
		// Check if this is a function call
		if p.peek().Type == TokenLParen {
			return p.parseFunctionCall(tok.Literal)
		}
		return &ColumnRef{Name: tok.Literal}, nil

	case TokenAND, TokenOR, TokenNOT:
		// Variadic call forms and(...), or(...), not(...): the lexer keeps
		// these as keywords, so the call shape must be recognized here.
		if p.pos+1 < len(p.tokens) && p.tokens[p.pos+1].Type == TokenLParen {
			p.advance()
			return p.parseFunctionCall(tok.Literal)
		}
		return nil, p.errorf("unexpected token %q in expression", tok.Literal)

	case TokenLParen:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		// A comma after the first element makes this a tuple, not grouping.
		if p.peek().Type == TokenComma {
			elems := []Expression{expr}
			for p.match(TokenComma) {
				el, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				elems = append(elems, el)
			}
			if _, err := p.expect(TokenRParen); err != nil {
				return nil, err
			}
			return &TupleExpr{Elems: elems}, nil
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return expr, nil

	default:
		return nil, p.errorf("unexpected token %q in expression", tok.Literal)
	}
}

func (p *Parser) parseFunctionCall(name string) (Expression, error) {
	p.advance() // consume (

	var args []Expression
	if p.peek().Type != TokenRParen {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(TokenComma) {
				break
			}
		}
	}

	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}

	return &FunctionCall{Name: strings.ToLower(name), Args: args}, nil
}
