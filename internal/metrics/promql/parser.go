package promql

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseError describes a rejected expression. It maps to the bad_data error
// type in API responses.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d: %s", e.Pos, e.Msg)
}

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNumber
	tokenIdent
	tokenOp
)

type token struct {
	kind tokenKind
	pos  int
	text string
}

// lex splits the input into number, identifier and operator tokens.
// Identifiers follow the metric name charset: [a-zA-Z_:][a-zA-Z0-9_:]*.
func lex(input string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '+' || c == '-' || c == '*' || c == '/':
			tokens = append(tokens, token{kind: tokenOp, pos: i, text: string(c)})
			i++
		case c >= '0' && c <= '9' || c == '.':
			start := i
			for i < len(input) && (input[i] >= '0' && input[i] <= '9' || input[i] == '.' ||
				input[i] == 'e' || input[i] == 'E' ||
				(input[i] == '+' || input[i] == '-') && i > start && (input[i-1] == 'e' || input[i-1] == 'E')) {
				i++
			}
			tokens = append(tokens, token{kind: tokenNumber, pos: start, text: input[start:i]})
		case isIdentStart(rune(c)):
			start := i
			for i < len(input) && isIdentPart(rune(input[i])) {
				i++
			}
			tokens = append(tokens, token{kind: tokenIdent, pos: start, text: input[start:i]})
		default:
			return nil, &ParseError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	tokens = append(tokens, token{kind: tokenEOF, pos: len(input)})
	return tokens, nil
}

func isIdentStart(r rune) bool {
	return r == '_' || r == ':' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

// Parse parses an expression per the grammar
//
//	expr := term (('+'|'-'|'*'|'/') term)*
//	term := NUMBER | IDENT
//
// and returns a left-leaning tree: operators share one precedence level and
// evaluate left to right.
func Parse(input string) (Expr, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &ParseError{Pos: 0, Msg: "empty expression"}
	}
	tokens, err := lex(input)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokenEOF {
		return nil, &ParseError{Pos: tok.pos, Msg: fmt.Sprintf("unexpected token %q", tok.text)}
	}
	return expr, nil
}

type parser struct {
	tokens []token
	i      int
}

func (p *parser) peek() token { return p.tokens[p.i] }

func (p *parser) next() token {
	tok := p.tokens[p.i]
	if tok.kind != tokenEOF {
		p.i++
	}
	return tok
}

func (p *parser) parseExpr() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokenOp {
		op := p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: Op(op.text[0]), LHS: left, RHS: right}
	}
	return left, nil
}

func (p *parser) parseTerm() (Expr, error) {
	tok := p.next()
	switch tok.kind {
	case tokenNumber:
		v, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, &ParseError{Pos: tok.pos, Msg: fmt.Sprintf("invalid number %q", tok.text)}
		}
		return &NumberLit{Value: v}, nil
	case tokenIdent:
		return &MetricRef{Name: tok.text}, nil
	case tokenOp:
		return nil, &ParseError{Pos: tok.pos, Msg: fmt.Sprintf("unexpected operator %q", tok.text)}
	default:
		return nil, &ParseError{Pos: tok.pos, Msg: "unexpected end of expression"}
	}
}
