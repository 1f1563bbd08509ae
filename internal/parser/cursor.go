package parser

import (
	"fmt"
	"strings"

	"squawk/internal/ast"
)

// shapeError explains why a statement did not match the shape its
// leading keywords promised.
type shapeError struct {
	reason string
}

func (e *shapeError) Error() string { return e.reason }

func malformed(format string, args ...any) error {
	return &shapeError{reason: fmt.Sprintf(format, args...)}
}

// cursor walks the tokens of one statement.
type cursor struct {
	src  string
	toks []Token
	pos  int
}

func newCursor(src string, toks []Token) *cursor {
	return &cursor{src: src, toks: toks}
}

func (c *cursor) done() bool {
	return c.pos >= len(c.toks)
}

func (c *cursor) peek() Token {
	return c.peekAt(0)
}

func (c *cursor) peekAt(n int) Token {
	if c.pos+n >= len(c.toks) {
		return Token{Type: TokenEOF}
	}
	return c.toks[c.pos+n]
}

func (c *cursor) next() Token {
	tok := c.peek()
	if !c.done() {
		c.pos++
	}
	return tok
}

// isKeyword reports whether the upcoming tokens are the given keywords,
// without consuming them.
func (c *cursor) isKeyword(kws ...string) bool {
	for i, kw := range kws {
		if !c.peekAt(i).IsKeyword(kw) {
			return false
		}
	}
	return true
}

// acceptKeyword consumes the keyword sequence if it is next in full.
func (c *cursor) acceptKeyword(kws ...string) bool {
	if !c.isKeyword(kws...) {
		return false
	}
	c.pos += len(kws)
	return true
}

// acceptAny consumes one token if it is any of the given keywords.
func (c *cursor) acceptAny(kws ...string) bool {
	for _, kw := range kws {
		if c.acceptKeyword(kw) {
			return true
		}
	}
	return false
}

func (c *cursor) expectKeyword(kws ...string) error {
	if c.acceptKeyword(kws...) {
		return nil
	}
	return malformed("expected %s, found %s", strings.Join(kws, " "), describe(c.peek()))
}

// ident consumes one identifier. Unquoted keywords are accepted as
// identifiers; the recognizers only call this where a name is expected.
func (c *cursor) ident() (ast.Ident, error) {
	tok := c.peek()
	switch tok.Type {
	case TokenWord:
		c.pos++
		return ast.Ident{Value: tok.Literal}, nil
	case TokenQuotedIdent:
		c.pos++
		return ast.Ident{Value: tok.Literal, Quoted: true}, nil
	}
	return ast.Ident{}, malformed("expected identifier, found %s", describe(tok))
}

// objectName consumes a dotted name such as schema.table.
func (c *cursor) objectName() (ast.ObjectName, error) {
	var name ast.ObjectName
	for {
		id, err := c.ident()
		if err != nil {
			return ast.ObjectName{}, err
		}
		name.Parts = append(name.Parts, id)
		if c.peek().Type != TokenSymbol || c.peek().Literal != "." {
			return name, nil
		}
		c.pos++
	}
}

// objectNameList consumes name [, name ...], stopping at the first
// token that cannot continue the list.
func (c *cursor) objectNameList() ([]ast.ObjectName, error) {
	var list []ast.ObjectName
	for {
		c.acceptKeyword("ONLY")
		name, err := c.objectName()
		if err != nil {
			return nil, err
		}
		list = append(list, name)
		if c.peek().Type == TokenSymbol && c.peek().Literal == "*" {
			c.pos++
		}
		if c.peek().Type != TokenComma {
			return list, nil
		}
		c.pos++
	}
}

// group consumes one term: a balanced parenthesised group or a single token.
func (c *cursor) group() []Token {
	start := c.pos
	if c.peek().Type != TokenLParen {
		c.next()
		return c.toks[start:c.pos]
	}
	depth := 0
	for !c.done() {
		switch c.next().Type {
		case TokenLParen:
			depth++
		case TokenRParen:
			depth--
			if depth == 0 {
				return c.toks[start:c.pos]
			}
		}
	}
	return c.toks[start:c.pos]
}

// parenList consumes "( a, b(c), d )" and returns the source text of each
// top-level element.
func (c *cursor) parenList() ([]string, error) {
	if c.peek().Type != TokenLParen {
		return nil, malformed("expected (, found %s", describe(c.peek()))
	}
	grp := c.group()
	if grp[len(grp)-1].Type != TokenRParen {
		return nil, malformed("unbalanced parentheses")
	}
	var out []string
	for _, elem := range splitTopLevel(grp[1:len(grp)-1], TokenComma) {
		if len(elem) > 0 {
			out = append(out, c.text(elem))
		}
	}
	return out, nil
}

// until consumes terms until stop matches at the top level, and returns them.
func (c *cursor) until(stop func(*cursor) bool) []Token {
	start := c.pos
	for !c.done() && !stop(c) {
		c.group()
	}
	return c.toks[start:c.pos]
}

// rest consumes and returns all remaining tokens.
func (c *cursor) rest() []Token {
	toks := c.toks[c.pos:]
	c.pos = len(c.toks)
	return toks
}

// text returns the source text covered by toks.
func (c *cursor) text(toks []Token) string {
	if len(toks) == 0 {
		return ""
	}
	return c.src[toks[0].Start.Offset : toks[len(toks)-1].End.Offset+1]
}

// hasKeywordPair reports whether kw1 kw2 appears at parenthesis depth 0.
func hasKeywordPair(toks []Token, kw1, kw2 string) bool {
	depth := 0
	for i, tok := range toks {
		switch tok.Type {
		case TokenLParen:
			depth++
		case TokenRParen:
			depth--
		default:
			if depth == 0 && tok.IsKeyword(kw1) && (kw2 == "" || (i+1 < len(toks) && toks[i+1].IsKeyword(kw2))) {
				return true
			}
		}
	}
	return false
}

// splitTopLevel splits toks at separators outside parentheses.
func splitTopLevel(toks []Token, sep TokenType) [][]Token {
	var (
		parts [][]Token
		start int
		depth int
	)
	for i, tok := range toks {
		switch tok.Type {
		case TokenLParen:
			depth++
		case TokenRParen:
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, toks[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, toks[start:])
}

func describe(tok Token) string {
	if tok.Type == TokenEOF {
		return "end of statement"
	}
	return fmt.Sprintf("%q", tok.Literal)
}
