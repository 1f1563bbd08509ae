package parser

import (
	"strings"
	"unicode/utf8"

	"squawk/internal/ast"
)

// TokenType identifies the lexical class of a Token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenWord
	TokenQuotedIdent
	TokenString
	TokenNumber
	TokenParam
	TokenSymbol
	TokenLParen
	TokenRParen
	TokenComma
	TokenSemicolon
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenWord:
		return "word"
	case TokenQuotedIdent:
		return "quoted identifier"
	case TokenString:
		return "string"
	case TokenNumber:
		return "number"
	case TokenParam:
		return "parameter"
	case TokenSymbol:
		return "symbol"
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	case TokenComma:
		return ","
	case TokenSemicolon:
		return ";"
	}
	return "unknown"
}

// Token is a lexical token. For quoted identifiers Literal holds the
// unquoted value; for every other type it holds the source text.
type Token struct {
	Type    TokenType
	Literal string
	Start   ast.Position
	End     ast.Position // last byte of the token
	// Unterminated is set on strings, quoted identifiers and block
	// comments that run into the end of input.
	Unterminated bool
}

// IsKeyword reports whether t is an unquoted word equal to kw, ignoring case.
func (t Token) IsKeyword(kw string) bool {
	return t.Type == TokenWord && strings.EqualFold(t.Literal, kw)
}

// Lexer tokenizes SQL input. Comments and whitespace are skipped.
type Lexer struct {
	input string
	pos   int // offset of the current byte
	line  int
	col   int
	last  ast.Position // position of the last consumed byte

	problems []ast.ParseDiagnostic
}

// NewLexer creates a Lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, line: 1, col: 1}
}

// Tokenize returns every token of input up to and excluding EOF, plus
// diagnostics for unterminated literals and comments.
func Tokenize(input string) ([]Token, []ast.ParseDiagnostic) {
	l := NewLexer(input)
	var toks []Token
	for {
		tok := l.NextToken()
		if tok.Type == TokenEOF {
			break
		}
		toks = append(toks, tok)
	}
	return toks, l.problems
}

func (l *Lexer) position() ast.Position {
	return ast.Position{Line: l.line, Column: l.col, Offset: l.pos}
}

func (l *Lexer) ch() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peek(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) eof() bool {
	return l.pos >= len(l.input)
}

// advance consumes one byte. Columns only move on rune boundaries so every
// byte of a multi-byte character shares the character's column.
func (l *Lexer) advance() {
	if l.eof() {
		return
	}
	l.last = l.position()
	c := l.input[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 1
		return
	}
	if l.eof() || utf8.RuneStart(l.input[l.pos]) {
		l.col++
	}
}

func (l *Lexer) token(typ TokenType, start ast.Position) Token {
	return Token{
		Type:    typ,
		Literal: l.input[start.Offset:l.pos],
		Start:   start,
		End:     l.last,
	}
}

func (l *Lexer) problem(start ast.Position, reason string) {
	l.problems = append(l.problems, ast.ParseDiagnostic{
		Span:   ast.Span{Start: start, End: l.last},
		Reason: reason,
	})
}

// NextToken returns the next token, or a TokenEOF token at end of input.
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	start := l.position()
	if l.eof() {
		return Token{Type: TokenEOF, Start: start, End: start}
	}

	c := l.ch()
	switch {
	case c == ';':
		l.advance()
		return l.token(TokenSemicolon, start)
	case c == '(':
		l.advance()
		return l.token(TokenLParen, start)
	case c == ')':
		l.advance()
		return l.token(TokenRParen, start)
	case c == ',':
		l.advance()
		return l.token(TokenComma, start)
	case c == '\'':
		return l.readString(start, false)
	case c == '"' || c == '`':
		return l.readQuotedIdent(start, c)
	case c == '$':
		if isDigit(l.peek(1)) {
			l.advance()
			for isDigit(l.ch()) {
				l.advance()
			}
			return l.token(TokenParam, start)
		}
		if tag, ok := l.dollarTag(); ok {
			return l.readDollarString(start, tag)
		}
		l.advance()
		return l.token(TokenSymbol, start)
	case isDigit(c) || (c == '.' && isDigit(l.peek(1))):
		return l.readNumber(start)
	case isIdentStart(c):
		// E'...', B'...', X'...', N'...' string prefixes.
		if l.peek(1) == '\'' {
			switch c {
			case 'e', 'E':
				l.advance()
				return l.readString(start, true)
			case 'b', 'B', 'x', 'X', 'n', 'N':
				l.advance()
				return l.readString(start, false)
			}
		}
		for isIdentPart(l.ch()) {
			l.advance()
		}
		return l.token(TokenWord, start)
	case isOperator(c):
		for isOperator(l.ch()) && !l.atCommentStart() {
			l.advance()
		}
		return l.token(TokenSymbol, start)
	}

	// Any other character, including '.', ':' and non-ASCII runes.
	_, size := utf8.DecodeRuneInString(l.input[l.pos:])
	for i := 0; i < size; i++ {
		l.advance()
	}
	if c == ':' && l.ch() == ':' {
		l.advance()
	}
	return l.token(TokenSymbol, start)
}

func (l *Lexer) atCommentStart() bool {
	c := l.ch()
	return (c == '-' && l.peek(1) == '-') || (c == '/' && l.peek(1) == '*')
}

func (l *Lexer) skipWhitespaceAndComments() {
	for !l.eof() {
		c := l.ch()
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			l.advance()
		case c == '-' && l.peek(1) == '-':
			for !l.eof() && l.ch() != '\n' {
				l.advance()
			}
		case c == '/' && l.peek(1) == '*':
			l.skipBlockComment()
		default:
			return
		}
	}
}

// skipBlockComment consumes a /* */ comment. Block comments nest.
func (l *Lexer) skipBlockComment() {
	start := l.position()
	depth := 0
	for !l.eof() {
		switch {
		case l.ch() == '/' && l.peek(1) == '*':
			depth++
			l.advance()
			l.advance()
		case l.ch() == '*' && l.peek(1) == '/':
			depth--
			l.advance()
			l.advance()
			if depth == 0 {
				return
			}
		default:
			l.advance()
		}
	}
	l.problem(start, "unterminated block comment")
}

// readString reads a single-quoted literal. The opening quote is the
// current byte. Doubled quotes escape a quote; backslashes escape when
// the literal has the E prefix.
func (l *Lexer) readString(start ast.Position, backslash bool) Token {
	l.advance() // opening quote
	for !l.eof() {
		c := l.ch()
		switch {
		case backslash && c == '\\':
			l.advance()
			l.advance()
		case c == '\'' && l.peek(1) == '\'':
			l.advance()
			l.advance()
		case c == '\'':
			l.advance()
			return l.token(TokenString, start)
		default:
			l.advance()
		}
	}
	tok := l.token(TokenString, start)
	tok.Unterminated = true
	l.problem(start, "unterminated string literal")
	return tok
}

func (l *Lexer) readQuotedIdent(start ast.Position, quote byte) Token {
	l.advance() // opening quote
	var b strings.Builder
	for !l.eof() {
		c := l.ch()
		if c == quote {
			if l.peek(1) == quote {
				b.WriteByte(quote)
				l.advance()
				l.advance()
				continue
			}
			l.advance()
			tok := l.token(TokenQuotedIdent, start)
			tok.Literal = b.String()
			return tok
		}
		b.WriteByte(c)
		l.advance()
	}
	tok := l.token(TokenQuotedIdent, start)
	tok.Literal = b.String()
	tok.Unterminated = true
	l.problem(start, "unterminated quoted identifier")
	return tok
}

// dollarTag reports whether a dollar-quote opener such as $$ or $body$
// starts at the current byte, and returns it.
func (l *Lexer) dollarTag() (string, bool) {
	i := l.pos + 1
	for i < len(l.input) && isIdentPart(l.input[i]) && l.input[i] != '$' {
		i++
	}
	if i < len(l.input) && l.input[i] == '$' {
		return l.input[l.pos : i+1], true
	}
	return "", false
}

func (l *Lexer) readDollarString(start ast.Position, tag string) Token {
	for range len(tag) {
		l.advance()
	}
	end := strings.Index(l.input[l.pos:], tag)
	if end < 0 {
		for !l.eof() {
			l.advance()
		}
		tok := l.token(TokenString, start)
		tok.Unterminated = true
		l.problem(start, "unterminated dollar-quoted string")
		return tok
	}
	for range end + len(tag) {
		l.advance()
	}
	return l.token(TokenString, start)
}

func (l *Lexer) readNumber(start ast.Position) Token {
	for isDigit(l.ch()) || l.ch() == '.' || l.ch() == '_' {
		l.advance()
	}
	if (l.ch() == 'e' || l.ch() == 'E') && (isDigit(l.peek(1)) || ((l.peek(1) == '+' || l.peek(1) == '-') && isDigit(l.peek(2)))) {
		l.advance()
		l.advance()
		for isDigit(l.ch()) {
			l.advance()
		}
	}
	return l.token(TokenNumber, start)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c >= utf8.RuneSelf
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '$'
}

func isOperator(c byte) bool {
	return strings.IndexByte("+-*/<>=~!@#%^&|?", c) >= 0
}
