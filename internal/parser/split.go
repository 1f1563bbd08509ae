package parser

import "squawk/internal/ast"

// chunk is the token run of one top-level statement.
type chunk struct {
	tokens []Token // excluding the terminating semicolon
	span   ast.Span
}

// split groups tokens into statements at semicolons that are not nested
// in parentheses. Strings, quoted identifiers and comments were already
// folded into single tokens (or dropped) by the lexer, so a semicolon
// inside them never reaches this point. Empty statements are dropped.
func split(toks []Token) []chunk {
	var (
		chunks []chunk
		cur    []Token
		depth  int
	)
	flush := func(term *Token) {
		if len(cur) == 0 {
			return
		}
		end := cur[len(cur)-1].End
		if term != nil {
			end = term.End
		}
		chunks = append(chunks, chunk{
			tokens: cur,
			span:   ast.Span{Start: cur[0].Start, End: end},
		})
		cur = nil
	}

	for i := range toks {
		tok := toks[i]
		switch tok.Type {
		case TokenLParen:
			depth++
		case TokenRParen:
			if depth > 0 {
				depth--
			}
		case TokenSemicolon:
			// An unbalanced parenthesis would otherwise swallow the rest of
			// the file, so a command keyword opening the next line also ends
			// the statement.
			if depth == 0 || (i+1 < len(toks) && toks[i+1].Start.Line > tok.End.Line && startsCommand(toks[i+1])) {
				depth = 0
				flush(&toks[i])
				continue
			}
		}
		cur = append(cur, tok)
	}
	flush(nil)
	return chunks
}
