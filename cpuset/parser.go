package cpuset

import (
	"github.com/zalgonoise/parse"
)

// ParseFunc is the second and middle phase of the parser, which consumes a parse.Tree scoped to Token and byte,
// in tandem with StateFunc, as a lexer-parser state-machine strategy.
//
// The AST keeps a top-level node per CPU-set member ("0-3,5,7" has three top-level nodes: "0", "5" and "7"); a
// member that spans a range or chains further values branches into nodes carrying TokenDash or TokenComma, in the
// same shape cronlex uses for its own range and set notation.
func ParseFunc(t *parse.Tree[Token, byte]) parse.ParseFn[Token, byte] {
	switch t.Peek().Type {
	case TokenNumber:
		return parseNumber
	case TokenSpace:
		t.Next()

		return ParseFunc
	case TokenEOF:
		return nil
	default:
		return nil
	}
}

func parseNumber(t *parse.Tree[Token, byte]) parse.ParseFn[Token, byte] {
	t.Node(t.Next())

	switch t.Peek().Type {
	case TokenComma, TokenDash:
		return parseNumberSymbols
	case TokenSpace:
		_ = t.Set(t.Parent())
		t.Next()

		return ParseFunc
	default:
		_ = t.Set(t.Parent())

		return ParseFunc
	}
}

func parseNumberSymbols(t *parse.Tree[Token, byte]) parse.ParseFn[Token, byte] {
	t.Node(t.Next())

	switch t.Peek().Type {
	case TokenNumber:
		t.Node(t.Next())
		_ = t.Set(t.Parent().Parent)

		return parseNumber
	default:
		item := t.Next()
		item.Type = TokenError
		t.Node(item)

		return ParseFunc
	}
}
