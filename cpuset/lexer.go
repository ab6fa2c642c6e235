package cpuset

import (
	"github.com/zalgonoise/lex"
)

// StateFunc is the first phase of the parser, which consumes the CPU-set string's lexemes while emitting
// meaningful tokens on what type of data they portray.
//
// This function works in tandem with ParseFunc, as a parser-lexer state-machine during the parse.Run call, in
// Parse. A CPU-set string such as "0-3,5,7" is made of decimal numbers separated by dashes (inclusive ranges) and
// commas (further members), with optional spaces tolerated between fields.
func StateFunc(l lex.Lexer[Token, byte]) lex.StateFn[Token, byte] {
	switch l.Next() {
	case '-':
		l.Emit(TokenDash)

		return StateFunc
	case ',':
		l.Emit(TokenComma)

		return StateFunc
	case ' ':
		l.Emit(TokenSpace)

		return StateFunc
	case 0:
		l.Emit(TokenEOF)

		return nil
	default:
		return stateNumber
	}
}

func stateNumber(l lex.Lexer[Token, byte]) lex.StateFn[Token, byte] {
	l.Backup() // undo l.Next() for the digit run below

	for {
		if item := l.Cur(); item >= '0' && item <= '9' {
			l.Next()

			continue
		}
		break
	}

	if l.Width() > 0 {
		l.Emit(TokenNumber)

		return StateFunc
	}

	// not a digit and not one of the recognized symbols: consume it as an error lexeme
	l.Next()
	l.Emit(TokenError)

	return StateFunc
}
