package cpuset

import (
	"fmt"
	"strconv"

	"github.com/zalgonoise/parse"
	"github.com/zalgonoise/x/errs"
)

const (
	errDomain = errs.Domain("atlas-rt/dispatch/cpuset")

	ErrEmpty   = errs.Kind("empty")
	ErrInvalid = errs.Kind("invalid")

	ErrInput     = errs.Entity("input")
	ErrNodeType  = errs.Entity("node type")
	ErrNumEdges  = errs.Entity("number of edges")
	ErrNumber    = errs.Entity("cpu number")
	ErrCharacter = errs.Entity("character")
	ErrRange     = errs.Entity("range")
)

var (
	ErrEmptyInput       = errs.WithDomain(errDomain, ErrEmpty, ErrInput)
	ErrInvalidNodeType  = errs.WithDomain(errDomain, ErrInvalid, ErrNodeType)
	ErrInvalidNumEdges  = errs.WithDomain(errDomain, ErrInvalid, ErrNumEdges)
	ErrInvalidNumber    = errs.WithDomain(errDomain, ErrInvalid, ErrNumber)
	ErrInvalidCharacter = errs.WithDomain(errDomain, ErrInvalid, ErrCharacter)
	ErrInvalidRange     = errs.WithDomain(errDomain, ErrInvalid, ErrRange)
)

func validateCharacters(s string) error {
	if s == "" {
		return ErrEmptyInput
	}

	for i := range s {
		if (s[i] >= '0' && s[i] <= '9') || s[i] == ' ' || s[i] == ',' || s[i] == '-' {
			continue
		}

		return fmt.Errorf("%w: %v -- %q", ErrInvalidCharacter, s[i], s)
	}

	return nil
}

// Validate scans the entire parse.Tree for inconsistencies, returning an error if raised.
func Validate(t *parse.Tree[Token, byte]) error {
	nodes := t.List()

	if len(nodes) == 0 {
		return ErrEmptyInput
	}

	for i := range nodes {
		if err := validateMember(nodes[i]); err != nil {
			return err
		}
	}

	return nil
}

func validateMember(node *parse.Node[Token, byte]) error {
	if node.Type != TokenNumber {
		return fmt.Errorf("%w: %v -- %v", ErrInvalidNodeType, node.Type, string(node.Value))
	}

	if err := validateNumber(node.Value); err != nil {
		return err
	}

	for i := range node.Edges {
		switch node.Edges[i].Type {
		case TokenDash, TokenComma:
			if len(node.Edges[i].Edges) != 1 {
				return fmt.Errorf("%w: %d", ErrInvalidNumEdges, len(node.Edges[i].Edges))
			}

			symbol := node.Edges[i].Edges[0]
			if symbol.Type == TokenError {
				return fmt.Errorf("%w: %q", ErrInvalidCharacter, string(symbol.Value))
			}

			if err := validateNumber(symbol.Value); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %v", ErrInvalidNodeType, node.Edges[i].Type)
		}
	}

	return nil
}

func validateNumber(value []byte) error {
	n, err := strconv.Atoi(string(value))
	if err != nil {
		return fmt.Errorf("%w [%s]: %w", ErrInvalidNumber, value, err)
	}

	if n < 0 {
		return fmt.Errorf("%w [%d]: must not be negative", ErrInvalidNumber, n)
	}

	return nil
}
