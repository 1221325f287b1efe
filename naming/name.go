// Package naming validates and builds hierarchical peripheral names such as
// "Board.RTC[1]".
package naming

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidName is returned for a name that breaks the naming convention.
var ErrInvalidName = errors.New("invalid name")

// A Name is a series of tokens separated by dots.
type Name struct {
	Tokens []Token
}

// Token is one element of a name, with optional indices.
type Token struct {
	Elem  string
	Index []int
}

// Parse parses a name. Element names must be non-empty, start with a capital
// letter and use no underscore, quote or dash. Instances of a series use
// square-bracket indices.
func Parse(name string) (Name, error) {
	parts := strings.Split(name, ".")
	n := Name{Tokens: make([]Token, len(parts))}

	for i, part := range parts {
		t, err := parseToken(part)
		if err != nil {
			return Name{}, fmt.Errorf("%w: %q: %s", ErrInvalidName, name, err)
		}

		n.Tokens[i] = t
	}

	return n, nil
}

func parseToken(s string) (Token, error) {
	elem, rest, _ := strings.Cut(s, "[")
	if err := elemMustBeValid(elem); err != nil {
		return Token{}, err
	}

	t := Token{Elem: elem}

	for rest != "" {
		idx, after, ok := strings.Cut(rest, "]")
		if !ok {
			return Token{}, errors.New("brackets must match")
		}

		n, err := strconv.Atoi(idx)
		if err != nil || n < 0 {
			return Token{}, errors.New("index must be a non-negative integer")
		}

		t.Index = append(t.Index, n)

		if after == "" {
			break
		}

		if after[0] != '[' {
			return Token{}, errors.New("brackets must match")
		}

		rest = after[1:]
	}

	return t, nil
}

func elemMustBeValid(elem string) error {
	if elem == "" {
		return errors.New("element must not be empty")
	}

	if strings.ContainsAny(elem, "_\"'-]") {
		return errors.New("element contains an invalid character")
	}

	if elem[0] < 'A' || elem[0] > 'Z' {
		return errors.New("element must start with a capital letter")
	}

	return nil
}

// MustBeValid panics if name does not follow the naming convention.
func MustBeValid(name string) {
	if _, err := Parse(name); err != nil {
		panic(err)
	}
}

// String rebuilds the name.
func (n Name) String() string {
	parts := make([]string, len(n.Tokens))
	for i, t := range n.Tokens {
		parts[i] = BuildWithIndex("", t.Elem, t.Index...)
	}

	return strings.Join(parts, ".")
}

// Build joins a parent name and an element name.
func Build(parent, elem string) string {
	if parent == "" {
		return elem
	}

	return parent + "." + elem
}

// BuildWithIndex joins a parent name and an indexed element name.
func BuildWithIndex(parent, elem string, index ...int) string {
	name := Build(parent, elem)
	for _, i := range index {
		name += "[" + strconv.Itoa(i) + "]"
	}

	return name
}
