// Package sequence implements the graphical password: an ordered list of tap
// tokens, its canonical storable encoding and the exact-match comparison used
// at login.
//
// A token has one of two shapes. A simple token is a bare string naming a
// grid cell ("00"). A structured token ties cells to an uploaded image:
//
//	{"image_index": 0, "grid": ["00"]}
//
// Both shapes may appear in one sequence and are never considered equal to
// each other.
package sequence

import "slices"

// Kind tells the two token shapes apart.
type Kind uint8

const (
	KindSimple Kind = iota + 1
	KindStructured
)

func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindStructured:
		return "structured"
	default:
		return "unknown"
	}
}

// Token is one tap of a graphical password.
type Token struct {
	kind       Kind
	cell       string
	imageIndex int
	grid       []string
}

// Simple returns a bare-string token.
func Simple(cell string) Token {
	return Token{kind: KindSimple, cell: cell}
}

// Structured returns a token bound to the image at imageIndex.
func Structured(imageIndex int, grid ...string) Token {
	return Token{kind: KindStructured, imageIndex: imageIndex, grid: slices.Clone(grid)}
}

func (t Token) Kind() Kind { return t.kind }

// Cell returns the value of a simple token.
func (t Token) Cell() string { return t.cell }

// ImageIndex returns the image a structured token refers to.
func (t Token) ImageIndex() int { return t.imageIndex }

// Grid returns the cells of a structured token.
func (t Token) Grid() []string { return slices.Clone(t.grid) }

// Equal compares the full value of two tokens, including their shape.
func (t Token) Equal(o Token) bool {
	if t.kind != o.kind {
		return false
	}
	switch t.kind {
	case KindSimple:
		return t.cell == o.cell
	case KindStructured:
		return t.imageIndex == o.imageIndex && slices.Equal(t.grid, o.grid)
	default:
		return false
	}
}

// Sequence is an ordered graphical password. Order is part of the secret.
type Sequence []Token

// Equal reports whether both sequences hold equal tokens in the same order.
func (s Sequence) Equal(o Sequence) bool {
	return slices.EqualFunc(s, o, Token.Equal)
}
