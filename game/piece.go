package game

// Kind is an animal. Lower kinds outrank higher ones, except that the Rat
// can capture the Elephant.
type Kind int8

const (
	Elephant Kind = iota
	Lion
	Tiger
	Panther
	Wolf
	Dog
	Cat
	Rat
	NumKinds
)

var kindLetters = [NumKinds]byte{'e', 'l', 't', 'p', 'w', 'd', 'c', 'r'}

// Piece is an animal owned by a side. The zero value is an empty square.
type Piece uint8

const NoPiece Piece = 0

// NumPieceTypes is the number of distinct (side, kind) pairs.
const NumPieceTypes = 2 * int(NumKinds)

func NewPiece(side Side, kind Kind) Piece {
	return Piece(1 + int(kind) + int(NumKinds)*int(side))
}

func (p Piece) IsEmpty() bool {
	return p == NoPiece
}

func (p Piece) Kind() Kind {
	return Kind((p - 1) % Piece(NumKinds))
}

func (p Piece) Side() Side {
	return Side((p - 1) / Piece(NumKinds))
}

// Index is the piece's plane in [0, NumPieceTypes): kind for Red, kind+8 for Black.
func (p Piece) Index() int {
	return int(p) - 1
}

// Letter is the FEN letter: upper case for Red, lower case for Black.
func (p Piece) Letter() byte {
	if p.IsEmpty() {
		return '.'
	}
	c := kindLetters[p.Kind()]
	if p.Side() == Red {
		c -= 'a' - 'A'
	}
	return c
}

// pieceFromLetter parses a FEN letter.
func pieceFromLetter(c byte) (Piece, bool) {
	side := Black
	lower := c
	if c >= 'A' && c <= 'Z' {
		side = Red
		lower = c + ('a' - 'A')
	}
	for k, l := range kindLetters {
		if l == lower {
			return NewPiece(side, Kind(k)), true
		}
	}
	return NoPiece, false
}

// outranks reports whether a capturer of kind k may take a defender of kind other
// on rank alone.
func (k Kind) outranks(other Kind) bool {
	return k <= other
}
