package game

// Side identifies one of the two players.
type Side int8

const (
	Red Side = iota
	Black
)

func (s Side) Opponent() Side {
	return 1 - s
}

func (s Side) String() string {
	switch s {
	case Red:
		return "red"
	case Black:
		return "black"
	}
	return "none"
}

// Value is the outcome of a decisive game from Red's perspective.
func (s Side) Value() float64 {
	if s == Red {
		return 1
	}
	return -1
}

// Action indexes one slot of a game's flattened action space [0, ActionSpace()).
type Action int

// Encoding is a board flattened into the evaluator's input tensor. Data has
// the row-major layout described by Shape; the first Layout values describe
// the piece placement only (no side to move, no counters).
type Encoding struct {
	Data   []float32 `json:"data"`
	Shape  []int     `json:"shape"`
	Layout int       `json:"layout"`
}

// LayoutData returns the piece placement portion of the encoding.
func (e Encoding) LayoutData() []float32 {
	return e.Data[:e.Layout]
}

// Board is a mutable game position. Apply and Undo must be called in strict
// LIFO order; a single instance is shared by a whole search tree.
type Board interface {
	ActionSpace() int
	LegalActions() []Action
	Apply(Action)
	Undo()
	Winner() (Side, bool)
	SideToMove() Side
	Encode() Encoding
	DecodeMove(Action) string
	Clone() Board
}

// Evaluate scores a board between -1 and 1 from Red's perspective.
type Evaluate func(*Jungle) float64
