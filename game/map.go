package game

// Board geometry: 9 rows by 7 columns, row 0 at Black's end.
const (
	Rows       = 9
	Cols       = 7
	NumSquares = Rows * Cols
)

// Square indexes the board as row*Cols + col.
type Square int

func NewSquare(row, col int) Square {
	return Square(row*Cols + col)
}

func (s Square) Row() int { return int(s) / Cols }
func (s Square) Col() int { return int(s) % Cols }

func (s Square) String() string {
	return string([]byte{byte('a' + s.Col()), byte('1' + Rows - 1 - s.Row())})
}

func onBoard(row, col int) bool {
	return row >= 0 && row < Rows && col >= 0 && col < Cols
}

// Dens: entering the opponent's den wins the game.
var (
	RedDen   = NewSquare(8, 3)
	BlackDen = NewSquare(0, 3)
)

func denOf(side Side) Square {
	if side == Red {
		return RedDen
	}
	return BlackDen
}

// trapMask marks trap squares; a piece standing in an enemy trap can be
// captured by any opposing piece.
const trapMask uint64 = 0x1410000000000414

// bankMask marks river banks from which the Tiger and the Lion jump.
const bankMask uint64 = 0xda4c992d8000

func inWater(s Square) bool {
	r, c := s.Row(), s.Col()
	return r >= 3 && r <= 5 && c%3 != 0
}

func onBank(s Square) bool {
	return bankMask&(1<<uint(s)) != 0
}

func isTrap(s Square) bool {
	return trapMask&(1<<uint(s)) != 0
}

// inEnemyTrap reports whether a piece of the given side standing on s is
// weakened by an opposing trap. Red's targets are the traps near row 0.
func inEnemyTrap(s Square, side Side) bool {
	if !isTrap(s) {
		return false
	}
	if side == Red {
		return s.Row() <= 1
	}
	return s.Row() >= 7
}

// Directions in action-encoding order: down, right, up, left.
var directions = [4][2]int{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}
