package game

import (
	"fmt"
	"slices"
)

// StartFEN is the standard opening position.
const StartFEN = "l5t/1d3c1/r1p1w1e/7/7/7/E1W1P1R/1C3D1/T5L w"

// noSide marks the absence of a den winner.
const noSide Side = -1

type undoEntry struct {
	from, to  Square
	captured  Piece
	denBefore Side
}

// Jungle is an Animal Chess position with an undo stack. It implements Board.
type Jungle struct {
	squares [NumSquares]Piece
	side    Side
	counts  [2]int
	inDen   Side // side that entered the opposing den, or noSide
	key     uint64
	history []undoEntry
}

var _ Board = (*Jungle)(nil)

// NewJungle returns the standard opening position.
func NewJungle() *Jungle {
	j, err := NewJungleFromFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return j
}

// NewJungleFromFEN parses a position such as StartFEN.
func NewJungleFromFEN(fen string) (*Jungle, error) {
	j := &Jungle{inDen: noSide}
	if err := j.LoadFEN(fen); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Jungle) ActionSpace() int {
	return MaxAction
}

func (j *Jungle) SideToMove() Side {
	return j.side
}

// Key is the Zobrist key of the position.
func (j *Jungle) Key() uint64 {
	return j.key
}

// UndoDepth is the number of applied moves that can still be undone.
func (j *Jungle) UndoDepth() int {
	return len(j.history)
}

func (j *Jungle) PieceAt(s Square) Piece {
	return j.squares[s]
}

// Count returns the number of pieces a side has left.
func (j *Jungle) Count(side Side) int {
	return j.counts[side]
}

func (j *Jungle) Winner() (Side, bool) {
	if j.inDen != noSide {
		return j.inDen, true
	}
	if j.counts[Red] == 0 || j.counts[Black] == 0 {
		if j.counts[Red] > 0 {
			return Red, true
		}
		return Black, true
	}
	return noSide, false
}

func (j *Jungle) LegalActions() []Action {
	if _, over := j.Winner(); over {
		return nil
	}
	actions := make([]Action, 0, 32)
	for s := Square(0); s < NumSquares; s++ {
		p := j.squares[s]
		if p.IsEmpty() || p.Side() != j.side {
			continue
		}
		for _, to := range j.destinations(s) {
			actions = append(actions, encodeMove(s, to))
		}
	}
	return actions
}

// Apply plays an action for the side to move. Illegal actions are
// programming errors and panic.
func (j *Jungle) Apply(a Action) {
	if a < 0 || int(a) >= MaxAction {
		panic(fmt.Sprintf("illegal action %d: out of range", a))
	}
	from, to := j.decode(a)
	mover := j.squares[from]
	if to < 0 || mover.IsEmpty() || mover.Side() != j.side || !slices.Contains(j.destinations(from), to) {
		panic(fmt.Sprintf("illegal action %d (%s) for %s", a, j.DecodeMove(a), j.side))
	}
	captured := j.squares[to]
	j.history = append(j.history, undoEntry{from: from, to: to, captured: captured, denBefore: j.inDen})

	j.key ^= pieceKey(mover, from) ^ pieceKey(mover, to) ^ pieceKey(captured, to) ^ zobristBlack
	j.squares[to] = mover
	j.squares[from] = NoPiece
	if !captured.IsEmpty() {
		j.counts[captured.Side()]--
	}
	if to == denOf(mover.Side().Opponent()) {
		j.inDen = mover.Side()
	}
	j.side = j.side.Opponent()
}

// Undo reverses the most recent Apply.
func (j *Jungle) Undo() {
	if len(j.history) == 0 {
		panic("undo without a matching apply")
	}
	e := j.history[len(j.history)-1]
	j.history = j.history[:len(j.history)-1]

	mover := j.squares[e.to]
	j.squares[e.from] = mover
	j.squares[e.to] = e.captured
	j.key ^= pieceKey(mover, e.from) ^ pieceKey(mover, e.to) ^ pieceKey(e.captured, e.to) ^ zobristBlack
	if !e.captured.IsEmpty() {
		j.counts[e.captured.Side()]++
	}
	j.inDen = e.denBefore
	j.side = j.side.Opponent()
}

func (j *Jungle) Clone() Board {
	return j.Copy()
}

// Copy returns an independent deep copy, history included.
func (j *Jungle) Copy() *Jungle {
	c := *j
	c.history = make([]undoEntry, len(j.history))
	copy(c.history, j.history)
	return &c
}

// canMove reports whether the piece on from may step or jump onto to,
// ignoring terrain reachability.
func (j *Jungle) canMove(from, to Square) bool {
	mover := j.squares[from]
	if to == denOf(mover.Side()) {
		return false
	}
	target := j.squares[to]
	if target.IsEmpty() {
		return true
	}
	if target.Side() == mover.Side() {
		return false
	}
	switch {
	case mover.Kind() == Rat && target.Kind() == Elephant:
		return !inWater(from)
	case mover.Kind() == Elephant && target.Kind() == Rat:
		return false
	}
	return mover.Kind().outranks(target.Kind()) || inEnemyTrap(to, target.Side())
}

// ratBlocks reports whether a Rat swims on the straight line between from and to.
func (j *Jungle) ratBlocks(from, to Square) bool {
	if from.Row() == to.Row() {
		lo, hi := min(from.Col(), to.Col()), max(from.Col(), to.Col())
		for c := lo; c <= hi; c++ {
			s := NewSquare(from.Row(), c)
			if j.squares[s].Kind() == Rat && !j.squares[s].IsEmpty() && inWater(s) {
				return true
			}
		}
		return false
	}
	lo, hi := min(from.Row(), to.Row()), max(from.Row(), to.Row())
	for r := lo; r <= hi; r++ {
		s := NewSquare(r, from.Col())
		if j.squares[s].Kind() == Rat && !j.squares[s].IsEmpty() && inWater(s) {
			return true
		}
	}
	return false
}

func (j *Jungle) steps(from Square, swim bool) []Square {
	var out []Square
	for _, d := range directions {
		r, c := from.Row()+d[0], from.Col()+d[1]
		if !onBoard(r, c) {
			continue
		}
		to := NewSquare(r, c)
		if inWater(to) && !swim {
			continue
		}
		if j.canMove(from, to) {
			out = append(out, to)
		}
	}
	return out
}

// jumps returns the river-crossing destinations of a Tiger or Lion on a bank.
func jumps(from Square) []Square {
	r, c := from.Row(), from.Col()
	if (r+2)%4 == 0 {
		return []Square{NewSquare((r+4)%8, c)}
	}
	if c%6 == 0 {
		return []Square{NewSquare(r, 3)}
	}
	return []Square{NewSquare(r, 0), NewSquare(r, 6)}
}

func (j *Jungle) destinations(from Square) []Square {
	switch j.squares[from].Kind() {
	case Rat:
		return j.steps(from, true)
	case Tiger, Lion:
		out := j.steps(from, false)
		if !onBank(from) {
			return out
		}
		for _, to := range jumps(from) {
			if j.canMove(from, to) && !j.ratBlocks(from, to) {
				out = append(out, to)
			}
		}
		return out
	default:
		return j.steps(from, false)
	}
}
