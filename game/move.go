package game

import "fmt"

// MaxAction is the size of the action space: one slot per direction per square.
const MaxAction = len(directions) * NumSquares

// encodeMove maps a step or jump to dir*NumSquares + from. A jump shares the
// slot of the single step it starts with.
func encodeMove(from, to Square) Action {
	dr, dc := to.Row()-from.Row(), to.Col()-from.Col()
	var dir int
	switch {
	case dr > 0:
		dir = 0
	case dc > 0:
		dir = 1
	case dr < 0:
		dir = 2
	default:
		dir = 3
	}
	return Action(dir*NumSquares + int(from))
}

// decode resolves an action against the current position. A Tiger or Lion
// stepping from a bank into water is a jump to the opposite bank.
func (j *Jungle) decode(a Action) (from, to Square) {
	dir := int(a) / NumSquares
	from = Square(int(a) % NumSquares)
	d := directions[dir]
	r, c := from.Row()+d[0], from.Col()+d[1]
	if !onBoard(r, c) {
		return from, Square(-1)
	}
	to = NewSquare(r, c)
	p := j.squares[from]
	if p.IsEmpty() || !inWater(to) || (p.Kind() != Tiger && p.Kind() != Lion) {
		return from, to
	}
	switch {
	case d[0] > 0:
		to = NewSquare(from.Row()+4, from.Col())
	case d[0] < 0:
		to = NewSquare(from.Row()-4, from.Col())
	case from.Col() == 3 && d[1] < 0:
		to = NewSquare(from.Row(), 0)
	case from.Col() == 3:
		to = NewSquare(from.Row(), 6)
	default:
		to = NewSquare(from.Row(), 3)
	}
	return from, to
}

// MoveOf returns the squares an action moves between in the current position.
func (j *Jungle) MoveOf(a Action) (from, to Square) {
	return j.decode(a)
}

// ActionOf returns the action moving from one square to another. It does not
// check legality.
func ActionOf(from, to Square) Action {
	return encodeMove(from, to)
}

// DecodeMove renders an action as "from-to", e.g. "a3-a4".
func (j *Jungle) DecodeMove(a Action) string {
	if a < 0 || int(a) >= MaxAction {
		return fmt.Sprintf("invalid(%d)", a)
	}
	from, to := j.decode(a)
	if to < 0 {
		return fmt.Sprintf("%s-off", from)
	}
	return fmt.Sprintf("%s-%s", from, to)
}
