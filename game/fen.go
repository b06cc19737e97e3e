package game

import (
	"fmt"
	"strings"
)

// LoadFEN replaces the position with the one described by fen and clears the
// undo history. Rows are listed from row 0 (Black's end); "w" means Red moves.
func (j *Jungle) LoadFEN(fen string) error {
	fields := strings.Fields(fen)
	if len(fields) != 2 {
		return fmt.Errorf("fen %q: want 2 fields, got %d", fen, len(fields))
	}
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != Rows {
		return fmt.Errorf("fen %q: want %d ranks, got %d", fen, Rows, len(ranks))
	}

	var squares [NumSquares]Piece
	var counts [2]int
	for r, rank := range ranks {
		c := 0
		for i := 0; i < len(rank); i++ {
			ch := rank[i]
			if ch >= '1' && ch <= '9' {
				c += int(ch - '0')
				continue
			}
			p, ok := pieceFromLetter(ch)
			if !ok {
				return fmt.Errorf("fen %q: unknown piece %q", fen, ch)
			}
			if c >= Cols {
				return fmt.Errorf("fen %q: rank %d too long", fen, r)
			}
			squares[NewSquare(r, c)] = p
			counts[p.Side()]++
			c++
		}
		if c != Cols {
			return fmt.Errorf("fen %q: rank %d has %d columns", fen, r, c)
		}
	}

	var side Side
	switch fields[1] {
	case "w":
		side = Red
	case "b":
		side = Black
	default:
		return fmt.Errorf("fen %q: bad side %q", fen, fields[1])
	}

	j.load(squares, counts, side)
	return nil
}

// load installs a position and clears the undo history.
func (j *Jungle) load(squares [NumSquares]Piece, counts [2]int, side Side) {
	j.squares = squares
	j.counts = counts
	j.side = side
	j.history = j.history[:0]
	j.inDen = noSide
	if p := squares[BlackDen]; !p.IsEmpty() && p.Side() == Red {
		j.inDen = Red
	} else if p := squares[RedDen]; !p.IsEmpty() && p.Side() == Black {
		j.inDen = Black
	}
	j.key = j.computeKey()
}

// FEN renders the position in the format LoadFEN accepts.
func (j *Jungle) FEN() string {
	var sb strings.Builder
	for r := 0; r < Rows; r++ {
		if r > 0 {
			sb.WriteByte('/')
		}
		empty := 0
		for c := 0; c < Cols; c++ {
			p := j.squares[NewSquare(r, c)]
			if p.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(p.Letter())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
	}
	if j.side == Red {
		sb.WriteString(" w")
	} else {
		sb.WriteString(" b")
	}
	return sb.String()
}

// String draws the board, row 0 first.
func (j *Jungle) String() string {
	var sb strings.Builder
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			sb.WriteByte(j.squares[NewSquare(r, c)].Letter())
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "%s to move\n", j.side)
	return sb.String()
}
