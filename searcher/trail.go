package searcher

import (
	"fmt"

	"jungle/game"
)

// undoDepther is implemented by boards that expose their undo stack depth.
type undoDepther interface {
	UndoDepth() int
}

// trail records the moves a search applied to the shared board so they can
// be undone in reverse order.
type trail struct {
	board   game.Board
	base    int
	actions []game.Action
}

func newTrail(board game.Board) *trail {
	t := &trail{board: board, base: -1}
	if d, ok := board.(undoDepther); ok {
		t.base = d.UndoDepth()
	}
	return t
}

func (t *trail) apply(a game.Action) {
	t.board.Apply(a)
	t.actions = append(t.actions, a)
	t.check()
}

func (t *trail) undo() {
	if len(t.actions) == 0 {
		panic("search undo past the root")
	}
	t.board.Undo()
	t.actions = t.actions[:len(t.actions)-1]
	t.check()
}

// rewind undoes every pending move.
func (t *trail) rewind() {
	for len(t.actions) > 0 {
		t.undo()
	}
}

// assertRoot panics unless every applied move has been undone.
func (t *trail) assertRoot() {
	if len(t.actions) != 0 {
		panic(fmt.Sprintf("backup left %d moves applied", len(t.actions)))
	}
}

func (t *trail) check() {
	if t.base < 0 {
		return
	}
	if got, want := t.board.(undoDepther).UndoDepth(), t.base+len(t.actions); got != want {
		panic(fmt.Sprintf("board undo depth %d, search expects %d", got, want))
	}
}
