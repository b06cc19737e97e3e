package engine

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"jungle/game"
)

// Outcome is how a self-play game ended.
type Outcome int8

const (
	RedWin Outcome = iota
	BlackWin
	Draw
	MoveLimit
)

var outcomeNames = []string{"red", "black", "draw", "move-limit"}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Value is the training label of the outcome from Red's perspective.
func (o Outcome) Value() float64 {
	switch o {
	case RedWin:
		return 1
	case BlackWin:
		return -1
	}
	return 0
}

// Decisive reports whether the game had a winner.
func (o Outcome) Decisive() bool {
	return o == RedWin || o == BlackWin
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(b []byte) error {
	i := lo.IndexOf(outcomeNames, string(b))
	if i < 0 {
		return fmt.Errorf("unknown outcome %q", b)
	}
	*o = Outcome(i)
	return nil
}

func outcomeOf(winner game.Side) Outcome {
	if winner == game.Red {
		return RedWin
	}
	return BlackWin
}

// Sample is one training example: a position, the search policy from it,
// and the label.
type Sample struct {
	Ply      int           `json:"ply"`
	Side     game.Side     `json:"side"`
	Encoding game.Encoding `json:"encoding"`
	Policy   []float64     `json:"policy"`
	Value    float64       `json:"value"`
}

// GameRecord is a finished self-play game.
type GameRecord struct {
	ID        int           `json:"id"`
	Outcome   Outcome       `json:"outcome"`
	Value     float64       `json:"value"`
	Moves     []string      `json:"moves"`
	Samples   []Sample      `json:"samples"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
}

// Plies is the number of moves played.
func (r GameRecord) Plies() int {
	return len(r.Moves)
}

// label sets the final values: the first sample gets 0, every later one the
// game's outcome.
func (r *GameRecord) label() {
	r.Value = r.Outcome.Value()
	for i := range r.Samples {
		if i == 0 {
			r.Samples[i].Value = 0
			continue
		}
		r.Samples[i].Value = r.Value
	}
}

// Consistent reports whether the sample labels agree with the outcome.
func (r GameRecord) Consistent() bool {
	if r.Value != r.Outcome.Value() {
		return false
	}
	for i, s := range r.Samples {
		want := r.Value
		if i == 0 {
			want = 0
		}
		if s.Value != want {
			return false
		}
	}
	return true
}

// DrawPolicy decides what happens to games without a winner.
type DrawPolicy int

const (
	DrawDiscard DrawPolicy = iota // drop drawn and move-limit games
	DrawZero                      // keep them, labeled 0
)

func ParseDrawPolicy(s string) (DrawPolicy, error) {
	switch s {
	case "discard", "":
		return DrawDiscard, nil
	case "zero":
		return DrawZero, nil
	}
	return DrawDiscard, fmt.Errorf("unknown draw policy %q", s)
}

func (p DrawPolicy) String() string {
	if p == DrawZero {
		return "zero"
	}
	return "discard"
}

// Keep reports whether a record survives the policy.
func (p DrawPolicy) Keep(r GameRecord) bool {
	return p == DrawZero || r.Outcome.Decisive()
}

// Filter returns the records kept by the policy.
func (p DrawPolicy) Filter(records []GameRecord) []GameRecord {
	return lo.Filter(records, func(r GameRecord, _ int) bool { return p.Keep(r) })
}
