package game

// kindWeights scores pieces by strength; the Rat is worth more than its rank
// because it threatens the Elephant.
var kindWeights = [NumKinds]float64{
	Elephant: 12,
	Lion:     11,
	Tiger:    10,
	Panther:  6,
	Wolf:     5,
	Dog:      4,
	Cat:      3,
	Rat:      6,
}

// EvaluateMaterial compares each side's remaining material to produce a score
// between -1 and 1 from Red's perspective.
func EvaluateMaterial(j *Jungle) float64 {
	if winner, over := j.Winner(); over {
		return winner.Value()
	}
	var material [2]float64
	for s := Square(0); s < NumSquares; s++ {
		p := j.squares[s]
		if p.IsEmpty() {
			continue
		}
		material[p.Side()] += kindWeights[p.Kind()]
	}
	return normalize(material[Red], material[Black])
}

// MaterialFromLayout scores the layout planes of an encoding the same way
// EvaluateMaterial scores a board.
func MaterialFromLayout(layout []float32) float64 {
	var material [2]float64
	for i, v := range layout {
		if v == 0 || i >= LayoutSize {
			continue
		}
		p := Piece(i/NumSquares + 1)
		material[p.Side()] += kindWeights[p.Kind()] * float64(v)
	}
	return normalize(material[Red], material[Black])
}

// normalize normalizes value relative to otherValue to a score between -1 and 1
func normalize(value float64, otherValue float64) float64 {
	total := value + otherValue
	if total == 0 {
		return 0
	}
	return (value - otherValue) / total
}

// Piece values and square bonuses for EvaluatePosition. Bonuses are indexed
// by distance from the owner's back rank.
var (
	kindScores = [NumKinds]float64{1000, 900, 800, 700, 600, 500, 400, 300}

	// Attackers gain as they advance.
	advanceBonus = [Rows][Cols]float64{
		{0, 0, 0, 0, 0, 0, 0},
		{10, 10, 10, 10, 10, 10, 10},
		{20, 20, 20, 20, 20, 20, 20},
		{30, 30, 30, 30, 30, 30, 30},
		{40, 40, 40, 40, 40, 40, 40},
		{50, 50, 50, 50, 50, 50, 50},
		{60, 60, 60, 60, 60, 60, 60},
		{70, 70, 70, 70, 70, 70, 70},
		{80, 80, 80, 80, 80, 80, 80},
	}

	// Defenders hold the traps around their own den.
	guardBonus = [Rows][Cols]float64{
		{15, 20, 15, 15, 15, 20, 15},
		{15, 15, 20, 15, 20, 15, 15},
		{15, 15, 15, 15, 15, 15, 15},
	}
)

func squareBonus(p Piece, s Square) float64 {
	row := s.Row()
	if p.Side() == Red {
		row = Rows - 1 - row
	}
	switch p.Kind() {
	case Elephant, Lion, Tiger, Rat:
		return advanceBonus[row][s.Col()]
	}
	return guardBonus[row][s.Col()]
}

// EvaluatePosition scores material plus piece placement between -1 and 1
// from Red's perspective. It is the alpha-beta baseline's evaluation.
func EvaluatePosition(j *Jungle) float64 {
	if winner, over := j.Winner(); over {
		return winner.Value()
	}
	var score [2]float64
	for s := Square(0); s < NumSquares; s++ {
		p := j.squares[s]
		if p.IsEmpty() {
			continue
		}
		score[p.Side()] += kindScores[p.Kind()] + squareBonus(p, s)
	}
	return normalize(score[Red], score[Black])
}
