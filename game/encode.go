package game

import "fmt"

// Encoding geometry: one plane per piece type plus the side-to-move plane.
const (
	NumPlanes    = NumPieceTypes + 1
	LayoutSize   = NumPieceTypes * NumSquares
	EncodingSize = NumPlanes * NumSquares
)

// EncodingShape is the tensor shape of Encode's output, without a batch axis.
var EncodingShape = []int{NumPlanes, Rows, Cols}

// Encode flattens the position into NumPlanes one-hot planes. The last plane
// is all ones when Black is to move.
func (j *Jungle) Encode() Encoding {
	data := make([]float32, EncodingSize)
	for s := Square(0); s < NumSquares; s++ {
		p := j.squares[s]
		if p.IsEmpty() {
			continue
		}
		data[p.Index()*NumSquares+int(s)] = 1
	}
	if j.side == Black {
		for i := LayoutSize; i < EncodingSize; i++ {
			data[i] = 1
		}
	}
	return Encoding{
		Data:   data,
		Shape:  append([]int(nil), EncodingShape...),
		Layout: LayoutSize,
	}
}

// NewJungleFromEncoding rebuilds a position from an Encode output. The undo
// history is empty.
func NewJungleFromEncoding(enc Encoding) (*Jungle, error) {
	if len(enc.Data) != EncodingSize {
		return nil, fmt.Errorf("encoding has %d values, want %d", len(enc.Data), EncodingSize)
	}
	var squares [NumSquares]Piece
	var counts [2]int
	for i, v := range enc.Data[:LayoutSize] {
		if v == 0 {
			continue
		}
		s := Square(i % NumSquares)
		if !squares[s].IsEmpty() {
			return nil, fmt.Errorf("encoding has two pieces on %s", s)
		}
		p := Piece(i/NumSquares + 1)
		squares[s] = p
		counts[p.Side()]++
	}
	side := Red
	if enc.Data[LayoutSize] != 0 {
		side = Black
	}
	j := &Jungle{}
	j.load(squares, counts, side)
	return j, nil
}
