// Package board is the 2D drag-and-drop sketch: square pieces on a canvas
// that can be picked up and moved with a pointer.
package board

import "sync"

const (
	PieceSize   = 40
	pieceColumn = 100
	pieceCount  = 4
)

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

type Piece struct {
	ID    int     `json:"id" cbor:"id"`
	X     float64 `json:"x" cbor:"x"`
	Y     float64 `json:"y" cbor:"y"`
	Size  float64 `json:"size" cbor:"size"`
	Color Color   `json:"color" cbor:"color"`
}

// Contains reports whether (x, y) is strictly inside the piece.
func (p Piece) Contains(x, y float64) bool {
	return x > p.X && x < p.X+p.Size && y > p.Y && y < p.Y+p.Size
}

// Board holds the pieces and the drag in progress. Safe for concurrent use.
type Board struct {
	mu sync.Mutex

	width, height float64
	pieces        []Piece

	dragging int // index into pieces, -1 when idle
	offsetX  float64
	offsetY  float64
}

func NewBoard(width, height float64) *Board {
	b := &Board{dragging: -1}
	b.layout(width, height)
	return b
}

// Resize changes the canvas size. Pieces keep their positions and a drag
// in progress continues.
func (b *Board) Resize(width, height float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.width, b.height = width, height
}

// PointerDown picks up the top-most piece under the pointer.
func (b *Board) PointerDown(x, y float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := len(b.pieces) - 1; i >= 0; i-- {
		p := b.pieces[i]
		if p.Contains(x, y) {
			b.dragging = i
			b.offsetX = x - p.X
			b.offsetY = y - p.Y
			return true
		}
	}
	return false
}

// PointerMove drags the held piece, keeping the grab offset.
func (b *Board) PointerMove(x, y float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.dragging < 0 {
		return false
	}
	b.pieces[b.dragging].X = x - b.offsetX
	b.pieces[b.dragging].Y = y - b.offsetY
	return true
}

func (b *Board) PointerUp() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dragging = -1
}

// Dragging returns the held piece, if any.
func (b *Board) Dragging() (Piece, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.dragging < 0 {
		return Piece{}, false
	}
	return b.pieces[b.dragging], true
}

func (b *Board) Pieces() []Piece {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Piece, len(b.pieces))
	copy(out, b.pieces)
	return out
}

func (b *Board) Size() (width, height float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

// layout places two rows of four pieces around the canvas center, white on
// top and black below, interleaved per column.
func (b *Board) layout(width, height float64) {
	b.width, b.height = width, height

	startX := width/2 - 150
	row1 := height/2 - 100
	row2 := height/2 + 50

	b.pieces = make([]Piece, 0, 2*pieceCount)
	for i := 0; i < pieceCount; i++ {
		x := startX + float64(i*pieceColumn)
		b.pieces = append(b.pieces,
			Piece{ID: 2 * i, X: x, Y: row1, Size: PieceSize, Color: White},
			Piece{ID: 2*i + 1, X: x, Y: row2, Size: PieceSize, Color: Black},
		)
	}
}
