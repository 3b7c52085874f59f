package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout(t *testing.T) {
	b := NewBoard(800, 600)
	pieces := b.Pieces()
	require.Len(t, pieces, 8)

	assert.Equal(t, Piece{ID: 0, X: 250, Y: 200, Size: PieceSize, Color: White}, pieces[0])
	assert.Equal(t, Piece{ID: 1, X: 250, Y: 350, Size: PieceSize, Color: Black}, pieces[1])
	assert.Equal(t, Piece{ID: 7, X: 550, Y: 350, Size: PieceSize, Color: Black}, pieces[7])
}

func TestDragKeepsOffset(t *testing.T) {
	b := NewBoard(800, 600)

	require.True(t, b.PointerDown(260, 215))
	held, ok := b.Dragging()
	require.True(t, ok)
	assert.Equal(t, 0, held.ID)

	assert.True(t, b.PointerMove(400, 415))
	moved := b.Pieces()[0]
	assert.Equal(t, 390.0, moved.X)
	assert.Equal(t, 400.0, moved.Y)

	b.PointerUp()
	_, ok = b.Dragging()
	assert.False(t, ok)
	assert.False(t, b.PointerMove(0, 0))
	assert.Equal(t, moved, b.Pieces()[0])
}

func TestPointerDownPicksTopMost(t *testing.T) {
	b := NewBoard(800, 600)

	// Drop piece 0 onto piece 6; piece 6 is drawn later so it stays on top.
	require.True(t, b.PointerDown(260, 215))
	b.PointerMove(560, 215)
	b.PointerUp()

	require.True(t, b.PointerDown(565, 220))
	held, _ := b.Dragging()
	assert.Equal(t, 6, held.ID)
}

func TestPointerDownMissesEdges(t *testing.T) {
	b := NewBoard(800, 600)
	assert.False(t, b.PointerDown(250, 210), "left edge is exclusive")
	assert.False(t, b.PointerDown(10, 10))
	_, ok := b.Dragging()
	assert.False(t, ok)
}

func TestResizeKeepsPiecesAndDrag(t *testing.T) {
	b := NewBoard(300, 150)
	before := b.Pieces()

	require.True(t, b.PointerDown(before[0].X+5, before[0].Y+5))
	require.True(t, b.PointerMove(504, 504))

	b.Resize(1920, 1080)

	held, ok := b.Dragging()
	require.True(t, ok)
	assert.Equal(t, 0, held.ID)
	assert.Equal(t, 499.0, held.X)
	assert.Equal(t, 499.0, held.Y)
	assert.Equal(t, before[1:], b.Pieces()[1:])

	w, h := b.Size()
	assert.Equal(t, 1920.0, w)
	assert.Equal(t, 1080.0, h)

	assert.True(t, b.PointerMove(600, 600))
	assert.Equal(t, 595.0, b.Pieces()[0].X)
}
