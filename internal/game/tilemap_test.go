package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTileMap_GetSetBounds(t *testing.T) {
	tm := NewTileMap(4, 3)
	assert.Equal(t, 4, tm.Cols())
	assert.Equal(t, 3, tm.Rows())
	assert.Equal(t, TileOpen, tm.Get(1, 1))

	tm.Set(1, 1, TileDoorOpen)
	tm.Set(10, 10, TileWall)
	assert.Equal(t, TileDoorOpen, tm.Get(1, 1))
	assert.Equal(t, TileOpen, tm.Get(10, 10))
	assert.Equal(t, TileOpen, tm.Get(-1, 0))
	assert.Equal(t, 0, tm.CountBlocking())
}

func TestTileMap_IsWall(t *testing.T) {
	tm := NewTileMap(5, 1)
	for i, tt := range []TileType{TileOpen, TileWall, TileWindow, TileDoor, TileDoorOpen} {
		tm.Set(i, 0, tt)
	}
	want := []bool{false, true, true, true, false}
	for i, blocks := range want {
		assert.Equal(t, blocks, tm.IsWall(Pos(i, 0)), tm.Get(i, 0).String())
	}
	assert.Equal(t, 3, tm.CountBlocking())
	assert.False(t, tm.IsWall(Pos(50, 0)), "off-map is open")

	var none *TileMap
	assert.False(t, none.IsWall(Pos(0, 0)))
}

func TestTileMap_WallOutlineWithDoor(t *testing.T) {
	tm := NewTileMap(10, 10)
	tm.AddWallOutline(2, 2, 4, 3, 3)

	assert.True(t, tm.IsWall(Pos(2, 2)))
	assert.True(t, tm.IsWall(Pos(5, 4)))
	assert.False(t, tm.IsWall(Pos(3, 3)), "interior stays open")
	assert.Equal(t, TileDoorOpen, tm.Get(3, 4))
	// 4 + 4 + 1 + 1 perimeter tiles, one of them the door
	assert.Equal(t, 9, tm.CountBlocking())
}

func TestTileMap_FillRect(t *testing.T) {
	tm := NewTileMap(5, 5)
	tm.FillRect(3, 3, 4, 4, TileWall)
	assert.Equal(t, 4, tm.CountBlocking())
}

func TestNewTileMap_NegativeSize(t *testing.T) {
	tm := NewTileMap(-1, 3)
	assert.Equal(t, 0, tm.Cols())
	assert.False(t, tm.InBounds(0, 0))
}
