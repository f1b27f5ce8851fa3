package game

// Terrain classifies grid cells for the collision resolver.
type Terrain interface {
	IsWall(p Position) bool
}

// TileType identifies what occupies a tile.
type TileType uint8

const (
	TileOpen       TileType = iota // bare ground
	TileWall                       // structural wall, stops projectiles
	TileWindow                     // glazed opening, stops projectiles
	TileDoor                       // closed door, stops projectiles
	TileDoorOpen                   // open door, passable
)

func (t TileType) String() string {
	switch t {
	case TileOpen:
		return "open"
	case TileWall:
		return "wall"
	case TileWindow:
		return "window"
	case TileDoor:
		return "door"
	case TileDoorOpen:
		return "door_open"
	default:
		return "unknown"
	}
}

// tileBlocksProjectiles returns true if the tile is an impassable wall for
// projectile purposes.
func tileBlocksProjectiles(t TileType) bool {
	switch t {
	case TileWall, TileWindow, TileDoor:
		return true
	default:
		return false
	}
}

// TileMap is a dense grid of tiles. Cells outside the map are open; the map
// only describes obstacles and never clamps movement.
type TileMap struct {
	cols, rows int
	tiles      []TileType
}

// NewTileMap creates an all-open map of cols × rows tiles.
func NewTileMap(cols, rows int) *TileMap {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	return &TileMap{cols: cols, rows: rows, tiles: make([]TileType, cols*rows)}
}

// Cols returns the map width in tiles.
func (tm *TileMap) Cols() int { return tm.cols }

// Rows returns the map height in tiles.
func (tm *TileMap) Rows() int { return tm.rows }

// InBounds reports whether (col, row) is inside the map.
func (tm *TileMap) InBounds(col, row int) bool {
	return col >= 0 && col < tm.cols && row >= 0 && row < tm.rows
}

// Get returns the tile at (col, row); out-of-bounds cells are open.
func (tm *TileMap) Get(col, row int) TileType {
	if !tm.InBounds(col, row) {
		return TileOpen
	}
	return tm.tiles[row*tm.cols+col]
}

// Set places a tile; out-of-bounds writes are ignored.
func (tm *TileMap) Set(col, row int, t TileType) {
	if !tm.InBounds(col, row) {
		return
	}
	tm.tiles[row*tm.cols+col] = t
}

// FillRect sets every tile in the rectangle [col, col+w) × [row, row+h).
func (tm *TileMap) FillRect(col, row, w, h int, t TileType) {
	for r := row; r < row+h; r++ {
		for c := col; c < col+w; c++ {
			tm.Set(c, r, t)
		}
	}
}

// AddWallOutline draws a hollow building outline with an optional open door
// on the bottom edge at doorCol (pass -1 for no door).
func (tm *TileMap) AddWallOutline(col, row, w, h, doorCol int) {
	for c := col; c < col+w; c++ {
		tm.Set(c, row, TileWall)
		tm.Set(c, row+h-1, TileWall)
	}
	for r := row; r < row+h; r++ {
		tm.Set(col, r, TileWall)
		tm.Set(col+w-1, r, TileWall)
	}
	if doorCol >= col && doorCol < col+w {
		tm.Set(doorCol, row+h-1, TileDoorOpen)
	}
}

// IsWall implements Terrain.
func (tm *TileMap) IsWall(p Position) bool {
	if tm == nil {
		return false
	}
	return tileBlocksProjectiles(tm.Get(p.X, p.Y))
}

// CountBlocking returns the number of projectile-blocking tiles.
func (tm *TileMap) CountBlocking() int {
	n := 0
	for _, t := range tm.tiles {
		if tileBlocksProjectiles(t) {
			n++
		}
	}
	return n
}

// openTerrain is used when a World has no map.
type openTerrain struct{}

func (openTerrain) IsWall(Position) bool { return false }
