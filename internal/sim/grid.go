// Package sim implements the turn-based city simulation engine: a fixed
// 5×5 grid of zoned and built cells, a development lifecycle driven by
// road and power connectivity, and a yearly economy pass over the whole
// grid. The engine is single-threaded; the caller serializes access to a
// City instance.
package sim

import "fmt"

// GridSize is the fixed width and height of the city grid.
const GridSize = 5

// Category identifies what occupies a cell.
type Category uint8

const (
	Empty Category = iota
	ZoneResidential
	ZoneCommercial
	ZoneIndustrial
	Park
	Road
	PowerLine
	School
	Hospital
	PowerPlant
	PoliceStation
	FireStation
	Mall
	Stadium
	University
	Airport

	categoryCount
)

var categoryTokens = [categoryCount]string{
	Empty:           "empty",
	ZoneResidential: "residential",
	ZoneCommercial:  "commercial",
	ZoneIndustrial:  "industrial",
	Park:            "park",
	Road:            "road",
	PowerLine:       "power_line",
	School:          "school",
	Hospital:        "hospital",
	PowerPlant:      "power_plant",
	PoliceStation:   "police_station",
	FireStation:     "fire_station",
	Mall:            "mall",
	Stadium:         "stadium",
	University:      "university",
	Airport:         "airport",
}

// String returns the wire token for the category.
func (c Category) String() string {
	if c >= categoryCount {
		return "unknown"
	}
	return categoryTokens[c]
}

// Zoned reports whether the category grows through the development
// lifecycle rather than being instantly built.
func (c Category) Zoned() bool {
	return c == ZoneResidential || c == ZoneCommercial || c == ZoneIndustrial
}

// ParseCategory resolves a wire token to a category.
func ParseCategory(token string) (Category, error) {
	for c, t := range categoryTokens {
		if t == token {
			return Category(c), nil
		}
	}
	return Empty, fmt.Errorf("category %q: %w", token, ErrInvalidType)
}

// Stage is the growth state of a zoned cell. Non-zoned cells carry
// StageNone.
type Stage uint8

const (
	StageNone Stage = iota
	Unbuilt
	Developing
	Operating
	Abandoned
)

var stageTokens = [...]string{
	StageNone:  "",
	Unbuilt:    "unbuilt",
	Developing: "developing",
	Operating:  "operating",
	Abandoned:  "abandoned",
}

func (s Stage) String() string {
	if int(s) >= len(stageTokens) {
		return "unknown"
	}
	return stageTokens[s]
}

// ParseStage resolves a wire token to a lifecycle stage. The empty token
// is StageNone.
func ParseStage(token string) (Stage, error) {
	for s, t := range stageTokens {
		if t == token {
			return Stage(s), nil
		}
	}
	return StageNone, fmt.Errorf("stage %q: %w", token, ErrInvalidState)
}

// Cell is one square of the city grid. Stage is meaningful only when
// Category is zoned; SetCell and ClearCell keep the two consistent.
type Cell struct {
	Category Category
	Stage    Stage
}

// Coord addresses a cell by row and column.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Grid is the fixed city grid. It is a value type so snapshots and
// equality checks are plain copies and comparisons.
type Grid [GridSize][GridSize]Cell

// InBounds reports whether (row, col) addresses a cell on the grid.
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < GridSize && col >= 0 && col < GridSize
}

// At returns the cell at (row, col). The caller checks bounds.
func (g *Grid) At(row, col int) Cell {
	return g[row][col]
}

// SetCell overwrites the category at (row, col). A zoned category starts
// at Unbuilt; every other category clears the stage.
func (g *Grid) SetCell(row, col int, cat Category) error {
	if !g.InBounds(row, col) {
		return fmt.Errorf("set cell (%d,%d): %w", row, col, ErrOutOfBounds)
	}
	stage := StageNone
	if cat.Zoned() {
		stage = Unbuilt
	}
	g[row][col] = Cell{Category: cat, Stage: stage}
	return nil
}

// ClearCell resets (row, col) to Empty.
func (g *Grid) ClearCell(row, col int) error {
	if !g.InBounds(row, col) {
		return fmt.Errorf("clear cell (%d,%d): %w", row, col, ErrOutOfBounds)
	}
	g[row][col] = Cell{}
	return nil
}

// Neighbors returns the up-to-4 orthogonally adjacent in-bounds
// coordinates. Diagonal adjacency does not exist anywhere in the engine.
func (g *Grid) Neighbors(row, col int) []Coord {
	offsets := [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	out := make([]Coord, 0, 4)
	for _, off := range offsets {
		r, c := row+off[0], col+off[1]
		if g.InBounds(r, c) {
			out = append(out, Coord{Row: r, Col: c})
		}
	}
	return out
}

// PlaceBlock sets a width×height block to the given category. The whole
// block must fit on the grid and every cell in it must be Empty; block
// placement never overwrites, unlike single-cell placement.
func (g *Grid) PlaceBlock(row, col int, cat Category, width, height int) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("block %dx%d: %w", width, height, ErrInvalidType)
	}
	if !g.InBounds(row, col) || !g.InBounds(row+height-1, col+width-1) {
		return fmt.Errorf("block %dx%d at (%d,%d): %w", width, height, row, col, ErrOutOfBounds)
	}
	for r := row; r < row+height; r++ {
		for c := col; c < col+width; c++ {
			if g[r][c].Category != Empty {
				return fmt.Errorf("block cell (%d,%d): %w", r, c, ErrOccupied)
			}
		}
	}
	for r := row; r < row+height; r++ {
		for c := col; c < col+width; c++ {
			g.SetCell(r, c, cat)
		}
	}
	return nil
}

// Count returns the number of cells of the given category.
func (g *Grid) Count(cat Category) int {
	n := 0
	for r := 0; r < GridSize; r++ {
		for c := 0; c < GridSize; c++ {
			if g[r][c].Category == cat {
				n++
			}
		}
	}
	return n
}
