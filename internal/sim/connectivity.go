// Connectivity queries: road adjacency and power reachability. Both are
// recomputed from the grid on demand; nothing here is cached, so the grid
// is always the single source of truth.
package sim

// HasRoadAccess reports whether at least one orthogonal neighbor of
// (row, col) is a Road cell.
func HasRoadAccess(g *Grid, row, col int) bool {
	for _, n := range g.Neighbors(row, col) {
		if g[n.Row][n.Col].Category == Road {
			return true
		}
	}
	return false
}

// PowerMap computes, for every cell, whether it is powered: reachable
// from some PowerPlant via a path of PowerLine cells using orthogonal
// adjacency. Plants are always powered, and a cell adjacent to a plant
// or to an energized line is powered too.
func PowerMap(g *Grid) [GridSize][GridSize]bool {
	// Flood fill the energized network: seeds are plants, traversal
	// continues only through power lines.
	var energized [GridSize][GridSize]bool
	var queue []Coord
	for r := 0; r < GridSize; r++ {
		for c := 0; c < GridSize; c++ {
			if g[r][c].Category == PowerPlant {
				energized[r][c] = true
				queue = append(queue, Coord{Row: r, Col: c})
			}
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range g.Neighbors(cur.Row, cur.Col) {
			if energized[n.Row][n.Col] {
				continue
			}
			if g[n.Row][n.Col].Category == PowerLine {
				energized[n.Row][n.Col] = true
				queue = append(queue, n)
			}
		}
	}

	var powered [GridSize][GridSize]bool
	for r := 0; r < GridSize; r++ {
		for c := 0; c < GridSize; c++ {
			if energized[r][c] {
				powered[r][c] = true
				continue
			}
			for _, n := range g.Neighbors(r, c) {
				if energized[n.Row][n.Col] {
					powered[r][c] = true
					break
				}
			}
		}
	}
	return powered
}

// IsPowered reports whether a single cell is powered. Convenience over
// PowerMap for callers that only need one cell.
func IsPowered(g *Grid, row, col int) bool {
	return PowerMap(g)[row][col]
}

// RoadShape classifies a Road cell by its 4-neighbor occupancy pattern.
// Purely cosmetic: it drives rendering and has no simulation effect.
type RoadShape uint8

const (
	RoadIsolated RoadShape = iota
	RoadStraight
	RoadCorner
	RoadTee
	RoadCross
)

var roadShapeTokens = [...]string{
	RoadIsolated: "isolated",
	RoadStraight: "straight",
	RoadCorner:   "corner",
	RoadTee:      "tee",
	RoadCross:    "cross",
}

func (s RoadShape) String() string { return roadShapeTokens[s] }

// RoadShapeAt collapses the 16 possible neighbor bitmasks of a Road cell
// to the shape set: a dead end renders as a straight stub.
func RoadShapeAt(g *Grid, row, col int) RoadShape {
	north := g.InBounds(row-1, col) && g[row-1][col].Category == Road
	south := g.InBounds(row+1, col) && g[row+1][col].Category == Road
	west := g.InBounds(row, col-1) && g[row][col-1].Category == Road
	east := g.InBounds(row, col+1) && g[row][col+1].Category == Road

	count := 0
	for _, b := range [4]bool{north, south, west, east} {
		if b {
			count++
		}
	}
	switch count {
	case 0:
		return RoadIsolated
	case 1:
		return RoadStraight
	case 2:
		if (north && south) || (west && east) {
			return RoadStraight
		}
		return RoadCorner
	case 3:
		return RoadTee
	default:
		return RoadCross
	}
}
