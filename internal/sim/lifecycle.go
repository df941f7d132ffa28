// Zone lifecycle: the per-cell state machine run once per year-advance.
package sim

// Transition records a stage change applied during a year-advance.
type Transition struct {
	Pos  Coord
	From Stage
	To   Stage
}

// advanceLifecycle evaluates every zoned cell once, in row-major order,
// against a connectivity snapshot taken before any transition. Rules are
// applied in priority order: losing road access always dominates within
// the same tick, and a cell never skips a stage.
//
// Every zoned category requires both road access and power to reach or
// recover toward Operating.
func advanceLifecycle(g *Grid, powered *[GridSize][GridSize]bool, happiness, minHappiness int) []Transition {
	var out []Transition
	for r := 0; r < GridSize; r++ {
		for c := 0; c < GridSize; c++ {
			cell := g[r][c]
			if !cell.Category.Zoned() {
				continue
			}
			next := nextStage(cell.Stage,
				HasRoadAccess(g, r, c),
				powered[r][c],
				happiness >= minHappiness)
			if next != cell.Stage {
				g[r][c].Stage = next
				out = append(out, Transition{Pos: Coord{Row: r, Col: c}, From: cell.Stage, To: next})
			}
		}
	}
	return out
}

func nextStage(cur Stage, hasRoad, hasPower, happyEnough bool) Stage {
	switch {
	case !hasRoad:
		// No road: active development collapses, Unbuilt and Abandoned
		// stay put.
		if cur == Developing || cur == Operating {
			return Abandoned
		}
		return cur
	case cur == Unbuilt:
		return Developing
	case cur == Developing:
		if hasPower && happyEnough {
			return Operating
		}
		return Developing // stalled growth
	case cur == Abandoned:
		if hasPower && happyEnough {
			return Developing
		}
		return Abandoned
	default: // Operating with road access
		if !hasPower {
			return Abandoned
		}
		return Operating
	}
}
