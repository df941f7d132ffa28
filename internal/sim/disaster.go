// Disasters: immediate destructive effects that bypass the lifecycle.
package sim

import "fmt"

// Disaster identifies a disaster kind.
type Disaster uint8

const (
	Fire Disaster = iota
	Earthquake
	Meteor
)

var disasterTokens = [...]string{
	Fire:       "fire",
	Earthquake: "earthquake",
	Meteor:     "meteor",
}

func (d Disaster) String() string {
	if int(d) >= len(disasterTokens) {
		return "unknown"
	}
	return disasterTokens[d]
}

// ParseDisaster resolves a wire token to a disaster kind.
func ParseDisaster(token string) (Disaster, error) {
	for d, t := range disasterTokens {
		if t == token {
			return Disaster(d), nil
		}
	}
	return Fire, fmt.Errorf("disaster %q: %w", token, ErrInvalidType)
}

// applyDisaster strikes (row, col): a zoned target is abandoned, anything
// else built is razed to Empty. Orthogonal zoned neighbors are knocked
// back one lifecycle stage, and an earthquake additionally collapses
// neighboring roads and power lines. Effects are immediate; no
// year-advance is involved. Returns the coordinates that changed.
func applyDisaster(g *Grid, row, col int, kind Disaster) []Coord {
	var hit []Coord

	target := g[row][col]
	switch {
	case target.Category.Zoned():
		if target.Stage != Abandoned {
			g[row][col].Stage = Abandoned
			hit = append(hit, Coord{Row: row, Col: col})
		}
	case target.Category != Empty:
		g[row][col] = Cell{}
		hit = append(hit, Coord{Row: row, Col: col})
	}

	for _, n := range g.Neighbors(row, col) {
		cell := g[n.Row][n.Col]
		if cell.Category.Zoned() {
			if next, changed := degrade(cell.Stage); changed {
				g[n.Row][n.Col].Stage = next
				hit = append(hit, n)
			}
			continue
		}
		if kind == Earthquake && (cell.Category == Road || cell.Category == PowerLine) {
			g[n.Row][n.Col] = Cell{}
			hit = append(hit, n)
		}
	}
	return hit
}

// degrade knocks a zoned cell back one stage. Unbuilt and Abandoned have
// nothing left to lose.
func degrade(s Stage) (Stage, bool) {
	switch s {
	case Operating:
		return Abandoned, true
	case Developing:
		return Unbuilt, true
	default:
		return s, false
	}
}
