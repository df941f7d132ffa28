// Snapshot is the serialization contract: a flat, lossless view of the
// city that the save/load collaborator stores and restores.
package sim

import "fmt"

// CellSnapshot is one grid cell in wire form.
type CellSnapshot struct {
	Category string `json:"category"`
	Stage    string `json:"stage,omitempty"`
}

// Snapshot fully reconstructs simulation state with no information loss.
type Snapshot struct {
	Year       int              `json:"year"`
	Money      int              `json:"money"`
	Population int              `json:"population"`
	Happiness  int              `json:"happiness"`
	Grid       [][]CellSnapshot `json:"grid"`
	Events     []Event          `json:"events,omitempty"`
}

// Summary is the lightweight listing view of a snapshot.
type Summary struct {
	Year       int `json:"year"`
	Population int `json:"population"`
	Money      int `json:"money"`
	Happiness  int `json:"happiness"`
}

// Snapshot serializes the city.
func (c *City) Snapshot() Snapshot {
	grid := make([][]CellSnapshot, GridSize)
	for r := 0; r < GridSize; r++ {
		grid[r] = make([]CellSnapshot, GridSize)
		for col := 0; col < GridSize; col++ {
			cell := c.Grid[r][col]
			grid[r][col] = CellSnapshot{
				Category: cell.Category.String(),
				Stage:    cell.Stage.String(),
			}
		}
	}
	events := make([]Event, len(c.Events))
	copy(events, c.Events)
	return Snapshot{
		Year:       c.Year,
		Money:      c.Money,
		Population: c.Population,
		Happiness:  c.Happiness,
		Grid:       grid,
		Events:     events,
	}
}

// Summary returns the listing view of the city.
func (c *City) Summary() Summary {
	return Summary{
		Year:       c.Year,
		Population: c.Population,
		Money:      c.Money,
		Happiness:  c.Happiness,
	}
}

// Restore builds a City from a snapshot. A malformed snapshot returns
// ErrInvalidState and no city; existing state is never touched because
// restoration always constructs a fresh instance.
func Restore(snap Snapshot, bal Balance) (*City, error) {
	if snap.Year < 0 {
		return nil, fmt.Errorf("negative year %d: %w", snap.Year, ErrInvalidState)
	}
	if snap.Money < 0 {
		return nil, fmt.Errorf("negative money %d: %w", snap.Money, ErrInvalidState)
	}
	if snap.Happiness < 0 || snap.Happiness > 100 {
		return nil, fmt.Errorf("happiness %d outside [0,100]: %w", snap.Happiness, ErrInvalidState)
	}
	if len(snap.Grid) != GridSize {
		return nil, fmt.Errorf("grid has %d rows, want %d: %w", len(snap.Grid), GridSize, ErrInvalidState)
	}

	city := New(bal)
	for r, row := range snap.Grid {
		if len(row) != GridSize {
			return nil, fmt.Errorf("row %d has %d cells, want %d: %w", r, len(row), GridSize, ErrInvalidState)
		}
		for col, cs := range row {
			cat, err := ParseCategory(cs.Category)
			if err != nil {
				return nil, fmt.Errorf("cell (%d,%d): category %q: %w", r, col, cs.Category, ErrInvalidState)
			}
			stage, err := ParseStage(cs.Stage)
			if err != nil {
				return nil, fmt.Errorf("cell (%d,%d): %w", r, col, err)
			}
			if cat.Zoned() != (stage != StageNone) {
				return nil, fmt.Errorf("cell (%d,%d): stage %q on category %q: %w",
					r, col, cs.Stage, cs.Category, ErrInvalidState)
			}
			city.Grid[r][col] = Cell{Category: cat, Stage: stage}
		}
	}

	city.Year = snap.Year
	city.Money = snap.Money
	city.Population = snap.Population
	city.Happiness = snap.Happiness
	city.Events = append([]Event(nil), snap.Events...)
	return city, nil
}
