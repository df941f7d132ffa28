// City ties the grid, lifecycle, economy and disasters together and
// exposes the player-facing operations.
package sim

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

// maxEvents bounds the in-memory event tail.
const maxEvents = 100

// Event is a notable occurrence in the city.
type Event struct {
	Year        int    `json:"year"`
	Description string `json:"description"`
	Category    string `json:"category"` // "growth", "decline", "disaster", "economy"
}

// City is the aggregate simulation state. One caller owns a City at a
// time; no internal locking is performed.
type City struct {
	Grid       Grid
	Money      int
	Year       int
	Population int // recomputed each year-advance
	Happiness  int // recomputed each year-advance, clamped [0,100]
	Events     []Event

	balance Balance
	rng     *rand.Rand
}

// New creates a fresh city: empty grid, starting money, year zero,
// neutral happiness.
func New(bal Balance) *City {
	return &City{
		Money:     bal.StartingMoney,
		Happiness: bal.BaseHappiness,
		balance:   bal,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Balance returns the tuning table the city was created with.
func (c *City) Balance() Balance { return c.balance }

// SeedEvents makes random city events deterministic.
func (c *City) SeedEvents(seed int64) {
	c.rng = rand.New(rand.NewSource(seed))
}

// spend deducts cost, failing closed when money is short.
func (c *City) spend(cost int) error {
	if c.Money < cost {
		return fmt.Errorf("need %d, have %d: %w", cost, c.Money, ErrInsufficientFunds)
	}
	c.Money -= cost
	return nil
}

var zoneCategories = map[string]Category{
	"residential": ZoneResidential,
	"commercial":  ZoneCommercial,
	"industrial":  ZoneIndustrial,
	"park":        Park,
}

// ParseZoneType resolves a zone token (residential, commercial,
// industrial, park).
func ParseZoneType(token string) (Category, error) {
	cat, ok := zoneCategories[token]
	if !ok {
		return Empty, fmt.Errorf("zone type %q: %w", token, ErrInvalidType)
	}
	return cat, nil
}

// ParseBuildingType resolves a building token (school, hospital,
// power_plant, police_station, fire_station, mall, stadium, university,
// airport, road, power_line).
func ParseBuildingType(token string) (Category, error) {
	cat, err := ParseCategory(token)
	if err != nil {
		return Empty, err
	}
	if cat == Empty || cat.Zoned() || cat == Park {
		return Empty, fmt.Errorf("building type %q: %w", token, ErrInvalidType)
	}
	return cat, nil
}

// Zone designates a single cell for growth. Zoning overwrites whatever
// occupied the cell; the new zone starts Unbuilt.
func (c *City) Zone(row, col int, zoneType string) error {
	cat, err := ParseZoneType(zoneType)
	if err != nil {
		return err
	}
	if !c.Grid.InBounds(row, col) {
		return fmt.Errorf("zone (%d,%d): %w", row, col, ErrOutOfBounds)
	}
	cost, err := c.balance.Cost(cat)
	if err != nil {
		return err
	}
	if err := c.spend(cost); err != nil {
		return err
	}
	c.Grid.SetCell(row, col, cat)
	slog.Info("zoned cell", "row", row, "col", col, "zone", cat.String(), "cost", cost)
	return nil
}

// ZoneBlock zones a width×height block in one purchase. The whole block
// must be empty and on the grid; cost scales with area. Either the full
// block commits or nothing does.
func (c *City) ZoneBlock(row, col int, zoneType string, width, height int) error {
	cat, err := ParseZoneType(zoneType)
	if err != nil {
		return err
	}
	cost, err := c.balance.Cost(cat)
	if err != nil {
		return err
	}
	total := cost * width * height
	if c.Money < total {
		return fmt.Errorf("need %d, have %d: %w", total, c.Money, ErrInsufficientFunds)
	}
	if err := c.Grid.PlaceBlock(row, col, cat, width, height); err != nil {
		return err
	}
	c.Money -= total
	slog.Info("zoned block", "row", row, "col", col, "zone", cat.String(),
		"width", width, "height", height, "cost", total)
	return nil
}

// Build places a building or infrastructure cell, overwriting the
// previous occupant.
func (c *City) Build(row, col int, buildingType string) error {
	cat, err := ParseBuildingType(buildingType)
	if err != nil {
		return err
	}
	if !c.Grid.InBounds(row, col) {
		return fmt.Errorf("build (%d,%d): %w", row, col, ErrOutOfBounds)
	}
	cost, err := c.balance.Cost(cat)
	if err != nil {
		return err
	}
	if err := c.spend(cost); err != nil {
		return err
	}
	c.Grid.SetCell(row, col, cat)
	slog.Info("built structure", "row", row, "col", col, "building", cat.String(), "cost", cost)
	return nil
}

// BuildRoad places a road cell.
func (c *City) BuildRoad(row, col int) error {
	return c.Build(row, col, Road.String())
}

// BuildPowerLine places a power line cell.
func (c *City) BuildPowerLine(row, col int) error {
	return c.Build(row, col, PowerLine.String())
}

// Clear resets a cell to Empty. Clearing is free and refunds nothing.
func (c *City) Clear(row, col int) error {
	if err := c.Grid.ClearCell(row, col); err != nil {
		return err
	}
	slog.Info("cleared cell", "row", row, "col", col)
	return nil
}

// TriggerDisaster strikes a cell immediately, bypassing the lifecycle.
func (c *City) TriggerDisaster(row, col int, disasterType string) error {
	kind, err := ParseDisaster(disasterType)
	if err != nil {
		return err
	}
	if !c.Grid.InBounds(row, col) {
		return fmt.Errorf("disaster (%d,%d): %w", row, col, ErrOutOfBounds)
	}
	hit := applyDisaster(&c.Grid, row, col, kind)
	c.record("disaster", "%s struck (%d,%d), %d cells affected", kind, row, col, len(hit))
	slog.Info("disaster triggered", "kind", kind.String(), "row", row, "col", col, "affected", len(hit))
	return nil
}

// AdvanceYear runs the full lifecycle and economy pass. This is the only
// operation that moves the clock. Lifecycle transitions are gated on the
// happiness carried in from the previous year; population, happiness and
// money are then recomputed from the post-transition grid.
func (c *City) AdvanceYear() {
	c.Year++

	powered := PowerMap(&c.Grid)
	transitions := advanceLifecycle(&c.Grid, &powered, c.Happiness, c.balance.MinHappiness)
	for _, tr := range transitions {
		cat := c.Grid[tr.Pos.Row][tr.Pos.Col].Category
		kind := "growth"
		if tr.To == Abandoned || tr.To == Unbuilt {
			kind = "decline"
		}
		c.record(kind, "%s at (%d,%d) is now %s", cat, tr.Pos.Row, tr.Pos.Col, tr.To)
	}

	st := computeStats(&c.Grid, &c.balance)
	c.Population = st.Population
	c.Happiness = st.Happiness
	c.Money = c.Money + st.TaxRevenue - st.Upkeep
	if c.Money < 0 {
		c.Money = 0
	}

	slog.Info("advanced year",
		"year", c.Year,
		"population", c.Population,
		"happiness", c.Happiness,
		"money", c.Money,
		"tax", st.TaxRevenue,
		"upkeep", st.Upkeep,
		"transitions", len(transitions),
	)
}

// Stats derives the current economic view without advancing the clock.
func (c *City) Stats() CityStats {
	return computeStats(&c.Grid, &c.balance)
}

func (c *City) record(category, format string, args ...any) {
	c.Events = append(c.Events, Event{
		Year:        c.Year,
		Description: fmt.Sprintf(format, args...),
		Category:    category,
	})
	if len(c.Events) > maxEvents {
		c.Events = c.Events[len(c.Events)-maxEvents:]
	}
}

// CityEvent is a random fortune applied outside the yearly pass.
type CityEvent struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	MoneyDelta     int    `json:"money_delta"`
	HappinessDelta int    `json:"happiness_delta"`
}

var cityEvents = []CityEvent{
	{Name: "Tourism Boom", Description: "Visitors flood the city", MoneyDelta: 800, HappinessDelta: 5},
	{Name: "Festival", Description: "A street festival lifts spirits", MoneyDelta: -200, HappinessDelta: 10},
	{Name: "Tax Windfall", Description: "An audit recovers unpaid taxes", MoneyDelta: 1200, HappinessDelta: -2},
	{Name: "Storm Damage", Description: "A storm strains city services", MoneyDelta: -600, HappinessDelta: -5},
	{Name: "Grant Awarded", Description: "A regional development grant arrives", MoneyDelta: 1500, HappinessDelta: 3},
}

// TriggerRandomEvent rolls for a random city event and applies its money
// and happiness deltas. Returns nil when no event fires (even odds).
func (c *City) TriggerRandomEvent() *CityEvent {
	if c.rng.Float64() < 0.5 {
		return nil
	}
	ev := cityEvents[c.rng.Intn(len(cityEvents))]
	c.Money += ev.MoneyDelta
	if c.Money < 0 {
		c.Money = 0
	}
	c.Happiness = clamp(c.Happiness+ev.HappinessDelta, 0, 100)
	c.record("economy", "%s: %s", ev.Name, ev.Description)
	slog.Info("city event", "name", ev.Name, "money_delta", ev.MoneyDelta, "happiness_delta", ev.HappinessDelta)
	return &ev
}
