// Economy: population, jobs, happiness and the money ledger, all
// recomputed fresh from the grid each year-advance.
package sim

import "fmt"

// Balance holds every tuning constant of the simulation. The zero value
// is unusable; start from DefaultBalance and override from YAML.
type Balance struct {
	StartingMoney int `yaml:"starting_money" json:"starting_money"`

	// Per-cell yields for Operating zoned cells.
	ResidentialCapacity   int `yaml:"residential_capacity" json:"residential_capacity"`
	CommercialJobsPerCell int `yaml:"commercial_jobs_per_cell" json:"commercial_jobs_per_cell"`
	IndustrialJobsPerCell int `yaml:"industrial_jobs_per_cell" json:"industrial_jobs_per_cell"`

	// Happiness model.
	BaseHappiness        int            `yaml:"base_happiness" json:"base_happiness"`
	MinHappiness         int            `yaml:"min_happiness" json:"min_happiness"` // growth threshold
	AmenityBonusCap      int            `yaml:"amenity_bonus_cap" json:"amenity_bonus_cap"`
	IndustrialPenalty    int            `yaml:"industrial_penalty" json:"industrial_penalty"`
	JobShortagePerPerson int            `yaml:"job_shortage_per_person" json:"job_shortage_per_person"` // people per lost point
	JobShortageCap       int            `yaml:"job_shortage_cap" json:"job_shortage_cap"`
	HappinessBonus       map[string]int `yaml:"happiness_bonus" json:"happiness_bonus"` // by category token

	// Money ledger.
	TaxPerCapita int            `yaml:"tax_per_capita" json:"tax_per_capita"`
	Costs        map[string]int `yaml:"costs" json:"costs"`   // by category token
	Upkeep       map[string]int `yaml:"upkeep" json:"upkeep"` // by category token, per year
}

// DefaultBalance returns the stock tuning table.
func DefaultBalance() Balance {
	return Balance{
		StartingMoney:         10000,
		ResidentialCapacity:   100,
		CommercialJobsPerCell: 50,
		IndustrialJobsPerCell: 75,
		BaseHappiness:         50,
		MinHappiness:          20,
		AmenityBonusCap:       50,
		IndustrialPenalty:     3,
		JobShortagePerPerson:  50,
		JobShortageCap:        15,
		HappinessBonus: map[string]int{
			Park.String():          12,
			School.String():        10,
			Hospital.String():      8,
			PowerPlant.String():    5,
			PoliceStation.String(): 6,
			FireStation.String():   6,
			Mall.String():          7,
			Stadium.String():       15,
			University.String():    12,
			Airport.String():       10,
		},
		TaxPerCapita: 2,
		Costs: map[string]int{
			ZoneResidential.String(): 500,
			ZoneCommercial.String():  500,
			ZoneIndustrial.String():  500,
			Park.String():            300,
			Road.String():            200,
			PowerLine.String():       100,
			School.String():          1000,
			Hospital.String():        1500,
			PowerPlant.String():      2000,
			PoliceStation.String():   1200,
			FireStation.String():     1200,
			Mall.String():            2500,
			Stadium.String():         5000,
			University.String():      4000,
			Airport.String():         10000,
		},
		Upkeep: map[string]int{
			ZoneResidential.String(): 15,
			ZoneCommercial.String():  15,
			ZoneIndustrial.String():  15,
			Park.String():            5,
			Road.String():            10,
			PowerLine.String():       5,
			School.String():          50,
			Hospital.String():        75,
			PowerPlant.String():      100,
			PoliceStation.String():   60,
			FireStation.String():     60,
			Mall.String():            80,
			Stadium.String():         150,
			University.String():      120,
			Airport.String():         250,
		},
	}
}

// Cost returns the purchase price for a category.
func (b *Balance) Cost(cat Category) (int, error) {
	cost, ok := b.Costs[cat.String()]
	if !ok {
		return 0, fmt.Errorf("no cost for %s: %w", cat, ErrInvalidType)
	}
	return cost, nil
}

// Validate rejects tuning tables that would break the simulation.
func (b *Balance) Validate() error {
	if b.ResidentialCapacity <= 0 || b.CommercialJobsPerCell <= 0 || b.IndustrialJobsPerCell <= 0 {
		return fmt.Errorf("per-cell yields must be positive: %w", ErrInvalidState)
	}
	if b.StartingMoney < 0 || b.TaxPerCapita < 0 {
		return fmt.Errorf("money constants must be non-negative: %w", ErrInvalidState)
	}
	if b.BaseHappiness < 0 || b.BaseHappiness > 100 {
		return fmt.Errorf("base happiness outside [0,100]: %w", ErrInvalidState)
	}
	for token, cost := range b.Costs {
		if _, err := ParseCategory(token); err != nil {
			return fmt.Errorf("cost table: %w", err)
		}
		if cost < 0 {
			return fmt.Errorf("negative cost for %s: %w", token, ErrInvalidState)
		}
	}
	return nil
}

// CityStats is the derived economic view of one grid snapshot.
type CityStats struct {
	Population    int `json:"population"`
	JobsAvailable int `json:"jobs_available"`
	Happiness     int `json:"happiness"`
	TaxRevenue    int `json:"tax_revenue"`
	Upkeep        int `json:"upkeep"`
}

// computeStats derives population, jobs, happiness and the year's tax
// and upkeep totals from the grid. Pure function of the snapshot.
func computeStats(g *Grid, bal *Balance) CityStats {
	var st CityStats

	operating := func(cat Category) int {
		n := 0
		for r := 0; r < GridSize; r++ {
			for c := 0; c < GridSize; c++ {
				if g[r][c].Category == cat && g[r][c].Stage == Operating {
					n++
				}
			}
		}
		return n
	}

	st.Population = operating(ZoneResidential) * bal.ResidentialCapacity
	st.JobsAvailable = operating(ZoneCommercial)*bal.CommercialJobsPerCell +
		operating(ZoneIndustrial)*bal.IndustrialJobsPerCell

	bonus := 0
	for token, per := range bal.HappinessBonus {
		cat, err := ParseCategory(token)
		if err != nil {
			continue
		}
		bonus += g.Count(cat) * per
	}
	if bonus > bal.AmenityBonusCap {
		bonus = bal.AmenityBonusCap
	}
	happiness := bal.BaseHappiness + bonus
	happiness -= g.Count(ZoneIndustrial) * bal.IndustrialPenalty
	if shortfall := st.Population - st.JobsAvailable; shortfall > 0 && bal.JobShortagePerPerson > 0 {
		penalty := shortfall / bal.JobShortagePerPerson
		if penalty > bal.JobShortageCap {
			penalty = bal.JobShortageCap
		}
		happiness -= penalty
	}
	st.Happiness = clamp(happiness, 0, 100)

	st.TaxRevenue = st.Population * bal.TaxPerCapita
	for r := 0; r < GridSize; r++ {
		for c := 0; c < GridSize; c++ {
			if cost, ok := bal.Upkeep[g[r][c].Category.String()]; ok {
				st.Upkeep += cost
			}
		}
	}
	return st
}

// Statistics counts cells per category, keyed by wire token. Empty cells
// are included under "empty".
func Statistics(g *Grid) map[string]int {
	out := make(map[string]int, int(categoryCount))
	for r := 0; r < GridSize; r++ {
		for c := 0; c < GridSize; c++ {
			out[g[r][c].Category.String()]++
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
