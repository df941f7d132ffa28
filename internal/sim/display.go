// Rendering support: display glyphs and human names per cell. Cosmetic
// only; nothing here feeds back into the simulation.
package sim

import "strings"

var categoryGlyphs = [categoryCount]string{
	Empty:           ".",
	ZoneResidential: "R",
	ZoneCommercial:  "C",
	ZoneIndustrial:  "I",
	Park:            "P",
	Road:            "#",
	PowerLine:       "=",
	School:          "S",
	Hospital:        "H",
	PowerPlant:      "E",
	PoliceStation:   "O",
	FireStation:     "F",
	Mall:            "M",
	Stadium:         "D",
	University:      "U",
	Airport:         "A",
}

var categoryNames = [categoryCount]string{
	Empty:           "Empty",
	ZoneResidential: "Residential",
	ZoneCommercial:  "Commercial",
	ZoneIndustrial:  "Industrial",
	Park:            "Park",
	Road:            "Road",
	PowerLine:       "Power Line",
	School:          "School",
	Hospital:        "Hospital",
	PowerPlant:      "Power Plant",
	PoliceStation:   "Police Station",
	FireStation:     "Fire Station",
	Mall:            "Mall",
	Stadium:         "Stadium",
	University:      "University",
	Airport:         "Airport",
}

// Glyph returns the one-character display symbol for a cell. Zoned cells
// render lowercase until they operate and "x" once abandoned.
func Glyph(cell Cell) string {
	if cell.Category >= categoryCount {
		return "?"
	}
	g := categoryGlyphs[cell.Category]
	if cell.Category.Zoned() {
		switch cell.Stage {
		case Unbuilt, Developing:
			return strings.ToLower(g)
		case Abandoned:
			return "x"
		}
	}
	return g
}

// DisplayName returns the human-readable name for a category.
func DisplayName(cat Category) string {
	if cat >= categoryCount {
		return "Unknown"
	}
	return categoryNames[cat]
}
