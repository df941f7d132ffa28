package sim

import "testing"

func TestHasRoadAccess(t *testing.T) {
	var g Grid
	g.SetCell(2, 1, Road)

	if !HasRoadAccess(&g, 2, 2) {
		t.Fatal("cell next to a road should have road access")
	}
	if HasRoadAccess(&g, 2, 3) {
		t.Fatal("cell two away from a road should not have road access")
	}
	if HasRoadAccess(&g, 1, 2) {
		t.Fatal("diagonal road must not grant access")
	}
}

func TestIsPowered_AdjacentToPlant(t *testing.T) {
	var g Grid
	g.SetCell(2, 2, PowerPlant)

	if !IsPowered(&g, 2, 2) {
		t.Fatal("plants are always powered")
	}
	if !IsPowered(&g, 2, 3) {
		t.Fatal("cell adjacent to a plant should be powered")
	}
	if IsPowered(&g, 0, 0) {
		t.Fatal("far corner should not be powered")
	}
	if IsPowered(&g, 3, 3) {
		t.Fatal("diagonal neighbor of a plant should not be powered")
	}
}

func TestIsPowered_ThroughLineChain(t *testing.T) {
	var g Grid
	g.SetCell(0, 0, PowerPlant)
	g.SetCell(0, 1, PowerLine)
	g.SetCell(0, 2, PowerLine)
	g.SetCell(0, 3, PowerLine)

	if !IsPowered(&g, 0, 4) {
		t.Fatal("cell at the end of an energized chain should be powered")
	}
	if !IsPowered(&g, 1, 2) {
		t.Fatal("cell beside an energized line should be powered")
	}
}

func TestIsPowered_BrokenChain(t *testing.T) {
	var g Grid
	g.SetCell(0, 0, PowerPlant)
	g.SetCell(0, 1, PowerLine)
	// gap at (0,2)
	g.SetCell(0, 3, PowerLine)

	if IsPowered(&g, 0, 4) {
		t.Fatal("line segment cut off from the plant must not carry power")
	}
	if IsPowered(&g, 1, 3) {
		t.Fatal("cell beside a dead line must not be powered")
	}
}

func TestIsPowered_LineLoop(t *testing.T) {
	// A cycle of lines must not hang the flood fill.
	var g Grid
	g.SetCell(0, 0, PowerPlant)
	for _, pos := range [][2]int{{0, 1}, {1, 1}, {2, 1}, {2, 2}, {1, 2}, {0, 2}} {
		g.SetCell(pos[0], pos[1], PowerLine)
	}

	if !IsPowered(&g, 3, 2) {
		t.Fatal("cell beside the loop should be powered")
	}
}

func TestRoadShapeAt(t *testing.T) {
	// Lay out a network covering every shape class:
	//	. # . . .
	//	# # # # .
	//	. # . . .
	//	. # . . .
	//	. . . . .
	var g Grid
	for _, pos := range [][2]int{{0, 1}, {1, 0}, {1, 1}, {1, 2}, {1, 3}, {2, 1}, {3, 1}} {
		g.SetCell(pos[0], pos[1], Road)
	}
	g.SetCell(4, 4, Road) // lone road

	tests := []struct {
		row, col int
		want     RoadShape
	}{
		{1, 1, RoadCross},
		{1, 2, RoadStraight},
		{1, 3, RoadStraight}, // dead end renders as a stub
		{2, 1, RoadStraight},
		{0, 1, RoadStraight}, // dead end at the top
		{4, 4, RoadIsolated},
	}
	for _, tc := range tests {
		if got := RoadShapeAt(&g, tc.row, tc.col); got != tc.want {
			t.Errorf("RoadShapeAt(%d,%d) = %v, want %v", tc.row, tc.col, got, tc.want)
		}
	}
}

func TestRoadShapeAt_CornerAndTee(t *testing.T) {
	var g Grid
	for _, pos := range [][2]int{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {1, 2}} {
		g.SetCell(pos[0], pos[1], Road)
	}
	// (0,0) has roads east and south → corner.
	if got := RoadShapeAt(&g, 0, 0); got != RoadCorner {
		t.Fatalf("RoadShapeAt(0,0) = %v, want RoadCorner", got)
	}
	// (1,1) has roads north, west, east → tee.
	if got := RoadShapeAt(&g, 1, 1); got != RoadTee {
		t.Fatalf("RoadShapeAt(1,1) = %v, want RoadTee", got)
	}
}
