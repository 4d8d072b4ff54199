package nav

import "testing"

func TestFindPathStartEqualsGoalIsEmpty(t *testing.T) {
	g := NewGrid(1000, 1000)
	c := g.WorldToCell(500, 500)
	path := g.FindPath(c, c)
	if len(path) != 0 {
		t.Fatalf("expected empty path, got %v", path)
	}
}

func TestFindPathOnOneByOneGridIsEmpty(t *testing.T) {
	g := NewGrid(50, 50)
	start := g.WorldToCell(10, 10)
	goal := g.WorldToCell(40, 40)
	path := g.FindPath(start, goal)
	if len(path) != 0 {
		t.Fatalf("expected empty path on 1x1 grid, got %v", path)
	}
}

func TestFindPathReachesGoalAndSkipsStart(t *testing.T) {
	g := NewGrid(1000, 1000)
	start := g.WorldToCell(0, 0)
	goal := g.WorldToCell(300, 0)
	path := g.FindPath(start, goal)
	if len(path) == 0 {
		t.Fatal("expected non-empty path")
	}
	if path[0] == start {
		t.Fatal("path must skip the start cell")
	}
	if path[len(path)-1] != goal {
		t.Fatalf("path must end at goal, got %v", path[len(path)-1])
	}
}

func TestFindPathIsDeterministic(t *testing.T) {
	g := NewGrid(1000, 1000)
	start := g.WorldToCell(0, 0)
	goal := g.WorldToCell(500, 500)
	p1 := append([]Cell(nil), g.FindPath(start, goal)...)
	p2 := append([]Cell(nil), g.FindPath(start, goal)...)
	if len(p1) != len(p2) {
		t.Fatalf("non-deterministic path lengths: %d vs %d", len(p1), len(p2))
	}
	for i := range p1 {
		if p1[i] != p2[i] {
			t.Fatalf("non-deterministic path at %d: %v vs %v", i, p1[i], p2[i])
		}
	}
}
