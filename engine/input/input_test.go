package input

import (
	"testing"

	"github.com/axehen/hengine/engine/overlay"
)

type step struct {
	phase    overlay.Phase
	pointer  int
	pointers int
}

func check(t *testing.T, got []overlay.Event, want []step) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("events = %+v, want %d", got, len(want))
	}
	for i, w := range want {
		g := got[i]
		if g.Phase != w.phase || g.Pointer != w.pointer || len(g.Pointers) != w.pointers {
			t.Errorf("event %d = %v pointer %d with %d pointers, want %v %d with %d",
				i, g.Phase, g.Pointer, len(g.Pointers), w.phase, w.pointer, w.pointers)
		}
	}
}

func TestDiff(t *testing.T) {
	tr := NewTracker()

	check(t, tr.Diff([]overlay.Pointer{{ID: 3, X: 10, Y: 10}}), []step{
		{overlay.PhaseDown, 3, 1},
	})
	check(t, tr.Diff([]overlay.Pointer{{ID: 3, X: 10, Y: 10}}), nil)

	check(t, tr.Diff([]overlay.Pointer{{ID: 3, X: 12, Y: 10}, {ID: 5, X: 50, Y: 50}}), []step{
		{overlay.PhaseMove, 3, 1},
		{overlay.PhaseDown, 5, 2},
	})

	got := tr.Diff([]overlay.Pointer{{ID: 5, X: 60, Y: 50}})
	check(t, got, []step{
		{overlay.PhaseUp, 3, 2},
		{overlay.PhaseMove, 5, 1},
	})
	if p, ok := got[0].Lookup(3); !ok || p.X != 12 {
		t.Errorf("released pointer = %+v, %v", p, ok)
	}
	if p, _ := got[1].Lookup(5); p.X != 60 {
		t.Errorf("moved pointer = %+v", p)
	}

	check(t, tr.Diff(nil), []step{{overlay.PhaseUp, 5, 1}})
	if len(tr.Down()) != 0 {
		t.Errorf("held = %v", tr.Down())
	}
}

func TestDiffKeepsDownOrder(t *testing.T) {
	tr := NewTracker()
	tr.Diff([]overlay.Pointer{{ID: 9}})
	tr.Diff([]overlay.Pointer{{ID: 1}, {ID: 9}})
	down := tr.Down()
	if len(down) != 2 || down[0].ID != 9 || down[1].ID != 1 {
		t.Errorf("down = %v", down)
	}
}
