package sync

import "testing"

func testPacerConfig() PacerConfig {
	return PacerConfig{
		StateSyncRate:         30,
		IdleLightSeconds:      5,
		IdleHeavySeconds:      30,
		ScaleLight:            1,
		ScaleMedium:           2,
		ScaleIdle:             4,
		FullSyncIntervalTicks: 180,
	}
}

func TestPacerPriorityActivityResetsIdleClock(t *testing.T) {
	p := NewPacer(testPacerConfig())
	p.Observe(10, ActivityEntitiesOnly)
	if p.idleSeconds != 10 {
		t.Fatalf("idleSeconds = %v, want 10", p.idleSeconds)
	}
	p.Observe(1, ActivityPriority)
	if p.idleSeconds != 0 {
		t.Fatalf("idleSeconds after priority activity = %v, want 0", p.idleSeconds)
	}
	if got, want := p.Scale(ActivityPriority), 1.0; got != want {
		t.Fatalf("Scale(priority) = %v, want %v", got, want)
	}
}

func TestPacerScaleEscalatesWithIdleTime(t *testing.T) {
	p := NewPacer(testPacerConfig())

	if got, want := p.Scale(ActivityEntitiesOnly), p.cfg.ScaleLight; got != want {
		t.Fatalf("fresh entities-only scale = %v, want light scale %v", got, want)
	}

	p.Observe(6, ActivityEntitiesOnly)
	if got, want := p.Scale(ActivityEntitiesOnly), p.cfg.ScaleMedium; got != want {
		t.Fatalf("entities-only scale past IdleLightSeconds = %v, want medium scale %v", got, want)
	}

	p2 := NewPacer(testPacerConfig())
	p2.Observe(40, ActivityIdle)
	if got, want := p2.Scale(ActivityIdle), p2.cfg.ScaleIdle; got != want {
		t.Fatalf("idle scale past IdleHeavySeconds = %v, want idle scale %v", got, want)
	}
}

func TestPacerDeltaIntervalAppliesScale(t *testing.T) {
	p := NewPacer(testPacerConfig())
	got := p.DeltaInterval(ActivityPriority)
	want := 1.0 / 30.0
	if got != want {
		t.Fatalf("DeltaInterval(priority) = %v, want %v", got, want)
	}
}

func TestPacerShouldFullSyncCadence(t *testing.T) {
	p := NewPacer(testPacerConfig())
	if !p.ShouldFullSync(0) {
		t.Fatal("tick 0 should trigger a full sync")
	}
	if !p.ShouldFullSync(180) {
		t.Fatal("tick 180 should trigger a full sync")
	}
	if p.ShouldFullSync(179) {
		t.Fatal("tick 179 should not trigger a full sync")
	}
}
