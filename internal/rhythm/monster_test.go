package rhythm

import "testing"

func TestMonsterSchedulerSpawnSingleFamilyFillsSlotsUniquely(t *testing.T) {
	lib, _ := NewChordLibrary([]string{"C", "G"})
	stage := baseStage()
	stage.SimultaneousMonsterCount = 3

	rs := &RunState{Stage: &stage}
	judge := NewJudgeEngine()
	sched := NewMonsterScheduler(&stage, lib, NewRNG(1))

	if err := sched.SpawnSingleFamily(rs, judge, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rs.Monsters) != 3 {
		t.Fatalf("expected 3 monsters spawned, got %d", len(rs.Monsters))
	}
	seen := map[int]bool{}
	for _, m := range rs.Monsters {
		if seen[m.Slot] {
			t.Fatalf("slot %d assigned twice", m.Slot)
		}
		seen[m.Slot] = true
	}
}

func TestMonsterSchedulerSpawnSingleFamilyDoesNotRespawnOccupiedSlot(t *testing.T) {
	lib, _ := NewChordLibrary([]string{"C"})
	stage := baseStage()
	stage.SimultaneousMonsterCount = 1
	stage.AllowedChords = []string{"C"}

	rs := &RunState{Stage: &stage}
	judge := NewJudgeEngine()
	sched := NewMonsterScheduler(&stage, lib, NewRNG(1))

	sched.SpawnSingleFamily(rs, judge, 0)
	first := rs.Monsters[0]
	sched.SpawnSingleFamily(rs, judge, 1)
	if len(rs.Monsters) != 1 {
		t.Fatalf("expected slot to remain occupied by one monster, got %d monsters", len(rs.Monsters))
	}
	if rs.Monsters[0].ID != first.ID {
		t.Errorf("expected the same monster to remain, got a new one")
	}
}

func TestMonsterSchedulerAdvanceGaugesFillsAndResets(t *testing.T) {
	stage := baseStage()
	stage.EnemyGaugeSeconds = 2 // 50/sec
	rs := &RunState{Stage: &stage}
	m := &Monster{ID: "m1", State: MonsterIdle}
	rs.Monsters = append(rs.Monsters, m)

	sched := NewMonsterScheduler(&stage, nil, NewRNG(1))
	attacking := sched.AdvanceGauges(rs, 1.0)
	if len(attacking) != 0 {
		t.Fatalf("expected no attack yet at half gauge, got %d", len(attacking))
	}
	if m.Gauge != 50 {
		t.Errorf("expected gauge 50 after 1s, got %v", m.Gauge)
	}

	attacking = sched.AdvanceGauges(rs, 1.0)
	if len(attacking) != 1 {
		t.Fatalf("expected monster to attack once gauge reaches 100, got %d", len(attacking))
	}
	if m.Gauge != 0 {
		t.Errorf("expected gauge to reset to 0 after attacking, got %v", m.Gauge)
	}
}

func TestMonsterSchedulerMarkHitTransitionsToHitOrFadingOut(t *testing.T) {
	stage := baseStage()
	sched := NewMonsterScheduler(&stage, nil, NewRNG(1))

	survives := &Monster{ID: "m1", HP: 20, MaxHP: 20, State: MonsterIdle}
	defeated := sched.MarkHit(survives, 5)
	if defeated {
		t.Fatalf("expected monster to survive a partial hit")
	}
	if survives.State != MonsterHit {
		t.Errorf("expected state MonsterHit, got %v", survives.State)
	}
	if survives.HP != 15 {
		t.Errorf("expected HP 15, got %d", survives.HP)
	}

	dies := &Monster{ID: "m2", HP: 5, MaxHP: 20, State: MonsterIdle}
	defeatedNow := sched.MarkHit(dies, 10)
	if !defeatedNow {
		t.Fatalf("expected monster to be defeated")
	}
	if dies.State != MonsterFadingOut {
		t.Errorf("expected state MonsterFadingOut, got %v", dies.State)
	}
	if dies.HP != 0 {
		t.Errorf("expected HP floor of 0, got %d", dies.HP)
	}
}

func TestMonsterSchedulerAdvanceTimersTransitionsAndReaps(t *testing.T) {
	stage := baseStage()
	sched := NewMonsterScheduler(&stage, nil, NewRNG(1))
	rs := &RunState{Stage: &stage}

	hit := &Monster{ID: "m1", State: MonsterHit, hitTimer: 0.1}
	fading := &Monster{ID: "m2", State: MonsterFadingOut, fadeTimer: 0.1}
	rs.Monsters = []*Monster{hit, fading}

	defeated := sched.AdvanceTimers(rs, 0.2)
	if hit.State != MonsterIdle {
		t.Errorf("expected hit monster to return to Idle, got %v", hit.State)
	}
	if fading.State != MonsterGone {
		t.Errorf("expected fading monster to become Gone, got %v", fading.State)
	}
	if len(defeated) != 1 || defeated[0].ID != "m2" {
		t.Errorf("expected AdvanceTimers to report the newly-Gone monster")
	}

	sched.Reap(rs)
	if len(rs.Monsters) != 1 || rs.Monsters[0].ID != "m1" {
		t.Errorf("expected Reap to remove the Gone monster, kept: %+v", rs.Monsters)
	}
}

func TestMonsterSchedulerCheckEnragedFiresOncePastThreshold(t *testing.T) {
	stage := baseStage()
	stage.EnemyGaugeSeconds = 2
	sched := NewMonsterScheduler(&stage, nil, NewRNG(1))
	rs := &RunState{Stage: &stage}
	m := &Monster{ID: "m1", State: MonsterIdle, SpawnedAt: 0}
	rs.Monsters = []*Monster{m}

	seen := map[string]bool{}
	newly := sched.CheckEnraged(rs, 2.9, seen) // under 1.5x(2s)=3s
	if len(newly) != 0 {
		t.Fatalf("expected no enraged monsters before threshold, got %v", newly)
	}
	newly = sched.CheckEnraged(rs, 3.1, seen)
	if len(newly) != 1 || newly[0] != "m1" {
		t.Fatalf("expected m1 to be newly enraged at t=3.1, got %v", newly)
	}
	for _, id := range newly {
		seen[id] = true
	}
	newly = sched.CheckEnraged(rs, 10, seen)
	if len(newly) != 0 {
		t.Errorf("expected no repeat enraged event once already seen, got %v", newly)
	}
}
