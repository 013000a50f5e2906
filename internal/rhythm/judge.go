package rhythm

import "sort"

// JudgeResultKind enumerates the JudgeResult variants.
type JudgeResultKind int

const (
	ResultIgnored JudgeResultKind = iota
	ResultPartial
	ResultComplete
	ResultIncorrect
)

// JudgeResult is the outcome of one JudgeEngine.Input call.
type JudgeResult struct {
	Kind            JudgeResultKind
	MonsterID       string
	AcceptedClasses PitchClassSet // set on ResultPartial/ResultComplete
	Damage          int           // set on ResultComplete
	IsSpecial       bool          // set on ResultComplete
	Defeated        bool          // not set by Input; RhythmCore takes defeat from MonsterScheduler.MarkHit
	Reason          string        // set on ResultIncorrect
}

// expectation is JudgeEngine's per-monster bookkeeping: the active target
// set plus how much of it has been accepted so far.
type expectation struct {
	monsterID   string
	slot        int
	targetSet   PitchClassSet
	displayName string
	accepted    PitchClassSet
}

// JudgeEngine is the stateful matcher that tracks each monster's chord
// expectation. It holds no reference to RunState; RhythmCore supplies
// whatever per-tick context (player sp, stage damage range, RNG) a
// completion needs to compute damage.
type JudgeEngine struct {
	expectations map[string]*expectation
}

// NewJudgeEngine constructs an empty engine.
func NewJudgeEngine() *JudgeEngine {
	return &JudgeEngine{expectations: make(map[string]*expectation)}
}

// SetExpectation replaces any prior expectation for monsterID.
func (j *JudgeEngine) SetExpectation(monsterID string, slot int, targetSet PitchClassSet, displayName string) {
	j.expectations[monsterID] = &expectation{
		monsterID:   monsterID,
		slot:        slot,
		targetSet:   targetSet,
		displayName: displayName,
	}
}

// Clear drops partial progress for monsterID.
func (j *JudgeEngine) Clear(monsterID string) {
	delete(j.expectations, monsterID)
}

// Accepted returns the pitch classes accumulated so far toward monsterID's
// target set, for host-facing projections (FrameState's MonsterView).
func (j *JudgeEngine) Accepted(monsterID string) PitchClassSet {
	e, ok := j.expectations[monsterID]
	if !ok {
		return 0
	}
	return e.accepted
}

// RouteMonster implements the tie-break policy: among all monsters with an
// active expectation whose targetSet contains pc, the press is attributed to
// the lowest slot. Callers invoke this once per press before calling Input,
// which is what guarantees "the same press does not count toward others in
// the same tick" — a press routes to exactly one monster because
// RouteMonster is only consulted once.
func (j *JudgeEngine) RouteMonster(pc PitchClass) (monsterID string, ok bool) {
	candidates := make([]*expectation, 0, len(j.expectations))
	for _, e := range j.expectations {
		if e.targetSet.Contains(pc) {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	sort.Slice(candidates, func(i, k int) bool { return candidates[i].slot < candidates[k].slot })
	return candidates[0].monsterID, true
}

// InputContext carries the per-tick state a Complete needs to compute
// damage, and the timing-mode flags that change how an out-of-set press is
// treated.
type InputContext struct {
	TimingMode bool // non-timing modes ignore out-of-set presses; timing modes may mark them Incorrect
	NoteDue    bool // true only when the press falls in an active due-note window
	Player     *PlayerState
	Stage      *StageConfig
	RNG        *RNG
}

// Input resolves a timestamped pitch-class press against monsterID's
// current expectation.
func (j *JudgeEngine) Input(pc PitchClass, monsterID string, ctx InputContext) JudgeResult {
	e, ok := j.expectations[monsterID]
	if !ok {
		return JudgeResult{Kind: ResultIgnored, MonsterID: monsterID}
	}

	if !e.targetSet.Contains(pc) {
		if ctx.TimingMode && ctx.NoteDue {
			return JudgeResult{Kind: ResultIncorrect, MonsterID: monsterID, Reason: "pitch outside target set within judgement window"}
		}
		return JudgeResult{Kind: ResultIgnored, MonsterID: monsterID}
	}

	if e.accepted.Contains(pc) {
		// Duplicate accepted class: ignored so the player may stack/retry.
		return JudgeResult{Kind: ResultIgnored, MonsterID: monsterID, AcceptedClasses: e.accepted}
	}

	e.accepted = e.accepted.Add(pc)
	if e.accepted != e.targetSet {
		return JudgeResult{Kind: ResultPartial, MonsterID: monsterID, AcceptedClasses: e.accepted}
	}

	// Target fully covered: emit Complete exactly once, then reset.
	e.accepted = 0
	damage, special := computeDamage(ctx)
	return JudgeResult{Kind: ResultComplete, MonsterID: monsterID, Damage: damage, IsSpecial: special}
}

// computeDamage computes a uniform integer in stage.DamageRange, doubled
// and sp-=3 when the completion lands while sp >= SpecialThreshold,
// otherwise sp increments (saturating at 5).
func computeDamage(ctx InputContext) (damage int, special bool) {
	base := ctx.RNG.IntRange(ctx.Stage.DamageRange.Min, ctx.Stage.DamageRange.Max)

	special = ctx.Player.SP >= ctx.Stage.specialThreshold()
	if special {
		ctx.Player.SP -= 3
		if ctx.Player.SP < 0 {
			ctx.Player.SP = 0
		}
		return base * 2, true
	}

	ctx.Player.SP++
	if ctx.Player.SP > 5 {
		ctx.Player.SP = 5
	}
	return base, false
}
