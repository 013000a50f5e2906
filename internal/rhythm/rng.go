package rhythm

import "math/rand"

// RNG is the engine's sole source of randomness. Given the same seed, every
// random choice — progression-random chord picks, idle-state monster
// respawn picks, damage rolls — must produce bit-identical output, which is
// why all of them flow through one seeded generator owned by RhythmCore,
// never through the global math/rand functions or time-seeded sources.
type RNG struct {
	r *rand.Rand
}

// NewRNG seeds a deterministic generator.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewSource(seed))}
}

// Intn returns a uniform integer in [0, n).
func (g *RNG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return g.r.Intn(n)
}

// IntRange returns a uniform integer in [min, max] inclusive.
func (g *RNG) IntRange(min, max int) int {
	if max <= min {
		return min
	}
	return min + g.r.Intn(max-min+1)
}
