// Package trace implements the tiered keyframe store that lets a training
// run reconstruct any past step without keeping every step in memory: a
// step is kept in full only if it falls on an exponentially sparsifying
// keyframe schedule, plus a best-to-date (BTD) index of every step that set
// a new minimum error. Reconstructing a non-keyframe step replays the
// optimizer forward from the nearest preceding keyframe.
package trace

// DefaultBucketSize is the tier-0 bucket size B: the first 2B steps (step
// indices [0, 2B)) are kept at full resolution.
const DefaultBucketSize = 1024

// Config is the tiered keyframe schedule. Tier 0 covers steps [0, 2B) at
// resolution 1 (every step kept); tier n covers [B*2^n, B*2^(n+1)) at
// resolution 2^n (every 2^n-th step kept). Storage is O(B*log(N/B)) for N
// total steps; reconstructing step k costs at most resolution(tier(k))-1
// replay steps from the nearest keyframe.
type Config struct {
	BucketSize int
}

// DefaultConfig returns the tiered schedule with the default bucket size.
func DefaultConfig() Config { return Config{BucketSize: DefaultBucketSize} }

// Tier reports which tier step belongs to.
func (c Config) Tier(step int) int {
	b := c.BucketSize
	if step < 2*b {
		return 0
	}
	return ilog2(step / b)
}

// Resolution returns the decimation factor (keep every Nth step) for tier.
func (c Config) Resolution(tier int) int { return 1 << tier }

// IsKeyframe reports whether step should be retained under this schedule.
func (c Config) IsKeyframe(step int) bool {
	res := c.Resolution(c.Tier(step))
	return step%res == 0
}

// TierStart returns the first step index belonging to tier.
func (c Config) TierStart(tier int) int {
	if tier == 0 {
		return 0
	}
	return c.BucketSize << tier
}

// NearestKeyframe returns the largest keyframe step index at or before step,
// computed from the schedule alone (no lookup into any actual store).
func (c Config) NearestKeyframe(step int) int {
	res := c.Resolution(c.Tier(step))
	return (step / res) * res
}

// MaxRecompute returns the most replay steps ever needed to reach any step
// in tier from its nearest keyframe.
func (c Config) MaxRecompute(tier int) int {
	if tier == 0 {
		return 0
	}
	return c.Resolution(tier) - 1
}

// KeyframeCount returns how many of the first totalSteps step indices are
// keyframes under this schedule.
func (c Config) KeyframeCount(totalSteps int) int {
	count := 0
	for s := 0; s < totalSteps; s++ {
		if c.IsKeyframe(s) {
			count++
		}
	}
	return count
}

// ilog2 returns floor(log2(n)) for n >= 1.
func ilog2(n int) int {
	k := 0
	for n > 1 {
		n >>= 1
		k++
	}
	return k
}
