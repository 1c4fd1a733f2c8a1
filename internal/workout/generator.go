package workout

import (
	"errors"
	"math/rand"

	"github.com/claude/runcoach/internal/models"
)

// ErrInvalidDuration rejects non-positive workout durations at the boundary.
var ErrInvalidDuration = errors.New("duration_min must be a positive integer")

// Candidate pools for generated plans. Declaration order matters: selection
// is deterministic for a given seed, drawn in emission order.
var (
	steadySpeeds    = []float64{5.8, 6.0, 6.1, 6.3}
	pushSpeeds      = []float64{6.7, 6.9, 7.0, 7.1}
	inclines        = []float64{0, 1, 1, 2, 3}
	steadyDurations = []int{120, 180, 240}
	pushDurations   = []int{60, 90, 120}
)

const (
	easySpeedMPH   = 4.0 // warmup and cooldown pace
	maxWarmupS     = 300
	minWarmupS     = 60
	maxCooldownS   = 300
	warmupFraction = 10 // warmup target is total/10, clamped
)

// generateSegments builds the interval plan for a total duration in seconds.
// All randomness comes from a single PRNG constructed with exactly this seed,
// so the output is reproducible across calls and processes.
func generateSegments(totalS int, seed int64) []models.Segment {
	rnd := rand.New(rand.NewSource(seed))
	var segs []models.Segment

	warm := totalS / warmupFraction
	if warm < minWarmupS {
		warm = minWarmupS
	}
	if warm > maxWarmupS {
		warm = maxWarmupS
	}
	if warm > totalS {
		// Very short workouts collapse to a single easy segment.
		warm = totalS
	}
	segs = append(segs, models.Segment{
		DurationS: warm, SpeedMPH: easySpeedMPH, Label: models.LabelWarmup,
	})

	reserve := totalS - warm
	if reserve > maxCooldownS {
		reserve = maxCooldownS
	}

	remain := totalS - warm - reserve
	for remain > 0 {
		d := pickInt(rnd, steadyDurations)
		if d > remain {
			d = remain
		}
		segs = append(segs, models.Segment{
			DurationS:  d,
			SpeedMPH:   pickFloat(rnd, steadySpeeds),
			InclinePct: pickFloat(rnd, inclines),
			Label:      models.LabelSteady,
		})
		remain -= d
		if remain <= 0 {
			break
		}

		d = pickInt(rnd, pushDurations)
		if d > remain {
			d = remain
		}
		segs = append(segs, models.Segment{
			DurationS:  d,
			SpeedMPH:   pickFloat(rnd, pushSpeeds),
			InclinePct: pickFloat(rnd, inclines),
			Label:      models.LabelPush,
		})
		remain -= d
	}

	// Cooldown absorbs whatever is left so the total matches exactly.
	emitted := 0
	for _, s := range segs {
		emitted += s.DurationS
	}
	if cool := totalS - emitted; cool > 0 {
		segs = append(segs, models.Segment{
			DurationS: cool, SpeedMPH: easySpeedMPH, Label: models.LabelCooldown,
		})
	}

	for i := range segs {
		segs[i].Index = i
	}
	return segs
}

func pickInt(rnd *rand.Rand, pool []int) int {
	return pool[rnd.Intn(len(pool))]
}

func pickFloat(rnd *rand.Rand, pool []float64) float64 {
	return pool[rnd.Intn(len(pool))]
}
