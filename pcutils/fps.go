package pcutils

import (
	"math"
	"math/rand"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// FurthestPointIndices greedily picks k spread out points. The first pick is random,
// each next pick is the point furthest from everything picked so far.
// A nil rng uses a time seeded source.
func FurthestPointIndices(pts []r3.Vector, k int, rng *rand.Rand) ([]int, error) {
	if k < 1 || k > len(pts) {
		return nil, errors.Wrapf(ErrInvalidSampleCount, "k=%d with %d points", k, len(pts))
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	picked := make([]int, 0, k)
	taken := make([]bool, len(pts))

	// squared distance to the closest picked point
	dist := make([]float64, len(pts))
	for i := range dist {
		dist[i] = math.Inf(1)
	}

	next := rng.Intn(len(pts))
	for {
		picked = append(picked, next)
		taken[next] = true
		if len(picked) == k {
			break
		}

		seed := pts[next]
		best := -1
		bestDist := -1.0
		for i, p := range pts {
			if taken[i] {
				continue
			}
			d := p.Sub(seed).Norm2()
			if d < dist[i] {
				dist[i] = d
			}
			if dist[i] > bestDist {
				bestDist = dist[i]
				best = i
			}
		}
		next = best
	}

	return picked, nil
}

func FurthestPointSample(c Cloud, k int, rng *rand.Rand) (Cloud, error) {
	idx, err := FurthestPointIndices(c.XYZ(), k, rng)
	if err != nil {
		return nil, err
	}
	return c.Select(idx), nil
}
