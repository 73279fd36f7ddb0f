package pcutils

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestFurthestPointPermutation(t *testing.T) {
	pts := []r3.Vector{}
	for i := 0; i < 20; i++ {
		pts = append(pts, r3.Vector{X: float64(i % 4), Y: float64(i / 4), Z: float64(i % 3)})
	}
	// duplicates must not be picked twice either
	pts = append(pts, pts[3], pts[7])

	idx, err := FurthestPointIndices(pts, len(pts), rand.New(rand.NewSource(1)))
	test.That(t, err, test.ShouldBeNil)

	sorted := append([]int{}, idx...)
	sort.Ints(sorted)
	for i, v := range sorted {
		test.That(t, v, test.ShouldEqual, i)
	}
}

func TestFurthestPointSpread(t *testing.T) {
	pts := []r3.Vector{}
	for i := 0; i <= 10; i++ {
		pts = append(pts, r3.Vector{X: float64(i)})
	}

	for seed := int64(0); seed < 5; seed++ {
		out, err := FurthestPointSample(FromXYZ(pts), 3, rand.New(rand.NewSource(seed)))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, len(out), test.ShouldEqual, 3)

		// the second pick is the end furthest from the random first one
		want := 10.0
		if out[0].X >= 5 {
			want = 0
		}
		test.That(t, out[1].X, test.ShouldEqual, want)

		seen := map[float64]bool{}
		for _, p := range out {
			test.That(t, seen[p.X], test.ShouldBeFalse)
			seen[p.X] = true
		}
	}
}

func TestFurthestPointSeeded(t *testing.T) {
	pts := boxPoints()
	a, err := FurthestPointIndices(pts, 10, rand.New(rand.NewSource(42)))
	test.That(t, err, test.ShouldBeNil)
	b, err := FurthestPointIndices(pts, 10, rand.New(rand.NewSource(42)))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, a, test.ShouldResemble, b)

	_, err = FurthestPointIndices(pts, 3, nil)
	test.That(t, err, test.ShouldBeNil)
}

func TestFurthestPointBadCount(t *testing.T) {
	pts := []r3.Vector{{X: 1}, {X: 2}}
	for _, k := range []int{0, -1, 3} {
		_, err := FurthestPointIndices(pts, k, nil)
		test.That(t, errors.Is(err, ErrInvalidSampleCount), test.ShouldBeTrue)
	}
	_, err := FurthestPointSample(Cloud{}, 1, nil)
	test.That(t, errors.Is(err, ErrInvalidSampleCount), test.ShouldBeTrue)
}
