package pcutils

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/stat"
)

// OutlierFilter returns the indices of the points it keeps, in input order.
// Bad parameters are an error, never a panic.
type OutlierFilter interface {
	Inliers(c Cloud) ([]int, error)
}

// StatisticalOutlier drops points whose mean distance to their Neighbors nearest
// other points is above mean + StdRatio*std over the whole cloud.
type StatisticalOutlier struct {
	Neighbors int
	StdRatio  float64
}

// RadiusOutlier drops points with fewer than MinPoints other points within Radius.
type RadiusOutlier struct {
	MinPoints int
	Radius    float64
}

func buildTree(c Cloud) *kdtree.Tree {
	pts := make(kdtree.Points, len(c))
	for i, p := range c {
		pts[i] = kdtree.Point{p.X, p.Y, p.Z}
	}
	return kdtree.New(pts, false)
}

func (so StatisticalOutlier) Validate() error {
	if so.Neighbors < 1 {
		return errors.Wrapf(ErrInvalidOutlierConfig, "nb_neighbors must be >= 1, got %d", so.Neighbors)
	}
	if so.StdRatio < 0 || math.IsNaN(so.StdRatio) || math.IsInf(so.StdRatio, 0) {
		return errors.Wrapf(ErrInvalidOutlierConfig, "std_ratio must be >= 0 and finite, got %v", so.StdRatio)
	}
	return nil
}

func (so StatisticalOutlier) Inliers(c Cloud) ([]int, error) {
	if err := so.Validate(); err != nil {
		return nil, err
	}
	if len(c) == 0 {
		return []int{}, nil
	}

	tree := buildTree(c)

	meanDist := make([]float64, len(c))
	for i, p := range c {
		// +1 because the query point finds itself
		keep := kdtree.NewNKeeper(so.Neighbors + 1)
		tree.NearestSet(keep, kdtree.Point{p.X, p.Y, p.Z})

		skippedSelf := false
		total := 0.0
		n := 0
		for _, cd := range keep.Heap {
			if cd.Comparable == nil {
				continue
			}
			if !skippedSelf && cd.Dist == 0 {
				skippedSelf = true
				continue
			}
			total += math.Sqrt(cd.Dist)
			n++
		}
		if n > 0 {
			meanDist[i] = total / float64(n)
		}
	}

	mean, std := stat.MeanStdDev(meanDist, nil)
	if math.IsNaN(std) {
		std = 0
	}
	threshold := mean + so.StdRatio*std
	// the mean of equal values can land a few ulps below them
	threshold += 1e-9 * math.Max(1, math.Abs(threshold))

	out := make([]int, 0, len(c))
	for i, d := range meanDist {
		if d <= threshold {
			out = append(out, i)
		}
	}
	return out, nil
}

func (ro RadiusOutlier) Validate() error {
	if ro.MinPoints < 0 {
		return errors.Wrapf(ErrInvalidOutlierConfig, "nb_points must be >= 0, got %d", ro.MinPoints)
	}
	if !(ro.Radius > 0) || math.IsInf(ro.Radius, 1) {
		return errors.Wrapf(ErrInvalidOutlierConfig, "radius must be > 0 and finite, got %v", ro.Radius)
	}
	return nil
}

func (ro RadiusOutlier) Inliers(c Cloud) ([]int, error) {
	if err := ro.Validate(); err != nil {
		return nil, err
	}
	if len(c) == 0 {
		return []int{}, nil
	}

	tree := buildTree(c)

	out := make([]int, 0, len(c))
	for i, p := range c {
		keep := kdtree.NewDistKeeper(ro.Radius * ro.Radius)
		tree.NearestSet(keep, kdtree.Point{p.X, p.Y, p.Z})

		found := 0
		for _, cd := range keep.Heap {
			if cd.Comparable != nil {
				found++
			}
		}
		// found includes the point itself
		if found-1 >= ro.MinPoints {
			out = append(out, i)
		}
	}
	return out, nil
}

func RemoveOutliers(c Cloud, f OutlierFilter) (Cloud, error) {
	keep, err := f.Inliers(c)
	if err != nil {
		return nil, err
	}
	return c.Select(keep), nil
}

// SplitOutliers returns the kept and the dropped points.
func SplitOutliers(c Cloud, f OutlierFilter) (Cloud, Cloud, error) {
	keep, err := f.Inliers(c)
	if err != nil {
		return nil, nil, err
	}

	inliers := make(Cloud, 0, len(keep))
	outliers := make(Cloud, 0, len(c)-len(keep))

	next := 0
	for i, p := range c {
		if next < len(keep) && keep[next] == i {
			inliers = append(inliers, p)
			next++
		} else {
			outliers = append(outliers, p)
		}
	}
	return inliers, outliers, nil
}

const (
	OutlierStatistical = "statistical"
	OutlierRadius      = "radius"
)

// OutlierConfig is the json form, for example
// {"method": "statistical", "nb_neighbors": 20, "std_ratio": 2.0} or
// {"method": "radius", "nb_points": 16, "radius": 0.05}.
type OutlierConfig struct {
	Method      string  `json:"method"`
	NbNeighbors int     `json:"nb_neighbors,omitempty"`
	StdRatio    float64 `json:"std_ratio,omitempty"`
	NbPoints    int     `json:"nb_points,omitempty"`
	Radius      float64 `json:"radius,omitempty"`
}

func (c *OutlierConfig) Build() (OutlierFilter, error) {
	switch c.Method {
	case OutlierStatistical:
		so := StatisticalOutlier{Neighbors: c.NbNeighbors, StdRatio: c.StdRatio}
		if err := so.Validate(); err != nil {
			return nil, err
		}
		return so, nil
	case OutlierRadius:
		ro := RadiusOutlier{MinPoints: c.NbPoints, Radius: c.Radius}
		if err := ro.Validate(); err != nil {
			return nil, err
		}
		return ro, nil
	case "":
		return nil, errors.Wrap(ErrInvalidOutlierConfig, "no method")
	default:
		return nil, errors.Wrapf(ErrInvalidOutlierConfig, "unknown method %q", c.Method)
	}
}

func (c *OutlierConfig) Validate(path string) error {
	_, err := c.Build()
	if err != nil {
		return errors.Wrap(err, path)
	}
	return nil
}
