package pcutils

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Box is an axis aligned region in meters, bounds inclusive.
type Box struct {
	Min r3.Vector `json:"min"`
	Max r3.Vector `json:"max"`
}

func (b Box) Contains(p r3.Vector) bool {
	if p.X < b.Min.X || p.X > b.Max.X {
		return false
	}

	if p.Y < b.Min.Y || p.Y > b.Max.Y {
		return false
	}

	if p.Z < b.Min.Z || p.Z > b.Max.Z {
		return false
	}

	return true
}

func (b Box) Validate(path string) error {
	if b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z {
		return errors.Errorf("%s: min %v is above max %v", path, b.Min, b.Max)
	}
	return nil
}

// Crop keeps the points inside b, in order.
func Crop(c Cloud, b Box) Cloud {
	out := Cloud{}
	for _, p := range c {
		if b.Contains(p.Vector) {
			out = append(out, p)
		}
	}
	return out
}
