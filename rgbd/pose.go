package rgbd

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/rdk/spatialmath"
)

// Transform is a row major 4x4 homogeneous rigid transform. As a camera pose it
// maps camera frame points into the world frame.
type Transform [4][4]float64

func IdentityTransform() Transform {
	return Transform{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// PoseToTransform decodes (tx, ty, tz, qx, qy, qz, qw). The quaternion does not
// need to be unit length, it is normalized first.
func PoseToTransform(vals []float64) (Transform, error) {
	if len(vals) != 7 {
		return Transform{}, errors.Wrapf(ErrInvalidPoseFormat, "need 7 values (tx ty tz qx qy qz qw), got %d", len(vals))
	}
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Transform{}, errors.Wrapf(ErrInvalidPoseFormat, "non finite value in %v", vals)
		}
	}

	q := quat.Number{Real: vals[6], Imag: vals[3], Jmag: vals[4], Kmag: vals[5]}
	n := quat.Abs(q)
	if n == 0 {
		return Transform{}, errors.Wrap(ErrInvalidPoseFormat, "zero quaternion")
	}

	return transformFromQuat(r3.Vector{X: vals[0], Y: vals[1], Z: vals[2]}, quat.Scale(1/n, q)), nil
}

func transformFromQuat(t r3.Vector, q quat.Number) Transform {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return Transform{
		{1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w), t.X},
		{2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w), t.Y},
		{2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y), t.Z},
		{0, 0, 0, 1},
	}
}

// TransformFromMatrix checks that m is a 4x4 rigid transform.
func TransformFromMatrix(m mat.Matrix) (Transform, error) {
	const tol = 1e-6

	r, c := m.Dims()
	if r != 4 || c != 4 {
		return Transform{}, errors.Wrapf(ErrInvalidPoseFormat, "need a 4x4 matrix, got %dx%d", r, c)
	}

	var t Transform
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			t[i][j] = m.At(i, j)
		}
	}

	if t[3] != [4]float64{0, 0, 0, 1} {
		return Transform{}, errors.Wrapf(ErrInvalidPoseFormat, "bottom row must be 0 0 0 1, got %v", t[3])
	}

	rot := t.Rotation()
	var rrt mat.Dense
	rrt.Mul(rot, rot.T())
	if !mat.EqualApprox(&rrt, eye3(), tol) {
		return Transform{}, errors.Wrap(ErrInvalidPoseFormat, "rotation block is not orthonormal")
	}
	if math.Abs(mat.Det(rot)-1) > tol {
		return Transform{}, errors.Wrapf(ErrInvalidPoseFormat, "rotation determinant is %v", mat.Det(rot))
	}

	return t, nil
}

func eye3() *mat.Dense {
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
}

// TransformFromPose adapts an rdk pose, whose translation is in millimeters.
func TransformFromPose(p spatialmath.Pose) Transform {
	q := p.Orientation().Quaternion()
	if n := quat.Abs(q); n > 0 {
		q = quat.Scale(1/n, q)
	}
	return transformFromQuat(p.Point().Mul(1/1000.0), q)
}

// Pose is the rdk form of t, translation in millimeters.
func (t Transform) Pose() spatialmath.Pose {
	q := t.quaternion()
	return spatialmath.NewPose(t.Translation().Mul(1000), (*spatialmath.Quaternion)(&q))
}

// quaternion extracts the unit rotation, branching on the largest diagonal term.
func (t Transform) quaternion() quat.Number {
	m00, m11, m22 := t[0][0], t[1][1], t[2][2]
	var q quat.Number
	switch {
	case m00+m11+m22 > 0:
		s := 2 * math.Sqrt(1+m00+m11+m22)
		q = quat.Number{
			Real: s / 4,
			Imag: (t[2][1] - t[1][2]) / s,
			Jmag: (t[0][2] - t[2][0]) / s,
			Kmag: (t[1][0] - t[0][1]) / s,
		}
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		q = quat.Number{
			Real: (t[2][1] - t[1][2]) / s,
			Imag: s / 4,
			Jmag: (t[0][1] + t[1][0]) / s,
			Kmag: (t[0][2] + t[2][0]) / s,
		}
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		q = quat.Number{
			Real: (t[0][2] - t[2][0]) / s,
			Imag: (t[0][1] + t[1][0]) / s,
			Jmag: s / 4,
			Kmag: (t[1][2] + t[2][1]) / s,
		}
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		q = quat.Number{
			Real: (t[1][0] - t[0][1]) / s,
			Imag: (t[0][2] + t[2][0]) / s,
			Jmag: (t[1][2] + t[2][1]) / s,
			Kmag: s / 4,
		}
	}
	return quat.Scale(1/quat.Abs(q), q)
}

func (t Transform) Apply(p r3.Vector) r3.Vector {
	return r3.Vector{
		X: t[0][0]*p.X + t[0][1]*p.Y + t[0][2]*p.Z + t[0][3],
		Y: t[1][0]*p.X + t[1][1]*p.Y + t[1][2]*p.Z + t[1][3],
		Z: t[2][0]*p.X + t[2][1]*p.Y + t[2][2]*p.Z + t[2][3],
	}
}

func (t Transform) Translation() r3.Vector {
	return r3.Vector{X: t[0][3], Y: t[1][3], Z: t[2][3]}
}

func (t Transform) Rotation() *mat.Dense {
	m := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		m.SetRow(i, t[i][:3])
	}
	return m
}

func (t Transform) Matrix() *mat.Dense {
	m := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		m.SetRow(i, t[i][:])
	}
	return m
}
