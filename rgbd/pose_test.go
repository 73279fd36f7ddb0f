package rgbd

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/rdk/spatialmath"
)

func checkRigid(t *testing.T, tf Transform) {
	t.Helper()
	test.That(t, tf[3], test.ShouldResemble, [4]float64{0, 0, 0, 1})

	rot := tf.Rotation()
	var rrt mat.Dense
	rrt.Mul(rot, rot.T())
	test.That(t, mat.EqualApprox(&rrt, eye3(), 1e-9), test.ShouldBeTrue)
	test.That(t, mat.Det(rot), test.ShouldAlmostEqual, 1, 1e-9)
}

func TestPoseToTransformIdentity(t *testing.T) {
	tf, err := PoseToTransform([]float64{1, 2, 3, 0, 0, 0, 1})
	test.That(t, err, test.ShouldBeNil)
	checkRigid(t, tf)

	test.That(t, tf.Translation(), test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 3})
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			test.That(t, tf[i][j], test.ShouldEqual, IdentityTransform()[i][j])
		}
	}

	p := tf.Apply(r3.Vector{X: 1, Y: 1, Z: 1})
	test.That(t, p, test.ShouldResemble, r3.Vector{X: 2, Y: 3, Z: 4})
}

func TestPoseToTransformRotation(t *testing.T) {
	// 90 degrees about z
	s := math.Sqrt(.5)
	tf, err := PoseToTransform([]float64{0, 0, 0, 0, 0, s, s})
	test.That(t, err, test.ShouldBeNil)
	checkRigid(t, tf)

	p := tf.Apply(r3.Vector{X: 1})
	test.That(t, p.X, test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, p.Y, test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, p.Z, test.ShouldAlmostEqual, 0, 1e-9)

	// not unit length, same rotation
	tf2, err := PoseToTransform([]float64{0, 0, 0, 0, 0, 2, 2})
	test.That(t, err, test.ShouldBeNil)
	checkRigid(t, tf2)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			test.That(t, tf2[i][j], test.ShouldAlmostEqual, tf[i][j], 1e-12)
		}
	}

	tf3, err := PoseToTransform([]float64{.3, -2, 5, .1, -.7, .2, .4})
	test.That(t, err, test.ShouldBeNil)
	checkRigid(t, tf3)
}

func TestPoseToTransformBad(t *testing.T) {
	for _, vals := range [][]float64{
		nil,
		{0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0, 1, 0},
		{0, 0, 0, 0, 0, 0, 0},
		{math.NaN(), 0, 0, 0, 0, 0, 1},
		{0, 0, 0, 0, 0, math.Inf(1), 1},
	} {
		_, err := PoseToTransform(vals)
		test.That(t, errors.Is(err, ErrInvalidPoseFormat), test.ShouldBeTrue)
	}
}

func TestTransformFromMatrix(t *testing.T) {
	tf, err := PoseToTransform([]float64{1, 2, 3, .1, .2, .3, .9})
	test.That(t, err, test.ShouldBeNil)

	back, err := TransformFromMatrix(tf.Matrix())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, back, test.ShouldResemble, tf)

	_, err = TransformFromMatrix(mat.NewDense(3, 3, nil))
	test.That(t, errors.Is(err, ErrInvalidPoseFormat), test.ShouldBeTrue)

	scaled := tf.Matrix()
	scaled.Set(0, 0, 2)
	_, err = TransformFromMatrix(scaled)
	test.That(t, errors.Is(err, ErrInvalidPoseFormat), test.ShouldBeTrue)

	badRow := tf.Matrix()
	badRow.Set(3, 0, .5)
	_, err = TransformFromMatrix(badRow)
	test.That(t, errors.Is(err, ErrInvalidPoseFormat), test.ShouldBeTrue)

	mirror := IdentityTransform().Matrix()
	mirror.Set(2, 2, -1)
	_, err = TransformFromMatrix(mirror)
	test.That(t, errors.Is(err, ErrInvalidPoseFormat), test.ShouldBeTrue)
}

func TestTransformQuaternionBranches(t *testing.T) {
	s := math.Sqrt(.5)
	for _, vals := range [][]float64{
		{0, 0, 0, 0, 0, 0, 1},
		{0, 0, 0, 1, 0, 0, 0},
		{0, 0, 0, 0, 1, 0, 0},
		{0, 0, 0, 0, 0, 1, 0},
		{0, 0, 0, s, 0, s, 0},
		{0, 0, 0, .1, -.7, .2, .4},
	} {
		tf, err := PoseToTransform(vals)
		test.That(t, err, test.ShouldBeNil)

		back := transformFromQuat(r3.Vector{}, tf.quaternion())
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				test.That(t, back[i][j], test.ShouldAlmostEqual, tf[i][j], 1e-9)
			}
		}
	}
}

func TestTransformPoseRoundTrip(t *testing.T) {
	tf, err := PoseToTransform([]float64{.1, .2, .3, .2, .1, -.3, .9})
	test.That(t, err, test.ShouldBeNil)

	p := tf.Pose()
	test.That(t, p.Point().X, test.ShouldAlmostEqual, 100, 1e-9)
	test.That(t, p.Point().Z, test.ShouldAlmostEqual, 300, 1e-9)

	back := TransformFromPose(p)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			test.That(t, back[i][j], test.ShouldAlmostEqual, tf[i][j], 1e-9)
		}
	}

	rdkPose := spatialmath.NewPoseFromPoint(r3.Vector{X: 1000, Y: -500})
	moved := TransformFromPose(rdkPose).Apply(r3.Vector{Z: 1})
	test.That(t, moved.X, test.ShouldAlmostEqual, 1, 1e-12)
	test.That(t, moved.Y, test.ShouldAlmostEqual, -.5, 1e-12)
	test.That(t, moved.Z, test.ShouldAlmostEqual, 1, 1e-12)
}
