package motion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracked/internal/observable"
)

func testParams() MoverParams {
	return MoverParams{MoveSpeed: 4, RotateSpeed: 360, AccelerateTime: 0.5, StopAngle: 45}
}

func newTestMover(t *testing.T) *Mover {
	t.Helper()
	mover, err := NewMover(Ray{Direction: Forward}, testParams())
	require.NoError(t, err)
	t.Cleanup(func() { _ = mover.Close() })
	return mover
}

func runUntilStopped(t *testing.T, mover *Mover, dt time.Duration, limit int) int {
	t.Helper()
	for frame := 1; frame <= limit; frame++ {
		require.NoError(t, mover.Update(dt))
		if mover.Stopped() {
			return frame
		}
	}
	t.Fatalf("mover did not stop within %d frames: position %+v speed %v", limit, mover.Position(), mover.Speed())
	return 0
}

func TestNewMoverValidates(t *testing.T) {
	_, err := NewMover(Ray{}, testParams())
	assert.ErrorIs(t, err, ErrZeroDirection)

	params := testParams()
	params.AccelerateTime = 0
	_, err = NewMover(Ray{Direction: Forward}, params)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestMoverAcceleratesToMoveSpeed(t *testing.T) {
	mover := newTestMover(t)
	require.NoError(t, mover.MoveTo(Vec3{Z: 100}))

	require.NoError(t, mover.Update(100*time.Millisecond))
	assert.InDelta(t, 0.8, mover.Speed(), 1e-9)
	assertVec(t, Vec3{Z: 0.08}, mover.Position())
	assertVec(t, Vec3{Z: 0.8}, mover.Moving())

	for range 10 {
		require.NoError(t, mover.Update(100*time.Millisecond))
	}
	assert.Equal(t, 4.0, mover.Speed())
}

func TestMoverStopsOnStandingPoint(t *testing.T) {
	mover := newTestMover(t)
	require.NoError(t, mover.MoveTo(Vec3{Z: 10}))

	runUntilStopped(t, mover, 100*time.Millisecond, 200)
	assert.Equal(t, Vec3{Z: 10}, mover.Position())
	assert.Zero(t, mover.Speed())
}

func TestMoverTurnsToStandingPoint(t *testing.T) {
	mover := newTestMover(t)
	require.NoError(t, mover.MoveTo(Vec3{X: 5}))
	assertVec(t, Vec3{X: 1}, mover.Standing().Get().Direction)

	runUntilStopped(t, mover, 50*time.Millisecond, 400)
	assert.Equal(t, Vec3{X: 5}, mover.Position())
	assertVec(t, Vec3{X: 1}, mover.Forward())
}

func TestMoverTurnsAroundForPointBehind(t *testing.T) {
	mover := newTestMover(t)
	require.NoError(t, mover.MoveTo(Vec3{Z: -5}))

	runUntilStopped(t, mover, 50*time.Millisecond, 400)
	assert.Equal(t, Vec3{Z: -5}, mover.Position())
	assertVec(t, Vec3{Z: -1}, mover.Forward())
}

func TestMoverFaceTurnsInPlace(t *testing.T) {
	mover := newTestMover(t)
	require.NoError(t, mover.Face(Vec3{X: -2}))

	require.NoError(t, mover.Update(250*time.Millisecond))
	assert.InDelta(t, 90, Angle(Forward, mover.Forward()), 1e-6)
	assert.Equal(t, Vec3{}, mover.Position())

	runUntilStopped(t, mover, 250*time.Millisecond, 2)
	assertVec(t, Vec3{X: -1}, mover.Forward())
}

func TestMoverStandingPublishesNormalizedChanges(t *testing.T) {
	mover := newTestMover(t)
	var seen []Ray
	mover.Standing().Subscribe(observable.Func(func(owner *Mover, _, next Ray) {
		assert.Same(t, mover, owner)
		seen = append(seen, next)
	}))

	require.NoError(t, mover.SetStanding(Ray{Origin: Vec3{X: 1}, Direction: Vec3{Z: 3}}))
	require.NoError(t, mover.SetStanding(Ray{Origin: Vec3{X: 1}, Direction: Vec3{Z: 7}}))
	assert.ErrorIs(t, mover.SetStanding(Ray{Origin: Vec3{X: 9}}), ErrZeroDirection)

	require.Len(t, seen, 1)
	assert.Equal(t, Ray{Origin: Vec3{X: 1}, Direction: Forward}, seen[0])
}

func TestMoverDropPositionStopsAtBrakingDistance(t *testing.T) {
	mover := newTestMover(t)
	require.NoError(t, mover.MoveTo(Vec3{Z: 100}))
	for range 20 {
		require.NoError(t, mover.Update(100*time.Millisecond))
	}
	require.Equal(t, 4.0, mover.Speed())
	start := mover.Position()

	mover.DropPosition()
	// 4 m/s braking at 8 m/s² needs one meter.
	assertVec(t, start.Add(Vec3{Z: 1}), mover.Standing().Get().Origin)

	runUntilStopped(t, mover, 50*time.Millisecond, 100)
	assert.Equal(t, mover.Standing().Get().Origin, mover.Position())
}

func TestMoverSetStandingRigid(t *testing.T) {
	mover := newTestMover(t)
	require.NoError(t, mover.MoveTo(Vec3{Z: 10}))
	require.NoError(t, mover.Update(time.Second))

	require.NoError(t, mover.SetStandingRigid(Ray{Origin: Vec3{X: 3}, Direction: Vec3{X: 2}}))
	assert.True(t, mover.Stopped())
	assert.Equal(t, Vec3{X: 3}, mover.Position())
	assert.Equal(t, Vec3{X: 1}, mover.Forward())
}

func TestMoverRejectsNegativeDelta(t *testing.T) {
	mover := newTestMover(t)
	assert.ErrorIs(t, mover.Update(-time.Millisecond), ErrNegativeDelta)
}

func TestMoverSetParamsCapsSpeed(t *testing.T) {
	mover := newTestMover(t)
	require.NoError(t, mover.MoveTo(Vec3{Z: 100}))
	for range 10 {
		require.NoError(t, mover.Update(100*time.Millisecond))
	}
	params := testParams()
	params.MoveSpeed = 1
	require.NoError(t, mover.SetParams(params))
	assert.Equal(t, 1.0, mover.Speed())

	params.RotateSpeed = -1
	assert.ErrorIs(t, mover.SetParams(params), ErrInvalidParams)
	assert.Equal(t, 1.0, mover.Params().MoveSpeed)
}

func TestMoverCloseDisposesStanding(t *testing.T) {
	mover, err := NewMover(Ray{Direction: Forward}, testParams())
	require.NoError(t, err)
	require.NoError(t, mover.Close())
	assert.True(t, mover.Standing().Disposed())
	assert.Nil(t, mover.Standing().Owner())
}
