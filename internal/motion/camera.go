package motion

import (
	"math"
	"time"

	"tracked/internal/event"
	"tracked/internal/observable"
)

const defaultPitch = -15

// Orientation places the camera around its target. X is the turn around the
// target in [0, 1); Y picks the height along the offset curve in [0, 1].
type Orientation struct {
	X, Y float64
}

func (o Orientation) normalized() Orientation {
	return Orientation{X: repeat01(o.X), Y: clamp01(o.Y)}
}

// CameraParams tune a camera. Offsets and Pitches are sampled along
// Orientation.Y; a single entry is used as is.
type CameraParams struct {
	PivotHeight         float64
	RotateSensitivity   float64
	ElevateSensitivity  float64
	StartHeight         float64
	ExtrapolateDistance float64
	ExtrapolateMaxSpeed float64
	Offsets             []Vec3
	Pitches             []float64
}

// DefaultCameraParams returns a camera sitting behind and slightly above the
// pivot.
func DefaultCameraParams() CameraParams {
	return CameraParams{
		PivotHeight:         1.2,
		RotateSensitivity:   1,
		ElevateSensitivity:  1,
		StartHeight:         0.5,
		ExtrapolateDistance: 2,
		ExtrapolateMaxSpeed: 8,
		Offsets:             []Vec3{{Y: 0.5, Z: -2}},
		Pitches:             []float64{-10},
	}
}

// Target is anything a camera can follow.
type Target interface {
	Position() Vec3
}

// Camera orbits a target, driven by Input drags. The pivot leads the target
// in the direction it moves.
type Camera struct {
	params CameraParams
	input  *Input
	target Target

	orientation    *observable.Value[*Camera, Orientation]
	setOrientation *observable.Control[Orientation]
	onRotate       event.Listener1[*Input, float64]
	onElevate      event.Listener1[*Input, float64]

	lastTarget Vec3
	position   Vec3
	yaw        float64
	pitch      float64
}

// NewCamera follows target and subscribes to input. Close releases both.
func NewCamera(input *Input, target Target, params CameraParams) (*Camera, error) {
	camera := &Camera{params: params, input: input}
	var err error
	camera.orientation, camera.setOrientation, err = observable.NewComparable(camera,
		Orientation{Y: params.StartHeight}.normalized())
	if err != nil {
		return nil, err
	}
	camera.onRotate = event.Func1(func(_ *Input, delta float64) {
		current := camera.orientation.Get()
		camera.SetOrientation(Orientation{X: current.X - delta*camera.params.RotateSensitivity, Y: current.Y})
	})
	camera.onElevate = event.Func1(func(_ *Input, delta float64) {
		current := camera.orientation.Get()
		camera.SetOrientation(Orientation{X: current.X, Y: current.Y + delta*camera.params.ElevateSensitivity})
	})
	if input != nil {
		input.Rotate().Subscribe(camera.onRotate)
		input.Elevate().Subscribe(camera.onElevate)
	}
	camera.SetTarget(target)
	return camera, nil
}

func (c *Camera) Orientation() *observable.Value[*Camera, Orientation] { return c.orientation }

// SetOrientation wraps X and clamps Y before publishing.
func (c *Camera) SetOrientation(orientation Orientation) {
	c.setOrientation.Set(orientation.normalized())
}

// SetParams retunes the camera. Orientation is kept.
func (c *Camera) SetParams(params CameraParams) {
	c.params = params
}

// SetTarget switches targets without a jump in the pivot lead. A nil target
// freezes the camera.
func (c *Camera) SetTarget(target Target) {
	c.target = target
	if target != nil {
		c.lastTarget = target.Position()
	}
}

func (c *Camera) Position() Vec3 { return c.position }

// Yaw is the turn around the vertical axis in degrees.
func (c *Camera) Yaw() float64 { return c.yaw }

// Pitch is the tilt in degrees; negative looks down.
func (c *Camera) Pitch() float64 { return c.pitch }

// Update moves the camera for a frame of length dt.
func (c *Camera) Update(dt time.Duration) {
	if c.target == nil {
		return
	}
	targetPosition := c.target.Position()
	var lead Vec3
	if seconds := dt.Seconds(); seconds > 0 {
		velocity := targetPosition.Sub(c.lastTarget).Scale(1 / seconds)
		velocity.Y = 0
		if c.params.ExtrapolateMaxSpeed > 0 {
			distance := c.params.ExtrapolateDistance * math.Min(1, velocity.Len()/c.params.ExtrapolateMaxSpeed)
			lead = velocity.Normalized().Scale(distance)
		}
	}
	c.lastTarget = targetPosition

	pivot := targetPosition.Add(Vec3{Y: c.params.PivotHeight}).Add(lead)
	orientation := c.orientation.Get()
	c.yaw = 360 * orientation.X
	c.position = pivot.Add(RotateY(c.offset(orientation.Y), c.yaw))
	c.pitch = c.pitchAt(orientation.Y)
}

func (c *Camera) offset(rate float64) Vec3 {
	switch len(c.params.Offsets) {
	case 0:
		return Vec3{}
	case 1:
		return c.params.Offsets[0]
	}
	from, to, step := sampleRate(len(c.params.Offsets), rate)
	return Lerp(c.params.Offsets[from], c.params.Offsets[to], step)
}

func (c *Camera) pitchAt(rate float64) float64 {
	switch len(c.params.Pitches) {
	case 0:
		return defaultPitch
	case 1:
		return c.params.Pitches[0]
	}
	from, to, step := sampleRate(len(c.params.Pitches), rate)
	return lerp(c.params.Pitches[from], c.params.Pitches[to], step)
}

// sampleRate maps rate in [0, 1] onto a list of count points and returns the
// neighbouring indexes with the position between them.
func sampleRate(count int, rate float64) (from, to int, step float64) {
	rate = clamp01(rate)
	switch rate {
	case 0:
		return 0, 1, 0
	case 1:
		return count - 2, count - 1, 1
	}
	scaled := rate * float64(count-1)
	from = int(math.Floor(scaled))
	to = int(math.Ceil(scaled))
	return from, to, scaled - float64(from)
}

// Close unsubscribes from input and disposes Orientation.
func (c *Camera) Close() error {
	if c.input != nil {
		c.input.Rotate().Unsubscribe(c.onRotate)
		c.input.Elevate().Unsubscribe(c.onElevate)
	}
	return c.setOrientation.Close()
}
