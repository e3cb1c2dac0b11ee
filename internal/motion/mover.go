package motion

import (
	"errors"
	"fmt"
	"math"
	"time"

	"tracked/internal/observable"
)

var (
	ErrZeroDirection = errors.New("standing direction is zero")
	ErrNegativeDelta = errors.New("frame delta is negative")
	ErrInvalidParams = errors.New("mover params must be positive")
)

// MoverParams tune a mover. Speeds are per second, angles in degrees.
type MoverParams struct {
	MoveSpeed      float64
	RotateSpeed    float64
	AccelerateTime float64
	StopAngle      float64
}

func (p MoverParams) validate() error {
	if p.MoveSpeed <= 0 || p.RotateSpeed <= 0 || p.AccelerateTime <= 0 || p.StopAngle < 0 {
		return fmt.Errorf("%w: %+v", ErrInvalidParams, p)
	}
	return nil
}

func (p MoverParams) acceleration() float64 {
	return p.MoveSpeed / p.AccelerateTime
}

// Mover walks a unit toward its standing ray: it speeds up, turns toward the
// standing point, brakes in time to stop on it and finally turns to face the
// standing direction.
type Mover struct {
	params   MoverParams
	position Vec3
	forward  Vec3
	speed    float64

	standing    *observable.Value[*Mover, Ray]
	setStanding *observable.Control[Ray]
}

// NewMover places a mover rigidly on start.
func NewMover(start Ray, params MoverParams) (*Mover, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	if start.Direction.IsZero() {
		return nil, ErrZeroDirection
	}
	start.Direction = start.Direction.Normalized()
	mover := &Mover{
		params:   params,
		position: start.Origin,
		forward:  start.Direction,
	}
	var err error
	mover.standing, mover.setStanding, err = observable.NewEquatable(mover, start)
	if err != nil {
		return nil, err
	}
	return mover, nil
}

// Standing is where the mover is heading and which way it will face there.
func (m *Mover) Standing() *observable.Value[*Mover, Ray] { return m.standing }

// Position is the mover's current position, which trails Standing while
// moving.
func (m *Mover) Position() Vec3 { return m.position }

func (m *Mover) Forward() Vec3 { return m.forward }

func (m *Mover) Speed() float64 { return m.speed }

// Moving is the current velocity.
func (m *Mover) Moving() Vec3 { return m.forward.Scale(m.speed) }

// Stopped reports whether the mover rests on its standing ray.
func (m *Mover) Stopped() bool {
	return m.speed == 0 && m.position.Equal(m.standing.Get().Origin) && m.forward.Equal(m.standing.Get().Direction)
}

func (m *Mover) Params() MoverParams { return m.params }

// SetParams retunes the mover. The current speed is capped to the new move
// speed.
func (m *Mover) SetParams(params MoverParams) error {
	if err := params.validate(); err != nil {
		return err
	}
	m.params = params
	m.speed = math.Min(m.speed, params.MoveSpeed)
	return nil
}

// SetStanding changes the target ray. The direction is normalized; a zero
// direction is rejected.
func (m *Mover) SetStanding(standing Ray) error {
	if standing.Direction.IsZero() {
		return ErrZeroDirection
	}
	standing.Direction = standing.Direction.Normalized()
	m.setStanding.Set(standing)
	return nil
}

// MoveTo targets position, facing along the way there. Targeting the current
// position keeps the current facing.
func (m *Mover) MoveTo(position Vec3) error {
	if position.Equal(m.standing.Get().Origin) {
		return nil
	}
	direction := position.Sub(m.position)
	if direction.Equal(Vec3{}) {
		direction = m.forward
	}
	return m.SetStanding(Ray{Origin: position, Direction: direction})
}

// Face keeps the standing position and changes the final facing.
func (m *Mover) Face(direction Vec3) error {
	return m.SetStanding(Ray{Origin: m.standing.Get().Origin, Direction: direction})
}

// SetStandingRigid teleports the mover onto standing and stops it.
func (m *Mover) SetStandingRigid(standing Ray) error {
	if err := m.SetStanding(standing); err != nil {
		return err
	}
	m.position = m.standing.Get().Origin
	m.forward = m.standing.Get().Direction
	m.speed = 0
	return nil
}

// DropPosition retargets the mover to where it can stop from its current
// speed, facing its current direction.
func (m *Mover) DropPosition() {
	stop := m.position.Add(m.forward.Scale(m.stopDistance()))
	_ = m.SetStanding(Ray{Origin: stop, Direction: m.forward})
}

func (m *Mover) stopDistance() float64 {
	stopTime := m.speed / m.params.acceleration()
	return m.speed * stopTime / 2
}

// Update advances the mover by dt.
func (m *Mover) Update(dt time.Duration) error {
	if dt < 0 {
		return fmt.Errorf("%w: %s", ErrNegativeDelta, dt)
	}
	if m.Stopped() {
		return nil
	}
	seconds := dt.Seconds()
	standing := m.standing.Get()

	var direction Vec3
	if m.position.Equal(standing.Origin) {
		direction = standing.Direction
	} else {
		direction = standing.Origin.Sub(m.position)
		distance := direction.Len()
		m.speed = m.nextSpeed(Angle(m.forward, direction), distance, seconds)
		m.position = m.position.Add(m.forward.Scale(math.Min(m.speed*seconds, distance)))
	}
	m.forward = RotateTowards(m.forward, direction, m.params.RotateSpeed*seconds)

	if m.position.Equal(standing.Origin) {
		m.position = standing.Origin
	}
	if m.forward.Equal(standing.Direction) {
		m.forward = standing.Direction
	}
	if m.position == standing.Origin && m.forward == standing.Direction {
		m.speed = 0
	}
	return nil
}

// nextSpeed brakes while facing too far away from the target, brakes to land
// on it once inside the stopping distance, and otherwise accelerates up to
// MoveSpeed. The tolerated angle shrinks near the target.
func (m *Mover) nextSpeed(angle, distance, seconds float64) float64 {
	acceleration := m.params.acceleration()
	accelerationDistance := m.params.MoveSpeed * m.params.AccelerateTime / 2
	stopAngle := m.params.StopAngle
	if distance <= accelerationDistance {
		stopAngle = m.params.StopAngle * distance / accelerationDistance
	}
	frameAcceleration := acceleration * seconds
	stopTime := m.speed / acceleration
	switch {
	case angle > stopAngle:
		return math.Max(m.speed-frameAcceleration, 0)
	case distance < m.speed*stopTime/2:
		return distance * 2 / stopTime
	default:
		return math.Min(m.speed+frameAcceleration, m.params.MoveSpeed)
	}
}

// Close disposes Standing.
func (m *Mover) Close() error {
	return m.setStanding.Close()
}
