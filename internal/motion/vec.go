package motion

import "math"

// Epsilon is the distance under which two vectors count as equal.
const Epsilon = 1e-5

var (
	Up      = Vec3{Y: 1}
	Forward = Vec3{Z: 1}
)

type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

func (v Vec3) Scale(factor float64) Vec3 {
	return Vec3{X: v.X * factor, Y: v.Y * factor, Z: v.Z * factor}
}

func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

func (v Vec3) Len() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalized returns v scaled to unit length, or the zero vector when v has
// no length.
func (v Vec3) Normalized() Vec3 {
	length := v.Len()
	if length == 0 {
		return Vec3{}
	}
	return v.Scale(1 / length)
}

func (v Vec3) IsZero() bool {
	return v == Vec3{}
}

// Equal reports whether v and other are closer than Epsilon.
func (v Vec3) Equal(other Vec3) bool {
	return v.Sub(other).Len() < Epsilon
}

// Angle returns the unsigned angle between v and other in degrees.
func Angle(v, other Vec3) float64 {
	return radToDeg(math.Atan2(v.Cross(other).Len(), v.Dot(other)))
}

// RotateY rotates v around the vertical axis by degrees, clockwise when seen
// from above.
func RotateY(v Vec3, degrees float64) Vec3 {
	sin, cos := math.Sincos(degToRad(degrees))
	return Vec3{
		X: v.X*cos + v.Z*sin,
		Y: v.Y,
		Z: -v.X*sin + v.Z*cos,
	}
}

// RotateTowards turns the direction from toward to by at most maxDegrees and
// returns a unit vector.
func RotateTowards(from, to Vec3, maxDegrees float64) Vec3 {
	from, to = from.Normalized(), to.Normalized()
	theta := Angle(from, to)
	if theta <= maxDegrees || theta == 0 {
		return to
	}
	radians := degToRad(theta)
	sin := math.Sin(radians)
	if sin < 1e-9 {
		// Opposite directions have no unique plane; turn around Up.
		return RotateY(from, maxDegrees).Normalized()
	}
	step := maxDegrees / theta
	return from.Scale(math.Sin((1-step)*radians) / sin).
		Add(to.Scale(math.Sin(step*radians) / sin)).
		Normalized()
}

// Lerp interpolates between from and to; rate is not clamped.
func Lerp(from, to Vec3, rate float64) Vec3 {
	return from.Add(to.Sub(from).Scale(rate))
}

func lerp(from, to, rate float64) float64 {
	return from + (to-from)*rate
}

func clamp01(value float64) float64 {
	return math.Min(math.Max(value, 0), 1)
}

// repeat01 wraps value into [0, 1).
func repeat01(value float64) float64 {
	wrapped := value - math.Floor(value)
	if wrapped >= 1 {
		return 0
	}
	return wrapped
}

func degToRad(degrees float64) float64 { return degrees * math.Pi / 180 }

func radToDeg(radians float64) float64 { return radians * 180 / math.Pi }

// Ray is a position with a facing direction.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

func (r Ray) Equal(other Ray) bool {
	return r.Origin.Equal(other.Origin) && r.Direction.Equal(other.Direction)
}
