package octree

import (
	"fmt"
	"math"
)

type Vector3 struct {
	X, Y, Z float64
}

func Vec3(x, y, z float64) Vector3 {
	return Vector3{x, y, z}
}

func (v Vector3) String() string {
	return fmt.Sprintf("%f,%f,%f", v.X, v.Y, v.Z)
}

func (v Vector3) Equal(other Vector3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

func (v Vector3) Add(other Vector3) Vector3 {
	return Vector3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

func (v Vector3) Sub(other Vector3) Vector3 {
	return Vector3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

func (v Vector3) Neg() Vector3 {
	return Vector3{-v.X, -v.Y, -v.Z}
}

func (v Vector3) Mult(s float64) Vector3 {
	return Vector3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vector3) Dot(other Vector3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

func (v Vector3) Cross(other Vector3) Vector3 {
	return Vector3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

func (v Vector3) LengthSq() float64 {
	return v.Dot(v)
}

func (v Vector3) Length() float64 {
	return math.Sqrt(v.Dot(v))
}

func (v Vector3) Normalize() Vector3 {
	length := v.Length()
	if length == 0 {
		return v
	}
	return v.Mult(1.0 / length)
}

func (v Vector3) Abs() Vector3 {
	return Vector3{math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)}
}

// Min returns the component-wise minimum.
func (v Vector3) Min(other Vector3) Vector3 {
	return Vector3{math.Min(v.X, other.X), math.Min(v.Y, other.Y), math.Min(v.Z, other.Z)}
}

// Max returns the component-wise maximum.
func (v Vector3) Max(other Vector3) Vector3 {
	return Vector3{math.Max(v.X, other.X), math.Max(v.Y, other.Y), math.Max(v.Z, other.Z)}
}

// Axis returns the component for axis 0 (X), 1 (Y) or 2 (Z).
func (v Vector3) Axis(i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func (v Vector3) Lerp(other Vector3, t float64) Vector3 {
	return v.Mult(1.0 - t).Add(other.Mult(t))
}

func (v Vector3) Distance(other Vector3) float64 {
	return v.Sub(other).Length()
}

func (v Vector3) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsNaN(v.Z) &&
		!math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0) && !math.IsInf(v.Z, 0)
}

func Clamp(f, min, max float64) float64 {
	return math.Min(math.Max(f, min), max)
}
