package orbital

import "math"

// Vec3 is an immutable three component vector whose components share one
// physical unit. Same-unit arithmetic stays on the methods; products which
// mix units (dot, cross) go through the free functions below and drop to
// raw float64 components.
type Vec3[T ~float64] struct {
	X, Y, Z T
}

// Add returns v + o.
func (v Vec3[T]) Add(o Vec3[T]) Vec3[T] {
	return Vec3[T]{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3[T]) Sub(o Vec3[T]) Vec3[T] {
	return Vec3[T]{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v scaled by the dimensionless factor k.
func (v Vec3[T]) Scale(k float64) Vec3[T] {
	return Vec3[T]{v.X * T(k), v.Y * T(k), v.Z * T(k)}
}

// Norm returns the Euclidean norm of v.
func (v Vec3[T]) Norm() T {
	return T(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z)))
}

// Unit returns the dimensionless direction of v, or the zero vector if v
// is (numerically) the zero vector.
func (v Vec3[T]) Unit() Vec3[float64] {
	n := float64(v.Norm())
	if n < 1e-12 {
		return Vec3[float64]{}
	}
	return Vec3[float64]{float64(v.X) / n, float64(v.Y) / n, float64(v.Z) / n}
}

// Slice returns the components as a freshly allocated []float64, the
// currency of the mat64 based rotation helpers.
func (v Vec3[T]) Slice() []float64 {
	return []float64{float64(v.X), float64(v.Y), float64(v.Z)}
}

// Array returns the components as a [3]float64 for the binding surface.
func (v Vec3[T]) Array() [3]float64 {
	return [3]float64{float64(v.X), float64(v.Y), float64(v.Z)}
}

// Vec3FromSlice builds a Vec3 from the first three elements of s.
func Vec3FromSlice[T ~float64](s []float64) Vec3[T] {
	return Vec3[T]{T(s[0]), T(s[1]), T(s[2])}
}

// Vec3FromArray builds a Vec3 from a fixed array.
func Vec3FromArray[T ~float64](s [3]float64) Vec3[T] {
	return Vec3[T]{T(s[0]), T(s[1]), T(s[2])}
}

// Dot returns the inner product of two vectors of possibly different
// units. The result unit is the product of both and is left untyped.
func Dot[A, B ~float64](u Vec3[A], v Vec3[B]) float64 {
	return float64(u.X)*float64(v.X) + float64(u.Y)*float64(v.Y) + float64(u.Z)*float64(v.Z)
}

// Cross returns the cross product of two vectors of possibly different
// units, untyped for the same reason as Dot.
func Cross[A, B ~float64](u Vec3[A], v Vec3[B]) Vec3[float64] {
	return Vec3[float64]{
		float64(u.Y)*float64(v.Z) - float64(u.Z)*float64(v.Y),
		float64(u.Z)*float64(v.X) - float64(u.X)*float64(v.Z),
		float64(u.X)*float64(v.Y) - float64(u.Y)*float64(v.X),
	}
}
