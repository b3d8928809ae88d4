// Package geom holds the value types used by shapes and drag handlers:
// points, rects, affine matrices and the shape transform.
package geom

import "math"

// Transform positions a shape on the canvas. A point p in shape space maps to
// canvas space as Translation + Rotate(Rotation) * (Scale * p): scale first,
// then rotate, then translate. Transform is a value; every method returns a
// new one.
type Transform struct {
	Translation Point   `json:"translation"`
	Rotation    float64 `json:"rotation"` // radians, never normalised
	Scale       float64 `json:"scale"`
}

// IdentityTransform returns the transform that leaves points unchanged.
func IdentityTransform() Transform {
	return Transform{Scale: 1}
}

// At returns an unrotated, unscaled transform placed at p.
func At(p Point) Transform {
	return Transform{Translation: p, Scale: 1}
}

// Translated returns t with its translation offset by v.
func (t Transform) Translated(v Point) Transform {
	t.Translation = t.Translation.Add(v)
	return t
}

// Scaled returns t with its scale multiplied by factor. Non-positive factors
// are not rejected.
func (t Transform) Scaled(factor float64) Transform {
	t.Scale *= factor
	return t
}

// Rotated returns t with radians added to its rotation.
func (t Transform) Rotated(radians float64) Transform {
	t.Rotation += radians
	return t
}

// Matrix composes T(translation) * R(rotation) * S(scale).
func (t Transform) Matrix() Matrix2D {
	cos := math.Cos(t.Rotation)
	sin := math.Sin(t.Rotation)
	return Matrix2D{
		cos * t.Scale,
		sin * t.Scale,
		-sin * t.Scale,
		cos * t.Scale,
		t.Translation.X,
		t.Translation.Y,
	}
}

// Apply maps a shape-space point into canvas space.
func (t Transform) Apply(p Point) Point {
	return t.Matrix().TransformPoint(p)
}

// IsFinite reports whether every component is a finite number.
func (t Transform) IsFinite() bool {
	for _, v := range [...]float64{t.Translation.X, t.Translation.Y, t.Rotation, t.Scale} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// ApproxEqual compares two transforms component-wise within eps.
func (t Transform) ApproxEqual(o Transform, eps float64) bool {
	return math.Abs(t.Translation.X-o.Translation.X) <= eps &&
		math.Abs(t.Translation.Y-o.Translation.Y) <= eps &&
		math.Abs(t.Rotation-o.Rotation) <= eps &&
		math.Abs(t.Scale-o.Scale) <= eps
}
