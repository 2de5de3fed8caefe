package systems

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// clampFloat clamps a value between min and max.
func clampFloat(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// signedUnit returns a uniform draw in [-0.5, 0.5) scaled by amount.
func signedUnit(rng *rand.Rand, amount float64) float64 {
	return (rng.Float64() - 0.5) * amount
}

// heading returns the angle of a vector in radians.
func heading(v r2.Vec) float64 {
	return math.Atan2(v.Y, v.X)
}

// fromAngle returns the unit vector for an angle.
func fromAngle(a float64) r2.Vec {
	return r2.Vec{X: math.Cos(a), Y: math.Sin(a)}
}

// randomHeading returns a unit vector with a uniformly random angle.
func randomHeading(rng *rand.Rand) r2.Vec {
	return fromAngle(rng.Float64() * 2 * math.Pi)
}

// limit caps the magnitude of v at max.
func limit(v r2.Vec, max float64) r2.Vec {
	m := r2.Norm(v)
	if m > max && m > 0 {
		return r2.Scale(max/m, v)
	}
	return v
}

// setMag rescales v to magnitude m. Zero vectors are returned unchanged.
func setMag(v r2.Vec, m float64) r2.Vec {
	n := r2.Norm(v)
	if n == 0 {
		return v
	}
	return r2.Scale(m/n, v)
}

// distance returns the Euclidean distance between two points.
func distance(a, b r2.Vec) float64 {
	return r2.Norm(r2.Sub(a, b))
}
