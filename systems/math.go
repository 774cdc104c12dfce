package systems

import (
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

// clamp01 clamps a value to the [0, 1] range.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// normalize returns v scaled to unit length, or the zero vector.
// r2.Unit is not used because it yields NaN for the zero vector.
func normalize(v r2.Vec) r2.Vec {
	n := r2.Norm(v)
	if n == 0 {
		return r2.Vec{}
	}
	return r2.Scale(1/n, v)
}

// lerp interpolates between a and b by t in [0,1].
func lerp(a, b r2.Vec, t float64) r2.Vec {
	return r2.Add(a, r2.Scale(t, r2.Sub(b, a)))
}

// clampSpeed limits the magnitude of v to maxSpeed.
func clampSpeed(v r2.Vec, maxSpeed float64) r2.Vec {
	s := r2.Norm(v)
	if s > maxSpeed {
		return r2.Scale(maxSpeed/s, v)
	}
	return v
}
