package effect

import "github.com/fogleman/ease"

// EasingFunc converts linear transition progress in [0,1] into perceptual
// progress in [0,1]. Every generator applies one before computing pixel
// parameters so acceleration feels consistent across effect types.
type EasingFunc func(t float64) float64

// Smoothstep is the default curve: t^2 * (3 - 2t). Monotonic, fixed at both
// ends, zero first derivative at 0 and 1.
func Smoothstep(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

// EasingByName resolves a config easing name. Unknown names fall back to
// Smoothstep.
func EasingByName(name string) EasingFunc {
	switch name {
	case "linear":
		return ease.Linear
	case "ease-in":
		return ease.InQuad
	case "ease-out":
		return ease.OutQuad
	case "ease-in-out":
		return ease.InOutQuad
	case "smoothstep", "":
		return Smoothstep
	default:
		return Smoothstep
	}
}
