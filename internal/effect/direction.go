package effect

import (
	"fmt"
	"math/rand/v2"
)

// Direction selects the edge a sliding effect moves toward or from. The zero
// value means "pick one at random when the sequence is built", keeping a
// single transition internally consistent.
type Direction string

const (
	DirectionRandom Direction = ""
	DirectionLeft   Direction = "left"
	DirectionRight  Direction = "right"
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
)

// resolve returns d, or a random pick from allowed when d is DirectionRandom.
func (d Direction) resolve(rng *rand.Rand, allowed []Direction) (Direction, error) {
	if d == DirectionRandom {
		return allowed[rng.IntN(len(allowed))], nil
	}
	for _, a := range allowed {
		if d == a {
			return d, nil
		}
	}
	return "", fmt.Errorf("effect: invalid direction %q", d)
}

var slideDirections = []Direction{DirectionLeft, DirectionRight, DirectionUp, DirectionDown}
