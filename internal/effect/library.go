package effect

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
)

// Library is an explicit effect registry plus a shuffled rotation that never
// repeats an effect twice in a row. It is constructed and injected rather
// than living as package-global state so tests can pin their own rotation.
type Library struct {
	mu     sync.Mutex
	byName map[string]Generator
	cycle  []Generator
	pos    int
	last   string
	rng    *rand.Rand
}

// NewLibrary returns an empty registry. rng drives rotation shuffles; nil
// falls back to an OS-seeded source.
func NewLibrary(rng *rand.Rand) *Library {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Library{
		byName: make(map[string]Generator),
		rng:    rng,
	}
}

// DefaultLibrary registers the full effect catalogue.
func DefaultLibrary(rng *rand.Rand) *Library {
	l := NewLibrary(rng)
	for _, g := range []Generator{
		AlphaDissolve{},
		PixelDissolve{BlockSize: 10},
		Checkerboard{GridSize: 16},
		Blinds{Strips: 32},
		Scroll{},
		Wipe{},
		SoftWipe{},
		Linear{},
		LumaWipe{},
		BarnDoorOpen{},
		BarnDoorClose{},
		IrisOpen{},
		IrisClose{},
		Shrink{},
		Stretch{},
		ZoomIn{},
		ZoomOut{},
		Ripple{},
		Swirl{},
		SpinZoomFade{},
		CrossZoom{},
		ZoomBlur{},
	} {
		l.Register(g)
	}
	return l
}

// Register adds g to the registry and the random rotation. Re-registering a
// name replaces the lookup entry but does not duplicate the rotation slot.
func (l *Library) Register(g Generator) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.byName[g.Name()]; exists {
		for i, old := range l.cycle {
			if old.Name() == g.Name() {
				l.cycle[i] = g
				break
			}
		}
	} else {
		l.cycle = append(l.cycle, g)
		l.pos = len(l.cycle) // force a reshuffle on the next pick
	}
	l.byName[g.Name()] = g
}

// Get looks an effect up by name.
func (l *Library) Get(name string) (Generator, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	g, ok := l.byName[name]
	return g, ok
}

// Names returns the registered effect names, sorted.
func (l *Library) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, 0, len(l.byName))
	for n := range l.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the rotation size.
func (l *Library) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.cycle)
}

// Pick returns the next effect of the shuffled rotation, reshuffling once a
// cycle is exhausted. The same effect is never returned twice in a row, even
// across a cycle boundary (unless only one effect is registered).
func (l *Library) Pick() (Generator, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.cycle) == 0 {
		return nil, fmt.Errorf("effect: library has no registered effects")
	}

	if l.pos >= len(l.cycle) {
		l.rng.Shuffle(len(l.cycle), func(i, j int) {
			l.cycle[i], l.cycle[j] = l.cycle[j], l.cycle[i]
		})
		// Avoid an immediate repeat across the reshuffle seam.
		if len(l.cycle) > 1 && l.cycle[0].Name() == l.last {
			j := 1 + l.rng.IntN(len(l.cycle)-1)
			l.cycle[0], l.cycle[j] = l.cycle[j], l.cycle[0]
		}
		l.pos = 0
	}

	g := l.cycle[l.pos]
	l.pos++
	l.last = g.Name()
	return g, nil
}
