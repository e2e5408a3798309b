// Package weather holds the externally supplied conditions shown by the
// overlay. The daemon never fetches weather itself; a companion process pushes
// snapshots over the control socket and the overlay reads the latest one.
package weather

import (
	"fmt"
	"sync"
	"time"
)

// DefaultMaxAge is how long a snapshot stays on screen without an update.
const DefaultMaxAge = 30 * time.Minute

// Snapshot is one weather observation. Humidity and WindSpeed are optional;
// nil means the upstream source did not report them.
type Snapshot struct {
	Temperature float64  `json:"temperature"`
	Unit        string   `json:"unit,omitempty"` // "C" (default) or "F"
	Description string   `json:"description,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`
	WindSpeed   *float64 `json:"wind_speed,omitempty"`
	WindUnit    string   `json:"wind_unit,omitempty"` // defaults to "km/h"

	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// TempString formats the temperature for display, e.g. "21.4°C".
func (s Snapshot) TempString() string {
	unit := s.Unit
	if unit == "" {
		unit = "C"
	}
	return fmt.Sprintf("%.1f°%s", s.Temperature, unit)
}

// Store keeps the latest snapshot and ages it out. The zero value is not
// usable; call NewStore.
type Store struct {
	mu     sync.RWMutex
	snap   *Snapshot
	maxAge time.Duration
	now    func() time.Time
}

// NewStore returns a store that drops snapshots older than maxAge.
// maxAge <= 0 selects DefaultMaxAge.
func NewStore(maxAge time.Duration) *Store {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Store{maxAge: maxAge, now: time.Now}
}

// Set replaces the current snapshot. A zero UpdatedAt is stamped with the
// current time.
func (st *Store) Set(s Snapshot) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = st.now()
	}
	st.snap = &s
}

// Get returns a copy of the current snapshot, or nil when none is set or the
// last one has aged out.
func (st *Store) Get() *Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if st.snap == nil {
		return nil
	}
	if st.now().Sub(st.snap.UpdatedAt) > st.maxAge {
		return nil
	}
	c := *st.snap
	return &c
}

// Clear drops the current snapshot.
func (st *Store) Clear() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.snap = nil
}
