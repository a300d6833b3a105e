package layout

import (
	"sync"

	"vacai/internal/domain/models"
)

// View owns the state a rendered timeline needs: the hops it was last given,
// the last measured container width and which node is expanded.
// Every change recomputes the whole layout.
type View struct {
	mu       sync.RWMutex
	cfg      Config
	hops     []models.ItineraryHop
	width    float64
	expanded int
	revision uint64
	current  Layout
}

// Snapshot is a consistent copy of the view at one revision.
type Snapshot struct {
	Revision uint64                `json:"revision"`
	Width    float64               `json:"width"`
	Expanded *int                  `json:"expanded"`
	Hops     []models.ItineraryHop `json:"hops"`
	Layout   Layout                `json:"layout"`
}

func NewView(cfg Config) *View {
	v := &View{cfg: cfg.normalized(), expanded: -1}
	v.relayoutLocked()
	return v
}

// SetHops replaces the itinerary. The slice is copied; the caller keeps ownership.
// Expansion survives as long as an element still exists at that index.
func (v *View) SetHops(hops []models.ItineraryHop) {
	cp := make([]models.ItineraryHop, len(hops))
	copy(cp, hops)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.hops = cp
	if v.expanded >= len(cp) {
		v.expanded = -1
	}
	v.relayoutLocked()
}

// Resize records a new measured width. Negative widths are stored as 0.
func (v *View) Resize(width float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.width = sanitizeWidth(width)
	v.relayoutLocked()
}

// Toggle expands the node at storage index k, or collapses it when it is
// already expanded. Out-of-range indices are ignored and reported as false.
func (v *View) Toggle(k int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if k < 0 || k >= len(v.hops) {
		return false
	}
	if v.expanded == k {
		v.expanded = -1
	} else {
		v.expanded = k
	}
	v.revision++
	return true
}

func (v *View) Collapse() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.expanded != -1 {
		v.expanded = -1
		v.revision++
	}
}

func (v *View) Expanded() (int, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.expanded, v.expanded >= 0
}

func (v *View) Width() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.width
}

func (v *View) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()

	s := Snapshot{
		Revision: v.revision,
		Width:    v.width,
		Hops:     make([]models.ItineraryHop, len(v.hops)),
		Layout:   v.current,
	}
	copy(s.Hops, v.hops)
	if v.expanded >= 0 {
		k := v.expanded
		s.Expanded = &k
	}
	return s
}

func (v *View) relayoutLocked() {
	v.current = v.cfg.Compute(v.hops, v.width)
	v.revision++
}
