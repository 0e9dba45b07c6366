package services

import (
	"sync"

	"noshow-dashboard/models"
	"noshow-dashboard/utils"
)

// Binder ties one filter-state stream to the dashboard it displays.
// Every update triggers a full recompute; a result is published only if no
// newer update was requested meanwhile, so the displayed dashboard is always
// the output of the latest filter state and never a mix.
type Binder struct {
	dash *Dashboard
	seq  utils.Sequence

	mu      sync.RWMutex
	current *models.Dashboard
}

// NewBinder creates a Binder and publishes the unfiltered dashboard.
func NewBinder(dash *Dashboard) *Binder {
	b := &Binder{dash: dash}
	b.Update(models.FilterState{})
	return b
}

// Update recomputes for f under a freshly allocated sequence number.
// It returns the result and whether it was published.
func (b *Binder) Update(f models.FilterState) (*models.Dashboard, bool) {
	return b.run(b.seq.Next(), f)
}

// UpdateSeq recomputes for f under a caller-assigned sequence number.
// Requests older than one already seen are ignored and return nil.
func (b *Binder) UpdateSeq(seq uint64, f models.FilterState) (*models.Dashboard, bool) {
	if !b.seq.Observe(seq) {
		staleResults.Inc()
		return nil, false
	}
	return b.run(seq, f)
}

func (b *Binder) run(seq uint64, f models.FilterState) (*models.Dashboard, bool) {
	out := b.dash.Recompute(f)
	out.Seq = seq

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.seq.IsLatest(seq) || (b.current != nil && b.current.Seq > seq) {
		staleResults.Inc()
		return out, false
	}
	b.current = out
	return out, true
}

// Current returns the most recently published dashboard.
func (b *Binder) Current() *models.Dashboard {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.current
}
