// Package reconciler keeps an operator's cached view of a doctor's
// availability converging toward the authoritative server-side index without
// a push channel. The view only narrows between authoritative fetches; the
// reconciler never decides that a slot is bookable; that decision is always
// made server-side at submission time.
package reconciler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrSlotNotOffered is returned by Select for a slot absent from the current
// view.
var ErrSlotNotOffered = errors.New("slot is not in the current availability view")

// SlotFetcher fetches the authoritative availability view for one
// (doctor, date).
type SlotFetcher interface {
	FetchSlots(ctx context.Context, doctorID uuid.UUID, date string) ([]string, error)
}

// Reconciler owns the polling loop for a single open booking context. One
// Reconciler per (doctor, date) the operator has open; cancelling the context
// passed to Run stops the loop immediately, so no timer outlives the UI
// context that created it.
type Reconciler struct {
	fetcher  SlotFetcher
	log      *logrus.Logger
	doctorID uuid.UUID
	date     string
	interval time.Duration
	timeout  time.Duration

	// refresh requests an out-of-band fetch (conflict handling)
	refresh chan struct{}

	mu       sync.Mutex
	slots    []string
	selected string
}

// New creates a Reconciler polling every interval. Each fetch is bounded by
// the same interval so a hung tick cannot pile up behind the next one.
func New(fetcher SlotFetcher, log *logrus.Logger, doctorID uuid.UUID, date string, interval time.Duration) *Reconciler {
	return &Reconciler{
		fetcher:  fetcher,
		log:      log,
		doctorID: doctorID,
		date:     date,
		interval: interval,
		timeout:  interval,
		refresh:  make(chan struct{}, 1),
	}
}

// Run fetches immediately, then on every tick until ctx is cancelled.
// A failed fetch is transient: the previous view is kept and the next tick
// retries. Run blocks; callers start it in its own goroutine.
func (r *Reconciler) Run(ctx context.Context) {
	r.fetchOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Debugf("Reconciler stopped for doctor=%s date=%s", r.doctorID, r.date)
			return
		case <-r.refresh:
			r.fetchOnce(ctx)
		case <-ticker.C:
			r.fetchOnce(ctx)
		}
	}
}

func (r *Reconciler) fetchOnce(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	slots, err := r.fetcher.FetchSlots(fetchCtx, r.doctorID, r.date)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		r.log.Warnf("Availability fetch failed for doctor=%s date=%s (retrying next tick): %+v", r.doctorID, r.date, err)
		return
	}

	r.apply(slots)
}

// apply replaces the view with a fresh authoritative fetch. If the currently
// selected slot is no longer offered the selection is cleared silently -
// losing a slot to another booker is routine, not an error.
func (r *Reconciler) apply(slots []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.slots = slots
	if r.selected != "" && !contains(slots, r.selected) {
		r.log.Infof("Selected slot %s disappeared for doctor=%s date=%s", r.selected, r.doctorID, r.date)
		r.selected = ""
	}
}

// ReportConflict handles a losing booking attempt: the specific slot is
// dropped from the view at once, a matching selection is cleared, and an
// immediate refetch is requested instead of waiting for the next tick.
func (r *Reconciler) ReportConflict(slot string) {
	r.mu.Lock()
	kept := r.slots[:0:0]
	for _, s := range r.slots {
		if s != slot {
			kept = append(kept, s)
		}
	}
	r.slots = kept
	if r.selected == slot {
		r.selected = ""
	}
	r.mu.Unlock()

	select {
	case r.refresh <- struct{}{}:
	default:
	}
}

// Snapshot returns a copy of the current view.
func (r *Reconciler) Snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.slots))
	copy(out, r.slots)
	return out
}

// Select marks a slot as the operator's candidate. Only slots in the current
// view may be selected; the server still arbitrates at submission time.
func (r *Reconciler) Select(slot string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !contains(r.slots, slot) {
		return ErrSlotNotOffered
	}
	r.selected = slot
	return nil
}

// Selected returns the current candidate, if any.
func (r *Reconciler) Selected() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selected, r.selected != ""
}

func contains(slots []string, slot string) bool {
	for _, s := range slots {
		if s == slot {
			return true
		}
	}
	return false
}
