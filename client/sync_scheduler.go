package client

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Polling intervals by time since the last tracked interaction.
const (
	intervalActive = 15 * time.Second  // interacted < 1 min ago
	intervalWarm   = 30 * time.Second  // < 5 min
	intervalCool   = 60 * time.Second  // < 15 min
	intervalIdle   = 300 * time.Second // everything else
)

// SyncScheduler drives periodic reconciliation with an interval that adapts
// to how recently the user touched the screen. Screen focus forces an
// immediate refresh; losing focus cancels the loop via its context.
type SyncScheduler struct {
	RefreshProposals   func(ctx context.Context) error
	RefreshSuggestions func(ctx context.Context, date string) error

	// Now is swappable in tests; zero value means time.Now.
	Now func() time.Time

	mu              sync.Mutex
	lastInteraction time.Time
	displayedDate   string
	focus           chan struct{}
}

// NewSyncScheduler wires the two refresh callbacks.
func NewSyncScheduler(refreshProposals func(context.Context) error, refreshSuggestions func(context.Context, string) error) *SyncScheduler {
	return &SyncScheduler{
		RefreshProposals:   refreshProposals,
		RefreshSuggestions: refreshSuggestions,
		focus:              make(chan struct{}, 1),
	}
}

func (s *SyncScheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// TrackInteraction records a user interaction, tightening the poll interval.
func (s *SyncScheduler) TrackInteraction() {
	s.mu.Lock()
	s.lastInteraction = s.now()
	s.mu.Unlock()
}

// SetDisplayedDate tells the scheduler which date's suggestions to refresh.
// Only the displayed date is refetched per tick, never every cached date.
func (s *SyncScheduler) SetDisplayedDate(date string) {
	s.mu.Lock()
	s.displayedDate = date
	s.mu.Unlock()
}

// Focus requests an immediate refresh regardless of the computed interval.
func (s *SyncScheduler) Focus() {
	select {
	case s.focus <- struct{}{}:
	default:
	}
}

// Interval returns the polling interval for the current interaction recency.
func (s *SyncScheduler) Interval() time.Duration {
	s.mu.Lock()
	last := s.lastInteraction
	s.mu.Unlock()

	if last.IsZero() {
		return intervalIdle
	}
	switch since := s.now().Sub(last); {
	case since < time.Minute:
		return intervalActive
	case since < 5*time.Minute:
		return intervalWarm
	case since < 15*time.Minute:
		return intervalCool
	default:
		return intervalIdle
	}
}

// Run polls until ctx is cancelled. Refresh errors are logged and the loop
// continues; the stores keep their last-known-good state.
func (s *SyncScheduler) Run(ctx context.Context) {
	timer := time.NewTimer(s.Interval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		case <-s.focus:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}

		s.tick(ctx)
		timer.Reset(s.Interval())
	}
}

func (s *SyncScheduler) tick(ctx context.Context) {
	if s.RefreshProposals != nil {
		if err := s.RefreshProposals(ctx); err != nil {
			slog.Debug("proposal refresh failed", "error", err)
		}
	}

	s.mu.Lock()
	date := s.displayedDate
	s.mu.Unlock()
	if date != "" && s.RefreshSuggestions != nil {
		if err := s.RefreshSuggestions(ctx, date); err != nil {
			slog.Debug("suggestion refresh failed", "date", date, "error", err)
		}
	}
}
