package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"lunchmate_server/models"
)

// DefaultCacheTTL bounds how long a date's ranked suggestions stay served
// without regeneration.
const DefaultCacheTTL = 24 * time.Hour

// DefaultSuggestionCount is the number of distinct candidate groups generated
// per date on a cache miss.
const DefaultSuggestionCount = 20

type cacheEntry struct {
	groups    []models.CandidateGroup
	expiresAt time.Time
}

// GroupCacheService memoizes generated and ranked candidate groups per date.
// Entries drop on explicit invalidation, TTL expiry, or any confirmation or
// cancellation touching the date.
type GroupCacheService struct {
	Candidates *CandidateService
	Ranker     Ranker
	Bus        *EventBus
	TTL        time.Duration
	Count      int

	// Now is swappable in tests; zero value means time.Now.
	Now func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewGroupCacheService wires the cache and subscribes it to proposal
// transitions so confirmations and cancellations invalidate their date.
func NewGroupCacheService(candidates *CandidateService, bus *EventBus, ttl time.Duration, count int) *GroupCacheService {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if count <= 0 {
		count = DefaultSuggestionCount
	}
	c := &GroupCacheService{
		Candidates: candidates,
		Bus:        bus,
		TTL:        ttl,
		Count:      count,
		entries:    make(map[string]cacheEntry),
	}
	if bus != nil {
		bus.SubscribeProposalChanged(func(ev ProposalChangedEvent) {
			switch ev.Status {
			case models.ProposalStatusConfirmed, models.ProposalStatusCancelled:
				c.Invalidate(ev.Date)
			}
		})
	}
	return c
}

func (c *GroupCacheService) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// GetOrCreate returns the ranked suggestions for date, generating and caching
// them on miss or expiry. Two reads within TTL with no intervening
// invalidation return identical ordered lists.
func (c *GroupCacheService) GetOrCreate(ctx context.Context, date string) ([]models.CandidateGroup, error) {
	c.mu.Lock()
	entry, ok := c.entries[date]
	if ok && c.now().Before(entry.expiresAt) {
		groups := entry.groups
		c.mu.Unlock()
		cacheHits.Inc()
		return groups, nil
	}
	c.mu.Unlock()
	cacheMisses.Inc()

	generated, err := c.Candidates.Suggest(ctx, date, c.Count)
	if err != nil {
		return nil, err
	}
	ranked := c.Ranker.Rank(generated, date)

	c.mu.Lock()
	c.entries[date] = cacheEntry{groups: ranked, expiresAt: c.now().Add(c.TTL)}
	c.mu.Unlock()

	slog.Debug("cached ranked suggestions", "date", date, "count", len(ranked))
	return ranked, nil
}

// Window returns one page of suggestions for incremental loading without
// recomputation. Pages are zero-based; a page past the end is empty.
func (c *GroupCacheService) Window(ctx context.Context, date string, page, pageSize int) ([]models.CandidateGroup, error) {
	if pageSize <= 0 {
		pageSize = 5
	}
	if page < 0 {
		page = 0
	}

	groups, err := c.GetOrCreate(ctx, date)
	if err != nil {
		return nil, err
	}

	start := page * pageSize
	if start >= len(groups) {
		return []models.CandidateGroup{}, nil
	}
	end := start + pageSize
	if end > len(groups) {
		end = len(groups)
	}
	return groups[start:end], nil
}

// Invalidate drops the cached entry for date and announces it on the bus.
func (c *GroupCacheService) Invalidate(date string) {
	c.mu.Lock()
	_, existed := c.entries[date]
	delete(c.entries, date)
	c.mu.Unlock()

	if existed && c.Bus != nil {
		c.Bus.PublishCacheInvalidated(CacheInvalidatedEvent{Date: date})
	}
}
