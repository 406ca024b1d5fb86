package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"lunchmate_server/models"

	"github.com/google/uuid"
)

// DefaultProposalTTL is how long a proposal may stay pending before the
// background sweep marks it expired.
const DefaultProposalTTL = 24 * time.Hour

// casRetries bounds the re-read-and-retry loop on version conflicts. Each
// retry means another recipient answered concurrently, so contention is
// limited by group size.
const casRetries = 5

// ProposalService owns the proposal state machine. All transitions are
// one-way out of pending; confirmed, cancelled and expired are terminal.
// The version-guarded repository update makes the final accept's
// pending->confirmed edge atomic, so exactly one acceptor wins it.
type ProposalService struct {
	Repo ProposalRepository
	Bus  *EventBus
	TTL  time.Duration

	// Now is swappable in tests; zero value means time.Now.
	Now func() time.Time
}

// NewProposalService creates a coordinator with the given pending TTL
// (DefaultProposalTTL when ttl <= 0).
func NewProposalService(repo ProposalRepository, bus *EventBus, ttl time.Duration) *ProposalService {
	if ttl <= 0 {
		ttl = DefaultProposalTTL
	}
	return &ProposalService{Repo: repo, Bus: bus, TTL: ttl}
}

func (s *ProposalService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Propose creates a pending proposal for the group formed by proposer plus
// recipients on date. At most one pending proposal may exist per GroupKey;
// a second propose for a live group returns ErrDuplicateProposal so the UI
// can render its propose/cancel toggle.
func (s *ProposalService) Propose(ctx context.Context, proposerID string, recipientIDs []string, date string) (models.Proposal, error) {
	recipients, err := validateProposeInput(proposerID, recipientIDs, date)
	if err != nil {
		return models.Proposal{}, err
	}

	members := append([]string{proposerID}, recipients...)
	groupKey := models.ComputeGroupKey(members, date)

	existing, err := s.Repo.FindPendingByGroupKey(ctx, groupKey)
	if err != nil {
		return models.Proposal{}, err
	}
	if existing != nil {
		return models.Proposal{}, fmt.Errorf("group %s on %s: %w", groupKey, date, ErrDuplicateProposal)
	}

	now := s.now().UTC()
	proposal := models.Proposal{
		ProposalID:   uuid.NewString(),
		ProposerID:   proposerID,
		RecipientIDs: recipients,
		ProposedDate: date,
		GroupKey:     groupKey,
		Status:       models.ProposalStatusPending,
		AcceptedIDs:  []string{},
		CreatedAt:    now.Format(time.RFC3339),
		ExpiresAt:    now.Add(s.TTL).Format(time.RFC3339),
		Version:      1,
	}

	if err := s.Repo.Create(ctx, proposal); err != nil {
		return models.Proposal{}, err
	}

	proposalsCreated.Inc()
	slog.Info("proposal created", "proposalId", proposal.ProposalID, "groupKey", groupKey, "recipients", len(recipients))
	s.publishChanged(proposal)
	return proposal, nil
}

// Accept records userID's acceptance. A replayed accept from an
// already-counted recipient is a no-op. When the final recipient accepts,
// the same compare-and-swap write flips the status to confirmed and that
// caller alone emits the GroupConfirmed event.
func (s *ProposalService) Accept(ctx context.Context, proposalID, userID string) (models.Proposal, error) {
	for attempt := 0; attempt < casRetries; attempt++ {
		p, err := s.Repo.Get(ctx, proposalID)
		if err != nil {
			return models.Proposal{}, err
		}
		if !p.HasRecipient(userID) {
			return models.Proposal{}, fmt.Errorf("user %s is not a recipient of proposal %s: %w", userID, proposalID, ErrNotFound)
		}
		if p.IsTerminal() {
			return models.Proposal{}, ErrAlreadyResolved
		}
		if p.HasAccepted(userID) {
			return p, nil
		}

		updated := p
		updated.AcceptedIDs = append(append([]string(nil), p.AcceptedIDs...), userID)
		confirming := updated.AllAccepted()
		if confirming {
			updated.Status = models.ProposalStatusConfirmed
		}

		result, err := s.Repo.Update(ctx, updated, p.Version)
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		if err != nil {
			return models.Proposal{}, err
		}

		if confirming {
			proposalsConfirmed.Inc()
			slog.Info("proposal confirmed", "proposalId", proposalID, "groupKey", result.GroupKey)
			s.Bus.PublishGroupConfirmed(GroupConfirmedEvent{Proposal: result})
		}
		s.publishChanged(result)
		return result, nil
	}
	return models.Proposal{}, fmt.Errorf("accept on proposal %s: too many concurrent updates", proposalID)
}

// Reject cancels the whole proposal: unanimity is required to confirm, so a
// single rejection is sufficient to kill it.
func (s *ProposalService) Reject(ctx context.Context, proposalID, userID string) (models.Proposal, error) {
	for attempt := 0; attempt < casRetries; attempt++ {
		p, err := s.Repo.Get(ctx, proposalID)
		if err != nil {
			return models.Proposal{}, err
		}
		if !p.HasRecipient(userID) {
			return models.Proposal{}, fmt.Errorf("user %s is not a recipient of proposal %s: %w", userID, proposalID, ErrNotFound)
		}
		if p.IsTerminal() {
			return models.Proposal{}, ErrAlreadyResolved
		}

		updated := p
		updated.Status = models.ProposalStatusCancelled

		result, err := s.Repo.Update(ctx, updated, p.Version)
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		if err != nil {
			return models.Proposal{}, err
		}

		proposalsCancelled.Inc()
		slog.Info("proposal rejected", "proposalId", proposalID, "by", userID)
		s.publishChanged(result)
		return result, nil
	}
	return models.Proposal{}, fmt.Errorf("reject on proposal %s: too many concurrent updates", proposalID)
}

// Cancel withdraws a pending proposal. Only the proposer may cancel; once
// cancelled the GroupKey is free for a new proposal.
func (s *ProposalService) Cancel(ctx context.Context, proposalID, callerID string) (models.Proposal, error) {
	for attempt := 0; attempt < casRetries; attempt++ {
		p, err := s.Repo.Get(ctx, proposalID)
		if err != nil {
			return models.Proposal{}, err
		}
		if p.ProposerID != callerID {
			return models.Proposal{}, fmt.Errorf("only the proposer may cancel: %w", ErrPermission)
		}
		if p.IsTerminal() {
			return models.Proposal{}, ErrAlreadyResolved
		}

		updated := p
		updated.Status = models.ProposalStatusCancelled

		result, err := s.Repo.Update(ctx, updated, p.Version)
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		if err != nil {
			return models.Proposal{}, err
		}

		proposalsCancelled.Inc()
		slog.Info("proposal cancelled", "proposalId", proposalID)
		s.publishChanged(result)
		return result, nil
	}
	return models.Proposal{}, fmt.Errorf("cancel on proposal %s: too many concurrent updates", proposalID)
}

// ExpireStale transitions every pending proposal past its TTL to expired.
// Driven by the cron sweep; version conflicts mean the proposal resolved
// concurrently and are skipped.
func (s *ProposalService) ExpireStale(ctx context.Context) (int, error) {
	stale, err := s.Repo.ListPendingExpiredBefore(ctx, s.now())
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, p := range stale {
		updated := p
		updated.Status = models.ProposalStatusExpired
		result, err := s.Repo.Update(ctx, updated, p.Version)
		if errors.Is(err, ErrVersionConflict) || errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return expired, err
		}
		expired++
		proposalsExpired.Inc()
		s.publishChanged(result)
	}

	if expired > 0 {
		slog.Info("expired stale proposals", "count", expired)
	}
	return expired, nil
}

// Mine returns the proposals userID sent and received.
func (s *ProposalService) Mine(ctx context.Context, userID string) (sent []models.Proposal, received []models.Proposal, err error) {
	if userID == "" {
		return nil, nil, fmt.Errorf("employee id is required: %w", ErrValidation)
	}
	return s.Repo.ListByUser(ctx, userID)
}

func (s *ProposalService) publishChanged(p models.Proposal) {
	if s.Bus == nil {
		return
	}
	s.Bus.PublishProposalChanged(ProposalChangedEvent{
		ProposalID: p.ProposalID,
		GroupKey:   p.GroupKey,
		Date:       p.ProposedDate,
		Status:     p.Status,
	})
}

func validateProposeInput(proposerID string, recipientIDs []string, date string) ([]string, error) {
	if proposerID == "" {
		return nil, fmt.Errorf("proposer id is required: %w", ErrValidation)
	}
	if len(recipientIDs) == 0 {
		return nil, fmt.Errorf("recipient set cannot be empty: %w", ErrValidation)
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("malformed date %q: %w", date, ErrValidation)
	}

	seen := make(map[string]bool, len(recipientIDs))
	recipients := make([]string, 0, len(recipientIDs))
	for _, id := range recipientIDs {
		if id == "" {
			return nil, fmt.Errorf("recipient id cannot be empty: %w", ErrValidation)
		}
		if id == proposerID {
			return nil, fmt.Errorf("proposer cannot invite themselves: %w", ErrValidation)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		recipients = append(recipients, id)
	}

	size := len(recipients) + 1
	if size < models.MinGroupSize || size > models.MaxGroupSize {
		return nil, fmt.Errorf("group size %d outside [%d,%d]: %w", size, models.MinGroupSize, models.MaxGroupSize, ErrValidation)
	}
	return recipients, nil
}
