package services

import (
	"context"
	"sync"
	"time"

	"lunchmate_server/models"
)

// MemoryProposalRepository is a mutex-guarded in-memory ProposalRepository.
// It backs tests and local development; the version check mirrors the
// DynamoDB conditional-write semantics exactly.
type MemoryProposalRepository struct {
	mu        sync.Mutex
	proposals map[string]models.Proposal
}

// NewMemoryProposalRepository creates an empty repository.
func NewMemoryProposalRepository() *MemoryProposalRepository {
	return &MemoryProposalRepository{proposals: make(map[string]models.Proposal)}
}

func (r *MemoryProposalRepository) Create(_ context.Context, p models.Proposal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.proposals[p.ProposalID]; exists {
		return ErrVersionConflict
	}
	r.proposals[p.ProposalID] = cloneProposal(p)
	return nil
}

func (r *MemoryProposalRepository) Get(_ context.Context, proposalID string) (models.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.proposals[proposalID]
	if !ok {
		return models.Proposal{}, ErrNotFound
	}
	return cloneProposal(p), nil
}

func (r *MemoryProposalRepository) FindPendingByGroupKey(_ context.Context, groupKey string) (*models.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.proposals {
		if p.GroupKey == groupKey && p.Status == models.ProposalStatusPending {
			out := cloneProposal(p)
			return &out, nil
		}
	}
	return nil, nil
}

func (r *MemoryProposalRepository) Update(_ context.Context, p models.Proposal, expectedVersion int64) (models.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.proposals[p.ProposalID]
	if !ok {
		return models.Proposal{}, ErrNotFound
	}
	if stored.Version != expectedVersion {
		return models.Proposal{}, ErrVersionConflict
	}
	updated := cloneProposal(p)
	updated.Version = expectedVersion + 1
	r.proposals[p.ProposalID] = updated
	return cloneProposal(updated), nil
}

func (r *MemoryProposalRepository) ListByUser(_ context.Context, userID string) ([]models.Proposal, []models.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sent, received []models.Proposal
	for _, p := range r.proposals {
		if p.ProposerID == userID {
			sent = append(sent, cloneProposal(p))
		}
		if p.HasRecipient(userID) {
			received = append(received, cloneProposal(p))
		}
	}
	return sent, received, nil
}

func (r *MemoryProposalRepository) ListPendingExpiredBefore(_ context.Context, cutoff time.Time) ([]models.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stale []models.Proposal
	for _, p := range r.proposals {
		if p.Status != models.ProposalStatusPending {
			continue
		}
		expiresAt, err := time.Parse(time.RFC3339, p.ExpiresAt)
		if err != nil {
			continue
		}
		if !expiresAt.After(cutoff) {
			stale = append(stale, cloneProposal(p))
		}
	}
	return stale, nil
}

func cloneProposal(p models.Proposal) models.Proposal {
	out := p
	out.RecipientIDs = append([]string(nil), p.RecipientIDs...)
	out.AcceptedIDs = append([]string(nil), p.AcceptedIDs...)
	return out
}

// MemoryGroupRepository is the in-memory GroupRepository counterpart.
type MemoryGroupRepository struct {
	mu     sync.Mutex
	groups map[string]models.ConfirmedGroup
}

// NewMemoryGroupRepository creates an empty repository.
func NewMemoryGroupRepository() *MemoryGroupRepository {
	return &MemoryGroupRepository{groups: make(map[string]models.ConfirmedGroup)}
}

func (r *MemoryGroupRepository) Put(_ context.Context, g models.ConfirmedGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[g.GroupID] = cloneGroup(g)
	return nil
}

func (r *MemoryGroupRepository) Get(_ context.Context, groupID string) (models.ConfirmedGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[groupID]
	if !ok {
		return models.ConfirmedGroup{}, ErrNotFound
	}
	return cloneGroup(g), nil
}

func (r *MemoryGroupRepository) Delete(_ context.Context, groupID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.groups, groupID)
	return nil
}

func (r *MemoryGroupRepository) ListByMember(_ context.Context, userID string) ([]models.ConfirmedGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ConfirmedGroup
	for _, g := range r.groups {
		if g.HasMember(userID) {
			out = append(out, cloneGroup(g))
		}
	}
	return out, nil
}

func cloneGroup(g models.ConfirmedGroup) models.ConfirmedGroup {
	out := g
	out.MemberIDs = append([]string(nil), g.MemberIDs...)
	return out
}
