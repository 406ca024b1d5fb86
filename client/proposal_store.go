package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"lunchmate_server/models"

	"github.com/google/uuid"
)

// DefaultReconcileWindow is how long an optimistic entry may wait for its
// server counterpart before reconciliation silently drops it.
const DefaultReconcileWindow = 10 * time.Second

// proposalAPI is the slice of Client the store needs; tests substitute it.
type proposalAPI interface {
	Propose(ctx context.Context, proposerID string, recipientIDs []string, date string) (models.Proposal, error)
	Cancel(ctx context.Context, proposalID, employeeID string) (models.Proposal, error)
	MyProposals(ctx context.Context, employeeID string) (sent []models.Proposal, received []models.Proposal, err error)
}

type optimisticProposal struct {
	proposal models.Proposal
	deadline time.Time
}

type optimisticCancel struct {
	deadline time.Time
}

// ProposalStore is the caller's optimistic cache of sent and received
// proposals. Mutations apply locally first, tagged with a reconcile
// deadline; the next authoritative fetch either confirms them or drops
// them, never re-surfacing an error the originating call already reported.
type ProposalStore struct {
	UserID          string
	API             proposalAPI
	ReconcileWindow time.Duration

	// Now is swappable in tests; zero value means time.Now.
	Now func() time.Time

	mu       sync.Mutex
	sent     []models.Proposal
	received []models.Proposal
	pending  map[string]optimisticProposal // groupKey -> placeholder
	cancels  map[string]optimisticCancel   // proposalID -> cancel tag
}

// NewProposalStore creates a store for userID backed by api.
func NewProposalStore(userID string, api proposalAPI) *ProposalStore {
	return &ProposalStore{
		UserID:          userID,
		API:             api,
		ReconcileWindow: DefaultReconcileWindow,
		pending:         make(map[string]optimisticProposal),
		cancels:         make(map[string]optimisticCancel),
	}
}

func (s *ProposalStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Propose applies an optimistic placeholder, then sends the mutation. The
// call's own result is authoritative for the toast the UI shows; the
// placeholder survives a failure only until its reconcile deadline.
func (s *ProposalStore) Propose(ctx context.Context, recipientIDs []string, date string) (models.Proposal, error) {
	members := append([]string{s.UserID}, recipientIDs...)
	groupKey := models.ComputeGroupKey(members, date)

	placeholder := models.Proposal{
		ProposalID:   "local-" + uuid.NewString(),
		ProposerID:   s.UserID,
		RecipientIDs: append([]string(nil), recipientIDs...),
		ProposedDate: date,
		GroupKey:     groupKey,
		Status:       models.ProposalStatusPending,
		AcceptedIDs:  []string{},
		CreatedAt:    s.now().UTC().Format(time.RFC3339),
	}

	s.mu.Lock()
	s.pending[groupKey] = optimisticProposal{proposal: placeholder, deadline: s.now().Add(s.ReconcileWindow)}
	s.mu.Unlock()

	proposal, err := s.API.Propose(ctx, s.UserID, recipientIDs, date)
	if err != nil {
		// The placeholder stays visible until the reconcile window closes,
		// then disappears without a second error.
		return models.Proposal{}, err
	}

	s.mu.Lock()
	delete(s.pending, groupKey)
	s.sent = append(s.sent, proposal)
	s.mu.Unlock()
	return proposal, nil
}

// Cancel marks the local entry cancelled, then sends the mutation.
func (s *ProposalStore) Cancel(ctx context.Context, proposalID string) error {
	s.mu.Lock()
	s.cancels[proposalID] = optimisticCancel{deadline: s.now().Add(s.ReconcileWindow)}
	s.mu.Unlock()

	if _, err := s.API.Cancel(ctx, proposalID, s.UserID); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.sent {
		if s.sent[i].ProposalID == proposalID {
			s.sent[i].Status = models.ProposalStatusCancelled
		}
	}
	delete(s.cancels, proposalID)
	s.mu.Unlock()
	return nil
}

// CancelByGroupKey cancels the caller's pending proposal for the given
// group identity. This is the propose/cancel toggle the UI drives: the same
// tap that would duplicate a proposal withdraws the live one instead.
func (s *ProposalStore) CancelByGroupKey(ctx context.Context, groupKey string) error {
	s.mu.Lock()
	var proposalID string
	for _, p := range s.sent {
		if p.GroupKey == groupKey && p.Status == models.ProposalStatusPending {
			proposalID = p.ProposalID
			break
		}
	}
	s.mu.Unlock()

	if proposalID == "" {
		return fmt.Errorf("no pending proposal for group %s", groupKey)
	}
	return s.Cancel(ctx, proposalID)
}

// Reconcile replaces local state with the server's lists. Optimistic
// placeholders with no server counterpart inside the window are kept;
// past the window they are dropped as failed mutations. A fetch error
// retains the last-known-good state.
func (s *ProposalStore) Reconcile(ctx context.Context) error {
	sent, received, err := s.API.MyProposals(ctx, s.UserID)
	if err != nil {
		slog.Warn("proposal reconciliation failed, keeping last known state", "error", err)
		return err
	}

	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sent = sent
	s.received = received

	sentKeys := make(map[string]bool, len(sent))
	byID := make(map[string]string, len(sent))
	for _, p := range sent {
		if p.Status == models.ProposalStatusPending {
			sentKeys[p.GroupKey] = true
		}
		byID[p.ProposalID] = p.Status
	}

	for key, entry := range s.pending {
		if sentKeys[key] || now.After(entry.deadline) {
			delete(s.pending, key)
		}
	}
	for id, entry := range s.cancels {
		status, exists := byID[id]
		if (exists && status != models.ProposalStatusPending) || now.After(entry.deadline) {
			delete(s.cancels, id)
		}
	}
	return nil
}

// Snapshot returns the current sent and received views with all optimistic
// mutations applied.
func (s *ProposalStore) Snapshot() (sent []models.Proposal, received []models.Proposal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sent = make([]models.Proposal, 0, len(s.sent)+len(s.pending))
	present := make(map[string]bool, len(s.sent))
	for _, p := range s.sent {
		if _, cancelled := s.cancels[p.ProposalID]; cancelled && p.Status == models.ProposalStatusPending {
			p.Status = models.ProposalStatusCancelled
		}
		present[p.GroupKey] = true
		sent = append(sent, p)
	}
	for key, entry := range s.pending {
		if !present[key] {
			sent = append(sent, entry.proposal)
		}
	}

	received = append(received, s.received...)
	return sent, received
}
