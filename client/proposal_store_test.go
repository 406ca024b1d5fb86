package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"lunchmate_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	proposeErr error
	cancelErr  error
	fetchErr   error
	sent       []models.Proposal
	received   []models.Proposal
}

func (f *fakeAPI) Propose(_ context.Context, proposerID string, recipientIDs []string, date string) (models.Proposal, error) {
	if f.proposeErr != nil {
		return models.Proposal{}, f.proposeErr
	}
	p := models.Proposal{
		ProposalID:   "srv-1",
		ProposerID:   proposerID,
		RecipientIDs: recipientIDs,
		ProposedDate: date,
		GroupKey:     models.ComputeGroupKey(append([]string{proposerID}, recipientIDs...), date),
		Status:       models.ProposalStatusPending,
	}
	return p, nil
}

func (f *fakeAPI) Cancel(_ context.Context, proposalID, _ string) (models.Proposal, error) {
	if f.cancelErr != nil {
		return models.Proposal{}, f.cancelErr
	}
	return models.Proposal{ProposalID: proposalID, Status: models.ProposalStatusCancelled}, nil
}

func (f *fakeAPI) MyProposals(context.Context, string) ([]models.Proposal, []models.Proposal, error) {
	if f.fetchErr != nil {
		return nil, nil, f.fetchErr
	}
	return f.sent, f.received, nil
}

func TestProposeSuccessReplacesPlaceholder(t *testing.T) {
	store := NewProposalStore("alice", &fakeAPI{})

	p, err := store.Propose(context.Background(), []string{"bob"}, "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, "srv-1", p.ProposalID)

	sent, _ := store.Snapshot()
	require.Len(t, sent, 1)
	assert.Equal(t, "srv-1", sent[0].ProposalID, "server record replaces the optimistic placeholder")
}

func TestProposeFailureShowsPlaceholderUntilWindowCloses(t *testing.T) {
	api := &fakeAPI{proposeErr: errors.New("network down")}
	store := NewProposalStore("alice", api)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }

	_, err := store.Propose(context.Background(), []string{"bob"}, "2025-03-10")
	require.Error(t, err)

	// The optimistic entry is visible right after the failed call.
	sent, _ := store.Snapshot()
	require.Len(t, sent, 1)
	assert.Equal(t, models.ProposalStatusPending, sent[0].Status)

	// Inside the window a reconcile keeps it (the mutation may still land).
	api.proposeErr = nil
	require.NoError(t, store.Reconcile(context.Background()))
	sent, _ = store.Snapshot()
	assert.Len(t, sent, 1)

	// Past the window with no server counterpart, it is silently dropped.
	now = now.Add(DefaultReconcileWindow + time.Second)
	require.NoError(t, store.Reconcile(context.Background()))
	sent, _ = store.Snapshot()
	assert.Empty(t, sent)
}

func TestReconcileAdoptsServerTruth(t *testing.T) {
	api := &fakeAPI{
		sent: []models.Proposal{{
			ProposalID: "srv-9", ProposerID: "alice", Status: models.ProposalStatusCancelled,
		}},
		received: []models.Proposal{{
			ProposalID: "srv-7", ProposerID: "bob", Status: models.ProposalStatusPending,
		}},
	}
	store := NewProposalStore("alice", api)

	require.NoError(t, store.Reconcile(context.Background()))
	sent, received := store.Snapshot()
	require.Len(t, sent, 1)
	require.Len(t, received, 1)
	assert.Equal(t, models.ProposalStatusCancelled, sent[0].Status)
	assert.Equal(t, "srv-7", received[0].ProposalID)
}

func TestReconcileCorrectsOptimisticExpectations(t *testing.T) {
	// Scenario: the caller accepted and expected confirmation, but another
	// recipient rejected. The server list is authoritative.
	api := &fakeAPI{
		received: []models.Proposal{{
			ProposalID: "srv-2", ProposerID: "bob", Status: models.ProposalStatusCancelled,
			AcceptedIDs: []string{"alice", "carol"},
		}},
	}
	store := NewProposalStore("alice", api)

	require.NoError(t, store.Reconcile(context.Background()))
	_, received := store.Snapshot()
	require.Len(t, received, 1)
	assert.Equal(t, models.ProposalStatusCancelled, received[0].Status)
}

func TestReconcileFailureKeepsLastKnownGood(t *testing.T) {
	api := &fakeAPI{
		sent: []models.Proposal{{ProposalID: "srv-3", ProposerID: "alice", Status: models.ProposalStatusPending}},
	}
	store := NewProposalStore("alice", api)
	require.NoError(t, store.Reconcile(context.Background()))

	api.fetchErr = errors.New("timeout")
	assert.Error(t, store.Reconcile(context.Background()))

	sent, _ := store.Snapshot()
	require.Len(t, sent, 1, "a failed fetch must not clear the store")
	assert.Equal(t, "srv-3", sent[0].ProposalID)
}

func TestOptimisticCancelAppliesImmediately(t *testing.T) {
	api := &fakeAPI{
		sent: []models.Proposal{{ProposalID: "srv-4", ProposerID: "alice", Status: models.ProposalStatusPending}},
	}
	store := NewProposalStore("alice", api)
	require.NoError(t, store.Reconcile(context.Background()))

	require.NoError(t, store.Cancel(context.Background(), "srv-4"))
	sent, _ := store.Snapshot()
	require.Len(t, sent, 1)
	assert.Equal(t, models.ProposalStatusCancelled, sent[0].Status)
}

func TestCancelByGroupKeyTogglesPendingProposal(t *testing.T) {
	key := models.ComputeGroupKey([]string{"alice", "bob"}, "2025-03-10")
	api := &fakeAPI{
		sent: []models.Proposal{{
			ProposalID: "srv-6", ProposerID: "alice", GroupKey: key,
			Status: models.ProposalStatusPending,
		}},
	}
	store := NewProposalStore("alice", api)
	require.NoError(t, store.Reconcile(context.Background()))

	require.NoError(t, store.CancelByGroupKey(context.Background(), key))
	sent, _ := store.Snapshot()
	assert.Equal(t, models.ProposalStatusCancelled, sent[0].Status)

	// No pending proposal left for that key.
	assert.Error(t, store.CancelByGroupKey(context.Background(), key))
}

func TestFailedCancelRevertsAfterWindow(t *testing.T) {
	api := &fakeAPI{
		sent:      []models.Proposal{{ProposalID: "srv-5", ProposerID: "alice", Status: models.ProposalStatusPending}},
		cancelErr: errors.New("network down"),
	}
	store := NewProposalStore("alice", api)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }
	require.NoError(t, store.Reconcile(context.Background()))

	require.Error(t, store.Cancel(context.Background(), "srv-5"))

	// Optimistically cancelled for now.
	sent, _ := store.Snapshot()
	assert.Equal(t, models.ProposalStatusCancelled, sent[0].Status)

	// After the window, server truth (still pending) wins again.
	now = now.Add(DefaultReconcileWindow + time.Second)
	require.NoError(t, store.Reconcile(context.Background()))
	sent, _ = store.Snapshot()
	assert.Equal(t, models.ProposalStatusPending, sent[0].Status)
}
