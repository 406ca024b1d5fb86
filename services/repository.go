package services

import (
	"context"
	"errors"
	"time"

	"lunchmate_server/models"
)

// ErrVersionConflict reports that a compare-and-swap update observed a newer
// version of the record. Callers re-read and retry.
var ErrVersionConflict = errors.New("proposal version conflict")

// ProposalRepository is the durable store behind the proposal coordinator.
// Update is a version-guarded compare-and-swap: it writes the proposal only
// if the stored version still equals expectedVersion, which makes the
// pending->confirmed transition a single atomic operation.
type ProposalRepository interface {
	Create(ctx context.Context, p models.Proposal) error
	Get(ctx context.Context, proposalID string) (models.Proposal, error)
	FindPendingByGroupKey(ctx context.Context, groupKey string) (*models.Proposal, error)
	Update(ctx context.Context, p models.Proposal, expectedVersion int64) (models.Proposal, error)
	ListByUser(ctx context.Context, userID string) (sent []models.Proposal, received []models.Proposal, err error)
	ListPendingExpiredBefore(ctx context.Context, cutoff time.Time) ([]models.Proposal, error)
}

// GroupRepository stores confirmed groups until their membership reaches zero.
type GroupRepository interface {
	Put(ctx context.Context, g models.ConfirmedGroup) error
	Get(ctx context.Context, groupID string) (models.ConfirmedGroup, error)
	Delete(ctx context.Context, groupID string) error
	ListByMember(ctx context.Context, userID string) ([]models.ConfirmedGroup, error)
}
