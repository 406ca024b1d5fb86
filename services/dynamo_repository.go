package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"lunchmate_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoProposalRepository persists proposals in the LunchProposals table.
// The groupKey GSI backs the uniqueness lookup; the version attribute backs
// the conditional update that serializes concurrent accepts.
type DynamoProposalRepository struct {
	Dynamo *DynamoService
}

func (r *DynamoProposalRepository) Create(ctx context.Context, p models.Proposal) error {
	err := r.Dynamo.PutItem(ctx, p.TableName(), p, "attribute_not_exists(proposalId)")
	if errors.Is(err, ErrConditionFailed) {
		return fmt.Errorf("proposal %s already exists: %w", p.ProposalID, ErrVersionConflict)
	}
	return err
}

func (r *DynamoProposalRepository) Get(ctx context.Context, proposalID string) (models.Proposal, error) {
	key := map[string]types.AttributeValue{
		"proposalId": &types.AttributeValueMemberS{Value: proposalID},
	}

	item, err := r.Dynamo.GetItem(ctx, models.Proposal{}.TableName(), key)
	if err != nil {
		return models.Proposal{}, err
	}
	if item == nil {
		return models.Proposal{}, ErrNotFound
	}

	var p models.Proposal
	if err := attributevalue.UnmarshalMap(item, &p); err != nil {
		return models.Proposal{}, fmt.Errorf("failed to unmarshal proposal: %w", err)
	}
	return p, nil
}

func (r *DynamoProposalRepository) FindPendingByGroupKey(ctx context.Context, groupKey string) (*models.Proposal, error) {
	items, err := r.Dynamo.QueryItems(ctx, models.Proposal{}.TableName(), models.GroupKeyIndex,
		"groupKey = :groupKey",
		map[string]types.AttributeValue{
			":groupKey": &types.AttributeValueMemberS{Value: groupKey},
		}, 0)
	if err != nil {
		return nil, err
	}

	var proposals []models.Proposal
	if err := attributevalue.UnmarshalListOfMaps(items, &proposals); err != nil {
		return nil, fmt.Errorf("failed to unmarshal proposals: %w", err)
	}

	for i := range proposals {
		if proposals[i].Status == models.ProposalStatusPending {
			return &proposals[i], nil
		}
	}
	return nil, nil
}

func (r *DynamoProposalRepository) Update(ctx context.Context, p models.Proposal, expectedVersion int64) (models.Proposal, error) {
	key := map[string]types.AttributeValue{
		"proposalId": &types.AttributeValueMemberS{Value: p.ProposalID},
	}

	acceptedIDs := make([]types.AttributeValue, 0, len(p.AcceptedIDs))
	for _, id := range p.AcceptedIDs {
		acceptedIDs = append(acceptedIDs, &types.AttributeValueMemberS{Value: id})
	}

	attrs, err := r.Dynamo.UpdateItem(ctx, p.TableName(), key,
		"SET #s = :status, acceptedIds = :acceptedIds, version = :newVersion",
		"version = :expectedVersion",
		map[string]string{"#s": "status"},
		map[string]types.AttributeValue{
			":status":          &types.AttributeValueMemberS{Value: p.Status},
			":acceptedIds":     &types.AttributeValueMemberL{Value: acceptedIDs},
			":newVersion":      &types.AttributeValueMemberN{Value: strconv.FormatInt(expectedVersion+1, 10)},
			":expectedVersion": &types.AttributeValueMemberN{Value: strconv.FormatInt(expectedVersion, 10)},
		})
	if errors.Is(err, ErrConditionFailed) {
		return models.Proposal{}, ErrVersionConflict
	}
	if err != nil {
		return models.Proposal{}, err
	}

	var updated models.Proposal
	if err := attributevalue.UnmarshalMap(attrs, &updated); err != nil {
		return models.Proposal{}, fmt.Errorf("failed to unmarshal updated proposal: %w", err)
	}
	return updated, nil
}

func (r *DynamoProposalRepository) ListByUser(ctx context.Context, userID string) ([]models.Proposal, []models.Proposal, error) {
	var all []models.Proposal
	err := r.Dynamo.ScanItems(ctx, models.Proposal{}.TableName(),
		"proposerId = :userId OR contains(recipientIds, :userId)",
		nil,
		map[string]types.AttributeValue{
			":userId": &types.AttributeValueMemberS{Value: userID},
		},
		&all)
	if err != nil {
		return nil, nil, err
	}

	var sent, received []models.Proposal
	for _, p := range all {
		if p.ProposerID == userID {
			sent = append(sent, p)
		}
		if p.HasRecipient(userID) {
			received = append(received, p)
		}
	}
	return sent, received, nil
}

func (r *DynamoProposalRepository) ListPendingExpiredBefore(ctx context.Context, cutoff time.Time) ([]models.Proposal, error) {
	var stale []models.Proposal
	err := r.Dynamo.ScanItems(ctx, models.Proposal{}.TableName(),
		"#s = :pending AND expiresAt <= :cutoff",
		map[string]string{"#s": "status"},
		map[string]types.AttributeValue{
			":pending": &types.AttributeValueMemberS{Value: models.ProposalStatusPending},
			":cutoff":  &types.AttributeValueMemberS{Value: cutoff.UTC().Format(time.RFC3339)},
		},
		&stale)
	if err != nil {
		return nil, err
	}
	return stale, nil
}

// DynamoGroupRepository persists confirmed groups in ConfirmedLunchGroups.
type DynamoGroupRepository struct {
	Dynamo *DynamoService
}

func (r *DynamoGroupRepository) Put(ctx context.Context, g models.ConfirmedGroup) error {
	return r.Dynamo.PutItem(ctx, g.TableName(), g, "")
}

func (r *DynamoGroupRepository) Get(ctx context.Context, groupID string) (models.ConfirmedGroup, error) {
	key := map[string]types.AttributeValue{
		"groupId": &types.AttributeValueMemberS{Value: groupID},
	}

	item, err := r.Dynamo.GetItem(ctx, models.ConfirmedGroup{}.TableName(), key)
	if err != nil {
		return models.ConfirmedGroup{}, err
	}
	if item == nil {
		return models.ConfirmedGroup{}, ErrNotFound
	}

	var g models.ConfirmedGroup
	if err := attributevalue.UnmarshalMap(item, &g); err != nil {
		return models.ConfirmedGroup{}, fmt.Errorf("failed to unmarshal group: %w", err)
	}
	return g, nil
}

func (r *DynamoGroupRepository) Delete(ctx context.Context, groupID string) error {
	key := map[string]types.AttributeValue{
		"groupId": &types.AttributeValueMemberS{Value: groupID},
	}
	return r.Dynamo.DeleteItem(ctx, models.ConfirmedGroup{}.TableName(), key)
}

func (r *DynamoGroupRepository) ListByMember(ctx context.Context, userID string) ([]models.ConfirmedGroup, error) {
	var groups []models.ConfirmedGroup
	err := r.Dynamo.ScanItems(ctx, models.ConfirmedGroup{}.TableName(),
		"contains(memberIds, :userId)",
		nil,
		map[string]types.AttributeValue{
			":userId": &types.AttributeValueMemberS{Value: userID},
		},
		&groups)
	if err != nil {
		return nil, err
	}
	return groups, nil
}
