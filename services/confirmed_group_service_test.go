package services

import (
	"context"
	"testing"

	"lunchmate_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func confirmedProposal() models.Proposal {
	return models.Proposal{
		ProposalID:   "p1",
		ProposerID:   "alice",
		RecipientIDs: []string{"bob", "carol"},
		ProposedDate: "2025-03-10",
		Status:       models.ProposalStatusConfirmed,
		AcceptedIDs:  []string{"bob", "carol"},
	}
}

func TestMaterializeStoresGroupAndPushesSchedule(t *testing.T) {
	schedule := &fakeSchedule{}
	svc := NewConfirmedGroupService(NewMemoryGroupRepository(), schedule, nil)

	group, err := svc.Materialize(context.Background(), confirmedProposal())
	require.NoError(t, err)

	assert.Equal(t, "2025-03-10", group.Date)
	assert.Equal(t, "alice", group.OrganizerID)
	assert.ElementsMatch(t, []string{"alice", "bob", "carol"}, group.MemberIDs)

	require.Len(t, schedule.upserts, 1)
	assert.Equal(t, group.EventID, schedule.upserts[0].EventID)
	assert.ElementsMatch(t, group.MemberIDs, schedule.upserts[0].MemberIDs)
}

func TestConfirmationEventTriggersMaterialization(t *testing.T) {
	bus := NewEventBus()
	schedule := &fakeSchedule{}
	svc := NewConfirmedGroupService(NewMemoryGroupRepository(), schedule, bus)

	bus.PublishGroupConfirmed(GroupConfirmedEvent{Proposal: confirmedProposal()})

	groups, err := svc.GroupsFor(context.Background(), "bob")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Len(t, schedule.upserts, 1)
}

func TestLeaveShrinksMembership(t *testing.T) {
	schedule := &fakeSchedule{}
	svc := NewConfirmedGroupService(NewMemoryGroupRepository(), schedule, nil)
	ctx := context.Background()

	group, err := svc.Materialize(ctx, confirmedProposal())
	require.NoError(t, err)

	require.NoError(t, svc.Leave(ctx, group.GroupID, "bob"))

	remaining, err := svc.GroupsFor(ctx, "carol")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.ElementsMatch(t, []string{"alice", "carol"}, remaining[0].MemberIDs)

	// The schedule entry was updated, not removed.
	assert.Empty(t, schedule.removed)
	assert.Len(t, schedule.upserts, 2)

	gone, err := svc.GroupsFor(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, gone)
}

func TestOrganizerCannotAbandonMembers(t *testing.T) {
	svc := NewConfirmedGroupService(NewMemoryGroupRepository(), &fakeSchedule{}, nil)
	ctx := context.Background()

	group, err := svc.Materialize(ctx, confirmedProposal())
	require.NoError(t, err)

	err = svc.Leave(ctx, group.GroupID, "alice")
	assert.ErrorIs(t, err, ErrPermission)
}

func TestLastMemberLeavingDissolvesGroup(t *testing.T) {
	schedule := &fakeSchedule{}
	svc := NewConfirmedGroupService(NewMemoryGroupRepository(), schedule, nil)
	ctx := context.Background()

	group, err := svc.Materialize(ctx, confirmedProposal())
	require.NoError(t, err)

	require.NoError(t, svc.Leave(ctx, group.GroupID, "bob"))
	require.NoError(t, svc.Leave(ctx, group.GroupID, "carol"))
	// Organizer is now alone and may leave, dissolving the group.
	require.NoError(t, svc.Leave(ctx, group.GroupID, "alice"))

	assert.Equal(t, []string{group.EventID}, schedule.removed)
	err = svc.Leave(ctx, group.GroupID, "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLeaveByNonMember(t *testing.T) {
	svc := NewConfirmedGroupService(NewMemoryGroupRepository(), &fakeSchedule{}, nil)
	ctx := context.Background()

	group, err := svc.Materialize(ctx, confirmedProposal())
	require.NoError(t, err)

	err = svc.Leave(ctx, group.GroupID, "mallory")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEventBusUnsubscribe(t *testing.T) {
	bus := NewEventBus()
	calls := 0
	unsubscribe := bus.SubscribeCacheInvalidated(func(CacheInvalidatedEvent) { calls++ })

	bus.PublishCacheInvalidated(CacheInvalidatedEvent{Date: "2025-03-10"})
	unsubscribe()
	bus.PublishCacheInvalidated(CacheInvalidatedEvent{Date: "2025-03-10"})

	assert.Equal(t, 1, calls)
}
