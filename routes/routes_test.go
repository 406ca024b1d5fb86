package routes_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lunchmate_server/client"
	"lunchmate_server/models"
	"lunchmate_server/routes"
	"lunchmate_server/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticDirectory struct {
	profiles []models.UserProfile
}

func (d *staticDirectory) GetEligibleUsers(context.Context, string) ([]models.UserProfile, error) {
	return d.profiles, nil
}

type noopSchedule struct{}

func (noopSchedule) HasConflict(context.Context, string, string) (bool, error) { return false, nil }
func (noopSchedule) Upsert(context.Context, services.ScheduleEvent) error      { return nil }
func (noopSchedule) Remove(context.Context, string) error                      { return nil }

// setupServer wires the full engine against in-memory storage and returns an
// API client pointed at it.
func setupServer(t *testing.T) *client.Client {
	t.Helper()

	profiles := make([]models.UserProfile, 0, 9)
	for i := 0; i < 9; i++ {
		profiles = append(profiles, models.UserProfile{UserID: fmt.Sprintf("user-%d", i)})
	}

	bus := services.NewEventBus()
	proposalService := services.NewProposalService(services.NewMemoryProposalRepository(), bus, 24*time.Hour)
	candidateService := &services.CandidateService{
		Directory: &staticDirectory{profiles: profiles},
		Schedule:  noopSchedule{},
	}
	cacheService := services.NewGroupCacheService(candidateService, bus, time.Hour, 6)
	groupService := services.NewConfirmedGroupService(services.NewMemoryGroupRepository(), noopSchedule{}, bus)

	r := mux.NewRouter()
	routes.RegisterSuggestionRoutes(r, cacheService)
	routes.RegisterProposalRoutes(r, proposalService)
	routes.RegisterGroupRoutes(r, groupService)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	c := client.New(server.URL)
	c.RetryInterval = 10 * time.Millisecond
	return c
}

func TestSuggestionsEndpoint(t *testing.T) {
	c := setupServer(t)
	ctx := context.Background()

	groups, err := c.SuggestedGroups(ctx, "2025-03-10")
	require.NoError(t, err)
	require.NotEmpty(t, groups)
	for _, g := range groups {
		assert.Equal(t, "2025-03-10", g.Date)
		assert.GreaterOrEqual(t, len(g.MemberIDs), models.MinGroupSize)
		assert.LessOrEqual(t, len(g.MemberIDs), models.MaxGroupSize)
	}

	again, err := c.SuggestedGroups(ctx, "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, groups, again)
}

func TestSuggestionsRejectMalformedDate(t *testing.T) {
	c := setupServer(t)

	_, err := c.SuggestedGroups(context.Background(), "not-a-date")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestProposalLifecycleOverHTTP(t *testing.T) {
	c := setupServer(t)
	ctx := context.Background()

	proposal, err := c.Propose(ctx, "user-0", []string{"user-1", "user-2"}, "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusPending, proposal.Status)

	// Duplicate propose for the same group and date.
	_, err = c.Propose(ctx, "user-0", []string{"user-2", "user-1"}, "2025-03-10")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)

	_, err = c.Accept(ctx, proposal.ProposalID, "user-1")
	require.NoError(t, err)
	confirmed, err := c.Accept(ctx, proposal.ProposalID, "user-2")
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusConfirmed, confirmed.Status)

	// The confirmation materialized a group for every member.
	for _, member := range []string{"user-0", "user-1", "user-2"} {
		groups, err := c.ConfirmedGroups(ctx, member)
		require.NoError(t, err)
		require.Len(t, groups, 1, "member %s", member)
	}

	// A late accept reports the resolved state.
	_, err = c.Accept(ctx, proposal.ProposalID, "user-1")
	require.Error(t, err)
	assert.True(t, client.IsAlreadyResolved(err))

	// Non-organizers leave; the organizer leaves last, dissolving the group.
	groups, err := c.ConfirmedGroups(ctx, "user-0")
	require.NoError(t, err)
	groupID := groups[0].GroupID

	require.NoError(t, c.LeaveGroup(ctx, groupID, "user-1"))
	require.NoError(t, c.LeaveGroup(ctx, groupID, "user-2"))
	require.NoError(t, c.LeaveGroup(ctx, groupID, "user-0"))

	groups, err = c.ConfirmedGroups(ctx, "user-0")
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestRejectAndMineOverHTTP(t *testing.T) {
	c := setupServer(t)
	ctx := context.Background()

	proposal, err := c.Propose(ctx, "user-0", []string{"user-1", "user-2"}, "2025-03-11")
	require.NoError(t, err)

	_, err = c.Accept(ctx, proposal.ProposalID, "user-1")
	require.NoError(t, err)
	rejected, err := c.Reject(ctx, proposal.ProposalID, "user-2")
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusCancelled, rejected.Status)

	sent, received, err := c.MyProposals(ctx, "user-0")
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Empty(t, received)
	assert.Equal(t, models.ProposalStatusCancelled, sent[0].Status)

	sent, received, err = c.MyProposals(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, sent)
	require.Len(t, received, 1)
}

func TestCancelPermissionOverHTTP(t *testing.T) {
	c := setupServer(t)
	ctx := context.Background()

	proposal, err := c.Propose(ctx, "user-0", []string{"user-1"}, "2025-03-12")
	require.NoError(t, err)

	_, err = c.Cancel(ctx, proposal.ProposalID, "user-1")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)

	cancelled, err := c.Cancel(ctx, proposal.ProposalID, "user-0")
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusCancelled, cancelled.Status)
}
