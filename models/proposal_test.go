package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeGroupKeyIsOrderInsensitive(t *testing.T) {
	a := ComputeGroupKey([]string{"carol", "alice", "bob"}, "2025-03-10")
	b := ComputeGroupKey([]string{"bob", "carol", "alice"}, "2025-03-10")
	assert.Equal(t, a, b)

	otherDay := ComputeGroupKey([]string{"alice", "bob", "carol"}, "2025-03-11")
	assert.NotEqual(t, a, otherDay)

	otherMembers := ComputeGroupKey([]string{"alice", "bob"}, "2025-03-10")
	assert.NotEqual(t, a, otherMembers)
}

func TestComputeGroupKeyDoesNotMutateInput(t *testing.T) {
	members := []string{"carol", "alice", "bob"}
	ComputeGroupKey(members, "2025-03-10")
	assert.Equal(t, []string{"carol", "alice", "bob"}, members)
}

func TestProposalJSONRoundTrip(t *testing.T) {
	original := Proposal{
		ProposalID:   "p-123",
		ProposerID:   "alice",
		RecipientIDs: []string{"bob", "carol"},
		ProposedDate: "2025-03-10",
		GroupKey:     ComputeGroupKey([]string{"alice", "bob", "carol"}, "2025-03-10"),
		Status:       ProposalStatusPending,
		AcceptedIDs:  []string{"bob"},
		CreatedAt:    "2025-03-09T11:00:00Z",
		ExpiresAt:    "2025-03-10T11:00:00Z",
		Version:      3,
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Proposal
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestProposalAcceptanceHelpers(t *testing.T) {
	p := Proposal{
		ProposerID:   "alice",
		RecipientIDs: []string{"bob", "carol"},
		AcceptedIDs:  []string{"bob"},
		Status:       ProposalStatusPending,
	}

	assert.True(t, p.HasRecipient("bob"))
	assert.False(t, p.HasRecipient("alice"), "the proposer is not a recipient")
	assert.True(t, p.HasAccepted("bob"))
	assert.False(t, p.HasAccepted("carol"))
	assert.False(t, p.AllAccepted())
	assert.False(t, p.IsTerminal())

	p.AcceptedIDs = append(p.AcceptedIDs, "carol")
	assert.True(t, p.AllAccepted())

	p.Status = ProposalStatusConfirmed
	assert.True(t, p.IsTerminal())

	assert.Equal(t, []string{"alice", "bob", "carol"}, p.Members())
}
