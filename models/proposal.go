package models

import (
	"sort"
	"strings"
)

const (
	ProposalStatusPending   = "pending"
	ProposalStatusConfirmed = "confirmed"
	ProposalStatusCancelled = "cancelled"
	ProposalStatusExpired   = "expired"
)

// Proposal represents a lunch invitation awaiting unanimous acceptance.
// The coordinator is the only writer of Status and AcceptedIDs; Version
// backs the conditional update that guards the pending->confirmed edge.
type Proposal struct {
	ProposalID   string   `json:"proposalId" dynamodbav:"proposalId"` // PK
	ProposerID   string   `json:"proposerId" dynamodbav:"proposerId"`
	RecipientIDs []string `json:"recipientIds" dynamodbav:"recipientIds"`
	ProposedDate string   `json:"proposedDate" dynamodbav:"proposedDate"` // YYYY-MM-DD
	GroupKey     string   `json:"groupKey" dynamodbav:"groupKey"`         // GSI groupKey-index
	Status       string   `json:"status" dynamodbav:"status"`             // pending, confirmed, cancelled, expired
	AcceptedIDs  []string `json:"acceptedIds" dynamodbav:"acceptedIds"`
	CreatedAt    string   `json:"createdAt" dynamodbav:"createdAt"` // RFC3339
	ExpiresAt    string   `json:"expiresAt" dynamodbav:"expiresAt"` // RFC3339
	Version      int64    `json:"version" dynamodbav:"version"`
}

// TableName returns the DynamoDB table name
func (Proposal) TableName() string {
	return "LunchProposals"
}

// GroupKeyIndex is the GSI used for the one-pending-proposal-per-group check
const GroupKeyIndex = "groupKey-index"

// IsTerminal reports whether the proposal can no longer change state.
func (p *Proposal) IsTerminal() bool {
	return p.Status != ProposalStatusPending
}

// HasRecipient reports whether userID is one of the invited members.
func (p *Proposal) HasRecipient(userID string) bool {
	for _, id := range p.RecipientIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// HasAccepted reports whether userID's acceptance is already counted.
func (p *Proposal) HasAccepted(userID string) bool {
	for _, id := range p.AcceptedIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// AllAccepted reports whether every recipient has accepted.
func (p *Proposal) AllAccepted() bool {
	if len(p.AcceptedIDs) != len(p.RecipientIDs) {
		return false
	}
	for _, id := range p.RecipientIDs {
		if !p.HasAccepted(id) {
			return false
		}
	}
	return true
}

// Members returns proposer plus recipients, the full group membership.
func (p *Proposal) Members() []string {
	members := make([]string, 0, len(p.RecipientIDs)+1)
	members = append(members, p.ProposerID)
	members = append(members, p.RecipientIDs...)
	return members
}

// ComputeGroupKey derives the canonical group identity: sorted member ids
// joined with "#", then "@" and the date. Never stored authoritatively,
// always recomputable from membership and date.
func ComputeGroupKey(memberIDs []string, date string) string {
	ids := make([]string, len(memberIDs))
	copy(ids, memberIDs)
	sort.Strings(ids)
	return strings.Join(ids, "#") + "@" + date
}
