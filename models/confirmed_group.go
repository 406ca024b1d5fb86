package models

// ConfirmedGroup is a proposal every recipient accepted, promoted to a real
// scheduled lunch. It lives until membership shrinks to zero via leave.
type ConfirmedGroup struct {
	GroupID     string   `json:"groupId" dynamodbav:"groupId"` // PK
	Date        string   `json:"date" dynamodbav:"date"`
	MemberIDs   []string `json:"memberIds" dynamodbav:"memberIds"`
	OrganizerID string   `json:"organizerId" dynamodbav:"organizerId"` // the original proposer
	EventID     string   `json:"eventId" dynamodbav:"eventId"`         // schedule collaborator handle
	CreatedAt   string   `json:"createdAt" dynamodbav:"createdAt"`
}

// TableName returns the DynamoDB table name
func (ConfirmedGroup) TableName() string {
	return "ConfirmedLunchGroups"
}

// HasMember reports whether userID currently belongs to the group.
func (g *ConfirmedGroup) HasMember(userID string) bool {
	for _, id := range g.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}
