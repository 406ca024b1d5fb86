package models

// Group size bounds for candidate generation
const (
	MinGroupSize       = 2
	MaxGroupSize       = 4
	PreferredGroupSize = 3
)

// CandidateGroup is an unconfirmed lunch suggestion for a date. Groups are
// recomputed on cache miss and never persisted.
type CandidateGroup struct {
	Date      string   `json:"date"`
	MemberIDs []string `json:"memberIds"`
	Score     int      `json:"score"`
}

// Key returns the canonical GroupKey for this candidate.
func (g *CandidateGroup) Key() string {
	return ComputeGroupKey(g.MemberIDs, g.Date)
}
