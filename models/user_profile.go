package models

const (
	// LastMet values, keyed per peer in UserProfile.LastMet. A missing key
	// means the same as LastMetNever: the two have never shared a lunch.
	LastMetNever   = "never"
	LastMetRecent  = "recent"
	LastMetLongAgo = "long_ago"
)

// UserProfile is the read-only slice of the user directory this engine
// consumes for scoring. Ownership stays with the directory service.
type UserProfile struct {
	UserID        string            `dynamodbav:"userId" json:"userId"`
	DisplayName   string            `dynamodbav:"displayName,omitempty" json:"displayName,omitempty"`
	FoodGenres    []string          `dynamodbav:"foodGenres,omitempty" json:"foodGenres,omitempty"`
	LunchStyle    string            `dynamodbav:"lunchStyle,omitempty" json:"lunchStyle,omitempty"`
	PreferredTime string            `dynamodbav:"preferredTime,omitempty" json:"preferredTime,omitempty"`
	Allergies     []string          `dynamodbav:"allergies,omitempty" json:"allergies,omitempty"`
	LastMet       map[string]string `dynamodbav:"lastMet,omitempty" json:"lastMet,omitempty"` // peer id -> recency
}

// UserProfilesTable is the DynamoDB table name for user profiles
const UserProfilesTable = "UserProfiles"
