package services

import (
	"context"

	"lunchmate_server/models"
)

// DynamoUserDirectory reads eligible profiles from the UserProfiles table.
// The engine never writes profiles; the directory service owns them.
type DynamoUserDirectory struct {
	Dynamo *DynamoService
}

// GetEligibleUsers returns every opted-in profile. Schedule conflicts for
// the date are filtered later by the candidate service, not here.
func (d *DynamoUserDirectory) GetEligibleUsers(ctx context.Context, _ string) ([]models.UserProfile, error) {
	var profiles []models.UserProfile
	if err := d.Dynamo.ScanItems(ctx, models.UserProfilesTable, "", nil, nil, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}
