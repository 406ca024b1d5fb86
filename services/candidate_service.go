package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"

	"lunchmate_server/models"
)

// CandidateService builds scored candidate lunch groups for a date. Drawn
// groups are suggestions, not reservations: members may appear in several
// candidates across draw rounds, only deduplicated by GroupKey.
type CandidateService struct {
	Directory UserDirectory
	Schedule  ScheduleSink
	Scorer    Scorer
}

// Suggest returns up to k distinct scored candidate groups for date. A pool
// with fewer than two eligible users yields an empty list, not an error.
func (s *CandidateService) Suggest(ctx context.Context, date string, k int) ([]models.CandidateGroup, error) {
	profiles, err := s.Directory.GetEligibleUsers(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch eligible users for %s: %w", date, err)
	}

	pool := make([]models.UserProfile, 0, len(profiles))
	for _, profile := range profiles {
		conflict, err := s.Schedule.HasConflict(ctx, profile.UserID, date)
		if err != nil {
			return nil, fmt.Errorf("failed to check schedule conflict for %s: %w", profile.UserID, err)
		}
		if !conflict {
			pool = append(pool, profile)
		}
	}

	if len(pool) < models.MinGroupSize {
		slog.Debug("candidate pool too small", "date", date, "poolSize", len(pool))
		return []models.CandidateGroup{}, nil
	}

	seen := make(map[string]bool)
	groups := make([]models.CandidateGroup, 0, k)

	// Each round reshuffles the full pool with a round-salted date seed and
	// partitions it into threes plus an optional trailing pair. Rounds stop
	// once k groups exist or a whole round contributes nothing new.
	for round := 0; len(groups) < k; round++ {
		rng := rand.New(rand.NewSource(dateSeed(drawSeedNamespace, date+":"+strconv.Itoa(round))))
		shuffled := make([]models.UserProfile, len(pool))
		copy(shuffled, pool)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		added := 0
		for start := 0; start < len(shuffled) && len(groups) < k; {
			size := models.PreferredGroupSize
			remaining := len(shuffled) - start
			if remaining < models.PreferredGroupSize {
				if remaining < models.MinGroupSize {
					break // a single leftover member cannot form a group
				}
				size = models.MinGroupSize
			}

			members := shuffled[start : start+size]
			start += size

			memberIDs := make([]string, 0, size)
			for _, m := range members {
				memberIDs = append(memberIDs, m.UserID)
			}

			key := models.ComputeGroupKey(memberIDs, date)
			if seen[key] {
				continue
			}
			seen[key] = true
			added++

			groups = append(groups, models.CandidateGroup{
				Date:      date,
				MemberIDs: memberIDs,
				Score:     s.Scorer.Score(members, date),
			})
		}

		if added == 0 {
			break
		}
	}

	slog.Debug("generated candidate groups", "date", date, "count", len(groups))
	return groups, nil
}
