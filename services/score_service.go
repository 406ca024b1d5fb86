package services

import (
	"hash/fnv"

	"lunchmate_server/models"
)

// Seed namespaces keep the scoring tiebreak and the presentation shuffle on
// independent pseudo-random streams, so tuning one never perturbs the other.
const (
	scoreSeedNamespace   = "score:"
	shuffleSeedNamespace = "shuffle:"
	drawSeedNamespace    = "draw:"
)

// dateSeed derives a deterministic seed from a namespace and a date string.
func dateSeed(namespace, date string) int64 {
	h := fnv.New64a()
	h.Write([]byte(namespace + date))
	return int64(h.Sum64())
}

// Scorer computes deterministic compatibility scores for candidate groups.
// All methods are pure and safe for concurrent use.
type Scorer struct{}

// Score returns sizeScore + the sum of pairwise scores over all unordered
// member pairs + the per-date tiebreak. Always a non-negative integer.
func (Scorer) Score(group []models.UserProfile, date string) int {
	total := sizeScore(len(group))
	for i := 0; i < len(group); i++ {
		for j := i + 1; j < len(group); j++ {
			total += pairwiseScore(group[i], group[j])
		}
	}
	return total + DateTiebreak(date)
}

// DateTiebreak is a value in [0,16) derived from the date string alone. It is
// identical for every group on a date: a day-to-day variance signal, not a
// per-group randomizer.
func DateTiebreak(date string) int {
	seed := dateSeed(scoreSeedNamespace, date)
	return int(uint64(seed) % 16)
}

func sizeScore(n int) int {
	switch n {
	case 3:
		return 30
	case 4:
		return 25
	case 2:
		return 20
	default:
		return 10
	}
}

func pairwiseScore(a, b models.UserProfile) int {
	score := 0
	if tagsIntersect(a.FoodGenres, b.FoodGenres) {
		score += 15
	}
	if a.LunchStyle != "" && a.LunchStyle == b.LunchStyle {
		score += 20
	}
	if a.PreferredTime != "" && a.PreferredTime == b.PreferredTime {
		score += 15
	}
	if tagsIntersect(a.Allergies, b.Allergies) {
		score += 10
	}
	score += meetingRecencyScore(a, b)
	return score
}

// meetingRecencyScore favors fresh pairings: the first-meeting bonus applies
// when either side has no record of the other, so a member sharing nothing
// with anyone still collects +25 per pair. A missing key, an explicit
// LastMetNever, and any unrecognized recency value all count as a first
// meeting.
func meetingRecencyScore(a, b models.UserProfile) int {
	aRec := a.LastMet[b.UserID]
	bRec := b.LastMet[a.UserID]
	if !knownRecency(aRec) || !knownRecency(bRec) {
		return 25
	}
	if aRec == models.LastMetLongAgo || bRec == models.LastMetLongAgo {
		return 15
	}
	return 0
}

func knownRecency(rec string) bool {
	return rec == models.LastMetRecent || rec == models.LastMetLongAgo
}

func tagsIntersect(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, tag := range a {
		set[tag] = struct{}{}
	}
	for _, tag := range b {
		if _, ok := set[tag]; ok {
			return true
		}
	}
	return false
}
