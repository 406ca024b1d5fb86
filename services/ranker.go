package services

import (
	"math/rand"
	"sort"

	"lunchmate_server/models"
)

// Ranker orders candidate groups for presentation: preferred-size groups
// first, then descending score. Groups tied on (size, score) are shuffled
// with a date-seeded source so repeated visits do not always show
// byte-identical top results, without ever promoting a lower-scored group.
type Ranker struct{}

// Rank returns a newly ordered copy of groups.
func (Ranker) Rank(groups []models.CandidateGroup, date string) []models.CandidateGroup {
	ranked := make([]models.CandidateGroup, len(groups))
	copy(ranked, groups)

	sort.SliceStable(ranked, func(i, j int) bool {
		pi, pj := sizeBand(len(ranked[i].MemberIDs)), sizeBand(len(ranked[j].MemberIDs))
		if pi != pj {
			return pi < pj
		}
		if len(ranked[i].MemberIDs) != len(ranked[j].MemberIDs) {
			return len(ranked[i].MemberIDs) > len(ranked[j].MemberIDs)
		}
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Key() < ranked[j].Key()
	})

	// One rng for all bands keeps the whole ordering a pure function of the
	// input set and the date. The seed is independent from the scoring
	// tiebreak stream.
	rng := rand.New(rand.NewSource(dateSeed(shuffleSeedNamespace, date)))
	for start := 0; start < len(ranked); {
		end := start + 1
		for end < len(ranked) &&
			len(ranked[end].MemberIDs) == len(ranked[start].MemberIDs) &&
			ranked[end].Score == ranked[start].Score {
			end++
		}
		band := ranked[start:end]
		rng.Shuffle(len(band), func(i, j int) {
			band[i], band[j] = band[j], band[i]
		})
		start = end
	}

	return ranked
}

// sizeBand places preferred-size groups ahead of everything else.
func sizeBand(n int) int {
	if n == models.PreferredGroupSize {
		return 0
	}
	return 1
}
