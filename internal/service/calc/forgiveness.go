package calc

import (
	"sort"
	"time"
)

// LateOccurrence - one late arrival inside a cycle.
type LateOccurrence struct {
	Date    time.Time
	Minutes int
}

// ForgivenessResult splits a cycle's late occurrences across the two
// forgiveness tiers.
type ForgivenessResult struct {
	GraceForgiven int
	QuotaForgiven int
	Charged       int
}

// applyForgiveness evaluates occurrences in chronological order.
// Tier 1 forgives anything at or under graceMinutes unconditionally.
// Tier 2 forgives the remainder up to the quarterly quota that is still
// unused after priorQuarterUsed occurrences were consumed by earlier cycles
// of the same quarter. Everything past both tiers is charged.
func applyForgiveness(occurrences []LateOccurrence, graceMinutes, quarterlyLimit, priorQuarterUsed int) ForgivenessResult {
	sorted := make([]LateOccurrence, len(occurrences))
	copy(sorted, occurrences)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	quotaLeft := quarterlyLimit - priorQuarterUsed
	if quotaLeft < 0 {
		quotaLeft = 0
	}

	var res ForgivenessResult
	for _, occ := range sorted {
		if occ.Minutes <= graceMinutes {
			res.GraceForgiven++
			continue
		}
		if quotaLeft > 0 {
			res.QuotaForgiven++
			quotaLeft--
			continue
		}
		res.Charged++
	}
	return res
}
