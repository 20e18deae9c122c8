package meals

import "sort"

// Tally counts the recorded verdicts across ratings: up is the number of
// approvals, total the number of non-omitted verdicts.
func Tally(ratings []Rating) (up, total int) {
	for _, r := range ratings {
		for _, v := range r.Verdicts {
			switch v {
			case Up:
				up++
				total++
			case Down:
				total++
			}
		}
	}
	return up, total
}

// Approval returns up/total as a percentage, or 0 when total is 0.
func Approval(up, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(up) / float64(total) * 100
}

// TopRated ranks meals by approval percentage.
//
// Meals without a single recorded verdict are left out. The rest are
// ordered by approval descending, then by total votes descending; meals
// equal on both keep their order in meals. At most limit entries are
// returned (limit <= 0 means no cap).
func TopRated(meals []Meal, ratings []Rating, limit int) []Ranked {
	byMeal := make(map[string][]Rating, len(meals))
	for _, r := range ratings {
		byMeal[r.MealID] = append(byMeal[r.MealID], r)
	}

	ranked := make([]Ranked, 0, len(meals))
	for _, m := range meals {
		up, total := Tally(byMeal[m.ID])
		if total == 0 {
			continue
		}
		ranked = append(ranked, Ranked{
			Meal:           m,
			ApprovalRating: Approval(up, total),
			TotalVotes:     total,
			UpVotes:        up,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].ApprovalRating != ranked[j].ApprovalRating {
			return ranked[i].ApprovalRating > ranked[j].ApprovalRating
		}
		return ranked[i].TotalVotes > ranked[j].TotalVotes
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
