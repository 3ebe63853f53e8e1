package reconcile

import (
	"math"

	"meal-lens/internal/models"
)

// CorrectTotals enforces the two summing invariants on a freshly extracted
// result: each meal's total equals the element-wise sum of its ingredients'
// nutrients, and the daily totals equal the sum of the corrected meal totals.
// The upstream model is asked to self-sum but is not trusted to do so.
//
// Each field is summed first and rounded after, so per-ingredient rounding
// error never accumulates. Meals with no ingredients keep their reported
// total; there is nothing to derive it from. The pass is deterministic and
// idempotent.
func CorrectTotals(result *models.AnalysisResult) {
	if result == nil {
		return
	}

	var daily models.NutrientSet
	for i := range result.LoggedMeals {
		meal := &result.LoggedMeals[i]
		if len(meal.Ingredients) > 0 {
			var sum models.NutrientSet
			for _, ing := range meal.Ingredients {
				sum = sum.Add(ing.Nutrients)
			}
			meal.Total = roundSet(sum)
		}
		daily = daily.Add(meal.Total)
	}
	result.DailyTotals = roundSet(daily)
}

func roundSet(n models.NutrientSet) models.NutrientSet {
	return models.NutrientSet{
		Energy:       math.Round(n.Energy),
		Protein:      math.Round(n.Protein),
		Carbohydrate: math.Round(n.Carbohydrate),
		Fat:          math.Round(n.Fat),
	}
}
