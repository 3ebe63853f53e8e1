package models

import (
	"time"
)

// NutrientSet is the four-field macro-nutrient quantity used everywhere:
// energy in kcal, the other three in grams.
type NutrientSet struct {
	Energy       float64 `json:"energy"`
	Protein      float64 `json:"protein"`
	Carbohydrate float64 `json:"carbohydrate"`
	Fat          float64 `json:"fat"`
}

// Add returns the element-wise sum of n and other.
func (n NutrientSet) Add(other NutrientSet) NutrientSet {
	return NutrientSet{
		Energy:       n.Energy + other.Energy,
		Protein:      n.Protein + other.Protein,
		Carbohydrate: n.Carbohydrate + other.Carbohydrate,
		Fat:          n.Fat + other.Fat,
	}
}

type Ingredient struct {
	Name      string      `json:"name"`
	Brand     string      `json:"brand,omitempty"`
	Serving   string      `json:"serving,omitempty"`
	Nutrients NutrientSet `json:"nutrients"`
}

// Meal groups ingredients under one name. Total is kept consistent with the
// ingredient sum by reconcile.CorrectTotals, not trusted as reported.
type Meal struct {
	Name        string       `json:"name"`
	Size        string       `json:"size,omitempty"`
	Ingredients []Ingredient `json:"ingredients"`
	Total       NutrientSet  `json:"total"`
}

// AnalysisResult is the canonical output of one food-description analysis.
// Either Error is set, or DailyTotals and LoggedMeals are.
type AnalysisResult struct {
	Error       string      `json:"error,omitempty"`
	DailyTotals NutrientSet `json:"dailyTotals"`
	LoggedMeals []Meal      `json:"loggedMeals"`
}

type AnalyzeRequest struct {
	FoodDescription string `json:"foodDescription"`
}

// AnalysisRecord is one row of the analysis history log. The AnalysisResult
// itself lives only for the duration of a request; the record is a derived
// summary written after the response is final.
type AnalysisRecord struct {
	ID              string      `json:"id"`
	FoodDescription string      `json:"food_description"`
	MealCount       int         `json:"meal_count"`
	DailyTotals     NutrientSet `json:"daily_totals"`
	CreatedAt       time.Time   `json:"created_at"`
}
