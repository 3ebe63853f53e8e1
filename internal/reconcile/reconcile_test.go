package reconcile

import (
	"testing"

	"meal-lens/internal/models"
)

const mealPayload = `{
	"dailyTotals": {"energy": 57, "protein": 1, "carbohydrate": 15, "fat": 0},
	"loggedMeals": [
		{
			"name": "Blueberries",
			"size": "100g",
			"ingredients": [
				{"name": "blueberries", "serving": "100g",
				 "nutrients": {"energy": 57, "protein": 0.7, "carbohydrate": 14.5, "fat": 0.3}}
			],
			"total": {"energy": 57, "protein": 1, "carbohydrate": 15, "fat": 0}
		}
	]
}`

func TestExtractNestedResultStructuredContent(t *testing.T) {
	raw := []byte(`{"result": {"structuredContent": ` + mealPayload + `}}`)

	ext, err := Extract(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ext.State != StateReady {
		t.Fatalf("expected ready state, got %v", ext.State)
	}
	if len(ext.Result.LoggedMeals) != 1 {
		t.Fatalf("expected 1 meal, got %d", len(ext.Result.LoggedMeals))
	}
	if ext.Result.LoggedMeals[0].Name != "Blueberries" {
		t.Fatalf("unexpected meal name %q", ext.Result.LoggedMeals[0].Name)
	}
}

func TestExtractTopLevelStructuredContent(t *testing.T) {
	raw := []byte(`{"structuredContent": ` + mealPayload + `}`)

	ext, err := Extract(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ext.State != StateReady {
		t.Fatalf("expected ready state, got %v", ext.State)
	}
	if got := ext.Result.LoggedMeals[0].Ingredients[0].Nutrients.Carbohydrate; got != 14.5 {
		t.Fatalf("expected carbohydrate 14.5, got %v", got)
	}
}

func TestExtractTopLevelResult(t *testing.T) {
	raw := []byte(`{"result": ` + mealPayload + `}`)

	ext, err := Extract(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ext.State != StateReady {
		t.Fatalf("expected ready state, got %v", ext.State)
	}
}

func TestExtractBarePayload(t *testing.T) {
	ext, err := Extract([]byte(mealPayload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ext.State != StateReady {
		t.Fatalf("expected ready state, got %v", ext.State)
	}
}

func TestExtractPrefersNestedOverTopLevel(t *testing.T) {
	// Both wrappers present: the deepest recognized path wins.
	raw := []byte(`{
		"result": {"structuredContent": ` + mealPayload + `},
		"structuredContent": {"error": "should not be picked"}
	}`)

	ext, err := Extract(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ext.State != StateReady {
		t.Fatalf("expected ready state, got %v", ext.State)
	}
}

func TestExtractNullIsLoading(t *testing.T) {
	ext, err := Extract([]byte(`null`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ext.State != StateLoading {
		t.Fatalf("expected loading state for null payload, got %v", ext.State)
	}
}

func TestExtractDescriptionWithoutMealsIsLoading(t *testing.T) {
	raw := []byte(`{"foodDescription": "two eggs and toast", "loggedMeals": []}`)

	ext, err := Extract(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ext.State != StateLoading {
		t.Fatalf("expected loading state mid-generation, got %v", ext.State)
	}
}

func TestExtractErrorField(t *testing.T) {
	raw := []byte(`{"result": {"structuredContent": {"error": "model unavailable"}}}`)

	ext, err := Extract(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ext.State != StateError {
		t.Fatalf("expected error state, got %v", ext.State)
	}
	if ext.Err != "model unavailable" {
		t.Fatalf("unexpected error message %q", ext.Err)
	}
}

func TestExtractEmptyMealListWithTotalsIsReady(t *testing.T) {
	raw := []byte(`{"dailyTotals": {"energy": 0, "protein": 0, "carbohydrate": 0, "fat": 0}, "loggedMeals": []}`)

	ext, err := Extract(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ext.State != StateReady {
		t.Fatalf("expected ready state for empty result, got %v", ext.State)
	}
	if len(ext.Result.LoggedMeals) != 0 {
		t.Fatalf("expected no meals, got %d", len(ext.Result.LoggedMeals))
	}
}

func TestExtractRejectsInvalidJSON(t *testing.T) {
	if _, err := Extract([]byte(`{"loggedMeals": [`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestCorrectTotalsSumsIngredients(t *testing.T) {
	result := &models.AnalysisResult{
		LoggedMeals: []models.Meal{
			{
				Name: "Breakfast",
				Ingredients: []models.Ingredient{
					{Name: "eggs", Nutrients: models.NutrientSet{Energy: 143.2, Protein: 12.6, Carbohydrate: 0.7, Fat: 9.5}},
					{Name: "toast", Nutrients: models.NutrientSet{Energy: 79.4, Protein: 2.7, Carbohydrate: 14.7, Fat: 1.1}},
				},
				// Deliberately wrong reported total.
				Total: models.NutrientSet{Energy: 999, Protein: 99, Carbohydrate: 99, Fat: 99},
			},
		},
	}

	CorrectTotals(result)

	meal := result.LoggedMeals[0]
	want := models.NutrientSet{Energy: 223, Protein: 15, Carbohydrate: 15, Fat: 11}
	if meal.Total != want {
		t.Fatalf("meal total = %+v, want %+v", meal.Total, want)
	}
	if result.DailyTotals != want {
		t.Fatalf("daily totals = %+v, want %+v", result.DailyTotals, want)
	}
}

func TestCorrectTotalsSumsBeforeRounding(t *testing.T) {
	// 0.4 + 0.4 = 0.8 rounds to 1; round-then-sum would give 0.
	result := &models.AnalysisResult{
		LoggedMeals: []models.Meal{
			{
				Name: "Snack",
				Ingredients: []models.Ingredient{
					{Name: "a", Nutrients: models.NutrientSet{Protein: 0.4}},
					{Name: "b", Nutrients: models.NutrientSet{Protein: 0.4}},
				},
			},
		},
	}

	CorrectTotals(result)

	if got := result.LoggedMeals[0].Total.Protein; got != 1 {
		t.Fatalf("protein = %v, want 1", got)
	}
}

func TestCorrectTotalsKeepsReportedTotalForEmptyMeal(t *testing.T) {
	reported := models.NutrientSet{Energy: 350, Protein: 20, Carbohydrate: 30, Fat: 15}
	result := &models.AnalysisResult{
		LoggedMeals: []models.Meal{
			{Name: "Mystery plate", Total: reported},
		},
	}

	CorrectTotals(result)

	if result.LoggedMeals[0].Total != reported {
		t.Fatalf("empty meal total changed: %+v", result.LoggedMeals[0].Total)
	}
	if result.DailyTotals != reported {
		t.Fatalf("daily totals = %+v, want %+v", result.DailyTotals, reported)
	}
}

func TestCorrectTotalsSumsAcrossMeals(t *testing.T) {
	result := &models.AnalysisResult{
		LoggedMeals: []models.Meal{
			{Name: "A", Total: models.NutrientSet{Energy: 100, Protein: 10, Carbohydrate: 20, Fat: 5}},
			{Name: "B", Total: models.NutrientSet{Energy: 250, Protein: 15, Carbohydrate: 30, Fat: 10}},
		},
	}

	CorrectTotals(result)

	want := models.NutrientSet{Energy: 350, Protein: 25, Carbohydrate: 50, Fat: 15}
	if result.DailyTotals != want {
		t.Fatalf("daily totals = %+v, want %+v", result.DailyTotals, want)
	}
}

func TestCorrectTotalsIsIdempotent(t *testing.T) {
	result := &models.AnalysisResult{
		LoggedMeals: []models.Meal{
			{
				Name: "Lunch",
				Ingredients: []models.Ingredient{
					{Name: "rice", Nutrients: models.NutrientSet{Energy: 204.6, Protein: 4.2, Carbohydrate: 44.1, Fat: 0.4}},
					{Name: "chicken", Nutrients: models.NutrientSet{Energy: 164.9, Protein: 31.0, Carbohydrate: 0, Fat: 3.6}},
				},
			},
			{Name: "Apple", Total: models.NutrientSet{Energy: 95, Protein: 0, Carbohydrate: 25, Fat: 0}},
		},
	}

	CorrectTotals(result)
	once := *result
	onceMeals := make([]models.Meal, len(result.LoggedMeals))
	copy(onceMeals, result.LoggedMeals)

	CorrectTotals(result)

	if result.DailyTotals != once.DailyTotals {
		t.Fatalf("daily totals changed on second pass: %+v vs %+v", result.DailyTotals, once.DailyTotals)
	}
	for i := range onceMeals {
		if result.LoggedMeals[i].Total != onceMeals[i].Total {
			t.Fatalf("meal %d total changed on second pass", i)
		}
	}
}

func TestCorrectTotalsNilResult(t *testing.T) {
	CorrectTotals(nil) // must not panic
}
