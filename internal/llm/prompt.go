package llm

import "fmt"

// BuildSystemPrompt returns the instruction block sent with every analysis.
// The schema here is the contract the reconciler and corrector downstream
// depend on; the corrector re-derives all totals, so a model that sums badly
// still produces a consistent result.
func BuildSystemPrompt() string {
	return `You are a nutrition expert. You estimate the macro-nutrient content of meals from free-text descriptions.

IMPORTANT: Always respond with valid JSON. Output MUST start with { and end with }, with no markdown and no extra text.

Required JSON schema:
{
  "dailyTotals": {"energy": number, "protein": number, "carbohydrate": number, "fat": number},
  "loggedMeals": [
    {
      "name": "string",
      "size": "portion descriptor, e.g. '1 medium bowl'",
      "ingredients": [
        {
          "name": "string",
          "brand": "string, omit if unknown",
          "serving": "portion with units, e.g. '100g'",
          "nutrients": {"energy": number, "protein": number, "carbohydrate": number, "fat": number}
        }
      ],
      "total": {"energy": number, "protein": number, "carbohydrate": number, "fat": number}
    }
  ]
}

Energy is in kcal; protein, carbohydrate and fat are in grams. Split distinct dishes into separate meals. Every meal total should be the sum of its ingredient nutrients, and dailyTotals the sum of the meal totals.`
}

// BuildUserPrompt wraps one food description for analysis.
func BuildUserPrompt(foodDescription string) string {
	return fmt.Sprintf(`Analyze this food and estimate its nutrition: %q

Break it down into meals and ingredients with realistic portion estimates.`, foodDescription)
}
