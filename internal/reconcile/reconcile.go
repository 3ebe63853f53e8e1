package reconcile

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"meal-lens/internal/models"
)

// State classifies what a raw upstream payload turned out to hold.
type State int

const (
	// StateLoading means no structured result is present yet. The upstream
	// generation is still in flight and the caller should keep waiting.
	StateLoading State = iota
	// StateError means the payload carried a recognized error field.
	StateError
	// StateReady means a usable AnalysisResult was extracted.
	StateReady
)

// Extraction is the outcome of probing one upstream payload.
type Extraction struct {
	State  State
	Err    string
	Result *models.AnalysisResult
}

// Paths probed for the analysis object, in order. Upstream prompts evolve and
// the model does not always wrap its output the same way, so the first path
// that resolves to a JSON object wins.
var candidatePaths = []string{
	"result.structuredContent",
	"structuredContent",
	"result",
}

// Extract normalizes an arbitrarily-shaped upstream JSON payload into an
// Extraction. A JSON null classifies as loading, not error: the host delivers
// null before generation has produced anything.
func Extract(raw []byte) (Extraction, error) {
	if !gjson.ValidBytes(raw) {
		return Extraction{}, fmt.Errorf("payload is not valid JSON")
	}

	root := gjson.ParseBytes(raw)
	if root.Type == gjson.Null {
		return Extraction{State: StateLoading}, nil
	}

	candidate := root
	for _, path := range candidatePaths {
		if v := root.Get(path); v.IsObject() {
			candidate = v
			break
		}
	}

	return classify(candidate)
}

func classify(v gjson.Result) (Extraction, error) {
	if errMsg := v.Get("error"); errMsg.Type == gjson.String && errMsg.String() != "" {
		return Extraction{State: StateError, Err: errMsg.String()}, nil
	}

	meals := v.Get("loggedMeals")
	if meals.IsArray() && len(meals.Array()) > 0 {
		var result models.AnalysisResult
		if err := json.Unmarshal([]byte(v.Raw), &result); err != nil {
			return Extraction{}, fmt.Errorf("decoding analysis result: %w", err)
		}
		return Extraction{State: StateReady, Result: &result}, nil
	}

	// A raw description with no meals yet means generation is mid-flight.
	// Treating it as loading trades a small false-loading window for never
	// flashing an empty-data state before the model has finished.
	if hasDescription(v) {
		return Extraction{State: StateLoading}, nil
	}

	// An explicit empty meal list alongside totals is a complete,
	// legitimately empty result.
	if meals.IsArray() && v.Get("dailyTotals").IsObject() {
		var result models.AnalysisResult
		if err := json.Unmarshal([]byte(v.Raw), &result); err != nil {
			return Extraction{}, fmt.Errorf("decoding analysis result: %w", err)
		}
		if result.LoggedMeals == nil {
			result.LoggedMeals = []models.Meal{}
		}
		return Extraction{State: StateReady, Result: &result}, nil
	}

	return Extraction{State: StateLoading}, nil
}

func hasDescription(v gjson.Result) bool {
	for _, key := range []string{"foodDescription", "description"} {
		if d := v.Get(key); d.Type == gjson.String && d.String() != "" {
			return true
		}
	}
	return false
}
