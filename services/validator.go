package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/george11642/BlackPill-sub000/models"
)

// Structural limits for an analysis result. Shared by the validator, the
// vision prompt and the fallback scorer.
const (
	MinScore = 1.0
	MaxScore = 10.0

	MinDescriptionLen    = 10
	MinImprovementLen    = 20
	MinTips              = 5
	MinTipTitleLen       = 5
	MinTipDescriptionLen = 30
	MinTipTimeframeLen   = 5
)

// ValidateCandidate checks a parsed candidate of unknown shape against every
// structural and numeric-range rule. It returns nil when the candidate is a
// contract-compliant AnalysisResult, otherwise a *ValidationError naming the
// exact field, category or tip index that failed.
func ValidateCandidate(candidate map[string]interface{}) error {
	rawScore, ok := candidate["score"]
	if !ok {
		return &ValidationError{Field: "score", Reason: "missing"}
	}
	if err := validateScore("score", rawScore); err != nil {
		return err
	}

	rawBreakdown, ok := candidate["breakdown"]
	if !ok {
		return &ValidationError{Field: "breakdown", Reason: "missing"}
	}
	breakdown, ok := rawBreakdown.(map[string]interface{})
	if !ok {
		return &ValidationError{Field: "breakdown", Reason: "must be an object", Value: rawBreakdown}
	}
	for _, category := range models.FeatureCategories {
		if err := validateFeature(category, breakdown); err != nil {
			return err
		}
	}

	rawTips, ok := candidate["tips"]
	if !ok {
		return &ValidationError{Field: "tips", Reason: "missing"}
	}
	tips, ok := rawTips.([]interface{})
	if !ok {
		return &ValidationError{Field: "tips", Reason: "must be an array", Value: rawTips}
	}
	if len(tips) < MinTips {
		return &ValidationError{Field: "tips", Reason: fmt.Sprintf("need at least %d tips", MinTips), Value: len(tips)}
	}
	for i, rawTip := range tips {
		tip, ok := rawTip.(map[string]interface{})
		if !ok {
			return &ValidationError{Field: fmt.Sprintf("tips[%d]", i), Reason: "must be an object", Value: rawTip}
		}
		if err := validateText(fmt.Sprintf("tips[%d].title", i), tip["title"], MinTipTitleLen); err != nil {
			return err
		}
		if err := validateText(fmt.Sprintf("tips[%d].description", i), tip["description"], MinTipDescriptionLen); err != nil {
			return err
		}
		if err := validateText(fmt.Sprintf("tips[%d].timeframe", i), tip["timeframe"], MinTipTimeframeLen); err != nil {
			return err
		}
	}

	return nil
}

// ValidateResult applies the same rules to an already-typed result, by
// round-tripping it through JSON. Used to assert fallback output
// self-consistency and by callers holding a decoded struct.
func ValidateResult(result *models.AnalysisResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to serialize result: %w", err)
	}
	var candidate map[string]interface{}
	if err := json.Unmarshal(raw, &candidate); err != nil {
		return fmt.Errorf("failed to reparse result: %w", err)
	}
	return ValidateCandidate(candidate)
}

func validateFeature(category string, breakdown map[string]interface{}) error {
	rawFeature, ok := breakdown[category]
	if !ok {
		return &ValidationError{Field: "breakdown." + category, Reason: "missing category"}
	}
	feature, ok := rawFeature.(map[string]interface{})
	if !ok {
		return &ValidationError{Field: "breakdown." + category, Reason: "must be an object", Value: rawFeature}
	}
	if err := validateScore("breakdown."+category+".score", feature["score"]); err != nil {
		return err
	}
	if err := validateText("breakdown."+category+".description", feature["description"], MinDescriptionLen); err != nil {
		return err
	}
	return validateText("breakdown."+category+".improvement", feature["improvement"], MinImprovementLen)
}

func validateScore(field string, raw interface{}) error {
	score, ok := coerceNumber(raw)
	if !ok {
		return &ValidationError{Field: field, Reason: "must be numeric", Value: raw}
	}
	if score < MinScore || score > MaxScore {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("must be between %.1f and %.1f", MinScore, MaxScore), Value: raw}
	}
	return nil
}

func validateText(field string, raw interface{}, minLen int) error {
	text, ok := raw.(string)
	if !ok {
		if raw == nil {
			return &ValidationError{Field: field, Reason: "missing"}
		}
		return &ValidationError{Field: field, Reason: "must be a string", Value: raw}
	}
	// Length limits mean characters, not bytes; accented text must not get a
	// head start from its encoding.
	if utf8.RuneCountInString(text) < minLen {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("must be at least %d characters", minLen), Value: text}
	}
	return nil
}

// coerceNumber accepts JSON numbers plus numeric strings, which some model
// responses emit for scores ("8.5" instead of 8.5).
func coerceNumber(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
