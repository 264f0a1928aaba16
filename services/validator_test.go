package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/george11642/BlackPill-sub000/models"
)

// validCandidate builds a contract-compliant candidate that individual tests
// then break in one place.
func validCandidate() map[string]interface{} {
	breakdown := make(map[string]interface{})
	for _, category := range models.FeatureCategories {
		breakdown[category] = map[string]interface{}{
			"score":       6.4,
			"description": "An unremarkable but balanced feature.",
			"improvement": "Maintain a consistent daily care routine for this area.",
		}
	}

	tips := make([]interface{}, 0, 5)
	for i := 0; i < 5; i++ {
		tips = append(tips, map[string]interface{}{
			"title":       fmt.Sprintf("Tip number %d", i+1),
			"description": "A sufficiently long recommendation that explains what to do and why it helps.",
			"timeframe":   "2-4 weeks",
		})
	}

	return map[string]interface{}{
		"score":     6.1,
		"breakdown": breakdown,
		"tips":      tips,
	}
}

func setFeatureScore(candidate map[string]interface{}, category string, score interface{}) {
	breakdown := candidate["breakdown"].(map[string]interface{})
	feature := breakdown[category].(map[string]interface{})
	feature["score"] = score
}

func TestValidateCandidateAccepts(t *testing.T) {
	require.NoError(t, ValidateCandidate(validCandidate()))
}

func TestScoreBoundariesInclusive(t *testing.T) {
	fields := append([]string{""}, models.FeatureCategories...)

	for _, category := range fields {
		name := "overall"
		if category != "" {
			name = category
		}
		t.Run(name, func(t *testing.T) {
			for _, score := range []float64{1.0, 10.0} {
				candidate := validCandidate()
				if category == "" {
					candidate["score"] = score
				} else {
					setFeatureScore(candidate, category, score)
				}
				assert.NoError(t, ValidateCandidate(candidate), "score %.2f should be accepted", score)
			}

			for _, score := range []float64{0.99, 10.01} {
				candidate := validCandidate()
				if category == "" {
					candidate["score"] = score
				} else {
					setFeatureScore(candidate, category, score)
				}
				err := ValidateCandidate(candidate)
				require.Error(t, err, "score %.2f should be rejected", score)

				var vErr *ValidationError
				require.ErrorAs(t, err, &vErr)
				if category != "" {
					assert.Equal(t, "breakdown."+category+".score", vErr.Field)
				} else {
					assert.Equal(t, "score", vErr.Field)
				}
			}
		})
	}
}

func TestScoreCoercion(t *testing.T) {
	candidate := validCandidate()
	candidate["score"] = "8.5"
	assert.NoError(t, ValidateCandidate(candidate), "numeric strings coerce")

	candidate["score"] = "not a number"
	err := ValidateCandidate(candidate)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "score", vErr.Field)
	assert.Contains(t, vErr.Error(), "string", "message carries the received type")
}

func TestMissingCategory(t *testing.T) {
	candidate := validCandidate()
	delete(candidate["breakdown"].(map[string]interface{}), "jawline")

	err := ValidateCandidate(candidate)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "breakdown.jawline", vErr.Field)
}

func TestShortDescriptions(t *testing.T) {
	candidate := validCandidate()
	breakdown := candidate["breakdown"].(map[string]interface{})
	breakdown["eyes"].(map[string]interface{})["description"] = "too short"

	err := ValidateCandidate(candidate)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "breakdown.eyes.description", vErr.Field)
	assert.Contains(t, vErr.Reason, "10")

	candidate = validCandidate()
	breakdown = candidate["breakdown"].(map[string]interface{})
	breakdown["hair"].(map[string]interface{})["improvement"] = "brush it"

	err = ValidateCandidate(candidate)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "breakdown.hair.improvement", vErr.Field)
	assert.Contains(t, vErr.Reason, "20")
}

func TestTooFewTips(t *testing.T) {
	candidate := validCandidate()
	candidate["tips"] = candidate["tips"].([]interface{})[:4]

	err := ValidateCandidate(candidate)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "tips", vErr.Field)
	assert.Contains(t, vErr.Reason, "5", "error names the required minimum")
}

func TestTipFieldErrorsCarryIndex(t *testing.T) {
	candidate := validCandidate()
	tips := candidate["tips"].([]interface{})
	tips[2].(map[string]interface{})["description"] = "short"

	err := ValidateCandidate(candidate)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "tips[2].description", vErr.Field)
}

func TestMissingTopLevelFields(t *testing.T) {
	for _, field := range []string{"score", "breakdown", "tips"} {
		candidate := validCandidate()
		delete(candidate, field)

		err := ValidateCandidate(candidate)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr, "missing %s", field)
		assert.Equal(t, field, vErr.Field)
		assert.Equal(t, "missing", vErr.Reason)
	}
}

func TestValidateResultRoundTrip(t *testing.T) {
	raw, err := json.Marshal(validCandidate())
	require.NoError(t, err)

	var result models.AnalysisResult
	require.NoError(t, json.Unmarshal(raw, &result))
	require.NoError(t, ValidateResult(&result))
}

func TestValidationErrorMessageIsSpecific(t *testing.T) {
	candidate := validCandidate()
	setFeatureScore(candidate, "symmetry", 12.5)

	err := ValidateCandidate(candidate)
	require.Error(t, err)
	msg := err.Error()
	assert.True(t, strings.Contains(msg, "symmetry"), "message names the category: %s", msg)
	assert.True(t, strings.Contains(msg, "12.5"), "message carries the received value: %s", msg)
}

func TestTextLengthCountsCharactersNotBytes(t *testing.T) {
	// Nine accented characters are eighteen bytes but still one character
	// short of the minimum.
	candidate := validCandidate()
	breakdown := candidate["breakdown"].(map[string]interface{})
	skin := breakdown["skin"].(map[string]interface{})
	skin["description"] = strings.Repeat("é", MinDescriptionLen-1)

	err := ValidateCandidate(candidate)
	require.Error(t, err)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "breakdown.skin.description", vErr.Field)

	skin["description"] = strings.Repeat("é", MinDescriptionLen)
	require.NoError(t, ValidateCandidate(candidate))
}
