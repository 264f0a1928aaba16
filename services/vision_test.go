package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTransientInfra(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{"timeout", errors.New("net/http: request timed out"), true},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"service unavailable", errors.New("model returned 503 Service Unavailable: upstream overloaded"), true},
		{"context deadline", errors.New("context deadline exceeded"), true},
		{"dns failure", errors.New("lookup api.example.com: no such host"), true},
		{"bad json", errors.New("invalid character '<' looking for beginning of value"), false},
		{"quota exceeded", errors.New("model returned 429 Too Many Requests: quota exhausted"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.transient, isTransientInfra(tt.err))
		})
	}
}

// newVisionServer fakes the generateContent endpoint, returning candidateText
// as the model's single candidate.
func newVisionServer(t *testing.T, status int, candidateText string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			fmt.Fprint(w, `{"error": "upstream failure"}`)
			return
		}
		envelope := map[string]interface{}{
			"candidates": []map[string]interface{}{
				{
					"content": map[string]interface{}{
						"parts": []map[string]string{
							{"text": candidateText},
						},
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(envelope)
	}))
}

func newTestVisionService(serverURL string) *VisionService {
	return &VisionService{
		config: &VisionConfig{
			APIKey:          "test-key",
			BaseURL:         serverURL,
			Model:           "gemini-2.0-flash",
			Temperature:     0.4,
			MaxOutputTokens: 4096,
			TimeoutMS:       5000,
		},
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func validCandidateJSON(t *testing.T) string {
	t.Helper()
	raw, err := json.Marshal(validCandidate())
	require.NoError(t, err)
	return string(raw)
}

func TestAnalyzeFaceSuccess(t *testing.T) {
	server := newVisionServer(t, http.StatusOK, validCandidateJSON(t))
	defer server.Close()

	svc := newTestVisionService(server.URL)
	result, err := svc.AnalyzeFace(context.Background(), "https://cdn.example.com/selfie.jpg", nil, "")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 6.1, result.Score)
	assert.Len(t, result.Breakdown, 8)
	require.NoError(t, ValidateResult(result))
}

func TestAnalyzeFaceUpstreamUnavailableSignalsFallback(t *testing.T) {
	server := newVisionServer(t, http.StatusServiceUnavailable, "")
	defer server.Close()

	svc := newTestVisionService(server.URL)
	_, err := svc.AnalyzeFace(context.Background(), "https://cdn.example.com/selfie.jpg", nil, "")
	require.Error(t, err)

	var infraErr *TransientInfraError
	assert.ErrorAs(t, err, &infraErr, "a 503 is an infra failure, not a hard one")
}

func TestAnalyzeFaceUnconfiguredSignalsFallback(t *testing.T) {
	svc := newTestVisionService("http://localhost:0")
	svc.config.APIKey = ""

	_, err := svc.AnalyzeFace(context.Background(), "https://cdn.example.com/selfie.jpg", nil, "")
	var infraErr *TransientInfraError
	assert.ErrorAs(t, err, &infraErr, "missing key behaves like unavailability")
}

func TestAnalyzeFaceMalformedJSONIsHardFailure(t *testing.T) {
	server := newVisionServer(t, http.StatusOK, "I am not JSON at all")
	defer server.Close()

	svc := newTestVisionService(server.URL)
	_, err := svc.AnalyzeFace(context.Background(), "https://cdn.example.com/selfie.jpg", nil, "")
	require.Error(t, err)

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr, "malformed output must not be masked by fallback")
	var infraErr *TransientInfraError
	assert.False(t, errors.As(err, &infraErr))
}

func TestAnalyzeFaceContractViolationIsHardFailure(t *testing.T) {
	candidate := validCandidate()
	candidate["score"] = 12.0
	raw, err := json.Marshal(candidate)
	require.NoError(t, err)

	server := newVisionServer(t, http.StatusOK, string(raw))
	defer server.Close()

	svc := newTestVisionService(server.URL)
	_, err = svc.AnalyzeFace(context.Background(), "https://cdn.example.com/selfie.jpg", nil, "")
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "score", vErr.Field)
}

func TestAnalyzeFaceBannedTermIsContentPolicyFailure(t *testing.T) {
	candidate := validCandidate()
	breakdown := candidate["breakdown"].(map[string]interface{})
	breakdown["jawline"].(map[string]interface{})["description"] = "the jawline has a nice chad-like structure"
	raw, err := json.Marshal(candidate)
	require.NoError(t, err)

	server := newVisionServer(t, http.StatusOK, string(raw))
	defer server.Close()

	svc := newTestVisionService(server.URL)
	_, err = svc.AnalyzeFace(context.Background(), "https://cdn.example.com/selfie.jpg", nil, "")
	require.Error(t, err)

	var policyErr *ContentPolicyError
	require.ErrorAs(t, err, &policyErr)
	assert.Contains(t, policyErr.Matches, "chad")
	var infraErr *TransientInfraError
	assert.False(t, errors.As(err, &infraErr), "a safety violation is never an infra blip")
}

func TestAnalyzeFaceEmptyCandidateList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates": []}`)
	}))
	defer server.Close()

	svc := newTestVisionService(server.URL)
	_, err := svc.AnalyzeFace(context.Background(), "https://cdn.example.com/selfie.jpg", nil, "")
	require.Error(t, err)

	// "response unavailable" classifies as transient: an empty body means the
	// model never ran, so the fallback scorer is the right recovery.
	var infraErr *TransientInfraError
	assert.ErrorAs(t, err, &infraErr)
}
