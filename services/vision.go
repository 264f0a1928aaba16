package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/george11642/BlackPill-sub000/models"
)

// VisionConfig holds the external model configuration. Temperature and output
// size are fixed deployment configuration, never computed per request.
type VisionConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	Temperature     float64
	MaxOutputTokens int
	TimeoutMS       int
}

// VisionConfigFromEnv reads the model configuration, with defaults matching
// production.
func VisionConfigFromEnv() *VisionConfig {
	cfg := &VisionConfig{
		APIKey:          os.Getenv("GEMINI_API_KEY"),
		BaseURL:         getEnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/models"),
		Model:           getEnvOrDefault("GEMINI_VISION_MODEL", "gemini-2.0-flash"),
		Temperature:     0.4,
		MaxOutputTokens: 4096,
		TimeoutMS:       30000,
	}
	if raw := os.Getenv("GEMINI_TIMEOUT_MS"); raw != "" {
		if ms, err := strconv.Atoi(raw); err == nil && ms > 0 {
			cfg.TimeoutMS = ms
		}
	}
	return cfg
}

func (c *VisionConfig) modelEndpoint() string {
	return c.BaseURL + "/" + c.Model + ":generateContent"
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// VisionService calls the external multimodal model and turns its raw output
// into a validated, content-safe AnalysisResult. It makes exactly one model
// call per invocation; retry and backoff are the caller's responsibility.
type VisionService struct {
	config *VisionConfig
	client *http.Client
}

func NewVisionService() *VisionService {
	cfg := VisionConfigFromEnv()
	return &VisionService{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

// AnalyzeFace runs the full pipeline: model call → structural validation →
// content safety gate. imageData is the raw photo (inline upload); when nil,
// imageURL is passed to the model instead.
//
// Error classes matter to the caller: a *TransientInfraError means "use the
// fallback scorer"; *ValidationError and *ContentPolicyError are hard
// failures that must surface as "analysis temporarily unavailable", never as
// a silently substituted fallback result.
func (s *VisionService) AnalyzeFace(ctx context.Context, imageURL string, imageData []byte, mimeType string) (*models.AnalysisResult, error) {
	raw, err := s.callModel(ctx, imageURL, imageData, mimeType)
	if err != nil {
		if isTransientInfra(err) {
			log.Printf("[Vision] transient model failure, signalling fallback: %v", err)
			return nil, &TransientInfraError{Op: "vision analysis", Err: err}
		}
		return nil, fmt.Errorf("vision model call failed: %w", err)
	}

	var candidate map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &candidate); err != nil {
		return nil, &ValidationError{Field: "response", Reason: "model output is not valid JSON: " + err.Error(), Value: truncate(raw, 200)}
	}

	if err := ValidateCandidate(candidate); err != nil {
		return nil, err
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, &ValidationError{Field: "response", Reason: "model output does not decode into a result: " + err.Error()}
	}

	if flag := ScanResult(&result); flag.Flagged {
		log.Printf("🚫 [Vision] content policy violation in model output: %v", flag.Matches)
		return nil, &ContentPolicyError{Matches: flag.Matches}
	}

	return &result, nil
}

// callModel performs the single generateContent call and extracts the text of
// the first candidate.
func (s *VisionService) callModel(ctx context.Context, imageURL string, imageData []byte, mimeType string) (string, error) {
	if s.config.APIKey == "" {
		return "", fmt.Errorf("vision model unavailable: GEMINI_API_KEY not configured")
	}

	var imagePart map[string]interface{}
	if len(imageData) > 0 {
		if mimeType == "" {
			mimeType = "image/jpeg"
		}
		imagePart = map[string]interface{}{
			"inline_data": map[string]string{
				"mime_type": mimeType,
				"data":      base64.StdEncoding.EncodeToString(imageData),
			},
		}
	} else {
		imagePart = map[string]interface{}{
			"file_data": map[string]string{
				"file_uri": imageURL,
			},
		}
	}

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []interface{}{
					map[string]string{"text": analysisPrompt},
					imagePart,
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
			"temperature":      s.config.Temperature,
			"maxOutputTokens":  s.config.MaxOutputTokens,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", s.config.modelEndpoint(), s.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		// Status text is part of the message so 503s classify as transient.
		return "", fmt.Errorf("model returned %d %s: %s", resp.StatusCode, http.StatusText(resp.StatusCode), truncate(string(body), 200))
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", fmt.Errorf("failed to parse model envelope: %w", err)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("model response unavailable: empty candidate list")
	}

	return geminiResp.Candidates[0].Content.Parts[0].Text, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// analysisPrompt is the fixed instruction sent with every photo. It pins the
// category semantics, the score distribution and the exact JSON shape the
// validator enforces.
const analysisPrompt = `You are a brutally honest facial aesthetics analyst. Analyze the face in the provided photo and rate it.

Score each of these 8 categories:
- femininity: softness and delicacy of facial features relative to typical feminine proportions
- skin: clarity, texture, evenness of tone, absence of blemishes
- jawline: definition, angularity and sharpness of the jaw and chin
- cheekbones: prominence and placement of the zygomatic structure
- eyes: shape, spacing, canthal tilt, and the condition of the eye area
- symmetry: left-right balance of all facial features
- lips: fullness, proportion and definition of the lips
- hair: condition, density and how well the style frames the face

Scoring rules:
- Every score is a decimal between 1.0 and 10.0. Use the full range with one decimal place (e.g. 4.3, 6.8, 7.1) — never cluster on whole or half numbers.
- Be deliberately skeptical. Most faces are average: most scores should land between 4.0 and 6.5. Scores of 8.0 or above are rare and must be genuinely earned. A 10.0 is a once-in-a-generation face.
- For each category write an honest "description" of what you observe (at least 10 characters) and a concrete, actionable "improvement" suggestion (at least 20 characters).
- Provide at least 5 tips. Each tip has a "title" (at least 5 characters), a "description" (at least 30 characters) and a "timeframe" (at least 5 characters, e.g. "2-4 weeks").
- The overall "score" reflects the whole face, also between 1.0 and 10.0.

Return ONLY valid JSON in exactly this shape:
{
  "score": 5.8,
  "breakdown": {
    "femininity": {"score": 5.2, "description": "...", "improvement": "..."},
    "skin": {"score": 6.1, "description": "...", "improvement": "..."},
    "jawline": {"score": 5.5, "description": "...", "improvement": "..."},
    "cheekbones": {"score": 5.9, "description": "...", "improvement": "..."},
    "eyes": {"score": 6.3, "description": "...", "improvement": "..."},
    "symmetry": {"score": 6.0, "description": "...", "improvement": "..."},
    "lips": {"score": 5.4, "description": "...", "improvement": "..."},
    "hair": {"score": 5.7, "description": "...", "improvement": "..."}
  },
  "tips": [
    {"title": "...", "description": "...", "timeframe": "..."}
  ]
}`
