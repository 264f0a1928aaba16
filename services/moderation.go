package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/george11642/BlackPill-sub000/utils"
)

// ModerationService checks free-text user content (bios, comments, goal
// titles) against an external moderation classifier, with the local
// banned-term list as a deterministic backstop. The backstop runs even when
// the external call fails: moderation never silently passes unchecked content
// through on an infra failure.
type ModerationService struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewModerationService() *ModerationService {
	return &ModerationService{
		BaseURL: os.Getenv("MODERATION_API_URL"),
		APIKey:  os.Getenv("MODERATION_API_KEY"),
		Client:  utils.HTTPClient,
	}
}

// ModerationVerdict is the combined outcome of both checks.
type ModerationVerdict struct {
	Flagged    bool     `json:"flagged"`
	Categories []string `json:"categories,omitempty"`
}

type classifierResponse struct {
	Flagged    bool     `json:"flagged"`
	Categories []string `json:"categories"`
}

// Check moderates one piece of user text.
func (s *ModerationService) Check(text string) ModerationVerdict {
	verdict := ModerationVerdict{}

	if s.BaseURL != "" && s.APIKey != "" {
		if resp, err := s.classify(text); err != nil {
			log.Printf("[Moderation] classifier unavailable, relying on local list: %v", err)
		} else if resp.Flagged {
			verdict.Flagged = true
			verdict.Categories = append(verdict.Categories, resp.Categories...)
		}
	}

	// Local list always runs, classifier outcome or not.
	if flag := ScanText(text); flag.Flagged {
		verdict.Flagged = true
		verdict.Categories = append(verdict.Categories, flag.Matches...)
	}

	return verdict
}

func (s *ModerationService) classify(text string) (*classifierResponse, error) {
	reqBody := map[string]string{"input": text}
	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequest("POST", s.BaseURL+"/v1/moderations", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.APIKey)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("moderation classifier returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var out classifierResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
