// workers/leaderboard_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/george11642/BlackPill-sub000/services"
)

// LeaderboardEntry matches the JSON response from the leaderboard service.
type LeaderboardEntry struct {
	ExternalUserID string  `json:"user_id"`
	Rank           int     `json:"rank"`
	Score          float64 `json:"score"`
}

type leaderboardResponse struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// LeaderboardSyncWorker periodically pulls the top ranks from the external
// leaderboard service and feeds them to the achievement evaluator. Ranking
// itself lives entirely in that service; this worker only consumes it.
type LeaderboardSyncWorker struct {
	achievements *services.AchievementService
	interval     time.Duration
	baseURL      string
	serviceToken string
	httpClient   *http.Client
}

func NewLeaderboardSyncWorker(achievements *services.AchievementService, baseURL, serviceToken string) *LeaderboardSyncWorker {
	return &LeaderboardSyncWorker{
		achievements: achievements,
		interval:     5 * time.Minute,
		baseURL:      baseURL,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (w *LeaderboardSyncWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.syncOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Println("[LeaderboardSync] stopping")
			return
		case <-ticker.C:
			w.syncOnce(ctx)
		}
	}
}

func (w *LeaderboardSyncWorker) syncOnce(ctx context.Context) {
	entries, err := w.fetchTopRanks(ctx)
	if err != nil {
		log.Printf("[LeaderboardSync] fetch failed: %v", err)
		return
	}

	for _, entry := range entries {
		unlocked := w.achievements.EvaluateLeaderboard(entry.ExternalUserID, entry.Rank)
		if len(unlocked) > 0 {
			log.Printf("🥇 [LeaderboardSync] rank %d achievements for %s: %v", entry.Rank, entry.ExternalUserID, unlocked)
		}
	}
}

func (w *LeaderboardSyncWorker) fetchTopRanks(ctx context.Context) ([]LeaderboardEntry, error) {
	url := fmt.Sprintf("%s/api/v1/public/leaderboard/top?limit=10", w.baseURL)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("leaderboard service returned %d: %s", resp.StatusCode, string(body))
	}

	var out leaderboardResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return out.Entries, nil
}
