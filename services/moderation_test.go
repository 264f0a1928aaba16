package services

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newModerationServiceFor(serverURL string) *ModerationService {
	return &ModerationService{
		BaseURL: serverURL,
		APIKey:  "test-key",
		Client:  &http.Client{Timeout: 2 * time.Second},
	}
}

func TestModerationClassifierFlag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"flagged": true, "categories": ["harassment"]}`)
	}))
	defer server.Close()

	verdict := newModerationServiceFor(server.URL).Check("some borderline text")
	require.True(t, verdict.Flagged)
	assert.Contains(t, verdict.Categories, "harassment")
}

func TestModerationBackstopRunsWhenClassifierFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	// The classifier is down, but the local list still catches banned terms —
	// moderation never silently passes unchecked content on infra failure.
	verdict := newModerationServiceFor(server.URL).Check("total chad behavior")
	require.True(t, verdict.Flagged)
	assert.Contains(t, verdict.Categories, "chad")
}

func TestModerationCleanTextPasses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"flagged": false, "categories": []}`)
	}))
	defer server.Close()

	verdict := newModerationServiceFor(server.URL).Check("improve my skincare routine")
	assert.False(t, verdict.Flagged)
}

func TestModerationWithoutClassifierConfigured(t *testing.T) {
	svc := &ModerationService{Client: &http.Client{Timeout: time.Second}}

	assert.True(t, svc.Check("it's over for me").Flagged, "local list works standalone")
	assert.False(t, svc.Check("looking forward to progress").Flagged)
}
