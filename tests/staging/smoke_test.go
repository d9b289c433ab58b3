//go:build staging

package staging

import (
	"encoding/json"
	"net/http"
	"testing"
)

type snapshot struct {
	SessionID  string `json:"session_id"`
	Credits    int64  `json:"credits"`
	CurrentBet int64  `json:"current_bet"`
	Level      int    `json:"level"`
	TotalSpins int64  `json:"total_spins"`
	Spinning   bool   `json:"spinning"`
}

type sessionResponse struct {
	SessionID string   `json:"session_id"`
	DemoID    string   `json:"demo_id"`
	Snapshot  snapshot `json:"snapshot"`
}

type outcome struct {
	Bet      int64    `json:"bet"`
	Message  string   `json:"message"`
	Snapshot snapshot `json:"snapshot"`
	Result   struct {
		WinAmount int64 `json:"win_amount"`
	} `json:"result"`
}

func TestCatalog(t *testing.T) {
	resp, body := makeRequest(t, http.MethodGet, "/api/v1/slots/catalog", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var catalog struct {
		Symbols []json.RawMessage `json:"symbols"`
		Levels  []json.RawMessage `json:"levels"`
	}
	if err := json.Unmarshal(body, &catalog); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(catalog.Symbols) == 0 || len(catalog.Levels) == 0 {
		t.Error("Expected symbols and levels in catalog")
	}
}

func TestSpinRoundTrip(t *testing.T) {
	resp, body := makeRequest(t, http.MethodPost, "/api/v1/slots/sessions", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.StatusCode, body)
	}
	var sess sessionResponse
	if err := json.Unmarshal(body, &sess); err != nil {
		t.Fatalf("Failed to unmarshal session: %v", err)
	}

	before := sess.Snapshot
	resp, body = makeRequest(t, http.MethodPost, "/api/v1/slots/sessions/"+sess.SessionID+"/spin?wait=true", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.StatusCode, body)
	}

	var out outcome
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("Failed to unmarshal outcome: %v", err)
	}
	if out.Snapshot.TotalSpins != before.TotalSpins+1 {
		t.Errorf("Expected total spins %d, got %d", before.TotalSpins+1, out.Snapshot.TotalSpins)
	}
	if want := before.Credits - out.Bet + out.Result.WinAmount; out.Snapshot.Credits != want {
		t.Errorf("Expected credits %d, got %d", want, out.Snapshot.Credits)
	}
	if out.Snapshot.Spinning {
		t.Error("Expected spin to be settled")
	}
}

func TestUnknownSession(t *testing.T) {
	resp, _ := makeRequest(t, http.MethodGet, "/api/v1/slots/sessions/does-not-exist", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}
}
