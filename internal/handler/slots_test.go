package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/reelfaucet/internal/betting"
	"github.com/osse101/reelfaucet/internal/domain"
	"github.com/osse101/reelfaucet/internal/kvstore"
	"github.com/osse101/reelfaucet/internal/session"
	"github.com/osse101/reelfaucet/internal/slots"
	"github.com/osse101/reelfaucet/internal/spin"
	"github.com/osse101/reelfaucet/internal/sse"
)

type slotsFixture struct {
	router   http.Handler
	sched    *spin.ManualScheduler
	sessions *session.Manager
	hub      *sse.Hub
}

func newSlotsFixture(t *testing.T) *slotsFixture {
	t.Helper()

	catalog, err := slots.NewProfileCatalog(slots.ProfileTable)
	require.NoError(t, err)
	bets, err := betting.NewController(nil)
	require.NoError(t, err)

	sched := spin.NewManualScheduler()
	mgr, err := session.NewManager(session.Config{
		Catalog:         catalog,
		Pool:            slots.DefaultPoolConfig(),
		Bets:            bets,
		Store:           kvstore.NewMemoryStore(),
		StartingCredits: 500,
		Scheduler:       sched,
	})
	require.NoError(t, err)

	hub := sse.NewHub()
	hub.Start()
	t.Cleanup(hub.Stop)

	h := NewSlotsHandler(mgr, catalog, bets, slots.DefaultPoolConfig(), slots.ProfileTable)
	r := chi.NewRouter()
	r.Route("/api/v1/slots", func(r chi.Router) { h.RegisterRoutes(r, hub) })

	return &slotsFixture{router: r, sched: sched, sessions: mgr, hub: hub}
}

func (f *slotsFixture) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *slotsFixture) createSession(t *testing.T) SessionResponse {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/v1/slots/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func sessionPath(id, suffix string) string {
	return "/api/v1/slots/sessions/" + id + suffix
}

func TestHandleGetCatalog(t *testing.T) {
	f := newSlotsFixture(t)

	w := f.do(t, http.MethodGet, "/api/v1/slots/catalog", "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp CatalogResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, slots.ProfileTable, resp.Profile)
	assert.Len(t, resp.Symbols, len(slots.DefaultSymbols))
	assert.Len(t, resp.Levels, len(betting.DefaultLevels))
	assert.NotEmpty(t, resp.Payouts)

	var total float64
	for _, s := range resp.Symbols {
		total += s.Probability
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Equal(t, int64(10), resp.Pool.MinimumEngagementSpins)
}

func TestHandleCreateSession(t *testing.T) {
	t.Run("demo session without body", func(t *testing.T) {
		f := newSlotsFixture(t)

		resp := f.createSession(t)

		assert.NotEmpty(t, resp.SessionID)
		assert.NotEmpty(t, resp.DemoID)
		assert.Equal(t, domain.LedgerModeLocal, resp.Snapshot.Mode)
		assert.Equal(t, int64(500), resp.Snapshot.Credits)
	})

	t.Run("resumes a demo id", func(t *testing.T) {
		f := newSlotsFixture(t)
		demoID := "3f1c2a7e-6f1b-4c53-9a52-0d2f7f5b8a11"

		w := f.do(t, http.MethodPost, "/api/v1/slots/sessions", `{"demo_id":"`+demoID+`"}`)

		require.Equal(t, http.StatusCreated, w.Code)
		var resp SessionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, demoID, resp.DemoID)
	})

	t.Run("rejects malformed demo id", func(t *testing.T) {
		f := newSlotsFixture(t)

		w := f.do(t, http.MethodPost, "/api/v1/slots/sessions", `{"demo_id":"abc"}`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp ValidationErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Must be a UUID", resp.Fields["demo_id"])
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		f := newSlotsFixture(t)

		w := f.do(t, http.MethodPost, "/api/v1/slots/sessions", `{"demo_id":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), ErrMsgInvalidRequest)
	})

	t.Run("rejects non-bearer authorization", func(t *testing.T) {
		f := newSlotsFixture(t)

		w := f.do(t, http.MethodPost, "/api/v1/slots/sessions", "", HeaderAuthorization, "Basic dXNlcjpwYXNz")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), ErrMsgBadAuthorization)
	})

	t.Run("bearer token without balance service is a bad request", func(t *testing.T) {
		f := newSlotsFixture(t)

		w := f.do(t, http.MethodPost, "/api/v1/slots/sessions", "", HeaderAuthorization, "Bearer tok")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), ErrMsgInvalidRequestError)
	})
}

func TestHandleGetSession(t *testing.T) {
	f := newSlotsFixture(t)
	created := f.createSession(t)

	w := f.do(t, http.MethodGet, sessionPath(created.SessionID, ""), "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, created.SessionID, resp.SessionID)
	assert.Equal(t, created.DemoID, resp.DemoID)

	w = f.do(t, http.MethodGet, sessionPath("missing", ""), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), ErrMsgSessionNotFoundError)
}

func TestHandleSpin(t *testing.T) {
	t.Run("returns immediately and settles in the background", func(t *testing.T) {
		f := newSlotsFixture(t)
		created := f.createSession(t)

		w := f.do(t, http.MethodPost, sessionPath(created.SessionID, "/spin"), "")

		require.Equal(t, http.StatusAccepted, w.Code)
		var accepted SpinAcceptedResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accepted))
		assert.True(t, accepted.Snapshot.Spinning)
		assert.Equal(t, int64(499), accepted.Snapshot.Credits)

		w = f.do(t, http.MethodPost, sessionPath(created.SessionID, "/spin"), "")
		assert.Equal(t, http.StatusConflict, w.Code)

		f.sched.RunAll()

		s, err := f.sessions.Get(created.SessionID)
		require.NoError(t, err)
		snap := s.Snapshot()
		assert.False(t, snap.Spinning)
		assert.Equal(t, int64(1), snap.TotalSpins)
	})

	t.Run("waits for the outcome", func(t *testing.T) {
		f := newSlotsFixture(t)
		created := f.createSession(t)

		done := make(chan *httptest.ResponseRecorder, 1)
		go func() {
			done <- f.do(t, http.MethodPost, sessionPath(created.SessionID, "/spin?wait=true"), "")
		}()

		require.Eventually(t, func() bool { return f.sched.Pending() > 0 }, time.Second, time.Millisecond)
		f.sched.RunAll()

		var w *httptest.ResponseRecorder
		select {
		case w = <-done:
		case <-time.After(time.Second):
			t.Fatal("spin request did not return")
		}
		require.Equal(t, http.StatusOK, w.Code)
		var out spin.Outcome
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		assert.Equal(t, int64(1), out.Bet)
		assert.NotEmpty(t, out.Message)
		assert.Equal(t, int64(1), out.Snapshot.TotalSpins)
		assert.Equal(t, 499+out.Result.WinAmount, out.Snapshot.Credits)
	})

	t.Run("rejects malformed wait flag", func(t *testing.T) {
		f := newSlotsFixture(t)
		created := f.createSession(t)

		w := f.do(t, http.MethodPost, sessionPath(created.SessionID, "/spin?wait=soon"), "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 0, f.sched.Pending())
	})

	t.Run("unknown session", func(t *testing.T) {
		f := newSlotsFixture(t)

		w := f.do(t, http.MethodPost, sessionPath("missing", "/spin"), "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandleBetCommands(t *testing.T) {
	f := newSlotsFixture(t)
	created := f.createSession(t)

	// Level 1 allows exactly one credit
	w := f.do(t, http.MethodPost, sessionPath(created.SessionID, "/bet/increase"), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), ErrMsgBetOutOfRangeError)

	w = f.do(t, http.MethodPost, sessionPath(created.SessionID, "/bet/decrease"), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleClaim(t *testing.T) {
	f := newSlotsFixture(t)
	created := f.createSession(t)

	w := f.do(t, http.MethodPost, sessionPath(created.SessionID, "/claim"), "")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), ErrMsgNothingToClaimError)
}

func TestHandleLevelUp(t *testing.T) {
	f := newSlotsFixture(t)
	created := f.createSession(t)
	path := sessionPath(created.SessionID, "/level")

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantBody string
	}{
		{"current level", `{"level":1}`, http.StatusOK, `"level":1`},
		{"not enough earned", `{"level":2}`, http.StatusBadRequest, ErrMsgNotEnoughEarnedError},
		{"unknown level", `{"level":9}`, http.StatusBadRequest, ErrMsgUnknownLevelError},
		{"missing level", `{}`, http.StatusBadRequest, "This field is required"},
		{"empty body", ``, http.StatusBadRequest, ErrMsgInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodPost, path, tt.body)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestHandleEvents_UnknownSession(t *testing.T) {
	f := newSlotsFixture(t)

	w := f.do(t, http.MethodGet, sessionPath("missing", "/events"), "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleEvents_StreamsSessionEvents(t *testing.T) {
	f := newSlotsFixture(t)
	created := f.createSession(t)

	srv := httptest.NewServer(f.router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + sessionPath(created.SessionID, "/events"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool { return f.hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	f.hub.Broadcast(created.SessionID, domain.EventTypeBalance, domain.BalancePayload{Credits: 42})

	buf := make([]byte, 4096)
	var got strings.Builder
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && !strings.Contains(got.String(), domain.EventTypeBalance) {
		n, err := resp.Body.Read(buf)
		got.Write(buf[:n])
		if err != nil {
			break
		}
	}
	assert.Contains(t, got.String(), "event: "+domain.EventTypeBalance)
	assert.Contains(t, got.String(), `"credits":42`)
}
