package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/osse101/reelfaucet/internal/betting"
	"github.com/osse101/reelfaucet/internal/domain"
	"github.com/osse101/reelfaucet/internal/logger"
	"github.com/osse101/reelfaucet/internal/session"
	"github.com/osse101/reelfaucet/internal/slots"
	"github.com/osse101/reelfaucet/internal/spin"
	"github.com/osse101/reelfaucet/internal/sse"
)

// SessionService creates and looks up live slot sessions
type SessionService interface {
	Create(ctx context.Context, token, demoID string) (*session.Session, error)
	Get(id string) (*session.Session, error)
}

// SlotsHandler serves the slot machine API
type SlotsHandler struct {
	sessions SessionService
	catalog  CatalogResponse
}

// NewSlotsHandler creates a new slots handler. The catalog view is built
// once since catalog, levels and pool parameters never change at runtime.
func NewSlotsHandler(sessions SessionService, catalog *slots.Catalog, bets *betting.Controller, pool slots.PoolConfig, profile string) *SlotsHandler {
	return &SlotsHandler{
		sessions: sessions,
		catalog:  buildCatalogResponse(catalog, bets, pool, profile),
	}
}

// SymbolInfo is one reel symbol with its landing probability
type SymbolInfo struct {
	Glyph       string  `json:"glyph"`
	Name        string  `json:"name"`
	Weight      int     `json:"weight"`
	Probability float64 `json:"probability"`
}

// PoolInfo describes the Big Win Pool rules
type PoolInfo struct {
	Threshold              float64 `json:"threshold"`
	TriggerProbability     float64 `json:"trigger_probability"`
	ContributionRate       float64 `json:"contribution_rate"`
	MinimumEngagementSpins int64   `json:"minimum_engagement_spins"`
	PayoutFraction         float64 `json:"payout_fraction"`
}

// CatalogResponse is the machine's pay table
type CatalogResponse struct {
	Profile string              `json:"profile"`
	Symbols []SymbolInfo        `json:"symbols"`
	Payouts []slots.PayoutEntry `json:"payouts"`
	Levels  []betting.Level     `json:"levels"`
	Pool    PoolInfo            `json:"pool"`
}

// CreateSessionRequest resumes a demo record when DemoID is set
type CreateSessionRequest struct {
	DemoID string `json:"demo_id" validate:"omitempty,uuid"`
}

// SessionResponse identifies a session and its current view
type SessionResponse struct {
	SessionID string          `json:"session_id"`
	DemoID    string          `json:"demo_id,omitempty"`
	Snapshot  domain.Snapshot `json:"snapshot"`
}

// SpinAcceptedResponse is returned when a spin starts without ?wait=true
type SpinAcceptedResponse struct {
	Message  string          `json:"message"`
	Snapshot domain.Snapshot `json:"snapshot"`
}

// ClaimResponse reports the acknowledged winnings
type ClaimResponse struct {
	Claimed  int64           `json:"claimed"`
	Snapshot domain.Snapshot `json:"snapshot"`
}

// LevelUpRequest names the level to unlock
type LevelUpRequest struct {
	Level int `json:"level" validate:"required,min=1"`
}

// RegisterRoutes mounts the slot machine API on r
func (h *SlotsHandler) RegisterRoutes(r chi.Router, hub *sse.Hub) {
	r.Get("/catalog", h.HandleGetCatalog)
	r.Post("/sessions", h.HandleCreateSession)
	r.Route("/sessions/{"+ParamSessionID+"}", func(r chi.Router) {
		r.Get("/", h.HandleGetSession)
		r.Post("/spin", h.HandleSpin)
		r.Post("/bet/increase", h.HandleIncreaseBet)
		r.Post("/bet/decrease", h.HandleDecreaseBet)
		r.Post("/claim", h.HandleClaim)
		r.Post("/level", h.HandleLevelUp)
		r.Get("/events", h.HandleEvents(hub))
	})
}

func buildCatalogResponse(catalog *slots.Catalog, bets *betting.Controller, pool slots.PoolConfig, profile string) CatalogResponse {
	symbols := catalog.Symbols()
	total := float64(catalog.TotalWeight())
	infos := make([]SymbolInfo, len(symbols))
	for i, s := range symbols {
		infos[i] = SymbolInfo{
			Glyph:       s.Glyph,
			Name:        s.Name,
			Weight:      s.Weight,
			Probability: float64(s.Weight) / total,
		}
	}

	return CatalogResponse{
		Profile: profile,
		Symbols: infos,
		Payouts: catalog.Payouts(),
		Levels:  bets.Levels(),
		Pool: PoolInfo{
			Threshold:              pool.Threshold,
			TriggerProbability:     pool.TriggerProbability,
			ContributionRate:       pool.ContributionRate,
			MinimumEngagementSpins: pool.MinimumEngagementSpins,
			PayoutFraction:         pool.PayoutFraction,
		},
	}
}

// HandleGetCatalog returns the symbols, pay table, levels and pool rules
// @Summary Get pay table
// @Tags slots
// @Produce json
// @Success 200 {object} CatalogResponse
// @Router /api/v1/slots/catalog [get]
func (h *SlotsHandler) HandleGetCatalog(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.catalog)
}

// HandleCreateSession starts a session. A bearer token plays against the
// player's real balance; without one the session is a demo.
// @Summary Create session
// @Tags slots
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer token for signed-in play"
// @Param request body CreateSessionRequest false "Demo record to resume"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/slots/sessions [post]
func (h *SlotsHandler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	token, err := bearerToken(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req CreateSessionRequest
	if err := DecodeAndValidateRequest(r, w, &req, OpCreateSession, true); err != nil {
		return
	}

	s, err := h.sessions.Create(r.Context(), token, req.DemoID)
	if err != nil {
		respondServiceError(w, r, OpCreateSession, err)
		return
	}

	respondJSON(w, http.StatusCreated, SessionResponse{
		SessionID: s.ID(),
		DemoID:    s.DemoID,
		Snapshot:  s.Snapshot(),
	})
}

// HandleGetSession returns the session snapshot
// @Summary Get session
// @Tags slots
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} SessionResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/slots/sessions/{id} [get]
func (h *SlotsHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r, OpGetSession)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, SessionResponse{
		SessionID: s.ID(),
		DemoID:    s.DemoID,
		Snapshot:  s.Snapshot(),
	})
}

// HandleSpin starts a spin at the current bet. With ?wait=true the
// response is the settled outcome; otherwise it returns immediately and
// progress arrives on the event stream.
// @Summary Spin
// @Tags slots
// @Produce json
// @Param id path string true "Session ID"
// @Param wait query bool false "Block until the spin settles"
// @Success 200 {object} spin.Outcome
// @Success 202 {object} SpinAcceptedResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/slots/sessions/{id}/spin [post]
func (h *SlotsHandler) HandleSpin(w http.ResponseWriter, r *http.Request) {
	wait, ok := GetOptionalBoolQuery(r, w, QueryWait)
	if !ok {
		return
	}
	s, ok := h.lookup(w, r, OpSpin)
	if !ok {
		return
	}

	done, err := s.Spin(r.Context())
	if err != nil {
		respondServiceError(w, r, OpSpin, err)
		return
	}

	if !wait {
		respondJSON(w, http.StatusAccepted, SpinAcceptedResponse{
			Message:  "Spin started",
			Snapshot: s.Snapshot(),
		})
		return
	}

	select {
	case out := <-done:
		respondJSON(w, http.StatusOK, out)
	case <-r.Context().Done():
		logger.FromContext(r.Context()).Info("Client left before spin settled", "session_id", s.ID())
	}
}

// HandleIncreaseBet raises the bet by one step
// @Summary Increase bet
// @Tags slots
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} domain.Snapshot
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/slots/sessions/{id}/bet/increase [post]
func (h *SlotsHandler) HandleIncreaseBet(w http.ResponseWriter, r *http.Request) {
	h.adjustBet(w, r, OpIncreaseBet, (*spin.Orchestrator).IncreaseBet)
}

// HandleDecreaseBet lowers the bet by one step
// @Summary Decrease bet
// @Tags slots
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} domain.Snapshot
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/slots/sessions/{id}/bet/decrease [post]
func (h *SlotsHandler) HandleDecreaseBet(w http.ResponseWriter, r *http.Request) {
	h.adjustBet(w, r, OpDecreaseBet, (*spin.Orchestrator).DecreaseBet)
}

func (h *SlotsHandler) adjustBet(w http.ResponseWriter, r *http.Request, opName string,
	adjust func(*spin.Orchestrator, context.Context) (domain.Snapshot, error)) {
	s, ok := h.lookup(w, r, opName)
	if !ok {
		return
	}
	snap, err := adjust(s.Orchestrator, r.Context())
	if err != nil {
		respondServiceError(w, r, opName, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// HandleClaim acknowledges the last win
// @Summary Claim winnings
// @Tags slots
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} ClaimResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/slots/sessions/{id}/claim [post]
func (h *SlotsHandler) HandleClaim(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r, OpClaim)
	if !ok {
		return
	}
	amount, err := s.Claim(r.Context())
	if err != nil {
		respondServiceError(w, r, OpClaim, err)
		return
	}
	respondJSON(w, http.StatusOK, ClaimResponse{Claimed: amount, Snapshot: s.Snapshot()})
}

// HandleLevelUp unlocks a level paid for by lifetime winnings
// @Summary Level up
// @Tags slots
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body LevelUpRequest true "Target level"
// @Success 200 {object} domain.Snapshot
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/slots/sessions/{id}/level [post]
func (h *SlotsHandler) HandleLevelUp(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r, OpLevelUp)
	if !ok {
		return
	}

	var req LevelUpRequest
	if err := DecodeAndValidateRequest(r, w, &req, OpLevelUp, false); err != nil {
		return
	}

	snap, err := s.LevelUp(r.Context(), req.Level)
	if err != nil {
		respondServiceError(w, r, OpLevelUp, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// HandleEvents streams the session's engine notifications as SSE
// @Summary Session event stream
// @Tags slots
// @Produce text/event-stream
// @Param id path string true "Session ID"
// @Param types query string false "Comma-separated event types"
// @Success 200 {string} string "event stream"
// @Failure 404 {string} string "session not found"
// @Router /api/v1/slots/sessions/{id}/events [get]
func (h *SlotsHandler) HandleEvents(hub *sse.Hub) http.HandlerFunc {
	return sse.Handler(hub, func(r *http.Request) (string, bool) {
		s, err := h.sessions.Get(chi.URLParam(r, ParamSessionID))
		if err != nil {
			return "", false
		}
		return s.ID(), true
	})
}

func (h *SlotsHandler) lookup(w http.ResponseWriter, r *http.Request, opName string) (*session.Session, bool) {
	s, err := h.sessions.Get(chi.URLParam(r, ParamSessionID))
	if err != nil {
		respondServiceError(w, r, opName, err)
		return nil, false
	}
	return s, true
}
