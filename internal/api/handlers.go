package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/calvinwijaya/blackjack-engine/internal/db"
	"github.com/calvinwijaya/blackjack-engine/internal/game"
	"github.com/calvinwijaya/blackjack-engine/internal/session"
	"github.com/calvinwijaya/blackjack-engine/internal/store"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

// Handlers contains all the API handlers
type Handlers struct {
	store       store.Store
	settings    game.Settings
	hub         *Hub
	logger      *log.Logger
	sessionOpts []session.Option
}

// NewHandlers wires the HTTP API. sessionOpts are applied to every session
// the API creates; hub may be nil.
func NewHandlers(st store.Store, settings game.Settings, hub *Hub, logger *log.Logger, sessionOpts ...session.Option) *Handlers {
	if logger == nil {
		logger = log.Default()
	}
	return &Handlers{
		store:       st,
		settings:    settings,
		hub:         hub,
		logger:      logger.WithPrefix("api"),
		sessionOpts: sessionOpts,
	}
}

// RegisterRoutes registers all API routes
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/rules", h.GetRules).Methods(http.MethodGet)

	r.HandleFunc("/api/sessions", h.ListSessions).Methods(http.MethodGet)
	r.HandleFunc("/api/session", h.CreateSession).Methods(http.MethodPost)
	r.HandleFunc("/api/session/{id}", h.GetSession).Methods(http.MethodGet)
	r.HandleFunc("/api/session/{id}", h.DeleteSession).Methods(http.MethodDelete)
	r.HandleFunc("/api/session/{id}/rules", h.UpdateRules).Methods(http.MethodPut)
	r.HandleFunc("/api/session/{id}/round", h.StartRound).Methods(http.MethodPost)
	r.HandleFunc("/api/session/{id}/{action:hit|stand|double|split}", h.Act).Methods(http.MethodPost)

	r.HandleFunc("/api/player", h.RegisterPlayer).Methods(http.MethodPost)
	r.HandleFunc("/api/player/{id}", h.GetPlayer).Methods(http.MethodGet)

	r.HandleFunc("/ws", h.WebSocket)
}

// response helper function to send JSON responses
func response(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResponse(w http.ResponseWriter, status int, code, message string) {
	response(w, status, map[string]string{"error": message, "code": code})
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	errorResponse(w, status, code, err.Error())
}

func (h *Handlers) GetRules(w http.ResponseWriter, r *http.Request) {
	response(w, http.StatusOK, h.settings)
}

// CreateSession opens a session for a player. A known playerId resumes the
// stored bankroll; otherwise a new player starts with the table balance.
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID   string `json:"playerId"`
		PlayerName string `json:"playerName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	name := strings.TrimSpace(req.PlayerName)
	playerID := strings.TrimSpace(req.PlayerID)
	opts := append([]session.Option{}, h.sessionOpts...)

	if playerID == "" {
		playerID = uuid.New().String()
	} else {
		player, err := h.store.GetPlayer(playerID)
		switch {
		case err == nil:
			opts = append(opts, session.WithBankroll(player.Balance))
			if name == "" {
				name = player.Name
			}
			if err := h.store.TouchPlayer(playerID); err != nil {
				h.logger.Warn("Failed to record player login", "player", playerID, "error", err)
			}
		case !errors.Is(err, db.ErrPlayerNotFound):
			h.fail(w, r, err)
			return
		}
	}
	opts = append(opts, session.WithPlayerID(playerID), session.WithLogger(h.logger))

	sess, err := session.New(name, h.settings, game.NewClockSeededRandomness(), opts...)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.store.SaveSession(sess); err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.Info("Session created", "session", sess.ID(), "player", playerID, "bankroll", sess.Bankroll())
	response(w, http.StatusCreated, sess.Snapshot())
}

// ListSessions returns a view of every live session.
func (h *Handlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.ListSessions()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	views := make([]session.View, 0, len(sessions))
	for _, sess := range sessions {
		views = append(views, sess.Snapshot())
	}
	response(w, http.StatusOK, views)
}

func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.GetSession(mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response(w, http.StatusOK, sess.Snapshot())
}

func (h *Handlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.store.DeleteSession(id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info("Session closed", "session", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) StartRound(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Bet decimal.Decimal `json:"bet"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	h.mutate(w, r, func(sess *session.Session) error {
		return sess.StartRound(req.Bet)
	})
}

// UpdateRules changes a session's rules between rounds. Fields left out
// of the body keep their current values.
func (h *Handlers) UpdateRules(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(sess *session.Session) error {
		settings := sess.Settings()
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			return fmt.Errorf("%w: %v", errInvalidRequest, err)
		}
		return sess.UpdateSettings(settings)
	})
}

// Act applies hit, stand, double or split to the session's round.
func (h *Handlers) Act(w http.ResponseWriter, r *http.Request) {
	action, err := game.ParseAction(mux.Vars(r)["action"])
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.mutate(w, r, func(sess *session.Session) error {
		return sess.Apply(action)
	})
}

// mutate runs fn against the session, saves it so the bankroll is
// persisted, and pushes the new view to subscribers.
func (h *Handlers) mutate(w http.ResponseWriter, r *http.Request, fn func(*session.Session) error) {
	sess, err := h.store.GetSession(mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := fn(sess); err != nil {
		// An internal failure can still end the round, so subscribers
		// need the new state.
		if status, _ := statusFor(err); status >= http.StatusInternalServerError {
			h.publish(sess)
		}
		h.fail(w, r, err)
		return
	}
	if err := h.store.SaveSession(sess); err != nil {
		h.fail(w, r, err)
		return
	}

	response(w, http.StatusOK, h.broadcast(sess))
}

func (h *Handlers) publish(sess *session.Session) {
	if err := h.store.SaveSession(sess); err != nil {
		h.logger.Error("Failed to save session", "session", sess.ID(), "error", err)
	}
	h.broadcast(sess)
}

func (h *Handlers) broadcast(sess *session.Session) session.View {
	view := sess.Snapshot()
	if h.hub != nil {
		h.hub.BroadcastSession(sess.ID(), view)
	}
	return view
}

// RegisterPlayer registers a new player with the table's starting balance.
func (h *Handlers) RegisterPlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerName string `json:"playerName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	name := strings.TrimSpace(req.PlayerName)
	if name == "" {
		h.fail(w, r, game.ErrInvalidPlayerName)
		return
	}

	player, err := h.store.CreatePlayer(uuid.New().String(), name, h.settings.StartingBalance)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.Info("Player registered", "player", player.ID, "balance", player.Balance)
	response(w, http.StatusCreated, player)
}

func (h *Handlers) GetPlayer(w http.ResponseWriter, r *http.Request) {
	player, err := h.store.GetPlayer(mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response(w, http.StatusOK, player)
}

// WebSocket subscribes the connection to one session's updates.
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		errorResponse(w, http.StatusServiceUnavailable, "unavailable", "WebSocket updates are disabled")
		return
	}

	sess, err := h.store.GetSession(r.URL.Query().Get("sessionId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.hub.Serve(w, r, sess.ID(), Message{
		Type:      MessageWelcome,
		SessionID: sess.ID(),
		Data:      sess.Snapshot(),
	})
}
