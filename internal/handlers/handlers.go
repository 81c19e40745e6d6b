package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"ecosort/internal/capture"
	"ecosort/internal/classify"
	"ecosort/internal/config"
	"ecosort/internal/scanner"
	"ecosort/internal/store"
)

// Handler holds all HTTP handlers
type Handler struct {
	cfg        *config.Config
	store      *store.Store
	controller *scanner.Controller
}

// New creates a new Handler
func New(cfg *config.Config, st *store.Store, controller *scanner.Controller) *Handler {
	return &Handler{
		cfg:        cfg,
		store:      st,
		controller: controller,
	}
}

// RegisterRoutes registers all HTTP routes
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Users
	mux.HandleFunc("POST /api/register", h.Register)
	mux.HandleFunc("GET /api/users", h.Users)
	mux.HandleFunc("POST /api/users/switch", h.SwitchUser)
	mux.HandleFunc("PUT /api/profile", h.UpdateProfile)
	mux.HandleFunc("GET /api/user", h.CurrentUser)
	mux.HandleFunc("POST /api/logout", h.Logout)

	// Gamification
	mux.HandleFunc("GET /api/leaderboard", h.Leaderboard)
	mux.HandleFunc("GET /api/history", h.History)
	mux.HandleFunc("GET /api/categories", h.Categories)

	// Scan control
	mux.HandleFunc("POST /api/scan/start", h.StartScan)
	mux.HandleFunc("POST /api/scan/stop", h.StopScan)
	mux.HandleFunc("GET /api/scan/state", h.ScanState)
	mux.HandleFunc("GET /api/scan/events", h.ScanEvents)
}

type registerRequest struct {
	Name  string `json:"name"`
	Class string `json:"class"`
}

// Register creates a new user profile and makes it current.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.store.Register(req.Name, req.Class)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

// Users lists registered profiles.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.store.Users()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

type switchRequest struct {
	ID string `json:"id"`
}

// SwitchUser makes another profile current.
func (h *Handler) SwitchUser(w http.ResponseWriter, r *http.Request) {
	var req switchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.store.SwitchUser(req.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type updateProfileRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Class string `json:"class"`
}

// UpdateProfile updates profile metadata in place.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.store.UpdateProfile(req.ID, req.Name, req.Class)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// CurrentUser returns the active profile with its progress, or 204 if no
// user is registered.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	rec, err := h.store.CurrentUser()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if rec == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Logout clears the current user.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Logout(); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Leaderboard returns the top profiles by points.
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := h.cfg.LeaderboardSize
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := h.store.Leaderboard(limit)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// History returns the current user's scan history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	rec, err := h.store.CurrentUser()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "no current user")
		return
	}
	writeJSON(w, http.StatusOK, rec.History)
}

// StartScan starts the automatic scan loop.
func (h *Handler) StartScan(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.Start(r.Context()); err != nil {
		if errors.Is(err, capture.ErrDeviceUnavailable) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"state": string(h.controller.State())})
}

// StopScan stops the scan loop. A no-op when idle.
func (h *Handler) StopScan(w http.ResponseWriter, r *http.Request) {
	h.controller.Stop()
	writeJSON(w, http.StatusOK, map[string]string{"state": string(h.controller.State())})
}

// ScanState reports the controller state.
func (h *Handler) ScanState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"state": string(h.controller.State())})
}

// Categories returns waste category display info.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, classify.Categories())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("handlers: failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps store errors to HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrUnknownUser):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrUnknownCategory):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("handlers: store error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
