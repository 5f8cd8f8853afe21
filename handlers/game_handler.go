package handlers

import (
	"net/http"

	"github.com/skirmish-hq/tournament-system/games"
)

// GameHandler exposes game-module metadata so clients can render result
// forms without hardcoding per-game knowledge.
type GameHandler struct {
	registry *games.Registry
}

func NewGameHandler(registry *games.Registry) *GameHandler {
	return &GameHandler{registry: registry}
}

func (h *GameHandler) ListSupported(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{"game_systems": h.registry.Supported()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GameHandler) GetScenarios(w http.ResponseWriter, r *http.Request) {
	module, err := h.registry.Get(gameSystemParam(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err = writeJSON(w, http.StatusOK, jsonResponse{"scenarios": module.Scenarios()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GameHandler) GetScoringFields(w http.ResponseWriter, r *http.Request) {
	module, err := h.registry.Get(gameSystemParam(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err = writeJSON(w, http.StatusOK, jsonResponse{"scoring_fields": module.ScoringFields()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
