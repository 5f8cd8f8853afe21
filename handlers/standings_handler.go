package handlers

import (
	"net/http"

	"github.com/skirmish-hq/tournament-system/services"
)

type StandingsHandler struct {
	standingsService services.StandingsService
}

func NewStandingsHandler(standingsService services.StandingsService) *StandingsHandler {
	return &StandingsHandler{standingsService: standingsService}
}

func (h *StandingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "table" {
		formatted, fmtErr := h.standingsService.GetFormattedStandings(r.Context(), tournamentID)
		if fmtErr != nil {
			mapServiceErrorToHTTP(w, r, fmtErr)
			return
		}
		if fmtErr = writeJSON(w, http.StatusOK, jsonResponse{"standings": formatted}, nil); fmtErr != nil {
			serverErrorResponse(w, r, fmtErr)
		}
		return
	}

	standings, err := h.standingsService.GetStandings(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
