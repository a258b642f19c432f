package handlers

import (
	"net/http"

	"github.com/Dosada05/padel-circuit/models"
	"github.com/Dosada05/padel-circuit/services"
)

// MatchHandler accepts set scores for zone and bracket matches.
type MatchHandler struct {
	zoneService    services.ZoneService
	bracketService services.BracketService
}

func NewMatchHandler(zs services.ZoneService, bs services.BracketService) *MatchHandler {
	return &MatchHandler{zoneService: zs, bracketService: bs}
}

type submitResultRequest struct {
	Sets []models.SetScore `json:"sets"`
}

// SubmitZoneResult godoc
// @Summary Submit the set scores of a zone match
// @Description Up to three sets, games in [0,7]. A result without a match winner is saved and the match stays pending.
// @Tags matches
// @Accept json
// @Produce json
// @Param matchID path int true "Zone match ID"
// @Param input body submitResultRequest true "Sets"
// @Success 200 {object} services.ZoneResult
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "Match already finalized"
// @Failure 422 {object} map[string]string "Invalid score; field names the set"
// @Security BearerAuth
// @Router /zone-matches/{matchID}/result [post]
func (h *MatchHandler) SubmitZoneResult(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input submitResultRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.zoneService.SubmitResult(r.Context(), id, input.Sets)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitBracketResult godoc
// @Summary Submit the set scores of a bracket match
// @Description The winner advances to its next-round slot in the same transaction.
// @Tags matches
// @Accept json
// @Produce json
// @Param matchID path int true "Bracket match ID"
// @Param input body submitResultRequest true "Sets"
// @Success 200 {object} services.BracketResult
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "Match finalized or a pair slot is still open"
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /bracket-matches/{matchID}/result [post]
func (h *MatchHandler) SubmitBracketResult(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input submitResultRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.bracketService.SubmitResult(r.Context(), id, input.Sets)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
