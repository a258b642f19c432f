package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/padel-circuit/models"
	"github.com/Dosada05/padel-circuit/services"
)

// PointsHandler serves the points configuration and the season ranking.
type PointsHandler struct {
	pointsService  services.PointsService
	rankingService services.RankingService
	defaultSeason  int
}

func NewPointsHandler(ps services.PointsService, rs services.RankingService, defaultSeason int) *PointsHandler {
	return &PointsHandler{pointsService: ps, rankingService: rs, defaultSeason: defaultSeason}
}

func optionalCategory(r *http.Request) (*int, error) {
	if chi.URLParam(r, "categoryID") == "" {
		return nil, nil
	}
	id, err := getIDFromURL(r, "categoryID")
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// GetTable godoc
// @Summary Effective points table
// @Description Without a category the default table is returned.
// @Tags points
// @Produce json
// @Param categoryID path int false "Category ID"
// @Success 200 {object} map[string]interface{}
// @Router /points [get]
// @Router /categories/{categoryID}/points [get]
func (h *PointsHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	categoryID, err := optionalCategory(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	table, err := h.pointsService.GetTable(r.Context(), categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"points": table}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type pointsTableRequest struct {
	Points map[models.Instance]int `json:"points"`
}

// ReplaceTable godoc
// @Summary Replace a points table
// @Description Instances left out award no points.
// @Tags points
// @Accept json
// @Param categoryID path int false "Category ID"
// @Param input body pointsTableRequest true "Instance to points"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /points [put]
// @Router /categories/{categoryID}/points [put]
func (h *PointsHandler) ReplaceTable(w http.ResponseWriter, r *http.Request) {
	categoryID, err := optionalCategory(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input pointsTableRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.pointsService.ReplaceTable(r.Context(), categoryID, input.Points); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Ranking godoc
// @Summary Season ranking of a category
// @Tags points
// @Produce json
// @Param categoryID path int true "Category ID"
// @Param season query int false "Season, current by default"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /categories/{categoryID}/ranking [get]
func (h *PointsHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	categoryID, err := getIDFromURL(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	season, err := queryInt(r, "season")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if season == nil {
		season = &h.defaultSeason
	}

	ranking, err := h.rankingService.SeasonRanking(r.Context(), categoryID, *season)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"season": *season, "ranking": ranking}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
