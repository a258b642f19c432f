package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/padel-circuit/services"
)

type BracketHandler struct {
	bracketService services.BracketService
}

func NewBracketHandler(bs services.BracketService) *BracketHandler {
	return &BracketHandler{bracketService: bs}
}

// Generate godoc
// @Summary Generate the elimination bracket of a tournament category
// @Description Every zone must be finalized. The bracket can be generated only once.
// @Tags brackets
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param categoryID path int true "Category ID"
// @Success 201 {object} services.GenerateResult
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "Bracket exists or zones still open"
// @Failure 422 {object} map[string]string "No topology for the pair count"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/categories/{categoryID}/bracket [post]
func (h *BracketHandler) Generate(w http.ResponseWriter, r *http.Request) {
	tournamentID, categoryID, err := tournamentCategory(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.bracketService.Generate(r.Context(), tournamentID, categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"bracket": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Get godoc
// @Summary Bracket view: rounds, matches and adjacency
// @Tags brackets
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param categoryID path int true "Category ID"
// @Success 200 {object} services.BracketView
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "Bracket not generated"
// @Router /tournaments/{tournamentID}/categories/{categoryID}/bracket [get]
func (h *BracketHandler) Get(w http.ResponseWriter, r *http.Request) {
	tournamentID, categoryID, err := tournamentCategory(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.bracketService.GetBracket(r.Context(), tournamentID, categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Topology godoc
// @Summary Zone layout and bracket shape for a pair count
// @Tags brackets
// @Produce json
// @Param pairCount path int true "Pairs in the category"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]string "Unsupported pair count"
// @Router /topologies/{pairCount} [get]
func (h *BracketHandler) Topology(w http.ResponseWriter, r *http.Request) {
	// 0 и отрицательные значения отклоняет сервис как неподдерживаемые
	pairCount, err := strconv.Atoi(chi.URLParam(r, "pairCount"))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	topology, err := h.bracketService.Topology(r.Context(), pairCount)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"topology": topology, "match_count": topology.MatchCount()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
