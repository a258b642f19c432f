package handlers

import (
	"net/http"

	"github.com/Dosada05/padel-circuit/services"
)

type CompetitorHandler struct {
	competitorService services.CompetitorService
}

func NewCompetitorHandler(cs services.CompetitorService) *CompetitorHandler {
	return &CompetitorHandler{competitorService: cs}
}

// Create godoc
// @Summary Register a competitor
// @Tags competitors
// @Accept json
// @Produce json
// @Param input body services.CreateCompetitorInput true "Competitor"
// @Success 201 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Unknown category"
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /competitors [post]
func (h *CompetitorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateCompetitorInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	competitor, err := h.competitorService.CreateCompetitor(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"competitor": competitor}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Get godoc
// @Summary Competitor by ID
// @Tags competitors
// @Produce json
// @Param competitorID path int true "Competitor ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /competitors/{competitorID} [get]
func (h *CompetitorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "competitorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	competitor, err := h.competitorService.GetCompetitor(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"competitor": competitor}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AddCategory godoc
// @Summary Add a category membership
// @Description Repeating the call is a no-op.
// @Tags competitors
// @Param competitorID path int true "Competitor ID"
// @Param categoryID path int true "Category ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /competitors/{competitorID}/categories/{categoryID} [put]
func (h *CompetitorHandler) AddCategory(w http.ResponseWriter, r *http.Request) {
	competitorID, err := getIDFromURL(r, "competitorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	categoryID, err := getIDFromURL(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.competitorService.AddCategory(r.Context(), competitorID, categoryID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type setActiveRequest struct {
	Active *bool `json:"active"`
}

// SetActive godoc
// @Summary Activate or retire a competitor
// @Tags competitors
// @Accept json
// @Param competitorID path int true "Competitor ID"
// @Param input body setActiveRequest true "Activity"
// @Success 204
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /competitors/{competitorID}/active [put]
func (h *CompetitorHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "competitorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input setActiveRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Active == nil {
		errorResponse(w, r, http.StatusUnprocessableEntity, jsonResponse{"error": "active is required", "field": "active", "code": "validation"})
		return
	}

	if err := h.competitorService.SetActive(r.Context(), id, *input.Active); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
