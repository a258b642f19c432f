package handlers

import (
	"net/http"

	"github.com/Dosada05/padel-circuit/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
	closureService    services.ClosureService
}

func NewTournamentHandler(ts services.TournamentService, cs services.ClosureService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: ts,
		closureService:    cs,
	}
}

// CreateHandler godoc
// @Summary Create a tournament of the season
// @Tags tournaments
// @Accept json
// @Produce json
// @Param input body services.CreateTournamentInput true "Tournament"
// @Success 201 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Unknown category"
// @Failure 409 {object} map[string]string "Sequence already used in the season"
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /tournaments [post]
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.CreateTournament(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler godoc
// @Summary Tournament with its categories
// @Tags tournaments
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /tournaments/{tournamentID} [get]
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetTournament(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler godoc
// @Summary List tournaments, optionally of one season
// @Tags tournaments
// @Produce json
// @Param season query int false "Season"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments [get]
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	season, err := queryInt(r, "season")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournaments, err := h.tournamentService.ListTournaments(r.Context(), season)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CloseHandler godoc
// @Summary Close a tournament and settle season points
// @Description Every bracketed category must have its final decided. The response maps each competitor to the instance reached.
// @Tags tournaments
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "Final not decided or tournament already closed"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/close [post]
func (h *TournamentHandler) CloseHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	report, err := h.closureService.CloseTournament(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	resp := jsonResponse{"success": true, "instances": report.Instances(), "report": report}
	if err := writeJSON(w, http.StatusOK, resp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResultsHandler godoc
// @Summary Settlement of a closed tournament
// @Tags tournaments
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} services.ClosureReport
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "Tournament not closed"
// @Router /tournaments/{tournamentID}/results [get]
func (h *TournamentHandler) ResultsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	report, err := h.closureService.Results(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"results": report}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type createCategoryRequest struct {
	Name string `json:"name"`
}

// CreateCategoryHandler godoc
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Param input body createCategoryRequest true "Category"
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Name already used"
// @Security BearerAuth
// @Router /categories [post]
func (h *TournamentHandler) CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var input createCategoryRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	category, err := h.tournamentService.CreateCategory(r.Context(), input.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"category": category}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListCategoriesHandler godoc
// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /categories [get]
func (h *TournamentHandler) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := h.tournamentService.ListCategories(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"categories": categories}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
