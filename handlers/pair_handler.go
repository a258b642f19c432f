package handlers

import (
	"net/http"

	"github.com/Dosada05/padel-circuit/services"
)

type PairHandler struct {
	pairService services.PairService
}

func NewPairHandler(ps services.PairService) *PairHandler {
	return &PairHandler{pairService: ps}
}

// Register godoc
// @Summary Enter a pair into a tournament category
// @Tags pairs
// @Accept json
// @Produce json
// @Param input body services.RegisterPairInput true "Pair"
// @Success 201 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Tournament, category or competitor not found"
// @Failure 409 {object} map[string]string "Competitor already paired, inactive or outside the category"
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /pairs [post]
func (h *PairHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterPairInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pair, err := h.pairService.RegisterPair(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"pair": pair}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// List godoc
// @Summary Pairs of a tournament category
// @Tags pairs
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param categoryID path int true "Category ID"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{tournamentID}/categories/{categoryID}/pairs [get]
func (h *PairHandler) List(w http.ResponseWriter, r *http.Request) {
	tournamentID, categoryID, err := tournamentCategory(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pairs, err := h.pairService.ListPairs(r.Context(), tournamentID, categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"pairs": pairs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Delete godoc
// @Summary Withdraw a pair not yet placed in a zone
// @Tags pairs
// @Param pairID path int true "Pair ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "Pair already in a zone"
// @Security BearerAuth
// @Router /pairs/{pairID} [delete]
func (h *PairHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "pairID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.pairService.DeletePair(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
