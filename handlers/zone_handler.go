package handlers

import (
	"net/http"

	"github.com/Dosada05/padel-circuit/models"
	"github.com/Dosada05/padel-circuit/services"
)

type ZoneHandler struct {
	zoneService services.ZoneService
}

func NewZoneHandler(zs services.ZoneService) *ZoneHandler {
	return &ZoneHandler{zoneService: zs}
}

// Create godoc
// @Summary Create a zone and schedule its matches
// @Tags zones
// @Accept json
// @Produce json
// @Param input body services.CreateZoneInput true "Zone"
// @Success 201 {object} services.ZoneDetail
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "Pair already in another zone or bracket generated"
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /zones [post]
func (h *ZoneHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateZoneInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	zone, err := h.zoneService.CreateZone(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"zone": zone}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Get godoc
// @Summary Zone with entries in standing order and its matches
// @Tags zones
// @Produce json
// @Param zoneID path int true "Zone ID"
// @Success 200 {object} services.ZoneDetail
// @Failure 404 {object} map[string]string
// @Router /zones/{zoneID} [get]
func (h *ZoneHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "zoneID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	zone, err := h.zoneService.GetZone(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"zone": zone}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// List godoc
// @Summary Zones of a tournament category
// @Tags zones
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param categoryID path int true "Category ID"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{tournamentID}/categories/{categoryID}/zones [get]
func (h *ZoneHandler) List(w http.ResponseWriter, r *http.Request) {
	tournamentID, categoryID, err := tournamentCategory(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	zones, err := h.zoneService.ListZones(r.Context(), tournamentID, categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"zones": zones}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type zoneStateRequest struct {
	Status models.ZoneStatus `json:"status"`
}

// SetState godoc
// @Summary Close or reopen a zone
// @Description status "finalized" freezes the ranking once every match is played; "in_progress" reopens a finalized zone before the bracket exists.
// @Tags zones
// @Accept json
// @Produce json
// @Param zoneID path int true "Zone ID"
// @Param input body zoneStateRequest true "Target state"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /zones/{zoneID}/state [put]
func (h *ZoneHandler) SetState(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "zoneID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input zoneStateRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	zone, err := h.zoneService.SetState(r.Context(), id, input.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"success": true, "zone": zone}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type resolveTieRequest struct {
	Method models.TieMethod `json:"method"`
}

// ResolveTie godoc
// @Summary Resolve a three-way tie by draw or tiebreak matches
// @Tags zones
// @Accept json
// @Produce json
// @Param zoneID path int true "Zone ID"
// @Param input body resolveTieRequest true "Method: draw or tiebreak"
// @Success 200 {object} services.TieOutcome
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "Zone is not a three-way tie"
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /zones/{zoneID}/tie [post]
func (h *ZoneHandler) ResolveTie(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "zoneID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input resolveTieRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := h.zoneService.ResolveTie(r.Context(), id, input.Method)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"success": true, "method": outcome.Method, "outcome": outcome}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
