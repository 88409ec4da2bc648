package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"rentaltoll-backend/internal/domain"
	"rentaltoll-backend/internal/service"
)

type RentalHandler struct {
	rentalSvc service.RentalService
	location  *time.Location
}

func NewRentalHandler(rentalSvc service.RentalService, loc *time.Location) *RentalHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &RentalHandler{rentalSvc: rentalSvc, location: loc}
}

func (h *RentalHandler) List(w http.ResponseWriter, r *http.Request) {
	status, err := parseRentalStatus(r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	rentals, err := h.rentalSvc.ListRentals(r.Context(), status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapRentals(rentals))
}

// History lists archived rentals.
func (h *RentalHandler) History(w http.ResponseWriter, r *http.Request) {
	rentals, err := h.rentalSvc.ListRentals(r.Context(), domain.RentalStatusArchived)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapRentals(rentals))
}

func (h *RentalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req rentalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := normalizeAmounts(&req.Amount, &req.TotalPaid); err != nil {
		writeError(w, r, err)
		return
	}
	start, err := parseRentalDate(req.StartDate, false, h.location)
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := parseRentalDate(req.EndDate, true, h.location)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rental, resolved, err := h.rentalSvc.CreateRental(r.Context(), service.RentalInput{
		RenterName: req.RenterName,
		CarModel:   req.CarModel,
		StartDate:  start,
		EndDate:    end,
		Amount:     req.Amount,
		TotalPaid:  req.TotalPaid,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createRentalResponse{Rental: mapRental(rental), ResolvedTolls: resolved})
}

func (h *RentalHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.rentalSvc.GetRental(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapRentalDetail(detail))
}

func (h *RentalHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req rentalPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := normalizeAmounts(req.Amount, req.TotalPaid); err != nil {
		writeError(w, r, err)
		return
	}

	patch := service.RentalPatch{
		RenterName: req.RenterName,
		CarModel:   req.CarModel,
		Amount:     req.Amount,
		TotalPaid:  req.TotalPaid,
	}
	if req.StartDate != nil {
		start, err := parseRentalDate(*req.StartDate, false, h.location)
		if err != nil {
			writeError(w, r, err)
			return
		}
		patch.StartDate = &start
	}
	if req.EndDate != nil {
		end, err := parseRentalDate(*req.EndDate, true, h.location)
		if err != nil {
			writeError(w, r, err)
			return
		}
		patch.EndDate = &end
	}

	rental, err := h.rentalSvc.UpdateRental(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapRental(rental))
}

func (h *RentalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.rentalSvc.DeleteRental(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RentalHandler) Archive(w http.ResponseWriter, r *http.Request) {
	rental, err := h.rentalSvc.ArchiveRental(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapRental(rental))
}
