package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"rentaltoll-backend/internal/domain"
	"rentaltoll-backend/internal/service"
)

type LedgerHandler struct {
	ledgerSvc service.LedgerService
	rentalSvc service.RentalService
}

func NewLedgerHandler(ledgerSvc service.LedgerService, rentalSvc service.RentalService) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc, rentalSvc: rentalSvc}
}

func (h *LedgerHandler) Renters(w http.ResponseWriter, r *http.Request) {
	renters, err := h.ledgerSvc.ListRenters(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if renters == nil {
		renters = []domain.RenterSummary{}
	}
	writeJSON(w, http.StatusOK, renters)
}

func (h *LedgerHandler) Statement(w http.ResponseWriter, r *http.Request) {
	stmt, err := h.ledgerSvc.GetStatement(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapStatement(stmt))
}

// ArchiveStatement settles every active rental of the renter.
func (h *LedgerHandler) ArchiveStatement(w http.ResponseWriter, r *http.Request) {
	n, err := h.rentalSvc.ArchiveStatement(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"archived": n})
}

func (h *LedgerHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.ledgerSvc.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}
