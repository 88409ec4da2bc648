package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"rentaltoll-backend/internal/domain"
	"rentaltoll-backend/internal/service"
)

type TicketHandler struct {
	ticketSvc service.TicketService
	location  *time.Location
}

func NewTicketHandler(ticketSvc service.TicketService, loc *time.Location) *TicketHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &TicketHandler{ticketSvc: ticketSvc, location: loc}
}

func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.ticketSvc.ListTickets(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	if tickets == nil {
		tickets = []*domain.Ticket{}
	}
	writeJSON(w, http.StatusOK, tickets)
}

func (h *TicketHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req ticketRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := normalizeAmounts(&req.Amount); err != nil {
		writeError(w, r, err)
		return
	}
	date, err := parseTicketDate(req.Date, h.location)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ticket, err := h.ticketSvc.AddTicket(r.Context(), service.TicketInput{
		RentalID:    mux.Vars(r)["id"],
		Date:        date,
		Time:        req.Time,
		Category:    req.category(),
		Location:    req.Location,
		Amount:      req.Amount,
		Description: req.description(),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ticket)
}

func (h *TicketHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.ticketSvc.DeleteTicket(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
