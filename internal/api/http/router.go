package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"rentaltoll-backend/internal/security"
)

const HealthPath = "/healthz"

type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers bundles the resource handlers served by the API.
type Handlers struct {
	Rentals *RentalHandler
	Tolls   *TollHandler
	Tickets *TicketHandler
	Ledger  *LedgerHandler
	Store   Pinger
	// Tokens enables bearer authentication when set.
	Tokens security.TokenManager
}

// RegisterRoutes mounts the JSON API on router.
func RegisterRoutes(router *mux.Router, h Handlers) {
	router.Use(LoggingMiddleware)
	if h.Tokens != nil {
		router.Use(AuthMiddleware(h.Tokens, HealthPath))
	}

	router.HandleFunc(HealthPath, healthHandler(h.Store)).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/rentals", h.Rentals.List).Methods("GET")
	api.HandleFunc("/rentals", h.Rentals.Create).Methods("POST")
	api.HandleFunc("/rentals/history", h.Rentals.History).Methods("GET")
	api.HandleFunc("/rentals/{id}", h.Rentals.Get).Methods("GET")
	api.HandleFunc("/rentals/{id}", h.Rentals.Update).Methods("PATCH")
	api.HandleFunc("/rentals/{id}", h.Rentals.Delete).Methods("DELETE")
	api.HandleFunc("/rentals/{id}/archive", h.Rentals.Archive).Methods("POST")
	api.HandleFunc("/rentals/{id}/tolls", h.Tolls.AddToRental).Methods("POST")
	api.HandleFunc("/rentals/{id}/tolls", h.Tolls.ClearRental).Methods("DELETE")
	api.HandleFunc("/rentals/{id}/tickets", h.Tickets.List).Methods("GET")
	api.HandleFunc("/rentals/{id}/tickets", h.Tickets.Add).Methods("POST")

	api.HandleFunc("/tickets/{id}", h.Tickets.Delete).Methods("DELETE")

	api.HandleFunc("/tolls", h.Tolls.List).Methods("GET")
	api.HandleFunc("/tolls", h.Tolls.Add).Methods("POST")
	api.HandleFunc("/tolls", h.Tolls.DeleteAll).Methods("DELETE")
	api.HandleFunc("/tolls/import", h.Tolls.Import).Methods("POST")
	api.HandleFunc("/tolls/bulk-match", h.Tolls.BulkMatch).Methods("POST")
	api.HandleFunc("/tolls/rematch", h.Tolls.Rematch).Methods("POST")
	api.HandleFunc("/tolls/{id}", h.Tolls.Update).Methods("PATCH")
	api.HandleFunc("/tolls/{id}", h.Tolls.Delete).Methods("DELETE")
	api.HandleFunc("/tolls/{id}/assign", h.Tolls.Assign).Methods("POST")
	api.HandleFunc("/tolls/{id}/unassign", h.Tolls.Unassign).Methods("POST")

	api.HandleFunc("/renters", h.Ledger.Renters).Methods("GET")
	api.HandleFunc("/renters/{name}/statement", h.Ledger.Statement).Methods("GET")
	api.HandleFunc("/renters/{name}/archive", h.Ledger.ArchiveStatement).Methods("POST")
	api.HandleFunc("/dashboard", h.Ledger.Dashboard).Methods("GET")
}

func healthHandler(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
