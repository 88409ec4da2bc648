package http

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"rentaltoll-backend/internal/domain"
	"rentaltoll-backend/internal/repository"
	"rentaltoll-backend/internal/service"
)

const defaultMaxUploadBytes = 10 << 20

type TollHandler struct {
	tollSvc        service.TollService
	location       *time.Location
	maxUploadBytes int64
}

func NewTollHandler(tollSvc service.TollService, loc *time.Location, maxUploadBytes int64) *TollHandler {
	if loc == nil {
		loc = time.UTC
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &TollHandler{tollSvc: tollSvc, location: loc, maxUploadBytes: maxUploadBytes}
}

func (h *TollHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status, err := parseTollStatus(q.Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	tolls, err := h.tollSvc.ListTolls(r.Context(), repository.TollFilter{
		Status:   status,
		RentalID: q.Get("rental_id"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if tolls == nil {
		tolls = []domain.TollView{}
	}
	writeJSON(w, http.StatusOK, tolls)
}

// Import reads a toll export from the raw body or a multipart "file" field.
func (h *TollHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	var body io.Reader = r.Body
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, r, err)
				return
			}
			badRequest(w, r, "invalid multipart upload")
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			badRequest(w, r, "multipart field \"file\" is required")
			return
		}
		defer file.Close()
		body = file
	}

	result, err := h.tollSvc.ImportTolls(r.Context(), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *TollHandler) BulkMatch(w http.ResponseWriter, r *http.Request) {
	var batch map[string]service.BulkMatchEntry
	if err := decodeJSON(r, &batch); err != nil {
		writeError(w, r, err)
		return
	}
	for _, entry := range batch {
		for _, t := range entry.Tolls {
			if t == nil {
				continue
			}
			if err := normalizeAmounts(&t.Amount); err != nil {
				writeError(w, r, err)
				return
			}
		}
	}
	result, err := h.tollSvc.ApplyBulkMatch(r.Context(), batch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *TollHandler) Rematch(w http.ResponseWriter, r *http.Request) {
	result, err := h.tollSvc.RematchUnmatched(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Add records a manual toll. The matcher places it unless a rental id is
// given in the body.
func (h *TollHandler) Add(w http.ResponseWriter, r *http.Request) {
	h.add(w, r, "")
}

// AddToRental records a manual toll on the rental named in the path.
func (h *TollHandler) AddToRental(w http.ResponseWriter, r *http.Request) {
	h.add(w, r, mux.Vars(r)["id"])
}

func (h *TollHandler) add(w http.ResponseWriter, r *http.Request, rentalID string) {
	var req tollRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := normalizeAmounts(&req.Amount); err != nil {
		writeError(w, r, err)
		return
	}
	at, err := parseTollTime(req.TransactionAt, h.location)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rentalID == "" {
		rentalID = req.RentalID
	}

	toll, created, err := h.tollSvc.AddToll(r.Context(), service.TollInput{
		RentalID:      rentalID,
		LaneTxnID:     req.LaneTxnID,
		TransactionAt: at,
		Location:      req.Location,
		Amount:        req.Amount,
		Plate:         req.Plate,
		Agency:        req.Agency,
		Class:         req.Class,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !created {
		writeJSON(w, http.StatusOK, toll)
		return
	}
	writeJSON(w, http.StatusCreated, toll)
}

func (h *TollHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req tollPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := normalizeAmounts(req.Amount); err != nil {
		writeError(w, r, err)
		return
	}
	patch := service.TollPatch{
		Location: req.Location,
		Amount:   req.Amount,
		Plate:    req.Plate,
	}
	if req.TransactionAt != nil {
		at, err := parseTollTime(*req.TransactionAt, h.location)
		if err != nil {
			writeError(w, r, err)
			return
		}
		patch.TransactionAt = &at
	}

	toll, err := h.tollSvc.UpdateToll(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toll)
}

func (h *TollHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.tollSvc.DeleteToll(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TollHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.tollSvc.DeleteAllTolls(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Deleted: n})
}

func (h *TollHandler) ClearRental(w http.ResponseWriter, r *http.Request) {
	n, err := h.tollSvc.ClearRentalTolls(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Deleted: int64(n)})
}

func (h *TollHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.RentalID == "" {
		badRequest(w, r, "rental_id is required")
		return
	}
	toll, err := h.tollSvc.AssignToll(r.Context(), mux.Vars(r)["id"], req.RentalID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toll)
}

func (h *TollHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	toll, err := h.tollSvc.UnassignToll(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toll)
}
