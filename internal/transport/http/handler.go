package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	pb "github.com/light-bringer/provenance-ledger/api/ledger/v1"
)

// Handler serves the ledger JSON API on top of the gRPC service implementation.
type Handler struct {
	ledger pb.LedgerServiceServer
	logger *slog.Logger
}

// NewHandler creates a new HTTP ledger handler.
func NewHandler(ledger pb.LedgerServiceServer, logger *slog.Logger) *Handler {
	return &Handler{
		ledger: ledger,
		logger: logger,
	}
}

// POST /v1/products
func (h *Handler) registerProduct(w http.ResponseWriter, r *http.Request) {
	var req pb.RegisterProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.ledger.RegisterProduct(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// POST /v1/products/{productID}/status
func (h *Handler) updateProductStatus(w http.ResponseWriter, r *http.Request) {
	var req pb.UpdateProductStatusRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.ProductID = chi.URLParam(r, "productID")

	resp, err := h.ledger.UpdateProductStatus(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// PUT /v1/roles/{identity}
func (h *Handler) assignRole(w http.ResponseWriter, r *http.Request) {
	var req pb.AssignRoleRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.Identity = chi.URLParam(r, "identity")

	resp, err := h.ledger.AssignRole(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /v1/products/{productID}
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	resp, err := h.ledger.GetProduct(r.Context(), &pb.GetProductRequest{ProductID: chi.URLParam(r, "productID")})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /v1/products/{productID}/history
func (h *Handler) listStatusHistory(w http.ResponseWriter, r *http.Request) {
	resp, err := h.ledger.ListStatusHistory(r.Context(), &pb.ListStatusHistoryRequest{ProductID: chi.URLParam(r, "productID")})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /v1/products/{productID}/history/{sequence}
func (h *Handler) getStatusHistory(w http.ResponseWriter, r *http.Request) {
	sequence, err := strconv.ParseUint(chi.URLParam(r, "sequence"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "sequence must be a non-negative integer"})
		return
	}

	resp, err := h.ledger.GetStatusHistory(r.Context(), &pb.GetStatusHistoryRequest{
		ProductID: chi.URLParam(r, "productID"),
		Sequence:  sequence,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /v1/roles/{identity}
func (h *Handler) getRole(w http.ResponseWriter, r *http.Request) {
	resp, err := h.ledger.GetRole(r.Context(), &pb.GetRoleRequest{Identity: chi.URLParam(r, "identity")})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /v1/audit?from=&limit=
func (h *Handler) listAuditEntries(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &pb.ListAuditEntriesRequest{}

	if fromStr := query.Get("from"); fromStr != "" {
		from, err := strconv.ParseUint(fromStr, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "from must be a non-negative integer"})
			return
		}
		req.From = from
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "limit must be a non-negative integer"})
			return
		}
		req.Limit = limit
	}

	resp, err := h.ledger.ListAuditEntries(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /v1/audit/{txID}
func (h *Handler) getAuditEntry(w http.ResponseWriter, r *http.Request) {
	txID, err := strconv.ParseUint(chi.URLParam(r, "txID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "txID must be a non-negative integer"})
		return
	}

	resp, err := h.ledger.GetAuditEntry(r.Context(), &pb.GetAuditEntryRequest{TxID: txID})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.logger.DebugContext(r.Context(), "invalid request body", slog.String("path", r.URL.Path), slog.Any("error", err))
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return false
	}
	return true
}
