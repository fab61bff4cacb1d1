package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"shadowlurkers-backend/internal/domain"
	"shadowlurkers-backend/internal/logger"
	"shadowlurkers-backend/internal/service"
)

type Handler struct {
	initiates service.InitiateService
	validator service.EmailValidator
}

type submitRequest struct {
	Name     string `json:"name"`
	Age      int    `json:"age"`
	Gender   string `json:"gender"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Telegram string `json:"telegram"`
	Moniker  string `json:"moniker"`
	Role     string `json:"role"`
	Skills   string `json:"skills"`
	OAT      string `json:"oat"`
}

type submitResponse struct {
	Success bool   `json:"success"`
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	in := &domain.Initiate{
		Name:     req.Name,
		Age:      req.Age,
		Gender:   req.Gender,
		Phone:    req.Phone,
		Email:    req.Email,
		Telegram: req.Telegram,
		Moniker:  req.Moniker,
		Role:     req.Role,
		Skills:   req.Skills,
		OAT:      req.OAT,
	}

	_, err := h.initiates.Submit(r.Context(), in)
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, "Missing required fields")
	case errors.Is(err, domain.ErrDuplicateTag):
		writeError(w, http.StatusConflict, "This OAT is already claimed")
	case err != nil:
		logger.Error("Submit failed", "error", err)
		writeError(w, http.StatusInternalServerError, "The Silent Ledger is temporarily unreachable")
	default:
		writeJSON(w, http.StatusOK, submitResponse{
			Success: true,
			ID:      in.ID,
			Message: "Initiation recorded in the Silent Ledger",
		})
	}
}

func (h *Handler) ListInitiates(w http.ResponseWriter, r *http.Request) {
	initiates, err := h.initiates.ListAll(r.Context())
	if err != nil {
		logger.Error("List initiates failed", "error", err)
		writeError(w, http.StatusInternalServerError, "The Silent Ledger is temporarily unreachable")
		return
	}
	if initiates == nil {
		initiates = []domain.Initiate{}
	}
	writeJSON(w, http.StatusOK, initiates)
}

func (h *Handler) GetInitiate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	in, err := h.initiates.Get(r.Context(), id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case err != nil:
		logger.Error("Get initiate failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "The Silent Ledger is temporarily unreachable")
	default:
		writeJSON(w, http.StatusOK, in)
	}
}

type validateEmailRequest struct {
	Email string `json:"email"`
}

type validateEmailResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// ValidateEmail is advisory only; the validator defaults to valid whenever the
// upstream check cannot give a firm answer.
func (h *Handler) ValidateEmail(w http.ResponseWriter, r *http.Request) {
	var req validateEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	valid, reason := h.validator.Validate(r.Context(), req.Email)
	writeJSON(w, http.StatusOK, validateEmailResponse{Valid: valid, Reason: reason})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
