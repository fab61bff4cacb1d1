package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"shadowlurkers-backend/internal/service"
)

// NewRouter wires the form-facing API. The Telegram surface lives in
// internal/bot; everything here is consumed by the Shadow Portal front-end.
func NewRouter(initiates service.InitiateService, validator service.EmailValidator) *mux.Router {
	h := &Handler{
		initiates: initiates,
		validator: validator,
	}

	r := mux.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(accessLogMiddleware)
	r.Use(corsMiddleware)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/api/submit", h.Submit).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/initiates", h.ListInitiates).Methods(http.MethodGet)
	r.HandleFunc("/api/initiates/{id:[0-9]+}", h.GetInitiate).Methods(http.MethodGet)
	r.HandleFunc("/api/validate-email", h.ValidateEmail).Methods(http.MethodPost, http.MethodOptions)

	return r
}
