package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/hudsonjuan/digno-acai/internal/kiosk"
	"github.com/hudsonjuan/digno-acai/internal/order"
	"github.com/hudsonjuan/digno-acai/internal/service"
	"github.com/hudsonjuan/digno-acai/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: encode response: %v", err)
	}
}

// writeError maps engine and service errors to HTTP statuses. Validation
// errors surface their message so the shell can show the prompt verbatim
// (e.g. the required minimum on an insufficient cash payment).
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
	case errors.Is(err, order.ErrPaymentMethodRequired):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, order.ErrUnknownSize),
		errors.Is(err, order.ErrUnknownItem),
		errors.Is(err, order.ErrInvalidPaymentMethod),
		errors.Is(err, order.ErrInsufficientPayment),
		errors.Is(err, kiosk.ErrEmptyName),
		errors.Is(err, store.ErrInvalidTerminal):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
