package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hudsonjuan/digno-acai/internal/order"
	"github.com/hudsonjuan/digno-acai/internal/service"
	"github.com/shopspring/decimal"
)

// SessionServicer defines the service methods needed by session handlers.
// Satisfied by *service.SessionService; narrow interface for testability.
type SessionServicer interface {
	Create(terminal string, kioskMode bool) (service.SessionState, error)
	Get(id uuid.UUID) (service.SessionState, error)
	Destroy(id uuid.UUID) error
	SelectSize(id uuid.UUID, sizeID string) (service.SessionState, error)
	ToggleFruit(id uuid.UUID, fruitID string, selected bool) (service.SessionState, error)
	ToggleIceCream(id uuid.UUID, iceCreamID string, selected bool) (service.SessionState, error)
	ToggleTopping(id uuid.UUID, toppingID string, selected bool) (service.SessionState, error)
	SetNotes(id uuid.UUID, text string) (service.SessionState, error)
	SetPayment(id uuid.UUID, method string, tendered decimal.Decimal) (service.SessionState, error)
	Checkout(id uuid.UUID) (*service.CheckoutResult, error)
	Reset(id uuid.UUID) (service.SessionState, error)
	SubmitName(id uuid.UUID, name string) (service.SessionState, error)
	Touch(id uuid.UUID, returnedFromApp bool) (service.SessionState, error)
}

// SessionHandler handles session and kiosk endpoints.
type SessionHandler struct {
	svc SessionServicer
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(svc SessionServicer) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// RegisterRoutes registers session endpoints on the given Chi router.
// Expected to be mounted at /sessions.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Route("/{sid}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.Destroy)
		r.Post("/name", h.SubmitName)
		r.Post("/touch", h.Touch)
		r.Route("/order", func(r chi.Router) {
			r.Put("/size", h.SelectSize)
			r.Put("/fruits/{id}", h.toggleHandler(h.svc.ToggleFruit, true))
			r.Delete("/fruits/{id}", h.toggleHandler(h.svc.ToggleFruit, false))
			r.Put("/ice-creams/{id}", h.toggleHandler(h.svc.ToggleIceCream, true))
			r.Delete("/ice-creams/{id}", h.toggleHandler(h.svc.ToggleIceCream, false))
			r.Put("/toppings/{id}", h.toggleHandler(h.svc.ToggleTopping, true))
			r.Delete("/toppings/{id}", h.toggleHandler(h.svc.ToggleTopping, false))
			r.Put("/notes", h.UpdateNotes)
			r.Put("/payment", h.SetPayment)
			r.Post("/checkout", h.Checkout)
			r.Post("/reset", h.Reset)
		})
	})
}

// --- Request / Response types ---

type createSessionRequest struct {
	TerminalID string `json:"terminal_id"`
}

type submitNameRequest struct {
	Name string `json:"name"`
}

type touchRequest struct {
	ReturnedFromWhatsApp bool `json:"returned_from_whatsapp"`
}

type selectSizeRequest struct {
	SizeID string `json:"size_id"`
}

type updateNotesRequest struct {
	Notes string `json:"notes"`
}

type setPaymentRequest struct {
	Method         string `json:"method"`
	AmountReceived string `json:"amount_received"`
}

type checkoutResponse struct {
	Summary     []order.SummaryLine `json:"summary"`
	Message     string              `json:"message"`
	WhatsAppURL string              `json:"whatsapp_url"`
}

type sessionResponse struct {
	ID         string        `json:"id"`
	TerminalID string        `json:"terminal_id"`
	Kiosk      kioskResponse `json:"kiosk"`
	Order      orderResponse `json:"order"`
}

type kioskResponse struct {
	Active       bool   `json:"active"`
	State        string `json:"state"`
	CustomerName string `json:"customer_name,omitempty"`
	ScrollLocked bool   `json:"scroll_locked"`
}

type orderResponse struct {
	Size      sizeResponse     `json:"size"`
	Fruits    []string         `json:"fruits"`
	IceCreams []string         `json:"ice_creams"`
	Toppings  []string         `json:"toppings"`
	Notes     string           `json:"notes"`
	Payment   *paymentResponse `json:"payment,omitempty"`
	Total     string           `json:"total"`
}

type sizeResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

type paymentResponse struct {
	Method         string `json:"method"`
	AmountReceived string `json:"amount_received,omitempty"`
}

func toSessionResponse(st service.SessionState) sessionResponse {
	o := orderResponse{
		Size: sizeResponse{
			ID:    st.Order.Size.ID,
			Name:  st.Order.Size.Name,
			Price: st.Order.Size.Price.StringFixed(2),
		},
		Fruits:    emptyNotNil(st.Order.Fruits),
		IceCreams: emptyNotNil(st.Order.IceCreams),
		Toppings:  emptyNotNil(st.Order.Toppings),
		Notes:     st.Order.Notes,
		Total:     st.Order.Total.StringFixed(2),
	}
	if p := st.Order.Payment; p != nil {
		o.Payment = &paymentResponse{Method: p.Method}
		if !p.Tendered.IsZero() {
			o.Payment.AmountReceived = p.Tendered.StringFixed(2)
		}
	}
	return sessionResponse{
		ID:         st.ID.String(),
		TerminalID: st.Terminal,
		Kiosk: kioskResponse{
			Active:       st.KioskActive,
			State:        st.KioskState,
			CustomerName: st.CustomerName,
			ScrollLocked: st.ScrollLocked,
		},
		Order: o,
	}
}

func emptyNotNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// --- Handlers ---

// Create handles POST /sessions. The kiosk entry flag arrives as ?kiosk=1.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	kioskMode := r.URL.Query().Get("kiosk") == "1"

	state, err := h.svc.Create(req.TerminalID, kioskMode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(state))
}

// Get handles GET /sessions/{sid}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	state, err := h.svc.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(state))
}

// Destroy handles DELETE /sessions/{sid}.
func (h *SessionHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Destroy(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubmitName handles POST /sessions/{sid}/name.
func (h *SessionHandler) SubmitName(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req submitNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	state, err := h.svc.SubmitName(id, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(state))
}

// Touch handles POST /sessions/{sid}/touch. The shell calls it on every
// qualifying interaction; returned_from_whatsapp marks the referrer-detected
// return from the messaging hand-off.
func (h *SessionHandler) Touch(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req touchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	state, err := h.svc.Touch(id, req.ReturnedFromWhatsApp)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(state))
}

// --- Order handlers ---

// SelectSize handles PUT /sessions/{sid}/order/size.
func (h *SessionHandler) SelectSize(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req selectSizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	state, err := h.svc.SelectSize(id, req.SizeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(state))
}

// toggleHandler builds the add/remove handler for one selection family
// (fruits, ice creams, toppings). PUT selects, DELETE deselects.
func (h *SessionHandler) toggleHandler(toggle func(uuid.UUID, string, bool) (service.SessionState, error), selected bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(w, r)
		if !ok {
			return
		}
		itemID := chi.URLParam(r, "id")
		state, err := toggle(id, itemID, selected)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSessionResponse(state))
	}
}

// UpdateNotes handles PUT /sessions/{sid}/order/notes.
func (h *SessionHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req updateNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	state, err := h.svc.SetNotes(id, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(state))
}

// SetPayment handles PUT /sessions/{sid}/order/payment.
func (h *SessionHandler) SetPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req setPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Method == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "method is required"})
		return
	}

	tendered := decimal.Zero
	if req.AmountReceived != "" {
		var err error
		tendered, err = decimal.NewFromString(req.AmountReceived)
		if err != nil || tendered.IsNegative() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid amount_received"})
			return
		}
	}

	state, err := h.svc.SetPayment(id, req.Method, tendered)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(state))
}

// Checkout handles POST /sessions/{sid}/order/checkout.
func (h *SessionHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.Checkout(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, checkoutResponse{
		Summary:     result.Summary,
		Message:     result.Message,
		WhatsAppURL: result.WhatsAppLink,
	})
}

// Reset handles POST /sessions/{sid}/order/reset.
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	state, err := h.svc.Reset(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(state))
}

// sessionID parses the {sid} URL parameter, writing a 400 on failure.
func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return uuid.Nil, false
	}
	return id, true
}
