package enum

// ── Kiosk session state machine ──

const (
	KioskStateInactive     = "INACTIVE"
	KioskStateAwaitingName = "AWAITING_NAME"
	KioskStateReady        = "READY"
	KioskStateResetting    = "RESETTING"
)

// ── Payment methods ──

const (
	PaymentMethodCash = "CASH"
	PaymentMethodPix  = "PIX"
)

// ── WebSocket event types pushed to the kiosk screen ──

const (
	EventOrderUpdated     = "order.updated"
	EventNameCaptured     = "session.name_captured"
	EventSessionResetting = "session.resetting"
	EventSessionReset     = "session.reset"
)
