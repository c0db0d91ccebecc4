package bookings

type ReserveRequest struct {
	EventID   string `json:"eventId" binding:"required,uuid"`
	UserEmail string `json:"userEmail" binding:"omitempty,email"`
	UserName  string `json:"userName" binding:"max=255"`
}

// CheckoutSessionRequest mirrors the client payload. Only the event id and
// the buyer identity are trusted; name, date and price come from the catalog.
type CheckoutSessionRequest struct {
	EventID   string  `json:"eventId" binding:"required,uuid"`
	EventName string  `json:"eventName"`
	EventDate string  `json:"eventDate"`
	UserEmail string  `json:"userEmail" binding:"omitempty,email"`
	UserName  string  `json:"userName" binding:"max=255"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
}

type SessionStatusRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}
