package bookings

import (
	"errors"
	"net/http"

	"eventhive/internal/payments"
	"eventhive/internal/shared/middleware"
	"eventhive/internal/shared/utils/response"
	"eventhive/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
	log     *logger.Logger
}

func NewController(service Service, log *logger.Logger) *Controller {
	return &Controller{service: service, log: log}
}

func actorFrom(c *gin.Context) Actor {
	return Actor{
		Email:   middleware.GetUserEmail(c),
		Name:    middleware.GetUserName(c),
		IsAdmin: middleware.IsAdmin(c),
	}
}

// Reserve godoc
// @Summary      Reserve a seat
// @Description  Confirms a seat when one is left, otherwise adds the caller to the waitlist
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        request  body      ReserveRequest  true  "Reservation"
// @Success      201      {object}  ReserveResult
// @Failure      404      {object}  response.StandardApiResponse
// @Security     BearerAuth
// @Router       /bookings [post]
func (ctrl *Controller) Reserve(c *gin.Context) {
	var req ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	result, err := ctrl.service.Reserve(c.Request.Context(), actorFrom(c), uuid.MustParse(req.EventID), req.UserEmail, req.UserName)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetUserBookings godoc
// @Summary      List a user's bookings
// @Tags         bookings
// @Produce      json
// @Param        email  path      string  true  "User email"
// @Success      200    {array}   Booking
// @Security     BearerAuth
// @Router       /bookings/{email} [get]
func (ctrl *Controller) GetUserBookings(c *gin.Context) {
	bookings, err := ctrl.service.GetUserBookings(c.Request.Context(), actorFrom(c), c.Param("email"))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// Cancel godoc
// @Summary      Cancel a booking
// @Description  Deletes the booking, releases its seat and quotes the refund
// @Tags         bookings
// @Produce      json
// @Param        id   path      string  true  "Booking ID"
// @Success      200  {object}  CancelResult
// @Failure      400  {object}  response.StandardApiResponse
// @Failure      404  {object}  response.StandardApiResponse
// @Security     BearerAuth
// @Router       /bookings/{id} [delete]
func (ctrl *Controller) Cancel(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid booking ID", nil, nil)
		return
	}

	result, err := ctrl.service.Cancel(c.Request.Context(), actorFrom(c), bookingID)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CreateCheckoutSession godoc
// @Summary      Start a hosted checkout
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request  body      CheckoutSessionRequest  true  "Checkout"
// @Success      200      {object}  payments.CheckoutSession
// @Failure      400      {object}  response.StandardApiResponse
// @Security     BearerAuth
// @Router       /bookings/create-checkout-session [post]
func (ctrl *Controller) CreateCheckoutSession(c *gin.Context) {
	var req CheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	session, err := ctrl.service.CreateCheckoutSession(c.Request.Context(), actorFrom(c), uuid.MustParse(req.EventID), req.UserEmail, req.UserName)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// SessionStatus godoc
// @Summary      Confirm a checkout session
// @Description  Creates the booking for a paid session; safe to call repeatedly
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request  body      SessionStatusRequest  true  "Session"
// @Success      200      {object}  ReconcileResult
// @Security     BearerAuth
// @Router       /bookings/session-status [post]
func (ctrl *Controller) SessionStatus(c *gin.Context) {
	var req SessionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	result, err := ctrl.service.ReconcilePayment(c.Request.Context(), actorFrom(c), req.SessionID)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (ctrl *Controller) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrEventNotFound):
		response.RespondJSON(c, "error", http.StatusNotFound, "Event not found", nil, nil)
	case errors.Is(err, ErrBookingNotFound):
		response.RespondJSON(c, "error", http.StatusNotFound, "Booking not found", nil, nil)
	case errors.Is(err, payments.ErrSessionNotFound):
		response.RespondJSON(c, "error", http.StatusNotFound, "Checkout session not found", nil, nil)
	case errors.Is(err, ErrForbidden):
		response.RespondJSON(c, "error", http.StatusForbidden, "Forbidden Access!", nil, nil)
	case errors.Is(err, ErrEventStarted):
		response.RespondJSON(c, "error", http.StatusBadRequest, "Event has already started", nil, nil)
	case errors.Is(err, ErrNoSeatsAvailable):
		response.RespondJSON(c, "error", http.StatusBadRequest, "No seats available", nil, nil)
	case errors.Is(err, ErrNoPaymentRequired), errors.Is(err, payments.ErrInvalidMetadata):
		response.RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
	default:
		ctrl.log.ForRequest(c).
			WithUserEmail(middleware.GetUserEmail(c)).
			LogHTTPError(c, err, http.StatusInternalServerError)
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Internal server error", nil, nil)
	}
}
