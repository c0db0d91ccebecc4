package bookings

import (
	"eventhive/internal/auth"
	"eventhive/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes configures all booking-related routes
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller, verifier auth.Verifier, directory middleware.AccountDirectory) {
	bookings := rg.Group("/bookings")
	bookings.Use(middleware.Authenticate(verifier), middleware.ResolveRole(directory))
	{
		bookings.POST("", controller.Reserve)
		bookings.POST("/create-checkout-session", controller.CreateCheckoutSession)
		bookings.POST("/session-status", controller.SessionStatus)
		bookings.GET("/:email", controller.GetUserBookings)
		bookings.DELETE("/:id", controller.Cancel)
	}
}
