package events

import (
	"eventhive/internal/auth"
	"eventhive/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupEventRoutes(router *gin.RouterGroup, controller Controller, verifier auth.Verifier, directory middleware.AccountDirectory) {
	eventsGroup := router.Group("/events")
	{
		// public browsing
		eventsGroup.GET("", controller.GetAllEvents)
		eventsGroup.GET("/:id", controller.GetEvent)
		eventsGroup.GET("/manager/:email", controller.GetEventsByOrganizer)

		// managers and admins create; organizer or admin edits
		authed := eventsGroup.Group("")
		authed.Use(middleware.Authenticate(verifier))
		{
			authed.POST("", middleware.RequireManager(directory), controller.CreateEvent)
			authed.PUT("/:id", middleware.ResolveRole(directory), controller.UpdateEvent)
			authed.DELETE("/:id", middleware.ResolveRole(directory), controller.DeleteEvent)
		}
	}
}
