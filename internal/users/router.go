package users

import (
	"eventhive/internal/auth"
	"eventhive/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupUserRoutes(router *gin.RouterGroup, controller *Controller, verifier auth.Verifier, directory middleware.AccountDirectory) {
	usersGroup := router.Group("/users")
	usersGroup.Use(middleware.Authenticate(verifier))
	{
		usersGroup.POST("", controller.SaveUser)
		usersGroup.GET("/role/:email", controller.GetRole)
		usersGroup.PATCH("/request-manager/:email", middleware.ResolveRole(directory), controller.RequestManager)

		// admin only
		usersGroup.GET("", middleware.RequireAdmin(directory), controller.GetAllUsers)
		usersGroup.PATCH("/admin/:id", middleware.RequireAdmin(directory), controller.PromoteToManager)
		usersGroup.PATCH("/status/:id", middleware.RequireAdmin(directory), controller.SetStatus)
		usersGroup.DELETE("/delete/:id", middleware.RequireAdmin(directory), controller.DeleteUser)
	}
}
