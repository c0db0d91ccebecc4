package users

import (
	"errors"
	"net/http"

	"eventhive/internal/shared/middleware"
	"eventhive/internal/shared/utils/response"
	"eventhive/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Controller struct {
	service   Service
	validator *validator.Validate
	log       *logger.Logger
}

func NewController(service Service, log *logger.Logger) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
		log:       log,
	}
}

// SaveUser is called by the client after every sign-in.
func (c *Controller) SaveUser(ctx *gin.Context) {
	var req SaveUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	result, err := c.service.SaveUser(ctx.Request.Context(), middleware.GetUserEmail(ctx), req)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	status := http.StatusOK
	if result.InsertedID != nil {
		status = http.StatusCreated
	}
	ctx.JSON(status, result)
}

func (c *Controller) GetAllUsers(ctx *gin.Context) {
	users, err := c.service.GetAllUsers(ctx.Request.Context())
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, users)
}

func (c *Controller) GetRole(ctx *gin.Context) {
	role, err := c.service.GetRole(ctx.Request.Context(), ctx.Param("email"))
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"role": role})
}

func (c *Controller) RequestManager(ctx *gin.Context) {
	user, err := c.service.RequestManager(ctx.Request.Context(),
		middleware.GetUserEmail(ctx), middleware.IsAdmin(ctx), ctx.Param("email"))
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Manager access requested", user, nil)
}

func (c *Controller) PromoteToManager(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	user, err := c.service.PromoteToManager(ctx.Request.Context(), id)
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "User promoted to manager", user, nil)
}

func (c *Controller) SetStatus(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	user, err := c.service.SetStatus(ctx.Request.Context(), id, Status(req.Status))
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "User status updated", user, nil)
}

func (c *Controller) DeleteUser(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	summary, err := c.service.DeleteUser(ctx.Request.Context(), middleware.GetUserEmail(ctx), id)
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "User and related bookings deleted", summary, nil)
}

func parseID(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid user ID", nil, nil)
		return uuid.Nil, false
	}
	return id, true
}

func (c *Controller) respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, "User not found", nil, nil)
	case errors.Is(err, ErrAlreadyRequested):
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Already requested", nil, nil)
	case errors.Is(err, ErrInvalidStatus):
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid status", nil, nil)
	case errors.Is(err, ErrCannotDeleteSelf):
		response.RespondJSON(ctx, "error", http.StatusForbidden, "You cannot delete your own account", nil, nil)
	case errors.Is(err, ErrEmailMismatch):
		response.RespondJSON(ctx, "error", http.StatusForbidden, "Forbidden Access!", nil, nil)
	default:
		c.log.ForRequest(ctx).WithUserEmail(middleware.GetUserEmail(ctx)).LogHTTPError(ctx, err, http.StatusInternalServerError)
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Internal server error", nil, nil)
	}
}
