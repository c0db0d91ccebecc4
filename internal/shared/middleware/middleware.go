package middleware

import (
	"context"
	"net/http"
	"strings"

	"eventhive/internal/auth"
	"eventhive/internal/shared/utils/response"
	"eventhive/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	ContextKeyUserEmail = "user_email"
	ContextKeyUserName  = "user_name"
	ContextKeyUserRole  = "user_role"
)

// Roles as stored in the user directory.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleUser    = "user"
)

// Account is the directory view the authorization middleware needs.
type Account struct {
	Role   string
	Banned bool
}

// AccountDirectory looks up a caller by verified email. It returns (nil, nil)
// for an email with no directory record.
type AccountDirectory interface {
	LookupAccount(ctx context.Context, email string) (*Account, error)
}

// Authenticate requires a bearer credential. A missing or malformed header is
// 401; a credential the verifier rejects is 403.
func Authenticate(verifier auth.Verifier) gin.HandlerFunc {
	log := logger.GetDefault()

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "Unauthorized Access!", nil, nil)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "Unauthorized Access!", nil, nil)
			c.Abort()
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			log.LogAuthFailure(c.Request.Context(), err.Error(), c.ClientIP())
			response.RespondJSON(c, "error", http.StatusForbidden, "Forbidden Access!", nil, nil)
			c.Abort()
			return
		}

		c.Set(ContextKeyUserEmail, identity.Email)
		c.Set(ContextKeyUserName, identity.Name)
		c.Next()
	}
}

// ResolveRole loads the caller's role into the context without gating on it.
// Banned accounts are rejected. Must run after Authenticate.
func ResolveRole(directory AccountDirectory) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := lookup(c, directory)
		if !ok {
			return
		}

		role := RoleUser
		if account != nil {
			role = account.Role
		}
		c.Set(ContextKeyUserRole, role)
		c.Next()
	}
}

// RequireRoles admits callers whose directory role is one of roles.
// Must run after Authenticate.
func RequireRoles(directory AccountDirectory, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := lookup(c, directory)
		if !ok {
			return
		}

		if account == nil || !hasRole(account.Role, roles) {
			response.RespondJSON(c, "error", http.StatusForbidden, forbiddenMessage(roles), nil, nil)
			c.Abort()
			return
		}

		c.Set(ContextKeyUserRole, account.Role)
		c.Next()
	}
}

// RequireAdmin admits admins only
func RequireAdmin(directory AccountDirectory) gin.HandlerFunc {
	return RequireRoles(directory, RoleAdmin)
}

// RequireManager admits managers and admins
func RequireManager(directory AccountDirectory) gin.HandlerFunc {
	return RequireRoles(directory, RoleManager, RoleAdmin)
}

// lookup aborts the request and returns ok=false when the caller cannot proceed.
func lookup(c *gin.Context, directory AccountDirectory) (*Account, bool) {
	email := GetUserEmail(c)
	if email == "" {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Unauthorized Access!", nil, nil)
		c.Abort()
		return nil, false
	}

	account, err := directory.LookupAccount(c.Request.Context(), email)
	if err != nil {
		logger.GetDefault().ErrorContext(c.Request.Context(), "account lookup failed", "error", err, "email", email)
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Internal server error", nil, nil)
		c.Abort()
		return nil, false
	}

	if account != nil && account.Banned {
		response.RespondJSON(c, "error", http.StatusForbidden, "Account is banned", nil, nil)
		c.Abort()
		return nil, false
	}

	return account, true
}

func hasRole(role string, roles []string) bool {
	for _, r := range roles {
		if role == r {
			return true
		}
	}
	return false
}

func forbiddenMessage(roles []string) string {
	if len(roles) == 1 && roles[0] == RoleAdmin {
		return "Admin only Actions!"
	}
	if hasRole(RoleManager, roles) {
		return "Manager only access!"
	}
	return "Insufficient permissions"
}

// GetUserEmail returns the verified caller email, empty when unauthenticated.
func GetUserEmail(c *gin.Context) string {
	return c.GetString(ContextKeyUserEmail)
}

// GetUserName returns the display name carried by the credential.
func GetUserName(c *gin.Context) string {
	return c.GetString(ContextKeyUserName)
}

// IsAdmin reports whether ResolveRole or RequireRoles found an admin.
func IsAdmin(c *gin.Context) bool {
	return c.GetString(ContextKeyUserRole) == RoleAdmin
}
