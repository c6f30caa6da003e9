package auth

import (
	"net/http"
	"strings"
	"videoserver/models"

	"github.com/gin-gonic/gin"
)

// HandlerFunc receives an authenticated user with the required role
type HandlerFunc func(c *gin.Context, user *models.User)

// Router is a wrapper class that adds auth checks + User pre-loading.
// Credentials are accepted either as "Authorization: Bearer <token>" or
// as a ?token= query parameter - native media-player elements cannot
// attach custom headers.
type Router struct {
	Base *gin.Engine
}

func TokenFrom(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}

// CurrentUser resolves the request credential to a known user.
// Returns nil when the credential is missing, invalid or stale.
func CurrentUser(c *gin.Context) *models.User {
	tokenString := TokenFrom(c)
	if tokenString == "" {
		return nil
	}
	claims, err := VerifyToken(tokenString)
	if err != nil {
		return nil
	}
	user, err := models.UserByID(claims.UserID)
	if err != nil {
		return nil
	}
	return &user
}

func (cr *Router) baseExec(c *gin.Context, handler HandlerFunc, required []models.Role) {
	user := CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	if len(required) > 0 && !hasRole(user.Role, required) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}
	handler(c, user)
}

func hasRole(role models.Role, allowed []models.Role) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}

func (cr *Router) GET(path string, handler HandlerFunc, required ...models.Role) {
	cr.Base.GET(path, func(c *gin.Context) {
		cr.baseExec(c, handler, required)
	})
}

func (cr *Router) POST(path string, handler HandlerFunc, required ...models.Role) {
	cr.Base.POST(path, func(c *gin.Context) {
		cr.baseExec(c, handler, required)
	})
}

func (cr *Router) PUT(path string, handler HandlerFunc, required ...models.Role) {
	cr.Base.PUT(path, func(c *gin.Context) {
		cr.baseExec(c, handler, required)
	})
}

func (cr *Router) DELETE(path string, handler HandlerFunc, required ...models.Role) {
	cr.Base.DELETE(path, func(c *gin.Context) {
		cr.baseExec(c, handler, required)
	})
}
