package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-tasks-admin/internal/admin"
)

const (
	usernameCtxKey     = "username"
	registrationCtxKey = "registration"
)

// HandleAuthMiddleware accepts an access token from the Authorization
// header or, failing that, from the access token cookie.
func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	accessToken, ok := extractAccessToken(c)
	if !ok {
		h.logger.Error().Msg("access token required")
		abort(c, newUnauthorizedError(errMissingToken.Error()))
		return
	}

	claims, err := h.auth.ParseJWTToken(accessToken)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to parse token")
		abort(c, newStatusTextError(http.StatusUnauthorized))
		return
	}

	c.Set(usernameCtxKey, claims.Subject)
	c.Next()
}

// HandleResourceMiddleware resolves the :model path parameter
// against the admin registry.
func (h *handlerImpl) HandleResourceMiddleware(c *gin.Context) {
	name := c.Param("model")
	reg, ok := h.registry.Lookup(name)
	if !ok {
		h.logger.Warn().
			Str("resource", name).
			Msg("unknown resource")
		abort(c, newNotFoundError(errUnknownResource.Error()))
		return
	}

	c.Set(registrationCtxKey, reg)
	c.Next()
}

func extractAccessToken(c *gin.Context) (string, bool) {
	const bearerPrefix = "Bearer"
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != bearerPrefix || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}

	token, err := c.Cookie(accessTokenCookie)
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}

func registrationFromContext(c *gin.Context) *admin.Registration {
	value, _ := c.Get(registrationCtxKey)
	reg, _ := value.(*admin.Registration)
	return reg
}
