package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Duet/internal/adapters/signal"
	"github.com/dkeye/Duet/internal/app"
	"github.com/dkeye/Duet/internal/auth"
	"github.com/dkeye/Duet/internal/domain"
)

const sessionUserKey = "user_id"

var errUnauthenticated = errors.New("unauthenticated")

// AuthMiddleware resolves the caller from the cookie session, a bearer
// header or a ?token= query parameter, in that order.
func AuthMiddleware(dir *app.Directory, tokens *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := authenticate(c, dir, tokens)
		switch {
		case err == nil:
			c.Set(signal.UserKey, user)
			c.Next()
		case errors.Is(err, domain.ErrStoreUnavailable):
			log.Error().Err(err).Str("module", "adapters.http").Msg("auth lookup")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable"})
		default:
			log.Debug().Err(err).Str("module", "adapters.http").Str("path", c.FullPath()).Msg("unauthorized")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		}
	}
}

func authenticate(c *gin.Context, dir *app.Directory, tokens *auth.TokenIssuer) (*domain.User, error) {
	if id, ok := sessions.Default(c).Get(sessionUserKey).(int64); ok && id > 0 {
		return dir.Lookup(c.Request.Context(), domain.UserID(id))
	}
	raw := bearerToken(c)
	if raw == "" {
		return nil, errUnauthenticated
	}
	claimed, err := tokens.Verify(raw)
	if err != nil {
		return nil, err
	}
	return dir.Lookup(c.Request.Context(), claimed.ID)
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return c.Query("token")
}
