package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Duet/internal/app"
	"github.com/dkeye/Duet/internal/app/orch"
	"github.com/dkeye/Duet/internal/auth"
	"github.com/dkeye/Duet/internal/domain"
)

type handlers struct {
	dir    *app.Directory
	tokens *auth.TokenIssuer
	orch   *orch.Orchestrator
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	UserID   domain.UserID `json:"userId"`
	Username string        `json:"username"`
	Token    string        `json:"token"`
}

func (h *handlers) listUsers(c *gin.Context) {
	var exclude domain.UserID
	if raw := c.Query("excludeUserId"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid excludeUserId"})
			return
		}
		exclude = domain.UserID(n)
	}
	users, err := h.dir.List(c.Request.Context(), exclude)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("list users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *handlers) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}
	user, err := h.dir.Register(c.Request.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		log.Info().Str("module", "adapters.http").Int64("user", int64(user.ID)).Msg("registered")
		c.JSON(http.StatusOK, user)
	case errors.Is(err, domain.ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUsernameEmpty),
		errors.Is(err, domain.ErrUsernameTooLong),
		errors.Is(err, domain.ErrPasswordTooShort),
		errors.Is(err, domain.ErrPasswordTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("module", "adapters.http").Msg("register")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register"})
	}
}

func (h *handlers) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}
	user, err := h.dir.Authenticate(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("login")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log in"})
		return
	}
	token, err := h.tokens.Issue(user)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("issue token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log in"})
		return
	}

	sess := sessions.Default(c)
	sess.Set(sessionUserKey, int64(user.ID))
	if err := sess.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("save session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log in"})
		return
	}
	c.JSON(http.StatusOK, loginResponse{UserID: user.ID, Username: user.Username, Token: token})
}

func (h *handlers) logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	sess.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := sess.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("clear session")
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) rooms(c *gin.Context) {
	c.JSON(http.StatusOK, h.orch.Rooms.List())
}
