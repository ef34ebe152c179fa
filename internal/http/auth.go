package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"medexa/internal/auth"
	"medexa/internal/domain"
)

const uidKey = "uid"

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	User  domain.Session `json:"user"`
	Token string         `json:"token,omitempty"`
}

func (h *Handler) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessions.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	switch {
	case errors.Is(err, auth.ErrEmailAlreadyInUse):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "auth/email-already-in-use"})
		return
	case err != nil:
		h.writeError(c, err)
		return
	}

	h.respondWithSession(c, http.StatusCreated, session)
}

func (h *Handler) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessions.Authenticate(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredential) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "code": "auth/invalid-credential"})
		return
	}
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.respondWithSession(c, http.StatusOK, session)
}

func (h *Handler) signOut(c *gin.Context) {
	if err := h.sessions.ClearSession(c.Request.Context()); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) currentSession(c *gin.Context) {
	session, ok, err := h.sessions.Current(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not signed in"})
		return
	}
	c.JSON(http.StatusOK, SessionResponse{User: session})
}

func (h *Handler) respondWithSession(c *gin.Context, status int, session domain.Session) {
	token, err := h.tokens.Issue(session)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(status, SessionResponse{User: session, Token: token})
}

// requireAuth resolves the bearer token to a known account uid.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		uid, err := h.tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if _, err := h.sessions.Lookup(c.Request.Context(), uid); err != nil {
			if errors.Is(err, auth.ErrAccountNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown account"})
				return
			}
			h.writeError(c, err)
			c.Abort()
			return
		}

		c.Set(uidKey, uid)
		c.Next()
	}
}

func currentUID(c *gin.Context) string {
	return c.GetString(uidKey)
}
