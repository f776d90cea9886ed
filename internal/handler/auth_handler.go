package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/devstorm/docstorm-api/internal/dto"
	"github.com/devstorm/docstorm-api/internal/middleware"
	"github.com/devstorm/docstorm-api/internal/models"
	"github.com/devstorm/docstorm-api/internal/service"
	appErrors "github.com/devstorm/docstorm-api/pkg/errors"
	"github.com/devstorm/docstorm-api/pkg/response"
)

// SessionCookie describes how the session cookie is written.
type SessionCookie struct {
	Name   string
	MaxAge int
	Secure bool
}

// AuthHandler wires the login, registration and password endpoints.
type AuthHandler struct {
	service *service.AuthService
	cookie  SessionCookie
	logger  *zap.Logger
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService, cookie SessionCookie, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{service: svc, cookie: cookie, logger: logger}
}

// Login handles POST /api/connexion.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "requête invalide"))
		return
	}

	session, user, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setSessionCookie(c, session.Token)
	response.JSON(c, http.StatusOK, dto.LoginResponse{Message: "Connexion réussie", Admin: user.IsAdmin()})
}

// Register handles POST /api/inscription. A successful signup opens a session
// immediately.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "requête invalide"))
		return
	}

	session, user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setSessionCookie(c, session.Token)
	response.JSON(c, http.StatusCreated, dto.LoginResponse{Message: "Inscription réussie", Admin: user.IsAdmin()})
}

// Logout handles POST /api/deconnexion.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := c.Cookie(h.cookie.Name)
	if err := h.service.Logout(c.Request.Context(), token); err != nil {
		response.Error(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	response.Message(c, http.StatusOK, "Déconnexion réussie")
}

// Check handles GET /api/auth/check. Runs behind the Session middleware, so
// reaching it means the session is live.
func (h *AuthHandler) Check(c *gin.Context) {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrNotAuthenticated)
		return
	}
	response.JSON(c, http.StatusOK, dto.AuthCheckResponse{
		Authenticated: true,
		Admin:         session.Role == models.RoleAdmin,
	})
}

// AdminCheck handles GET /api/admin/check. Runs behind RequireAdmin.
func (h *AuthHandler) AdminCheck(c *gin.Context) {
	response.JSON(c, http.StatusOK, dto.AuthCheckResponse{Authenticated: true, Admin: true})
}

// ForgotPassword handles POST /api/forgot-password. The response is the same
// whether or not the email exists. Mail delivery is not wired; the token is
// logged for the operator to forward.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "requête invalide"))
		return
	}

	token, err := h.service.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	if token != "" {
		h.logger.Info("reset token issued", zap.String("email", req.Email), zap.String("token", token))
	}
	response.Message(c, http.StatusOK, "Si un compte existe pour cette adresse, un lien de réinitialisation a été envoyé")
}

// ResetPassword handles POST /api/reset-password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "requête invalide"))
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Mot de passe réinitialisé")
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, h.cookie.MaxAge, "/", "", h.cookie.Secure, true)
}
