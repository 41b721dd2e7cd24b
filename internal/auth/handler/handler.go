package handler

import (
	"errors"
	"net/http"

	"leadportal_backend/internal/auth/service"
	"leadportal_backend/internal/auth/transport"
	"leadportal_backend/platform/httpkit"
	"leadportal_backend/platform/logger"
	"leadportal_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const msgInvalidRequest = "invalid request"

// Handler handles HTTP requests for authentication.
type Handler struct {
	svc *service.Service
	val *validator.Validator
	log *logger.Logger
}

// New creates a new auth handler.
func New(svc *service.Service, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, val: val, log: log}
}

// Register creates a new admin or vendor account.
// POST /api/v1/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req transport.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	account, token, err := h.svc.Register(c.Request.Context(), req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		h.log.AuthEvent("register", req.Email, false, err.Error())
		httpkit.HandleError(c, err)
		return
	}

	h.log.AuthEvent("register", req.Email, true, "")
	httpkit.JSON(c, http.StatusCreated, toAuthResponse(account, token))
}

// Login authenticates a user and issues an access token.
// POST /api/v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req transport.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	account, token, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.log.AuthEvent("login", req.Email, false, "invalid credentials")
		httpkit.Error(c, http.StatusUnauthorized, "invalid email or password", nil)
		return
	}
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	h.log.AuthEvent("login", req.Email, true, "")
	httpkit.OK(c, toAuthResponse(account, token))
}

func toAuthResponse(account service.Account, token string) transport.AuthResponse {
	return transport.AuthResponse{
		ID:       account.ID.String(),
		Username: account.Username,
		Email:    account.Email,
		Role:     account.Role,
		Token:    token,
	}
}
