package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-commerce-api/internal/application"
	"github.com/oksasatya/go-commerce-api/internal/domain/entity"
	"github.com/oksasatya/go-commerce-api/internal/interface/middleware"
	"github.com/oksasatya/go-commerce-api/pkg/response"
	"github.com/oksasatya/go-commerce-api/pkg/validation"
)

// AuthHandler exposes registration, login, profile and the password reset
// handshake.
type AuthHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.UserService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"omitempty,pwd"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Password string `json:"password" binding:"required,pwd"`
}

func userPayload(u *entity.User, token string) gin.H {
	data := gin.H{
		"id":       u.ID,
		"name":     u.Name,
		"email":    u.Email,
		"is_admin": u.IsAdmin,
	}
	if token != "" {
		data["token"] = token
	}
	return data
}

// Register POST /api/users
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid user data", validation.ToDetails(err))
		return
	}

	u, token, err := h.Svc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrEmailTaken) {
			response.Fail(c, http.StatusBadRequest, "User already exists", nil)
			return
		}
		h.Logger.WithError(err).Error("register failed")
		response.Fail(c, http.StatusInternalServerError, "Could not register user", nil)
		return
	}
	response.Success(c, http.StatusCreated, userPayload(u, token), "user registered", nil)
}

// Login POST /api/users/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid user data", validation.ToDetails(err))
		return
	}

	u, token, err := h.Svc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, "Invalid email or password", nil)
			return
		}
		h.Logger.WithError(err).Error("login failed")
		response.Fail(c, http.StatusInternalServerError, "Could not log in", nil)
		return
	}
	response.Success(c, http.StatusOK, userPayload(u, token), "login successful", nil)
}

// GetProfile GET /api/users/profile (protected)
func (h *AuthHandler) GetProfile(c *gin.Context) {
	caller := middleware.UserFromContext(c)
	u, err := h.Svc.GetProfile(c.Request.Context(), caller.ID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, "User not found", nil)
		return
	}
	response.Success(c, http.StatusOK, userPayload(u, ""), "profile", nil)
}

// UpdateProfile PUT /api/users/profile (protected). Omitted fields are left
// untouched; a fresh token is returned reflecting any changes.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	caller := middleware.UserFromContext(c)
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid user data", validation.ToDetails(err))
		return
	}

	u, token, err := h.Svc.UpdateProfile(c.Request.Context(), caller.ID, application.UpdateProfileInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, application.ErrUserNotFound):
			response.Fail(c, http.StatusNotFound, "User not found", nil)
		case errors.Is(err, application.ErrEmailTaken):
			response.Fail(c, http.StatusBadRequest, "User already exists", nil)
		default:
			h.Logger.WithError(err).Error("profile update failed")
			response.Fail(c, http.StatusInternalServerError, "Could not update profile", nil)
		}
		return
	}
	response.Success(c, http.StatusOK, userPayload(u, token), "profile updated", nil)
}

// ForgotPassword POST /api/users/forgotpassword. Always answers with the same
// generic message whether or not the email exists; only a mail delivery
// failure surfaces as an error.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid user data", validation.ToDetails(err))
		return
	}

	if err := h.Svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, application.ErrMailDelivery) {
			response.Fail(c, http.StatusInternalServerError, "Email could not be sent", nil)
			return
		}
		h.Logger.WithError(err).Error("forgot password failed")
		response.Fail(c, http.StatusInternalServerError, "Could not process request", nil)
		return
	}
	response.Success[any](c, http.StatusOK, nil,
		"If a user with that email exists, a password reset email has been sent.", nil)
}

// ResetPassword PUT /api/users/resetpassword/:token
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid user data", validation.ToDetails(err))
		return
	}

	_, err := h.Svc.ResetPassword(c.Request.Context(), c.Param("token"), req.Password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidResetToken) {
			response.Fail(c, http.StatusBadRequest, "Invalid or expired reset token", nil)
			return
		}
		h.Logger.WithError(err).Error("password reset failed")
		response.Fail(c, http.StatusInternalServerError, "Could not reset password", nil)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Password reset successfully", nil)
}
