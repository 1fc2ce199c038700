package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/techmilsolutions/chemmentor/internal/dto"
	"github.com/techmilsolutions/chemmentor/internal/middleware"
	"github.com/techmilsolutions/chemmentor/internal/service"
)

type AuthController struct {
	authSvc service.AuthService
}

func NewAuthController(authSvc service.AuthService) *AuthController {
	return &AuthController{authSvc: authSvc}
}

// Signup godoc
// @Summary Create a student account
// @Description Registers a username/password pair and returns a session token. Usernames are lowercased; the account email is synthesized from the username.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body dto.SignupRequest true "Username and password"
// @Success 201 {object} dto.SessionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid username or password"
// @Failure 409 {object} dto.ErrorResponse "Username already taken"
// @Router /auth/signup [post]
func (ctrl *AuthController) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	session, err := ctrl.authSvc.SignUp(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, session)
}

// Login godoc
// @Summary Sign in with username and password
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body dto.LoginRequest true "Username and password"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	session, err := ctrl.authSvc.SignIn(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid username or password"})
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetSession godoc
// @Summary Get the current session's user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Router /auth/session [get]
func (ctrl *AuthController) GetSession(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Not authenticated"})
		return
	}
	c.JSON(http.StatusOK, dto.UserResponse{ID: user.ID, Username: user.Username, Email: user.Email})
}

// UpdatePassword godoc
// @Summary Change the current user's password
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param password body dto.UpdatePasswordRequest true "New password"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse "Password too short"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Router /auth/update-password [post]
func (ctrl *AuthController) UpdatePassword(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Not authenticated"})
		return
	}

	var req dto.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	if err := ctrl.authSvc.UpdatePassword(user.ID, req.NewPassword); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password updated successfully"})
}

// Signout godoc
// @Summary End the current session
// @Description Tokens are stateless; the client discards its copy. The endpoint exists so sign-out is an explicit acknowledged action.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Router /auth/signout [post]
func (ctrl *AuthController) Signout(c *gin.Context) {
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Signed out"})
}

// ResetPassword godoc
// @Summary Reset a password by username
// @Description Unauthenticated recovery path. Answers 404 when the username does not exist.
// @Tags auth
// @Accept json
// @Produce json
// @Param reset body dto.ResetPasswordRequest true "Username and new password"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse "Missing fields or password too short"
// @Failure 404 {object} dto.ErrorResponse "Username not found"
// @Router /reset-password [post]
func (ctrl *AuthController) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if req.Username == "" || req.NewPassword == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Username and new password are required"})
		return
	}

	if err := ctrl.authSvc.ResetPasswordByUsername(req.Username, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrUsernameNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
			return
		}
		log.Error().Err(err).Msg("Failed to reset password")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password reset successfully"})
}
