package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/ZenGuideTeam/zg-account-server/internal/models"
	"github.com/ZenGuideTeam/zg-account-server/internal/service"
)

type UserHandler struct {
	UserService service.UserGenerator
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserGenerator) *UserHandler {
	return &UserHandler{
		UserService: userService,
	}
}

// SignUp handles user registration requests
func (h *UserHandler) SignUp(c echo.Context) error {
	req := new(models.SignUpRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	info, err := h.UserService.Register(c.Request().Context(), *req)
	if err != nil {
		httpErr := toHTTPError(err, "Registration failed")
		if httpErr.Code == http.StatusInternalServerError {
			log.Error().Err(err).Str("email", req.Email).Msg("Registration failed")
		}
		return httpErr
	}
	return c.JSON(http.StatusCreated, info)
}

// CheckEmailExists checks if the email is already registered
func (h *UserHandler) CheckEmailExists(c echo.Context) error {
	req := new(models.EmailRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	exists, err := h.UserService.CheckEmailExists(c.Request().Context(), req.Email)
	if err != nil {
		return toHTTPError(err, "Server is unavailable")
	}

	return c.JSON(http.StatusOK, models.EmailExistsResponse{Exists: exists})
}

// Login exchanges an email and password for an access token
func (h *UserHandler) Login(c echo.Context) error {
	req := new(models.LoginRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	resp, err := h.UserService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		httpErr := toHTTPError(err, "Login failed")
		if httpErr.Code == http.StatusInternalServerError {
			log.Error().Err(err).Str("email", req.Email).Msg("Login failed")
		}
		return httpErr
	}

	return c.JSON(http.StatusOK, resp)
}

// Me returns the profile of the access token's subject
func (h *UserHandler) Me(c echo.Context) error {
	email, err := getSubjectFromContext(c)
	if err != nil {
		return err
	}

	info, err := h.UserService.GetCurrentUser(c.Request().Context(), email)
	if err != nil {
		httpErr := toHTTPError(err, "Failed to get user info")
		if httpErr.Code == http.StatusInternalServerError {
			log.Error().Err(err).Str("email", email).Msg("Failed to get user info")
		}
		return httpErr
	}

	return c.JSON(http.StatusOK, info)
}

// ChangePassword replaces the caller's password after checking the current one
func (h *UserHandler) ChangePassword(c echo.Context) error {
	email, err := getSubjectFromContext(c)
	if err != nil {
		return err
	}
	req := new(models.ChangePasswordRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	if err := h.UserService.ChangePassword(c.Request().Context(), email, req.CurrentPassword, req.NewPassword); err != nil {
		httpErr := toHTTPError(err, "Failed to change password")
		if httpErr.Code == http.StatusInternalServerError {
			log.Error().Err(err).Str("email", email).Msg("Failed to change password")
		}
		return httpErr
	}
	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// UpdateProfile changes the caller's display name and/or email
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	claims, err := getClaimsFromContext(c)
	if err != nil {
		return err
	}
	req := new(models.UpdateProfileRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	resp, err := h.UserService.UpdateProfile(c.Request().Context(), claims.UserID, *req)
	if err != nil {
		httpErr := toHTTPError(err, "Failed to update profile")
		if httpErr.Code == http.StatusInternalServerError {
			log.Error().Err(err).Int64("userID", claims.UserID).Msg("Failed to update profile")
		}
		return httpErr
	}
	return c.JSON(http.StatusOK, resp)
}

// getClaimsFromContext returns the access token claims set by the JWT middleware
func getClaimsFromContext(c echo.Context) (*models.AccessClaims, error) {
	userContext := c.Get("user")
	if userContext == nil {
		log.Error().Msg("'user' not found in context. This indicates a middleware issue or misconfiguration.")
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated: context missing user information")
	}

	claims, ok := userContext.(*models.AccessClaims)
	if !ok {
		log.Error().Interface("actualType", userContext).Msg("'user' in context is not of type *models.AccessClaims")
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Internal server error: user context type mismatch")
	}
	return claims, nil
}

// Get the subject (email) from the access token claims, return http error if not able to parse
func getSubjectFromContext(c echo.Context) (string, error) {
	claims, err := getClaimsFromContext(c)
	if err != nil {
		return "", err
	}

	subject, err := claims.GetSubject()
	if err != nil {
		log.Error().Err(err).Msg("Error getting subject claim from token")
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid token: cannot get subject")
	} else if subject == "" {
		log.Error().Msg("Subject claim is empty in token")
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid token: subject claim is missing or empty")
	}
	return subject, nil
}
