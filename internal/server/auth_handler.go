package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/jobboard/internal/server/middleware"
	"github.com/jonathan/jobboard/internal/types"
	"go.uber.org/zap"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	userService  *UserService
	jwtService   *JWTService
	validator    *validator.Validate
	cookieSecure bool
	logger       *zap.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(userService *UserService, jwtService *JWTService, cookieSecure bool, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		userService:  userService,
		jwtService:   jwtService,
		validator:    types.NewValidator(),
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

// Signup handles account registration.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req types.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, signupValidationMessage(err))
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		h.fail(w, err)
		return
	}

	h.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	writeJSON(w, h.logger, http.StatusCreated, types.SignupResponse{OK: true, User: user})
}

// Login verifies credentials, sets the auth_token cookie and returns the token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Key() == "" || req.Password == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Missing credentials")
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		h.fail(w, err)
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID)
	if err != nil {
		h.logger.Error("generating token", zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	http.SetCookie(w, h.authCookie(token, int(h.jwtService.Expiration().Seconds())))
	writeJSON(w, h.logger, http.StatusOK, types.LoginResponse{AccessToken: token, User: user})
}

// Logout clears the auth_token cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, h.authCookie("", -1))
	writeJSON(w, h.logger, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// Me returns the authenticated user. It must run behind middleware.AuthMiddleware.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		writeError(w, h.logger, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]*types.User{"user": user})
}

func (h *AuthHandler) authCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHandler) fail(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("auth request failed", zap.Error(err))
	}
	writeError(w, h.logger, status, clientMessage(err))
}

var signupMessages = map[string]string{
	"required": "Missing required fields",
	"eqfield":  "Passwords do not match",
	"strongpw": "Password must be 8+ chars with number and special char",
	"email":    "Invalid email",
}

// signupValidationMessage maps the first failed rule to the message the sign-up form shows.
func signupValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request"
	}
	// Checked in the order the form reports them
	for _, tag := range []string{"required", "eqfield", "strongpw", "email"} {
		for _, fe := range verrs {
			if fe.Tag() == tag {
				return signupMessages[tag]
			}
		}
	}
	return extractValidationErrors(err)
}

// extractValidationErrors extracts validation error messages from validator errors.
func extractValidationErrors(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		ve := verrs[0]
		return "Invalid " + strings.ToLower(ve.Field()[:1]) + ve.Field()[1:] + ": " + ve.Tag()
	}
	return "Invalid request"
}
