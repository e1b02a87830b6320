package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/rohits-web03/studentvault/internal/api/services"
	"github.com/rohits-web03/studentvault/internal/utils"
	"github.com/rs/zerolog/log"
)

// POST /api/register
// RegisterStudent godoc
// @Summary Register a student
// @Description PII fields must already be client-encrypted; password must be the client password ciphertext.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.RegisterInput true "Registration"
// @Success 201 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Failure 409 {object} utils.Payload
// @Router /api/register [post]
func (h *Handler) RegisterStudent(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if !decode(w, r, &input) {
		return
	}

	student, err := h.students.Register(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "Student registered successfully",
		Data:    student,
	})
}

// POST /api/login
// LoginStudent godoc
// @Summary Log in with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.LoginInput true "Credentials"
// @Success 200 {object} utils.Payload
// @Failure 401 {object} utils.Payload
// @Router /api/login [post]
func (h *Handler) LoginStudent(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if !decode(w, r, &input) {
		return
	}

	res, err := h.students.Login(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Login successful",
		Data:    res,
	})
}

// POST /api/auth/refresh
// RefreshToken godoc
// @Summary Exchange a refresh token for a new token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 401 {object} utils.Payload
// @Router /api/auth/refresh [post]
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var input struct {
		RefreshToken string `json:"refreshToken"`
	}
	if !decode(w, r, &input) {
		return
	}

	res, err := h.students.Refresh(r.Context(), input.RefreshToken)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Token refreshed",
		Data:    res,
	})
}

func (h *Handler) googleDisabled(w http.ResponseWriter) bool {
	if h.google != nil {
		return false
	}
	utils.ErrorResponse(w, http.StatusServiceUnavailable, "Google sign-in is not configured")
	return true
}

// GET /api/auth/google/login
func (h *Handler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.googleDisabled(w) {
		return
	}
	state, err := GenerateState(h.stateKey, map[string]string{"flow": "login"})
	if err != nil {
		http.Error(w, "Failed to generate OAuth state", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, h.google.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// GET /api/auth/google/callback
//
// Only students who registered with the same email can sign in this way;
// registration needs the client-encrypted profile and is never done here.
// Tokens go in the URL fragment, which browsers do not send to servers.
func (h *Handler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.googleDisabled(w) {
		return
	}
	if _, err := DecodeState(h.stateKey, r.FormValue("state")); err != nil {
		http.Error(w, "Invalid OAuth state", http.StatusBadRequest)
		return
	}

	email, err := h.google.Email(r.Context(), r.FormValue("code"))
	if err != nil {
		log.Warn().Err(err).Msg("Google sign-in failed")
		http.Redirect(w, r, h.googleCfg.FailureURL+"?error=google_failed", http.StatusTemporaryRedirect)
		return
	}

	res, err := h.students.LoginWithEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			http.Redirect(w, r, h.googleCfg.FailureURL+"?error=user_not_found", http.StatusTemporaryRedirect)
			return
		}
		writeError(w, r, err)
		return
	}

	fragment := url.Values{}
	fragment.Set("accessToken", res.AccessToken)
	fragment.Set("refreshToken", res.RefreshToken)
	http.Redirect(w, r, h.googleCfg.SuccessURL+"#"+fragment.Encode(), http.StatusTemporaryRedirect)
}
