package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rohits-web03/studentvault/internal/api/services"
	"github.com/rohits-web03/studentvault/internal/auth"
	"github.com/rohits-web03/studentvault/internal/config"
	"github.com/rohits-web03/studentvault/internal/utils"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20

// Handler holds what the HTTP layer needs. Everything is built once in main.
type Handler struct {
	students  *services.StudentService
	google    *services.GoogleAuth
	googleCfg config.GoogleConfig
	stateKey  []byte
}

// New wires handlers to the record service. google may be nil, in which case
// the Google sign-in routes answer 503.
func New(students *services.StudentService, google *services.GoogleAuth, googleCfg config.GoogleConfig, stateKey []byte) *Handler {
	return &Handler{
		students:  students,
		google:    google,
		googleCfg: googleCfg,
		stateKey:  stateKey,
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid input")
		return false
	}
	return true
}

// writeError maps service errors to responses. Internal failures are logged
// and never echoed.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *services.ValidationError
	status, msg := http.StatusInternalServerError, "Internal server error"

	switch {
	case errors.As(err, &ve):
		status, msg = http.StatusBadRequest, ve.Message
	case errors.Is(err, services.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, auth.ErrTokenExpired):
		status, msg = http.StatusUnauthorized, "Token expired"
	case errors.Is(err, auth.ErrUnauthenticated):
		status, msg = http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, services.ErrNotFound):
		status, msg = http.StatusNotFound, "Student not found"
	case errors.Is(err, services.ErrEmailTaken):
		status, msg = http.StatusConflict, "Email already registered"
	case errors.Is(err, services.ErrExportDisabled):
		status, msg = http.StatusServiceUnavailable, "Export is not configured"
	default:
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("Request failed")
	}

	utils.ErrorResponse(w, status, msg)
}
