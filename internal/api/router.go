package api

import (
	"fmt"
	"net/http"

	_ "github.com/rohits-web03/studentvault/docs"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/rohits-web03/studentvault/internal/api/handlers"
	"github.com/rohits-web03/studentvault/internal/api/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

func SetupRouter(h *handlers.Handler, verifier middleware.AccessVerifier, corsOpts cors.Options) http.Handler {
	mainMux := http.NewServeMux()
	c := cors.New(corsOpts)

	// ---------- PUBLIC ROUTES ----------
	mainMux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	mainMux.HandleFunc("/docs/", httpSwagger.WrapHandler)

	mainMux.HandleFunc("POST /api/register", h.RegisterStudent)
	mainMux.HandleFunc("POST /api/login", h.LoginStudent)
	mainMux.HandleFunc("POST /api/auth/refresh", h.RefreshToken)
	mainMux.HandleFunc("GET /api/auth/google/login", h.HandleGoogleLogin)
	mainMux.HandleFunc("GET /api/auth/google/callback", h.HandleGoogleCallback)

	// ---------- PROTECTED ROUTES ----------
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("GET /students", h.GetStudents)
	protectedMux.HandleFunc("POST /students/export", h.ExportStudents)
	protectedMux.HandleFunc("GET /student/{id}", h.GetStudentByID)
	protectedMux.HandleFunc("PUT /student/{id}", h.UpdateStudent)
	protectedMux.HandleFunc("DELETE /student/{id}", h.DeleteStudent)

	guarded := http.StripPrefix(
		"/api",
		middleware.RequireAccessToken(verifier)(protectedMux),
	)
	mainMux.Handle("/api/students", guarded)
	mainMux.Handle("/api/students/", guarded)
	mainMux.Handle("/api/student/", guarded)

	log.Debug().Msg("Router initialized")
	handler := c.Handler(mainMux)
	handler = middleware.Logger(handler)
	return handler
}
