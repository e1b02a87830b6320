package main

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rohits-web03/studentvault/internal/api"
	"github.com/rohits-web03/studentvault/internal/api/handlers"
	"github.com/rohits-web03/studentvault/internal/api/services"
	"github.com/rohits-web03/studentvault/internal/auth"
	"github.com/rohits-web03/studentvault/internal/config"
	"github.com/rohits-web03/studentvault/internal/crypto"
	"github.com/rohits-web03/studentvault/internal/repositories"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/hkdf"
)

// @title StudentVault API
// @version 1.0
// @description Student records with client- and server-side field encryption.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	setupLogging(cfg.Environment)

	db, err := repositories.ConnectDatabase(cfg.DB_URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	cipher, err := crypto.NewServerCipher(cfg.Keys.ServerKey, crypto.AcceptLegacyEnvelopes(cfg.Keys.AcceptLegacyCipher))
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid server key")
	}
	tokens, err := auth.NewTokenIssuer(cfg.Keys.AccessSecret, cfg.Keys.RefreshSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid JWT secrets")
	}

	var opts []services.Option
	if cfg.R2.Enabled() {
		opts = append(opts, services.WithSnapshots(repositories.NewR2Store(cfg.R2)))
		log.Info().Str("bucket", cfg.R2.BucketName).Msg("Snapshot export enabled")
	}
	students := services.NewStudentService(
		repositories.NewStudentRepository(db),
		cipher,
		auth.NewPasswordHasher(),
		tokens,
		opts...,
	)

	var google *services.GoogleAuth
	if cfg.Google.Enabled() {
		google = services.NewGoogleAuth(cfg.Google)
		log.Info().Msg("Google sign-in enabled")
	}

	stateKey, err := deriveStateKey(cfg.Keys.AccessSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to derive OAuth state key")
	}

	h := handlers.New(students, google, cfg.Google, stateKey)
	mux := api.SetupRouter(h, tokens, cfg.CorsConfig)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: mux,
		// Timeouts prevent resource exhaustion from slow clients
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("Starting StudentVault server")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Str("port", cfg.Port).Msg("Could not listen")
	}
}

func setupLogging(env string) {
	zerolog.TimeFieldFormat = time.RFC3339
	if env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// The OAuth state MAC gets its own key so a leaked state never helps forge
// a JWT.
func deriveStateKey(secret []byte) ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte("studentvault oauth state")), key); err != nil {
		return nil, err
	}
	return key, nil
}
