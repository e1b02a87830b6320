package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

// MinSecretLength is the shortest accepted HMAC secret for either token kind.
const MinSecretLength = 32

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
}

// Enabled reports whether snapshot export has everything it needs.
func (c R2Config) Enabled() bool {
	return c.AccountID != "" && c.AccessKeyID != "" && c.SecretAccessKey != "" && c.BucketName != ""
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// SuccessURL and FailureURL are front-end pages the callback redirects to.
	SuccessURL string
	FailureURL string
}

func (c GoogleConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Keys holds the server's static key material. It is loaded once and never
// mutated; components receive copies of the fields they need.
type Keys struct {
	ServerKey          []byte
	AcceptLegacyCipher bool
	AccessSecret       []byte
	RefreshSecret      []byte
}

type Config struct {
	DB_URL      string
	Port        string
	Environment string
	CorsConfig  cors.Options
	Keys        Keys
	R2          R2Config
	Google      GoogleConfig
}

// ClientConfig is what the command-line client needs: where the API lives and
// the client-tier passphrase.
type ClientConfig struct {
	APIBaseURL string
	ClientKey  string
}

var (
	ErrMissingKey = errors.New("config: missing key material")
	ErrWeakKey    = errors.New("config: key material too short")
)

func loadEnvFile() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Debug().Str("file", envFile).Msg("No env file found")
		return
	}
	log.Debug().Str("file", envFile).Msg("Loaded env file")
}

// Load reads the server configuration from the environment (and an optional
// .env file). Missing or short key material is an error, so the process fails
// before serving any request.
func Load() (Config, error) {
	loadEnvFile()

	keys, err := loadKeys()
	if err != nil {
		return Config{}, err
	}

	return Config{
		DB_URL:      getEnv("DB_URL", ""),
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		CorsConfig:  CorsConfig(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		Keys:        keys,
		R2: R2Config{
			AccountID:       getEnv("R2_ACCOUNT_ID", ""),
			AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
			BucketName:      getEnv("R2_BUCKET_NAME", ""),
			Region:          getEnv("R2_REGION", "auto"),
		},
		Google: GoogleConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/auth/google/callback"),
			SuccessURL:   getEnv("GOOGLE_SUCCESS_URL", "http://localhost:5173/students"),
			FailureURL:   getEnv("GOOGLE_FAILURE_URL", "http://localhost:5173/login"),
		},
	}, nil
}

func loadKeys() (Keys, error) {
	serverHex := getEnv("SERVER_KEY", "")
	if serverHex == "" {
		return Keys{}, fmt.Errorf("%w: SERVER_KEY is not set", ErrMissingKey)
	}
	serverKey, err := ParseServerKey(serverHex)
	if err != nil {
		return Keys{}, err
	}

	access, err := requireSecret("JWT_SECRET")
	if err != nil {
		return Keys{}, err
	}
	refresh, err := requireSecret("JWT_REFRESH_SECRET")
	if err != nil {
		return Keys{}, err
	}
	if string(access) == string(refresh) {
		return Keys{}, errors.New("config: JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}

	return Keys{
		ServerKey:          serverKey,
		AcceptLegacyCipher: getEnv("SERVER_CIPHER_ACCEPT_LEGACY", "false") == "true",
		AccessSecret:       access,
		RefreshSecret:      refresh,
	}, nil
}

// ParseServerKey decodes a 64-character hex string into a 256-bit key.
func ParseServerKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("config: SERVER_KEY is not valid hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("%w: SERVER_KEY must be 32 bytes, got %d", ErrWeakKey, len(key))
	}
	return key, nil
}

func requireSecret(name string) ([]byte, error) {
	v := getEnv(name, "")
	if v == "" {
		return nil, fmt.Errorf("%w: %s is not set", ErrMissingKey, name)
	}
	if len(v) < MinSecretLength {
		return nil, fmt.Errorf("%w: %s must be at least %d bytes", ErrWeakKey, name, MinSecretLength)
	}
	return []byte(v), nil
}

// LoadClient reads the command-line client's configuration.
func LoadClient() (ClientConfig, error) {
	loadEnvFile()

	key := getEnv("CLIENT_KEY", "")
	if key == "" {
		return ClientConfig{}, fmt.Errorf("%w: CLIENT_KEY is not set", ErrMissingKey)
	}
	if len(key) < MinSecretLength {
		return ClientConfig{}, fmt.Errorf("%w: CLIENT_KEY must be at least %d bytes", ErrWeakKey, MinSecretLength)
	}
	return ClientConfig{
		APIBaseURL: strings.TrimRight(getEnv("STUDENTVAULT_API_URL", "http://localhost:8080"), "/"),
		ClientKey:  key,
	}, nil
}

// Gets the env by key or fallbacks
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func CorsConfig(origins string) cors.Options {
	var allowed []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed = append(allowed, o)
		}
	}
	return cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}
}
