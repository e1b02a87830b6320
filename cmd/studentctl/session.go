package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rohits-web03/studentvault/internal/auth"
)

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".studentvault-session.json"
	}
	return filepath.Join(dir, "studentvault", "session.json")
}

// loadSession returns an empty pair when no session has been saved yet.
func loadSession(path string) (auth.TokenPair, error) {
	var tokens auth.TokenPair
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return tokens, nil
	}
	if err != nil {
		return tokens, fmt.Errorf("read session: %w", err)
	}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return tokens, fmt.Errorf("parse session %s: %w", path, err)
	}
	return tokens, nil
}

func saveSession(path string, tokens auth.TokenPair) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.Marshal(tokens)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
