package app

import (
	"fmt"
	"os"

	"coursekit/internal/config"
	"coursekit/internal/database"
	"coursekit/internal/encryption"
)

// InitWorkspace creates the local directories named by cfg and brings the
// journal database to the latest schema.
func InitWorkspace(cfg *config.Config) error {
	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
	}
	if cfg.Drafts.Type == "filesystem" && cfg.Drafts.Dir != "" {
		if err := os.MkdirAll(cfg.Drafts.Dir, 0755); err != nil {
			return fmt.Errorf("creating drafts directory: %w", err)
		}
	}
	if cfg.API.Type == "filesystem" && cfg.API.FSRoot != "" {
		if err := os.MkdirAll(cfg.API.FSRoot, 0755); err != nil {
			return fmt.Errorf("creating course directory: %w", err)
		}
	}

	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		return fmt.Errorf("creating database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	return nil
}

// SetupKeys generates the key pair that protects the API token. Existing keys
// are never replaced.
func SetupKeys(cfg *config.Config, passphrase string) error {
	if passphrase == "" {
		return fmt.Errorf("passphrase must not be empty")
	}
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	if enc.IsConfigured() {
		return fmt.Errorf("encryption keys already exist at %s", cfg.Encryption.PublicKeyPath)
	}
	if err := enc.Setup(passphrase); err != nil {
		return fmt.Errorf("setting up encryption: %w", err)
	}
	return nil
}

// StoreToken seals the API bearer token to the configured token path.
func StoreToken(cfg *config.Config, token string) error {
	if cfg.API.TokenPath == "" {
		return fmt.Errorf("api token_path is not configured")
	}
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	if !enc.IsConfigured() {
		return fmt.Errorf("encryption keys not set up (run `coursekit config keys`)")
	}
	return SaveToken(enc, cfg.API.TokenPath, token)
}
