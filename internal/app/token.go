package app

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"coursekit/internal/encryption"
)

// ErrNoToken is returned by LoadToken when no token has been stored.
var ErrNoToken = errors.New("no API token stored")

// SaveToken seals token with the encryptor's public key and writes it to path.
func SaveToken(enc encryption.Encryptor, path, token string) error {
	token = string(bytes.TrimSpace([]byte(token)))
	if token == "" {
		return fmt.Errorf("token is empty")
	}

	sealed, err := enc.Seal([]byte(token))
	if err != nil {
		return fmt.Errorf("sealing token: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(sealed); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing token: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting token permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming token file: %w", err)
	}
	return nil
}

// LoadToken reads the sealed token at path and opens it with the private key
// unlocked by passphrase. A missing file returns ErrNoToken.
func LoadToken(enc encryption.Encryptor, path, passphrase string) (string, error) {
	sealed, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}

	u, err := enc.Unlock(passphrase)
	if err != nil {
		return "", fmt.Errorf("unlocking private key: %w", err)
	}
	plain, err := u.Open(sealed)
	if err != nil {
		return "", fmt.Errorf("opening token: %w", err)
	}
	return string(plain), nil
}
