package encryption

// Encryptor protects small secrets, such as the course API token, at rest.
// Sealing uses the public key only. Opening requires a passphrase to unlock
// the private key, producing an Unsealer for the session.
type Encryptor interface {
	// Setup performs one-time key generation. Called during `coursekit config init`.
	// Generates a key pair, stores the public key in plaintext, and encrypts
	// the private key with the provided passphrase.
	Setup(passphrase string) error

	// Seal encrypts secret with the public key and returns ASCII-armored ciphertext.
	Seal(secret []byte) ([]byte, error)

	// Unlock decrypts the private key using the passphrase.
	// Returns an error if the passphrase is incorrect.
	Unlock(passphrase string) (Unsealer, error)

	// IsConfigured returns true if both key files exist at configured paths.
	IsConfigured() bool
}

// Unsealer holds an unlocked private key in memory. The key is never written
// to disk.
type Unsealer interface {
	// Open decrypts ciphertext produced by Seal.
	Open(sealed []byte) ([]byte, error)
}
