package encryption

import (
	"bytes"
	"fmt"
)

var testHeader = []byte("CKSEAL\x00\x00")

// TestEncryptor is a deterministic Encryptor for tests. It prepends a fixed
// header on Seal and strips it on Open, so sealed output differs from the
// secret while needing no keys.
type TestEncryptor struct {
	passphrase  string
	setupCalled bool
}

var _ Encryptor = (*TestEncryptor)(nil)

// NewTestEncryptor creates a new TestEncryptor.
func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{}
}

// Setup records the passphrase; Unlock rejects any other one afterwards.
func (e *TestEncryptor) Setup(passphrase string) error {
	e.passphrase = passphrase
	e.setupCalled = true
	return nil
}

func (e *TestEncryptor) Seal(secret []byte) ([]byte, error) {
	return append(append([]byte{}, testHeader...), secret...), nil
}

func (e *TestEncryptor) Unlock(passphrase string) (Unsealer, error) {
	if e.setupCalled && passphrase != e.passphrase {
		return nil, fmt.Errorf("decrypting private key: incorrect passphrase")
	}
	return TestUnsealer{}, nil
}

func (e *TestEncryptor) IsConfigured() bool {
	return true
}

// TestUnsealer strips the header added by TestEncryptor.
type TestUnsealer struct{}

var _ Unsealer = TestUnsealer{}

func (TestUnsealer) Open(sealed []byte) ([]byte, error) {
	if !bytes.HasPrefix(sealed, testHeader) {
		return nil, fmt.Errorf("invalid test encryption header")
	}
	return append([]byte{}, sealed[len(testHeader):]...), nil
}
